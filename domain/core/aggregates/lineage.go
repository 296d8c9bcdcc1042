package aggregates

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"plant-backend/domain/core/valueobjects"
)

var (
	// ErrInvalidLineage is returned when plant records cannot form a lineage graph.
	ErrInvalidLineage = errors.New("invalid lineage graph")

	// ErrCyclicLineage is returned when parent links loop back on themselves.
	ErrCyclicLineage = errors.New("cyclic lineage")

	// ErrUnresolvedGeneration is returned when leveling nodes whose generation is unknown.
	ErrUnresolvedGeneration = errors.New("generation must be assigned to all nodes before leveling")
)

// sourceDateLayout is the wire format of LineageNode.SourceDate.
const sourceDateLayout = "2006-01-02"

// PlantRecord is the slice of a plant the lineage builder needs.
type PlantRecord struct {
	HumanID    int
	PlantID    string
	HumanName  string
	ParentIDs  []int
	Source     string
	SourceDate *time.Time
	Sink       string
}

// HasParents reports whether the record descends from other plants.
// An empty parent list counts as no parents.
func (r PlantRecord) HasParents() bool {
	return len(r.ParentIDs) > 0
}

// LineageNode is one vertex of the lineage graph: a plant, a source or a sink.
type LineageNode struct {
	ID         valueobjects.NodeID     `json:"id"`
	NodeName   string                  `json:"node_name"`
	PlantID    string                  `json:"plant_id,omitempty"`
	Source     string                  `json:"source,omitempty"`
	SourceDate string                  `json:"source_date,omitempty"`
	Generation valueobjects.Generation `json:"generation"`
	Parents    []valueobjects.NodeID   `json:"parents,omitempty"`
}

// IsSink reports whether the node collects plants that left the collection.
func (n *LineageNode) IsSink() bool {
	return n.ID.IsNamed() && len(n.Parents) > 0
}

// BuildLineage turns one user's plant records into generation levels,
// each level sorted for display. The records are not modified.
func BuildLineage(records []PlantRecord) ([][]*LineageNode, error) {
	if err := ValidateRecords(records); err != nil {
		return nil, err
	}

	nodes := SynthesizeNodes(records)
	if err := ValidateNodes(nodes); err != nil {
		return nil, err
	}

	if err := AssignGenerations(nodes); err != nil {
		return nil, err
	}

	levels, err := GroupLevels(nodes)
	if err != nil {
		return nil, err
	}

	SortLevels(levels, nodes)
	return levels, nil
}

// ValidateRecords checks the input invariants of plant records.
func ValidateRecords(records []PlantRecord) error {
	seen := make(map[int]struct{}, len(records))
	var duplicates, orphans []int

	for _, r := range records {
		if _, ok := seen[r.HumanID]; ok {
			duplicates = append(duplicates, r.HumanID)
		}
		seen[r.HumanID] = struct{}{}

		if !r.HasParents() && r.Source == "" {
			orphans = append(orphans, r.HumanID)
		}
	}

	if len(duplicates) > 0 {
		sort.Ints(duplicates)
		return fmt.Errorf("%w: duplicate human ids %v", ErrInvalidLineage, duplicates)
	}
	if len(orphans) > 0 {
		sort.Ints(orphans)
		return fmt.Errorf("%w: plants without parents or source %v", ErrInvalidLineage, orphans)
	}
	return nil
}

// SynthesizeNodes builds plant nodes, then source nodes, then sink nodes.
func SynthesizeNodes(records []PlantRecord) []*LineageNode {
	nodes := make([]*LineageNode, 0, len(records))
	sources := make(map[string]struct{})
	var sinkOrder []string
	sinks := make(map[string][]valueobjects.NodeID)

	for _, r := range records {
		node := &LineageNode{
			ID:         valueobjects.PlantNodeID(r.HumanID),
			NodeName:   r.HumanName,
			PlantID:    r.PlantID,
			Generation: valueobjects.UnresolvedGeneration(),
		}
		if r.HasParents() {
			node.Parents = make([]valueobjects.NodeID, len(r.ParentIDs))
			for i, p := range r.ParentIDs {
				node.Parents[i] = valueobjects.PlantNodeID(p)
			}
		} else {
			node.Source = r.Source
			if r.SourceDate != nil {
				node.SourceDate = r.SourceDate.Format(sourceDateLayout)
			}
			sources[r.Source] = struct{}{}
		}
		nodes = append(nodes, node)

		if r.Sink != "" {
			if _, ok := sinks[r.Sink]; !ok {
				sinkOrder = append(sinkOrder, r.Sink)
			}
			sinks[r.Sink] = append(sinks[r.Sink], valueobjects.PlantNodeID(r.HumanID))
		}
	}

	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		nodes = append(nodes, &LineageNode{
			ID:         valueobjects.NamedNodeID(name),
			NodeName:   name,
			Generation: valueobjects.UnresolvedGeneration(),
		})
	}

	for _, name := range sinkOrder {
		nodes = append(nodes, &LineageNode{
			ID:         valueobjects.NamedNodeID(name),
			NodeName:   name,
			Generation: valueobjects.UnresolvedGeneration(),
			Parents:    sinks[name],
		})
	}

	return nodes
}

// ValidateNodes checks node ids are unique and every parent id exists.
func ValidateNodes(nodes []*LineageNode) error {
	ids := make(map[valueobjects.NodeID]struct{}, len(nodes))
	var duplicates []valueobjects.NodeID
	for _, n := range nodes {
		if _, ok := ids[n.ID]; ok {
			duplicates = append(duplicates, n.ID)
		}
		ids[n.ID] = struct{}{}
	}
	if len(duplicates) > 0 {
		return fmt.Errorf("%w: duplicate node ids [%s]", ErrInvalidLineage, joinIDs(sortedUnique(duplicates)))
	}

	var missing []valueobjects.NodeID
	for _, n := range nodes {
		for _, p := range n.Parents {
			if _, ok := ids[p]; !ok {
				missing = append(missing, p)
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: unknown parent ids [%s]", ErrInvalidLineage, joinIDs(sortedUnique(missing)))
	}
	return nil
}

type visitState uint8

const (
	unvisited visitState = iota
	visiting
	done
)

// generationResolver memoizes generations over an id to index lookup.
type generationResolver struct {
	nodes []*LineageNode
	index map[valueobjects.NodeID]int
	state []visitState
	path  []valueobjects.NodeID
}

// AssignGenerations resolves the generation of every node in place.
// Sources get 0, plants one more than their deepest parent, and sinks
// one more than the deepest node once everything else is resolved.
// Plants without parents are linked to their source node.
func AssignGenerations(nodes []*LineageNode) error {
	r := &generationResolver{
		nodes: nodes,
		index: make(map[valueobjects.NodeID]int, len(nodes)),
		state: make([]visitState, len(nodes)),
	}
	for i, n := range nodes {
		r.index[n.ID] = i
	}

	for i := range nodes {
		if _, err := r.resolve(i); err != nil {
			return err
		}
	}

	maxGeneration := -1
	for _, n := range nodes {
		if g, ok := n.Generation.Value(); ok && g > maxGeneration {
			maxGeneration = g
		}
	}

	for _, n := range nodes {
		if !n.Generation.Resolved() {
			n.Generation = valueobjects.NewGeneration(maxGeneration + 1)
		}
	}
	return nil
}

// resolve returns the generation of nodes[i]. A deferred sink yields an
// unresolved generation.
func (r *generationResolver) resolve(i int) (valueobjects.Generation, error) {
	node := r.nodes[i]
	if node.Generation.Resolved() {
		return node.Generation, nil
	}

	switch r.state[i] {
	case done:
		return node.Generation, nil
	case visiting:
		return valueobjects.Generation{}, r.cycleError(node.ID)
	}

	switch {
	case len(node.Parents) == 0 && node.Source == "":
		node.Generation = valueobjects.NewGeneration(0)
		r.state[i] = done
		return node.Generation, nil

	case len(node.Parents) == 0:
		node.Parents = []valueobjects.NodeID{valueobjects.NamedNodeID(node.Source)}
		node.Generation = valueobjects.NewGeneration(1)
		r.state[i] = done
		return node.Generation, nil

	case node.ID.IsNamed():
		r.state[i] = done
		return node.Generation, nil
	}

	r.state[i] = visiting
	r.path = append(r.path, node.ID)

	deepest := -1
	for _, p := range node.Parents {
		j, ok := r.index[p]
		if !ok {
			return valueobjects.Generation{}, fmt.Errorf("%w: unknown parent id %s of %s", ErrInvalidLineage, p, node.ID)
		}
		g, err := r.resolve(j)
		if err != nil {
			return valueobjects.Generation{}, err
		}
		if v, ok := g.Value(); ok && v > deepest {
			deepest = v
		}
	}

	r.path = r.path[:len(r.path)-1]
	r.state[i] = done
	if deepest >= 0 {
		node.Generation = valueobjects.NewGeneration(deepest + 1)
	}
	return node.Generation, nil
}

func (r *generationResolver) cycleError(id valueobjects.NodeID) error {
	start := 0
	for k, p := range r.path {
		if p == id {
			start = k
			break
		}
	}
	cycle := append(append([]valueobjects.NodeID{}, r.path[start:]...), id)
	parts := make([]string, len(cycle))
	for k, c := range cycle {
		parts[k] = c.String()
	}
	return fmt.Errorf("%w: %s", ErrCyclicLineage, strings.Join(parts, " -> "))
}

// GroupLevels buckets nodes by generation. levels[g] holds the nodes of
// generation g in input order.
func GroupLevels(nodes []*LineageNode) ([][]*LineageNode, error) {
	maxGeneration := -1
	for _, n := range nodes {
		g, ok := n.Generation.Value()
		if !ok {
			return nil, fmt.Errorf("%w: node %s", ErrUnresolvedGeneration, n.ID)
		}
		if g > maxGeneration {
			maxGeneration = g
		}
	}

	levels := make([][]*LineageNode, maxGeneration+1)
	for i := range levels {
		levels[i] = make([]*LineageNode, 0)
	}
	for _, n := range nodes {
		g, _ := n.Generation.Value()
		levels[g] = append(levels[g], n)
	}
	return levels, nil
}

// ParentCounts returns how often each id appears as a parent across nodes.
func ParentCounts(nodes []*LineageNode) map[valueobjects.NodeID]int {
	counts := make(map[valueobjects.NodeID]int)
	for _, n := range nodes {
		for _, p := range n.Parents {
			counts[p]++
		}
	}
	return counts
}

// SortLevels orders each level so siblings sharing a parent sit together,
// larger sibling groups first. Ties break on the representative parent
// and then on the node's own id.
func SortLevels(levels [][]*LineageNode, nodes []*LineageNode) {
	counts := ParentCounts(nodes)

	type sortKey struct {
		popularity int
		parent     valueobjects.NodeID
	}
	keyOf := func(n *LineageNode) sortKey {
		parent, ok := valueobjects.MinNodeID(n.Parents)
		if !ok {
			return sortKey{}
		}
		return sortKey{popularity: counts[parent], parent: parent}
	}

	for _, level := range levels {
		keys := make(map[*LineageNode]sortKey, len(level))
		for _, n := range level {
			keys[n] = keyOf(n)
		}
		sort.SliceStable(level, func(i, j int) bool {
			a, b := keys[level[i]], keys[level[j]]
			if a.popularity != b.popularity {
				return a.popularity > b.popularity
			}
			if c := a.parent.Compare(b.parent); c != 0 {
				return c < 0
			}
			return level[i].ID.Less(level[j].ID)
		})
	}
}

func sortedUnique(ids []valueobjects.NodeID) []valueobjects.NodeID {
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	out := make([]valueobjects.NodeID, 0, len(ids))
	for _, id := range ids {
		if len(out) == 0 || id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}

func joinIDs(ids []valueobjects.NodeID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ", ")
}
