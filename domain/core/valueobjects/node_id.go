package valueobjects

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// NodeIDKind tells which variant a NodeID holds.
type NodeIDKind uint8

const (
	// PlantKind identifies a plant by its user-facing human id.
	PlantKind NodeIDKind = iota + 1
	// NamedKind identifies a synthetic source or sink node by name.
	NamedKind
)

// NodeID is a value object identifying a lineage node.
// It is either a plant's human id or the name of a source/sink.
// The zero value is not a valid id.
type NodeID struct {
	kind   NodeIDKind
	number int
	name   string
}

// PlantNodeID returns the id of a plant node.
func PlantNodeID(humanID int) NodeID {
	return NodeID{kind: PlantKind, number: humanID}
}

// NamedNodeID returns the id of a source or sink node.
func NamedNodeID(name string) NodeID {
	return NodeID{kind: NamedKind, name: name}
}

// Kind returns the variant of the id.
func (id NodeID) Kind() NodeIDKind {
	return id.kind
}

// IsPlant reports whether the id refers to a plant.
func (id NodeID) IsPlant() bool {
	return id.kind == PlantKind
}

// IsNamed reports whether the id refers to a source or sink.
func (id NodeID) IsNamed() bool {
	return id.kind == NamedKind
}

// HumanID returns the plant human id. ok is false for named ids.
func (id NodeID) HumanID() (humanID int, ok bool) {
	return id.number, id.kind == PlantKind
}

// Name returns the source/sink name. ok is false for plant ids.
func (id NodeID) Name() (name string, ok bool) {
	return id.name, id.kind == NamedKind
}

// IsZero checks if the NodeID is the zero value
func (id NodeID) IsZero() bool {
	return id.kind == 0
}

// String returns the string representation of the NodeID
func (id NodeID) String() string {
	switch id.kind {
	case PlantKind:
		return strconv.Itoa(id.number)
	case NamedKind:
		return id.name
	default:
		return ""
	}
}

// Equals checks if two NodeIDs are equal
func (id NodeID) Equals(other NodeID) bool {
	return id == other
}

// Compare orders ids: plant ids numerically, then named ids lexically.
// Every plant id sorts before every named id. The zero id sorts first.
func (id NodeID) Compare(other NodeID) int {
	if id.kind != other.kind {
		if id.kind < other.kind {
			return -1
		}
		return 1
	}
	switch id.kind {
	case PlantKind:
		switch {
		case id.number < other.number:
			return -1
		case id.number > other.number:
			return 1
		}
		return 0
	case NamedKind:
		return strings.Compare(id.name, other.name)
	}
	return 0
}

// Less reports whether id sorts before other.
func (id NodeID) Less(other NodeID) bool {
	return id.Compare(other) < 0
}

// MarshalJSON writes plant ids as numbers and named ids as strings.
func (id NodeID) MarshalJSON() ([]byte, error) {
	switch id.kind {
	case PlantKind:
		return []byte(strconv.Itoa(id.number)), nil
	case NamedKind:
		return json.Marshal(id.name)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler
func (id *NodeID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = NodeID{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*id = NamedNodeID(name)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("NodeID must be an integer or a string")
	}
	*id = PlantNodeID(n)
	return nil
}

// MinNodeID returns the smallest id of ids. ok is false when ids is empty.
func MinNodeID(ids []NodeID) (min NodeID, ok bool) {
	if len(ids) == 0 {
		return NodeID{}, false
	}
	min = ids[0]
	for _, id := range ids[1:] {
		if id.Less(min) {
			min = id
		}
	}
	return min, true
}
