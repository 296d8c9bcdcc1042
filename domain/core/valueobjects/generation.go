package valueobjects

import (
	"encoding/json"
	"strconv"
)

// Generation is the depth of a node in the lineage graph.
// A Generation is either resolved to a non-negative value or unresolved.
type Generation struct {
	value    int
	resolved bool
}

// UnresolvedGeneration returns a generation that has not been computed.
func UnresolvedGeneration() Generation {
	return Generation{}
}

// NewGeneration returns a resolved generation. Negative values are unresolved.
func NewGeneration(value int) Generation {
	if value < 0 {
		return Generation{}
	}
	return Generation{value: value, resolved: true}
}

// Resolved reports whether the generation has been assigned.
func (g Generation) Resolved() bool {
	return g.resolved
}

// Value returns the generation and whether it was assigned.
func (g Generation) Value() (int, bool) {
	return g.value, g.resolved
}

// Int returns the generation value, or -1 when unresolved.
func (g Generation) Int() int {
	if !g.resolved {
		return -1
	}
	return g.value
}

func (g Generation) String() string {
	if !g.resolved {
		return "unresolved"
	}
	return strconv.Itoa(g.value)
}

// MarshalJSON writes the generation number, or null when unresolved.
func (g Generation) MarshalJSON() ([]byte, error) {
	if !g.resolved {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(g.value)), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (g *Generation) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*g = Generation{}
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*g = NewGeneration(n)
	return nil
}
