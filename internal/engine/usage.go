package engine

import "github.com/roach88/cooksync/internal/cook"

// UseState records how a part has been placed by part-level instancers in
// the current pass.
type UseState int

const (
	// Unused means no instancer has placed the part yet.
	Unused UseState = iota
	// Moved means the part was reparented into its first instance slot.
	Moved
	// Added means the part also received an additional instance parent.
	Added
)

func (s UseState) String() string {
	switch s {
	case Moved:
		return "moved"
	case Added:
		return "added"
	default:
		return "unused"
	}
}

// InstanceUsage is the per-pass first-use map for part-level instancing.
// The first placement of a part moves it; every later one adds a parent.
// It is created fresh for each pass and passed explicitly to the
// instancer post-pass.
type InstanceUsage struct {
	states map[cook.PartKey]UseState
}

// NewInstanceUsage returns an empty map.
func NewInstanceUsage() *InstanceUsage {
	return &InstanceUsage{states: make(map[cook.PartKey]UseState)}
}

// State returns the current state of a part.
func (u *InstanceUsage) State(key cook.PartKey) UseState {
	return u.states[key]
}

// Use records one placement of a part and returns the resulting state:
// Moved for the first placement, Added afterwards.
func (u *InstanceUsage) Use(key cook.PartKey) UseState {
	next := Added
	if u.states[key] == Unused {
		next = Moved
	}
	u.states[key] = next
	return next
}
