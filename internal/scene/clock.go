package scene

import "sync/atomic"

// Clock allocates node handles. Handles are strictly increasing and never
// reused, so a handle reserved by a queued CreateNode stays valid across
// undo and redo.
type Clock struct {
	seq atomic.Int64
}

// NewClockAt creates a clock whose next handle is start+1.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next handle value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last handle value handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
