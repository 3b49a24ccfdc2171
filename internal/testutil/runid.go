package testutil

import (
	"fmt"
	"sync"
)

// SequentialRunIDs generates numbered run ids ("run-0001", "run-0002", ...)
// for tests and golden output.
//
// Unlike engine.FixedGenerator, SequentialRunIDs never runs out and can be
// reset, so the same scenario run twice produces identical ids.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialRunIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialRunIDs creates a generator whose ids start with prefix.
// If prefix is empty, "run" is used.
func NewSequentialRunIDs(prefix string) *SequentialRunIDs {
	if prefix == "" {
		prefix = "run"
	}
	return &SequentialRunIDs{prefix: prefix}
}

// Generate returns the next id.
//
// Implements engine.RunIDGenerator.
func (g *SequentialRunIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}

// Count returns how many ids have been generated since the last reset.
func (g *SequentialRunIDs) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.n
}

// Reset restarts numbering. The next Generate returns "<prefix>-0001".
func (g *SequentialRunIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}
