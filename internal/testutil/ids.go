package testutil

import (
	"fmt"
	"sync"
)

// SequenceIDGenerator generates predictable run ids for tests:
// "<prefix>-1", "<prefix>-2", ...
//
// This makes stored runs and CLI output byte-identical across test runs.
// It satisfies store.IDGenerator.
//
// Thread-safety: SequenceIDGenerator is safe for concurrent use via
// internal mutex.
type SequenceIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceIDGenerator creates a generator with the given prefix.
// If prefix is empty, ids look like "test-run-1".
func NewSequenceIDGenerator(prefix string) *SequenceIDGenerator {
	if prefix == "" {
		prefix = "test-run"
	}
	return &SequenceIDGenerator{prefix: prefix}
}

// Generate returns the next id in the sequence.
func (g *SequenceIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// Reset restarts the sequence so the next id ends in 1.
func (g *SequenceIDGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}
