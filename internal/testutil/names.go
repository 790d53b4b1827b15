package testutil

import (
	"fmt"
	"sync"
)

// SequentialNames generates "<prefix>-000001", "<prefix>-000002", ...
// Used in place of random database names so test output is reproducible.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialNames struct {
	mu     sync.Mutex
	prefix string
	seq    int64
}

// NewSequentialNames creates a generator. An empty prefix becomes "test".
func NewSequentialNames(prefix string) *SequentialNames {
	if prefix == "" {
		prefix = "test"
	}
	return &SequentialNames{prefix: prefix}
}

// Generate returns the next name.
func (g *SequentialNames) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s-%06d", g.prefix, g.seq)
}

// Reset restarts the sequence at 1.
func (g *SequentialNames) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
