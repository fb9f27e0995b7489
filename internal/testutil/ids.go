package testutil

import (
	"fmt"
	"sync"
)

// SeqIDs generates predictable IDs of the form "<prefix>-1", "<prefix>-2",
// and so on. It never exhausts, so scripted sessions of any length get
// stable event IDs.
type SeqIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSeqIDs creates a generator with the given prefix.
func NewSeqIDs(prefix string) *SeqIDs {
	return &SeqIDs{prefix: prefix}
}

// Generate returns the next ID in the sequence.
func (g *SeqIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// Count reports how many IDs have been handed out.
func (g *SeqIDs) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.n
}
