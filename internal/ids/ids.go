// Package ids generates record identifiers.
package ids

import (
	"sync"

	"github.com/google/uuid"
)

// Generator produces fresh record ids.
type Generator interface {
	NewID() string
}

// UUIDv7 generates time-sortable UUIDv7 ids.
//
// Stateless and safe for concurrent use.
type UUIDv7 struct{}

// NewID returns a new hyphenated UUIDv7.
//
// Panics if the random source fails.
func (UUIDv7) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Fixed returns predetermined ids in order. Used by tests that assert on ids.
type Fixed struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixed creates a generator that hands out ids in order.
func NewFixed(ids ...string) *Fixed {
	return &Fixed{ids: ids}
}

// NewID returns the next predetermined id.
//
// Panics once all ids have been consumed, so a test that creates more
// records than it declared fails loudly.
func (g *Fixed) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("ids.Fixed: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
