package mocks

import (
	"fmt"
	"sync"

	"github.com/gysagsohn/game-tracker-server/internal/dependencies/ids"
)

// MockIDs is a deterministic Generator producing "id-1", "id-2", ...
type MockIDs struct {
	mu     sync.Mutex
	Prefix string
	next   int

	// Queued ids are returned before falling back to the sequence
	Queued []string
}

// Ensure MockIDs implements Generator
var _ ids.Generator = (*MockIDs)(nil)

// NewMockIDs creates a MockIDs with the "id" prefix
func NewMockIDs() *MockIDs {
	return &MockIDs{Prefix: "id"}
}

// NewID returns the next queued id, or the next value in the sequence
func (g *MockIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.Queued) > 0 {
		id := g.Queued[0]
		g.Queued = g.Queued[1:]
		return id
	}
	g.next++
	return fmt.Sprintf("%s-%d", g.Prefix, g.next)
}

// Queue adds ids to be returned before the sequence resumes
func (g *MockIDs) Queue(values ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Queued = append(g.Queued, values...)
}
