// apps/game-session/internal/store/memory.go
//
// In-memory implementation of the oracle's puzzle Store.
//
// Characteristics:
//   - Stores *game.Game objects keyed by owner (Game.User) in a map.
//   - Concurrency-safe via RWMutex; the oracle is called from many evaluator goroutines.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/robalobadob/wordle/apps/game-session/internal/game"
)

// ErrNotFound is returned by Get for users without a puzzle.
var ErrNotFound = errors.New("store: game not found")

// Store defines the persistence interface for oracle puzzles.
type Store interface {
	// Save persists or replaces the user's puzzle.
	Save(ctx context.Context, g *game.Game) error

	// Get retrieves the puzzle for user.
	Get(ctx context.Context, user string) (*game.Game, error)

	// Update runs fn on the user's puzzle under the write lock.
	Update(ctx context.Context, user string, fn func(g *game.Game) error) error
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu    sync.RWMutex          // guards games map
	games map[string]*game.Game // keyed by Game.User
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{games: make(map[string]*game.Game)}
}

func (m *memory) Save(ctx context.Context, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.User] = g
	return nil
}

// Get returns a copy of the stored puzzle.
func (m *memory) Get(ctx context.Context, user string) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.games[user]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Update(ctx context.Context, user string, fn func(g *game.Game) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[user]
	if !ok {
		return ErrNotFound
	}
	return fn(g)
}
