// apps/game-session/internal/oracle/oracle.go
//
// The oracle owns the secret words. It starts a puzzle per user and scores guesses
// against it; it knows nothing about guess budgets, stages or deadlines.
//
// Puzzles live in a store.Store keyed by user. Starting again for the same user
// replaces the puzzle.

package oracle

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/robalobadob/wordle/apps/game-session/internal/game"
	"github.com/robalobadob/wordle/apps/game-session/internal/store"
	"github.com/robalobadob/wordle/apps/game-session/internal/words"
)

var (
	// ErrNoGame is returned by Check when the user has no puzzle.
	ErrNoGame = errors.New("oracle: no game for user")
	// ErrBadWord is returned by Check for words the puzzle cannot score.
	ErrBadWord = errors.New("oracle: malformed word")
	// ErrNotInList is returned by Check for words outside the dictionary.
	ErrNotInList = errors.New("oracle: word not in list")
)

// Oracle evaluates guesses against per-user secret words.
type Oracle struct {
	store  store.Store
	picker Picker
	dict   *words.List
	log    zerolog.Logger
}

// Option configures an Oracle.
type Option func(*Oracle)

// WithDictionary makes Check refuse guesses that list does not allow.
func WithDictionary(list *words.List) Option {
	return func(o *Oracle) { o.dict = list }
}

// New constructs an Oracle.
func New(st store.Store, picker Picker, log zerolog.Logger, opts ...Option) *Oracle {
	o := &Oracle{store: st, picker: picker, log: log}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start creates (or replaces) the puzzle for user.
func (o *Oracle) Start(ctx context.Context, user string) error {
	if user == "" {
		return fmt.Errorf("oracle start: empty user")
	}
	g := game.New(user, o.picker.Pick(user))
	if err := o.store.Save(ctx, g); err != nil {
		return fmt.Errorf("oracle start: %w", err)
	}
	o.log.Debug().Str("user", user).Str("game", g.ID).Msg("puzzle started")
	return nil
}

// Check scores word against the user's puzzle.
func (o *Oracle) Check(ctx context.Context, user, word string) ([]game.Mark, error) {
	var marks []game.Mark
	err := o.store.Update(ctx, user, func(g *game.Game) error {
		if !game.IsLowerAlpha(word) || len(word) != len(g.Answer) {
			return ErrBadWord
		}
		if o.dict != nil && !o.dict.IsAllowed(word) {
			return ErrNotInList
		}
		m, err := g.Check(word)
		if err != nil {
			return ErrBadWord
		}
		marks = m
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoGame
	}
	if err != nil {
		return nil, err
	}
	o.log.Debug().Str("user", user).Bool("solved", game.AllCorrect(marks)).Msg("word checked")
	return marks, nil
}
