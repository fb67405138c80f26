package game_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle/apps/game-session/internal/game"
)

const (
	C = game.MarkCorrect
	W = game.MarkWrongPosition
	A = game.MarkAbsent
)

func TestScore(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		guess  string
		want   []game.Mark
	}{
		{"exact", "house", "house", []game.Mark{C, C, C, C, C}},
		{"partial", "house", "human", []game.Mark{C, W, A, A, A}},
		{"nothing", "house", "jknkj", []game.Mark{A, A, A, A, A}},
		{"anagram", "apple", "pleap", []game.Mark{W, W, W, W, W}},
		{"repeated absent letter", "house", "lllll", []game.Mark{A, A, A, A, A}},
		{"repeat with one hit", "apple", "ppppp", []game.Mark{A, C, C, A, A}},
		// the 'p' at index 2 is exact, leaving one 'p' for index 0
		{"repeat split between hit and present", "apple", "paper", []game.Mark{W, W, C, W, A}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, game.Score(tt.answer, tt.guess))
		})
	}
}

func TestAllCorrect(t *testing.T) {
	assert.True(t, game.AllCorrect([]game.Mark{C, C}))
	assert.False(t, game.AllCorrect([]game.Mark{C, W}))
	assert.False(t, game.AllCorrect(nil))
}

func TestGame_Check(t *testing.T) {
	g := game.New("u1", "HOUSE")
	assert.Equal(t, "house", g.Answer)
	assert.Len(t, g.ID, 16)

	marks, err := g.Check("human")
	require.NoError(t, err)
	assert.Equal(t, []game.Mark{C, W, A, A, A}, marks)
	assert.Equal(t, 1, g.Checks)

	_, err = g.Check("hum")
	require.ErrorIs(t, err, game.ErrGuessLength)
	_, err = g.Check("HUMAN")
	require.ErrorIs(t, err, game.ErrGuessLength)
	assert.Equal(t, 1, g.Checks)
}

func TestMark_Valid(t *testing.T) {
	assert.True(t, C.Valid())
	assert.False(t, game.Mark("hit").Valid())
}
