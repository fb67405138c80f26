package errclass_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle/apps/game-session/internal/errclass"
)

func TestError_ErrorString(t *testing.T) {
	assert.Equal(t, "E_INVALID_GUESS", errclass.ErrInvalidGuess.Error())
	assert.Equal(t, "E_INVALID_GUESS: want 5 letters",
		errclass.ErrInvalidGuess.WithMessage("want 5 letters").Error())
}

func TestError_IsMatchesKindOnly(t *testing.T) {
	err := errclass.ErrIllegalStage.WithMessagef("stage %s", "finished")

	require.ErrorIs(t, err, errclass.ErrIllegalStage)
	require.False(t, errors.Is(err, errclass.ErrInvalidGuess))
	require.False(t, errors.Is(err, errors.New("E_ILLEGAL_STAGE")))
}

func TestError_WithMessageLeavesSentinelUntouched(t *testing.T) {
	_ = errclass.ErrSessionNotFound.WithMessage("user u1")
	assert.Empty(t, errclass.ErrSessionNotFound.Message)
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("check word: %w", errclass.ErrInvalidUser.WithMessage("empty"))

	assert.Equal(t, errclass.KindInvalidUser, errclass.KindOf(wrapped))
	assert.Equal(t, errclass.Kind(""), errclass.KindOf(errors.New("plain")))
	assert.Equal(t, errclass.Kind(""), errclass.KindOf(nil))
}
