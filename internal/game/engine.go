// apps/game-session/internal/game/engine.go
//
// Scoring engine used by the oracle.
// Responsibilities:
//   - Create puzzles for a user with a fixed answer.
//   - Score guesses using the classic two-pass Wordle algorithm.
//
// The engine is deliberately unaware of guess budgets and deadlines; those belong to
// the session coordinator, which never sees the answer.
package game

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/samber/lo"
)

// ErrGuessLength is returned when a guess does not match the answer length.
var ErrGuessLength = errors.New("guess length does not match answer")

// New constructs a puzzle for user with the given answer.
func New(user, answer string) *Game {
	ans := strings.ToLower(answer)
	return &Game{
		ID:     randomID(),
		User:   user,
		Answer: ans,
		Cols:   len(ans),
	}
}

// Check scores guess against the answer and counts the attempt.
// The guess must be exactly g.Cols lowercase letters.
func (g *Game) Check(guess string) ([]Mark, error) {
	if len(guess) != g.Cols || !IsLowerAlpha(guess) {
		return nil, ErrGuessLength
	}
	g.Checks++
	return Score(g.Answer, guess), nil
}

// Score implements the standard Wordle two-pass scoring algorithm.
//
// Pass 1:
//   - Mark exact matches as Correct.
//   - Count remaining (non-correct) answer letters.
//
// Pass 2:
//   - For each remaining guess letter: if there is count left for that letter,
//     mark WrongPosition and decrement; otherwise mark Absent.
//
// This handles repeated letters in both answer and guess.
func Score(answer, guess string) []Mark {
	n := len(guess)
	res := make([]Mark, n)
	if len(answer) != n {
		return res
	}

	var counts [26]int

	for i := 0; i < n; i++ {
		if guess[i] == answer[i] {
			res[i] = MarkCorrect
		} else if j := idx(answer[i]); j >= 0 {
			counts[j]++
		}
	}

	for i := 0; i < n; i++ {
		if res[i] == MarkCorrect {
			continue
		}
		j := idx(guess[i])
		if j >= 0 && counts[j] > 0 {
			res[i] = MarkWrongPosition
			counts[j]--
		} else {
			res[i] = MarkAbsent
		}
	}
	return res
}

// AllCorrect returns true if m is non-empty and every mark is Correct.
func AllCorrect(m []Mark) bool {
	return len(m) > 0 && lo.EveryBy(m, func(x Mark) bool { return x == MarkCorrect })
}

// IsLowerAlpha checks that a string consists only of lowercase a–z.
func IsLowerAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

// idx maps a lowercase ASCII letter to 0..25, or -1.
func idx(b byte) int {
	if b < 'a' || b > 'z' {
		return -1
	}
	return int(b - 'a')
}

// randomID returns a compact 16-hex-char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
