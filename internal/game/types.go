// apps/game-session/internal/game/types.go
//
// Core type definitions for Wordle scoring.
// Defines:
//   - Mark: per-letter verdict for a guess (correct/wrong_position/absent).
//   - Game: the oracle's secret for one user.

package game

// Mark represents the evaluation result for a single letter in a guess.
// Possible values:
//   - "correct":        letter is in the answer at this position.
//   - "wrong_position": letter exists in the answer but elsewhere.
//   - "absent":         letter does not (or no longer) occur in the answer.
type Mark string

const (
	MarkCorrect       Mark = "correct"
	MarkWrongPosition Mark = "wrong_position"
	MarkAbsent        Mark = "absent"
)

// Valid reports whether m is one of the three known marks.
func (m Mark) Valid() bool {
	switch m {
	case MarkCorrect, MarkWrongPosition, MarkAbsent:
		return true
	}
	return false
}

// Game holds the oracle side of a single user's puzzle.
type Game struct {
	ID     string // Unique game identifier (random hex string).
	User   string // Owner identity, the correlation key.
	Answer string // The solution word (always lowercase).
	Cols   int    // Number of letters per word.
	Checks int    // Guesses scored so far.
}
