// apps/game-session/internal/session/session.go
//
// Data model for a single user's game session.
// Defines:
//   - Stage:  lifecycle position of the session in the coordinator's state machine.
//   - Result: outcome; Win/Lose are terminal.
//   - Entry:  one scored guess in the history.
//   - Session: the mutable record owned by the coordinator.
//   - Snapshot: a detached copy for readers.

package session

import (
	"github.com/samber/lo"

	"github.com/robalobadob/wordle/apps/game-session/internal/clock"
	"github.com/robalobadob/wordle/apps/game-session/internal/game"
)

// Stage is the lifecycle stage of a session.
type Stage string

const (
	// StageIdle is reported for users without a session.
	StageIdle Stage = "idle"
	// StageAwaitingStart means the oracle has not yet acknowledged the new game.
	StageAwaitingStart Stage = "awaiting_start"
	// StageInProgress means the session accepts the next guess.
	StageInProgress Stage = "in_progress"
	// StageAwaitingVerdict means a guess is with the oracle.
	StageAwaitingVerdict Stage = "awaiting_verdict"
	// StageFinished is terminal.
	StageFinished Stage = "finished"
)

// Result is the outcome of a session.
type Result string

const (
	ResultUnknown    Result = "unknown"
	ResultInProgress Result = "in_progress"
	ResultWin        Result = "win"
	ResultLose       Result = "lose"
)

// Terminal reports whether r can no longer change.
func (r Result) Terminal() bool { return r == ResultWin || r == ResultLose }

// Reason records why a finished session finished.
type Reason string

const (
	ReasonNone      Reason = ""
	ReasonGuessed   Reason = "guessed"
	ReasonExhausted Reason = "exhausted"
	ReasonTimeout   Reason = "timeout"
)

// Entry is one guess and the oracle's per-letter verdict.
type Entry struct {
	Word  string      `json:"word"`
	Marks []game.Mark `json:"marks"`
}

// Session is a user's game state. Only the coordinator mutates it.
type Session struct {
	User       string
	Stage      Stage
	Result     Result
	Reason     Reason
	CheckCount int
	History    []Entry
	StartedAt  clock.Tick
	Deadline   clock.Tick
}

// Finished reports whether the session reached a terminal result.
func (s *Session) Finished() bool { return s.Result.Terminal() }

// Expired reports whether now is past the deadline of a non-terminal session.
func (s *Session) Expired(now clock.Tick) bool {
	return !s.Finished() && now > s.Deadline
}

// Finish moves the session to its terminal stage.
func (s *Session) Finish(result Result, reason Reason) {
	s.Stage = StageFinished
	s.Result = result
	s.Reason = reason
}

// Snapshot is a read-only copy of a Session, safe to hand across goroutines.
type Snapshot struct {
	User       string     `json:"user"`
	Stage      Stage      `json:"stage"`
	Result     Result     `json:"result"`
	Reason     Reason     `json:"reason,omitempty"`
	CheckCount int        `json:"checkCount"`
	History    []Entry    `json:"history"`
	StartedAt  clock.Tick `json:"startedAt"`
	Deadline   clock.Tick `json:"deadline"`
}

// Snapshot deep-copies s.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		User:       s.User,
		Stage:      s.Stage,
		Result:     s.Result,
		Reason:     s.Reason,
		CheckCount: s.CheckCount,
		History: lo.Map(s.History, func(e Entry, _ int) Entry {
			return Entry{Word: e.Word, Marks: append([]game.Mark(nil), e.Marks...)}
		}),
		StartedAt: s.StartedAt,
		Deadline:  s.Deadline,
	}
}

// IdleSnapshot describes a user that never started a session.
func IdleSnapshot(user string) Snapshot {
	return Snapshot{User: user, Stage: StageIdle, Result: ResultUnknown, History: []Entry{}}
}

const maxUserLen = 64

// ValidUser reports whether user is a well-formed identity:
// 1..64 characters from [A-Za-z0-9_-].
func ValidUser(user string) bool {
	if user == "" || len(user) > maxUserLen {
		return false
	}
	for _, r := range user {
		if !(r == '_' || r == '-' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
