package coordinator

import (
	"github.com/robalobadob/wordle/apps/game-session/internal/game"
	"github.com/robalobadob/wordle/apps/game-session/internal/session"
)

// EventKind identifies a state change emitted by the machine.
type EventKind string

const (
	EventGameStarted     EventKind = "game_started"
	EventGuessDispatched EventKind = "guess_dispatched"
	EventVerdictApplied  EventKind = "verdict_applied"
	EventGuessRejected   EventKind = "guess_rejected"
	EventGameFinished    EventKind = "game_finished"
)

// Event is one observable transition of a user's session.
type Event struct {
	Kind    EventKind        `json:"kind"`
	User    string           `json:"user"`
	Word    string           `json:"word,omitempty"`
	Marks   []game.Mark      `json:"marks,omitempty"`
	Reason  string           `json:"reason,omitempty"`
	Session session.Snapshot `json:"session"`
}

func newEvent(kind EventKind, s *session.Session) Event {
	return Event{Kind: kind, User: s.User, Session: s.Snapshot()}
}
