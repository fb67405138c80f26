// apps/game-session/internal/evaluator/evaluator.go
//
// Request/reply protocol between the session coordinator and the oracle.
//
// Dispatch never waits for the oracle. Every Request carries a fresh correlation ID
// and the user it belongs to; the matching Reply echoes both and is handed to the
// Sink named at dispatch time, from a goroutine of the evaluator's choosing.
// A reply may never arrive (lost in transport); callers bound that with their own
// deadline.

package evaluator

import (
	"github.com/google/uuid"

	"github.com/robalobadob/wordle/apps/game-session/internal/game"
)

// Kind is the oracle operation a Request asks for.
type Kind string

const (
	// KindStart asks the oracle to start a puzzle for the user.
	KindStart Kind = "start"
	// KindCheck asks the oracle to score Word.
	KindCheck Kind = "check"
)

// Request is one oracle call.
type Request struct {
	ID   string
	User string
	Kind Kind
	Word string
}

// NewRequest builds a Request with a fresh correlation ID.
func NewRequest(user string, kind Kind, word string) Request {
	return Request{ID: uuid.NewString(), User: user, Kind: kind, Word: word}
}

// Reply is the oracle's answer to the Request with the same ID.
// Err is non-empty when the oracle refused the request.
type Reply struct {
	ID    string
	User  string
	Kind  Kind
	Marks []game.Mark
	Err   string
}

// ReplyTo builds the Reply skeleton for req.
func ReplyTo(req Request) Reply {
	return Reply{ID: req.ID, User: req.User, Kind: req.Kind}
}

// Sink receives replies.
type Sink interface {
	Deliver(Reply)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Reply)

func (f SinkFunc) Deliver(r Reply) { f(r) }

// Evaluator sends requests to an oracle.
type Evaluator interface {
	// Dispatch hands req to the oracle without blocking on it; the reply, if any,
	// goes to sink.
	Dispatch(req Request, sink Sink) error
	// Close stops accepting requests and waits for in-flight ones.
	Close() error
}
