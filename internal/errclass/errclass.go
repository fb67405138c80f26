// apps/game-session/internal/errclass/errclass.go
//
// Stable, machine-readable error classes returned by the session coordinator.
// Every action handler failure is one of these kinds; callers match with errors.Is
// against the package-level sentinels, which compares kinds only.

package errclass

import (
	"errors"
	"fmt"
)

// Kind identifies a class of coordinator failure.
type Kind string

const (
	KindInvalidUser          Kind = "E_INVALID_USER"
	KindInvalidGuess         Kind = "E_INVALID_GUESS"
	KindSessionNotFound      Kind = "E_SESSION_NOT_FOUND"
	KindIllegalStage         Kind = "E_ILLEGAL_STAGE"
	KindStaleReply           Kind = "E_STALE_REPLY"
	KindSessionAlreadyActive Kind = "E_SESSION_ALREADY_ACTIVE"
)

// Error is a classified error with an optional human-readable message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches any *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Kind == t.Kind
}

// WithMessage returns a new Error of the same Kind carrying msg.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Kind: e.Kind, Message: msg}
}

// WithMessagef returns a new Error of the same Kind with a formatted message.
func (e *Error) WithMessagef(format string, args ...any) *Error {
	return &Error{Kind: e.Kind, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrInvalidUser          = &Error{Kind: KindInvalidUser}
	ErrInvalidGuess         = &Error{Kind: KindInvalidGuess}
	ErrSessionNotFound      = &Error{Kind: KindSessionNotFound}
	ErrIllegalStage         = &Error{Kind: KindIllegalStage}
	ErrStaleReply           = &Error{Kind: KindStaleReply}
	ErrSessionAlreadyActive = &Error{Kind: KindSessionAlreadyActive}
)

// KindOf extracts the Kind of err, or "" when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
