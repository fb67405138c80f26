// apps/game-session/internal/session/registry.go
//
// Registry maps user identity to at most one live Session and remembers the order
// in which users first started a game.
//
// The Registry is not safe for concurrent use. It is owned by the coordinator's
// single event loop, which serializes every lookup and mutation.

package session

import (
	"fmt"

	"github.com/robalobadob/wordle/apps/game-session/internal/clock"
	"github.com/robalobadob/wordle/apps/game-session/internal/errclass"
)

// RestartPolicy decides what Start does when the user's session is still live.
type RestartPolicy string

const (
	// RestartOverwrite discards the live session and its history.
	RestartOverwrite RestartPolicy = "overwrite"
	// RestartReject fails with errclass.ErrSessionAlreadyActive.
	RestartReject RestartPolicy = "reject"
)

// ParseRestartPolicy validates a policy name.
func ParseRestartPolicy(s string) (RestartPolicy, error) {
	switch p := RestartPolicy(s); p {
	case RestartOverwrite, RestartReject:
		return p, nil
	case "":
		return RestartOverwrite, nil
	}
	return "", fmt.Errorf("session: unknown restart policy %q", s)
}

// Registry holds sessions keyed by user, in first-start order.
type Registry struct {
	policy   RestartPolicy
	sessions map[string]*Session
	order    []string
}

// NewRegistry constructs an empty Registry.
func NewRegistry(policy RestartPolicy) *Registry {
	if policy == "" {
		policy = RestartOverwrite
	}
	return &Registry{policy: policy, sessions: make(map[string]*Session)}
}

// Policy returns the configured restart policy.
func (r *Registry) Policy() RestartPolicy { return r.policy }

// Start creates a fresh session for user, subject to the restart policy.
// The returned bool reports whether a live session was overwritten.
func (r *Registry) Start(user string, now, deadline clock.Tick) (*Session, bool, error) {
	prev, exists := r.sessions[user]
	live := exists && !prev.Finished()
	if live && r.policy == RestartReject {
		return nil, false, errclass.ErrSessionAlreadyActive.WithMessagef("user %s is %s", user, prev.Stage)
	}

	s := &Session{
		User:      user,
		Stage:     StageAwaitingStart,
		Result:    ResultUnknown,
		History:   []Entry{},
		StartedAt: now,
		Deadline:  deadline,
	}
	if !exists {
		r.order = append(r.order, user)
	}
	r.sessions[user] = s
	return s, live, nil
}

// Get returns the user's session for reading.
func (r *Registry) Get(user string) (*Session, bool) {
	s, ok := r.sessions[user]
	return s, ok
}

// GetMut returns the user's session for mutation. Callers must not hold two
// mutable handles to the same session.
func (r *Registry) GetMut(user string) (*Session, bool) {
	s, ok := r.sessions[user]
	return s, ok
}

// All returns every session in first-start order.
func (r *Registry) All() []*Session {
	out := make([]*Session, 0, len(r.order))
	for _, u := range r.order {
		out = append(out, r.sessions[u])
	}
	return out
}

// Len returns the number of known users.
func (r *Registry) Len() int { return len(r.order) }
