package coordinator

import "github.com/robalobadob/wordle/apps/game-session/internal/session"

// UserSession pairs a user with their session snapshot.
type UserSession struct {
	User    string           `json:"user"`
	Session session.Snapshot `json:"session"`
}

// State is the full read-only view of every session, in first-start order.
type State struct {
	UserSessions []UserSession `json:"userSessions"`
}
