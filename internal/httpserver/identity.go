package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	anonCookieName = "wordle_anon"
	// guestPrefix keeps guest identities disjoint from account IDs.
	guestPrefix = "anon_"
)

// identity is placed into the request context by withIdentity.
type identity struct {
	User     string // session identity
	Username string // empty for guests
	Guest    bool
}

type ctxIdentityKey struct{}

func identityFrom(r *http.Request) identity {
	id, _ := r.Context().Value(ctxIdentityKey{}).(identity)
	return id
}

// withIdentity resolves the caller: a valid token (whose account still exists)
// yields the account ID, anything else plays as a guest. It never 401s; a
// malformed guest cookie surfaces later as an invalid identity.
func (s *Server) withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.accountIdentity(r)
		if !ok {
			id = identity{User: guestPrefix + s.ensureAnonID(w, r), Guest: true}
		}
		ctx := context.WithValue(r.Context(), ctxIdentityKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) accountIdentity(r *http.Request) (identity, bool) {
	if s.tokens == nil {
		return identity{}, false
	}
	tok := s.bearerOrCookie(r)
	if tok == "" {
		return identity{}, false
	}
	claims, err := s.tokens.Parse(tok)
	if err != nil {
		return identity{}, false
	}
	// Ensure user still exists
	if s.users != nil {
		if _, err := s.users.FindByID(r.Context(), claims.ID); err != nil {
			return identity{}, false
		}
	}
	return identity{User: claims.ID, Username: claims.Username}, true
}

// ensureAnonID returns an existing anon cookie or sets a new one.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, s.cookie(anonCookieName, id, time.Now().Add(180*24*time.Hour)))
	return id
}

// bearerOrCookie extracts a bearer token from Authorization header or auth cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.opts.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// cookie builds an HttpOnly cookie with the deployment's security attributes.
// A zero expiry deletes the cookie.
func (s *Server) cookie(name, value string, exp time.Time) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if s.opts.Production {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.Production,
		SameSite: sameSite,
		Expires:  exp,
	}
	if exp.IsZero() {
		c.MaxAge = -1
	}
	return c
}
