package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/wordle/apps/game-session/internal/accounts"
)

// credentials is the payload of signup and login.
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// mountAuthRoutes registers /auth/*. Signing up or logging in switches the
// caller's identity from their guest ID to their account ID; the guest session
// is left to time out.
func (s *Server) mountAuthRoutes(r chi.Router) {
	r.Post("/auth/signup", s.handleSignup)
	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/logout", s.handleLogout)
	r.With(s.withIdentity).Get("/auth/me", s.handleMe)
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_json"})
		return
	}
	u, err := s.users.Signup(r.Context(), body.Username, body.Password)
	switch {
	case errors.Is(err, accounts.ErrUsernameTaken):
		writeJSON(w, http.StatusConflict, errorBody{Error: "username_taken"})
		return
	case err != nil:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_signup", Message: err.Error()})
		return
	}
	if !s.issueToken(w, u) {
		return
	}
	s.log.Info().Str("user", u.ID).Str("username", u.Username).Msg("account created")
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_json"})
		return
	}
	u, err := s.users.Authenticate(r.Context(), body.Username, body.Password)
	switch {
	case errors.Is(err, accounts.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid_credentials"})
		return
	case err != nil:
		s.log.Error().Err(err).Msg("login")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal"})
		return
	}
	if !s.issueToken(w, u) {
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, s.cookie(s.opts.CookieName, "", time.Time{}))
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r)
	if id.Guest {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id.User, "username": id.Username})
}

// issueToken signs a token for u and sets the auth cookie.
func (s *Server) issueToken(w http.ResponseWriter, u *accounts.User) bool {
	tok, exp, err := s.tokens.Sign(u.ID, u.Username)
	if err != nil {
		s.log.Error().Err(err).Msg("sign token")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "sign_failed"})
		return false
	}
	http.SetCookie(w, s.cookie(s.opts.CookieName, tok, exp))
	return true
}
