// apps/game-session/internal/oracle/handler.go
//
// HTTP surface of the oracle, for running it as a separate service:
//   - POST /oracle/start {user}        → 204
//   - POST /oracle/check {user, word}  → {marks}
//
// Errors are JSON {"error": "..."} with 400 (bad input), 404 (no game) or
// 422 (word not in the dictionary).

package oracle

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/wordle/apps/game-session/internal/game"
)

// StartRequest is the payload of POST /oracle/start.
type StartRequest struct {
	User string `json:"user"`
}

// CheckRequest is the payload of POST /oracle/check.
type CheckRequest struct {
	User string `json:"user"`
	Word string `json:"word"`
}

// CheckResponse is the reply of POST /oracle/check.
type CheckResponse struct {
	Marks []game.Mark `json:"marks"`
}

// ErrorResponse is the body of every non-2xx oracle reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Routes mounts the oracle endpoints on r.
func (o *Oracle) Routes(r chi.Router) {
	r.Route("/oracle", func(r chi.Router) {
		r.Post("/start", o.handleStart)
		r.Post("/check", o.handleCheck)
	})
}

func (o *Oracle) handleStart(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.User == "" {
		writeError(w, http.StatusBadRequest, "bad_request")
		return
	}
	if err := o.Start(r.Context(), req.User); err != nil {
		o.log.Error().Err(err).Str("user", req.User).Msg("start puzzle")
		writeError(w, http.StatusInternalServerError, "start_failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (o *Oracle) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.User == "" {
		writeError(w, http.StatusBadRequest, "bad_request")
		return
	}
	marks, err := o.Check(r.Context(), req.User, req.Word)
	switch {
	case errors.Is(err, ErrNoGame):
		writeError(w, http.StatusNotFound, "no_game")
		return
	case errors.Is(err, ErrBadWord):
		writeError(w, http.StatusBadRequest, "bad_word")
		return
	case errors.Is(err, ErrNotInList):
		writeError(w, http.StatusUnprocessableEntity, "not_in_list")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "check_failed")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(CheckResponse{Marks: marks})
}

func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: code})
}
