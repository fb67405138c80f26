// apps/game-session/internal/httpserver/routes_session.go
//
// Session endpoints. Actions go through the coordinator and then wait up to
// Options.VerdictWait for the oracle: 200 carries the settled snapshot, 202 the
// snapshot still awaiting the oracle (poll GET /session or stream
// GET /session/events for the rest).

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/wordle/apps/game-session/internal/coordinator"
	"github.com/robalobadob/wordle/apps/game-session/internal/errclass"
	"github.com/robalobadob/wordle/apps/game-session/internal/session"
)

// checkReq is the payload of POST /session/check.
type checkReq struct {
	Word string `json:"word"`
}

// errorBody is the shape of every JSON error response.
type errorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Session *session.Snapshot `json:"session,omitempty"`
}

func (s *Server) mountSessionRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(s.withIdentity)
		r.With(s.rateLimit).Post("/session/start", s.handleStart)
		r.With(s.rateLimit).Post("/session/check", s.handleCheck)
		r.Get("/session", s.handleSession)
	})
	r.Get("/state", s.handleState)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r)
	snap, err := s.coord.StartGame(r.Context(), id.User)
	if err != nil {
		s.writeActionError(w, err, snap)
		return
	}
	s.respondSettled(w, r, id.User, snap)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_json"})
		return
	}
	id := identityFrom(r)
	snap, err := s.coord.CheckWord(r.Context(), id.User, req.Word)
	if err != nil {
		s.writeActionError(w, err, snap)
		return
	}
	s.respondSettled(w, r, id.User, snap)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	snap, _, err := s.coord.Session(r.Context(), identityFrom(r).User)
	if err != nil {
		s.writeActionError(w, err, snap)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	st, err := s.coord.State(r.Context())
	if err != nil {
		s.writeActionError(w, err, session.Snapshot{})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// respondSettled waits for the oracle (bounded by VerdictWait) and writes the
// freshest snapshot available.
func (s *Server) respondSettled(w http.ResponseWriter, r *http.Request, user string, snap session.Snapshot) {
	if s.opts.VerdictWait > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), s.opts.VerdictWait)
		settled, err := s.coord.Settle(ctx, user)
		cancel()
		if err == nil {
			snap = settled
		}
	}
	status := http.StatusOK
	if snap.Stage == session.StageAwaitingStart || snap.Stage == session.StageAwaitingVerdict {
		status = http.StatusAccepted
	}
	writeJSON(w, status, snap)
}

// handleEvents streams the caller's session events as server-sent events.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "streaming_unsupported"})
		return
	}
	user := identityFrom(r).User

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	flusher.Flush()

	events, cancel := s.coord.Subscribe(user)
	defer cancel()

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			data, err := json.Marshal(ev)
			if err != nil {
				s.log.Error().Err(err).Str("user", user).Msg("encode event")
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, data)
			flusher.Flush()
		case <-ping.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}

// statusFor maps coordinator failures onto HTTP statuses.
func statusFor(err error) int {
	switch errclass.KindOf(err) {
	case errclass.KindInvalidUser:
		return http.StatusBadRequest
	case errclass.KindInvalidGuess:
		return http.StatusUnprocessableEntity
	case errclass.KindSessionNotFound:
		return http.StatusNotFound
	case errclass.KindIllegalStage, errclass.KindSessionAlreadyActive, errclass.KindStaleReply:
		return http.StatusConflict
	}
	if errors.Is(err, coordinator.ErrStopped) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) writeActionError(w http.ResponseWriter, err error, snap session.Snapshot) {
	status := statusFor(err)
	body := errorBody{Error: string(errclass.KindOf(err)), Message: err.Error()}
	if body.Error == "" {
		body.Error = "unavailable"
		if status == http.StatusInternalServerError {
			body.Error = "internal"
		}
		s.log.Error().Err(err).Msg("session action failed")
	}
	if snap.User != "" {
		body.Session = &snap
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
