// apps/game-session/internal/httpserver/server.go
//
// HTTP server wiring for the game-session coordinator.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/metrics".
//   - Session endpoints (optional auth, rate limited): POST /session/start,
//     POST /session/check, GET /session, GET /session/events, GET /state.
//   - Auth endpoints when an accounts database is configured: /auth/*.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Every session request carries an identity: the account ID from a valid
//     token, otherwise a guest ID from the anonymous cookie.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/robalobadob/wordle/apps/game-session/internal/accounts"
	"github.com/robalobadob/wordle/apps/game-session/internal/coordinator"
	"github.com/robalobadob/wordle/apps/game-session/internal/metrics"
)

// Options configures the HTTP surface.
type Options struct {
	ClientOrigin   string
	CookieName     string
	Production     bool
	VerdictWait    time.Duration // how long action handlers wait for the oracle
	RateLimitRPS   float64
	RateLimitBurst int
}

// Server bundles the router and its collaborators.
type Server struct {
	r       *chi.Mux
	coord   *coordinator.Coordinator
	users   *accounts.Users  // nil disables /auth/*
	tokens  *accounts.Tokens // nil disables token auth
	metrics *metrics.Metrics
	limits  *limiterSet
	opts    Options
	log     zerolog.Logger
}

// New constructs a Server, installs middleware, and registers routes.
func New(coord *coordinator.Coordinator, users *accounts.Users, tokens *accounts.Tokens, m *metrics.Metrics, opts Options, log zerolog.Logger) *Server {
	if opts.CookieName == "" {
		opts.CookieName = "wordle_token"
	}
	s := &Server{
		r:       chi.NewRouter(),
		coord:   coord,
		users:   users,
		tokens:  tokens,
		metrics: m,
		limits:  newLimiterSet(opts.RateLimitRPS, opts.RateLimitBurst),
		opts:    opts,
		log:     log,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)         // add X-Request-ID
	s.r.Use(chimw.RealIP)            // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)         // recover from panics
	s.r.Use(cors(opts.ClientOrigin)) // credentials-friendly CORS

	// Streaming endpoint: no handler timeout, no JSON content type.
	s.r.With(s.withIdentity).Get("/session/events", s.handleEvents)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(jsonContentType)                 // default JSON responses

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"wordle-game-session","endpoints":["/health","POST /session/start","POST /session/check","GET /session","GET /state","/auth/*"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})

		s.mountSessionRoutes(r)
		if s.users != nil && s.tokens != nil {
			s.mountAuthRoutes(r)
		}

		// JSON 404 for easier debugging
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Message: r.URL.Path})
		})
	})

	if m != nil {
		s.r.Handle("/metrics", m.Handler())
	}
	return s
}

// Handler exposes the router (useful for tests and embedding).
func (s *Server) Handler() http.Handler { return s.r }

// Serve listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	return Run(ctx, addr, s.r, s.log)
}

// Run serves h on addr until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, addr string, h http.Handler, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info().Str("addr", addr).Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
