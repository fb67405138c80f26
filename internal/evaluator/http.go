// apps/game-session/internal/evaluator/http.go
//
// HTTP evaluator: talks to an oracle service exposing /oracle/start and
// /oracle/check (see oracle.Routes).
//
// Outcome mapping:
//   - 2xx          → Reply delivered.
//   - 4xx          → Reply delivered with Err set to the oracle's error code.
//   - 5xx / transport error / timeout → reply lost, nothing delivered.

package evaluator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/robalobadob/wordle/apps/game-session/internal/oracle"
)

// HTTP dispatches requests to a remote oracle.
type HTTP struct {
	base    string
	client  *http.Client
	timeout time.Duration
	log     zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewHTTP targets the oracle at baseURL; each round trip is bounded by timeout.
func NewHTTP(baseURL string, timeout time.Duration, log zerolog.Logger) *HTTP {
	ctx, cancel := context.WithCancel(context.Background())
	return &HTTP{
		base:    strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		timeout: timeout,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (h *HTTP) Dispatch(req Request, sink Sink) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		rep, err := h.roundTrip(req)
		if err != nil {
			h.log.Warn().Err(err).Str("request_id", req.ID).Str("user", req.User).Msg("oracle reply lost")
			return
		}
		sink.Deliver(rep)
	}()
	return nil
}

func (h *HTTP) roundTrip(req Request) (Reply, error) {
	ctx, cancel := context.WithTimeout(h.ctx, h.timeout)
	defer cancel()

	var path string
	var body any
	switch req.Kind {
	case KindStart:
		path, body = "/oracle/start", oracle.StartRequest{User: req.User}
	case KindCheck:
		path, body = "/oracle/check", oracle.CheckRequest{User: req.User, Word: req.Word}
	default:
		return Reply{}, fmt.Errorf("unknown request kind %q", req.Kind)
	}

	b, err := json.Marshal(body)
	if err != nil {
		return Reply{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.base+path, bytes.NewReader(b))
	if err != nil {
		return Reply{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", req.ID)

	res, err := h.client.Do(httpReq)
	if err != nil {
		return Reply{}, fmt.Errorf("post %s: %w", path, err)
	}
	defer res.Body.Close()

	rep := ReplyTo(req)
	switch {
	case res.StatusCode >= 500:
		return Reply{}, fmt.Errorf("post %s: status %d", path, res.StatusCode)
	case res.StatusCode >= 400:
		var e oracle.ErrorResponse
		_ = json.NewDecoder(res.Body).Decode(&e)
		rep.Err = e.Error
		if rep.Err == "" {
			rep.Err = http.StatusText(res.StatusCode)
		}
		return rep, nil
	}

	if req.Kind == KindCheck {
		var out oracle.CheckResponse
		if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
			return Reply{}, fmt.Errorf("decode %s: %w", path, err)
		}
		rep.Marks = out.Marks
	}
	return rep, nil
}

// Close aborts in-flight round trips and waits for their goroutines.
func (h *HTTP) Close() error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	h.cancel()
	h.wg.Wait()
	return nil
}
