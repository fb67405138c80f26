package evaluator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/robalobadob/wordle/apps/game-session/internal/oracle"
)

// ErrClosed is returned by Dispatch after Close.
var ErrClosed = errors.New("evaluator: closed")

// Local evaluates against an in-process oracle, each request on its own goroutine.
type Local struct {
	oracle *oracle.Oracle
	delay  time.Duration
	log    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// LocalOption configures a Local evaluator.
type LocalOption func(*Local)

// WithDelay delays every reply by d, simulating oracle latency.
func WithDelay(d time.Duration) LocalOption {
	return func(l *Local) { l.delay = d }
}

// NewLocal wraps o.
func NewLocal(o *oracle.Oracle, log zerolog.Logger, opts ...LocalOption) *Local {
	ctx, cancel := context.WithCancel(context.Background())
	l := &Local{oracle: o, log: log, ctx: ctx, cancel: cancel}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Local) Dispatch(req Request, sink Sink) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		if l.delay > 0 {
			select {
			case <-time.After(l.delay):
			case <-l.ctx.Done():
				return
			}
		}
		sink.Deliver(l.evaluate(req))
	}()
	return nil
}

func (l *Local) evaluate(req Request) Reply {
	rep := ReplyTo(req)
	switch req.Kind {
	case KindStart:
		if err := l.oracle.Start(l.ctx, req.User); err != nil {
			rep.Err = err.Error()
		}
	case KindCheck:
		marks, err := l.oracle.Check(l.ctx, req.User, req.Word)
		if err != nil {
			rep.Err = err.Error()
		}
		rep.Marks = marks
	default:
		rep.Err = "unknown request kind"
	}
	l.log.Debug().Str("request_id", req.ID).Str("user", req.User).Str("kind", string(req.Kind)).Msg("local oracle replied")
	return rep
}

// Close cancels pending delays and waits for in-flight requests.
func (l *Local) Close() error {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	l.cancel()
	l.wg.Wait()
	return nil
}
