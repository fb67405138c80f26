// apps/game-session/internal/coordinator/coordinator.go
//
// Coordinator serializes every interaction with the Machine through a single
// event loop. User actions, oracle replies and clock ticks are all posted to
// one inbox and applied in arrival order by Run; events produced by the machine
// are published to the Broker from the same goroutine.

package coordinator

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/robalobadob/wordle/apps/game-session/internal/clock"
	"github.com/robalobadob/wordle/apps/game-session/internal/evaluator"
	"github.com/robalobadob/wordle/apps/game-session/internal/metrics"
	"github.com/robalobadob/wordle/apps/game-session/internal/session"
)

// ErrStopped is returned by calls made after Run has exited.
var ErrStopped = errors.New("coordinator: stopped")

const inboxSize = 256

// Coordinator owns a Machine and the goroutine that drives it.
type Coordinator struct {
	machine *Machine
	broker  *Broker
	log     zerolog.Logger

	inbox chan func()
	done  chan struct{}
}

// New builds a Coordinator. Oracle replies are routed back through the
// coordinator itself, so eval only needs to reach Deliver.
func New(cfg Config, clk clock.Clock, eval evaluator.Evaluator, broker *Broker, log zerolog.Logger, m *metrics.Metrics) *Coordinator {
	if broker == nil {
		broker = NewBroker()
	}
	c := &Coordinator{
		broker: broker,
		log:    log,
		inbox:  make(chan func(), inboxSize),
		done:   make(chan struct{}),
	}
	c.machine = NewMachine(cfg, clk, eval, c, log, m)
	return c
}

// Run processes the inbox until ctx is done. It must be called exactly once.
func (c *Coordinator) Run(ctx context.Context) error {
	defer close(c.done)
	c.log.Info().Msg("coordinator loop started")
	for {
		select {
		case <-ctx.Done():
			c.log.Info().Msg("coordinator loop stopped")
			return ctx.Err()
		case fn := <-c.inbox:
			fn()
		}
	}
}

// do runs fn on the loop and waits for it. Once fn is queued the caller waits for
// it to run even if ctx is cancelled, so results are never silently discarded.
func (c *Coordinator) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	select {
	case c.inbox <- func() { fn(); close(finished) }:
	case <-c.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-c.done:
		// Run may have executed fn right before exiting.
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	}
}

// post queues fn without waiting for it.
func (c *Coordinator) post(fn func()) {
	select {
	case c.inbox <- fn:
	case <-c.done:
	}
}

func (c *Coordinator) publish(events []Event) {
	for _, ev := range events {
		c.broker.Publish(ev)
	}
}

// StartGame starts (or restarts) user's session.
func (c *Coordinator) StartGame(ctx context.Context, user string) (session.Snapshot, error) {
	var (
		snap session.Snapshot
		err  error
	)
	if e := c.do(ctx, func() {
		var events []Event
		snap, events, err = c.machine.StartGame(user)
		c.publish(events)
	}); e != nil {
		return session.IdleSnapshot(user), e
	}
	return snap, err
}

// CheckWord submits word as user's next guess. The returned snapshot is taken
// right after dispatch; the verdict arrives asynchronously (see Settle).
func (c *Coordinator) CheckWord(ctx context.Context, user, word string) (session.Snapshot, error) {
	var (
		snap session.Snapshot
		err  error
	)
	if e := c.do(ctx, func() {
		var events []Event
		snap, events, err = c.machine.CheckWord(user, word)
		c.publish(events)
	}); e != nil {
		return session.IdleSnapshot(user), e
	}
	return snap, err
}

// Session returns user's snapshot; ok is false for users with no session.
func (c *Coordinator) Session(ctx context.Context, user string) (snap session.Snapshot, ok bool, err error) {
	err = c.do(ctx, func() { snap, ok = c.machine.Session(user) })
	return snap, ok, err
}

// State returns every session in first-start order.
func (c *Coordinator) State(ctx context.Context) (State, error) {
	var st State
	err := c.do(ctx, func() { st = c.machine.State() })
	return st, err
}

// Deliver implements evaluator.Sink. Stale replies are dropped by the machine.
func (c *Coordinator) Deliver(rep evaluator.Reply) {
	c.post(func() {
		events, err := c.machine.HandleReply(rep)
		c.publish(events)
		if err != nil {
			c.log.Debug().Err(err).Str("user", rep.User).Msg("reply not applied")
		}
	})
}

// Tick runs the watchdog for tick t. It is the callback for clock.Ticker.
func (c *Coordinator) Tick(t clock.Tick) {
	c.post(func() { c.publish(c.machine.Sweep(t)) })
}

// Subscribe streams user's events until cancel is called.
func (c *Coordinator) Subscribe(user string) (events <-chan Event, cancel func()) {
	return c.broker.Subscribe(user)
}

// Settle waits until user's session is no longer waiting on the oracle, or ctx is
// done, and returns the latest snapshot. An error means no snapshot could be read.
func (c *Coordinator) Settle(ctx context.Context, user string) (session.Snapshot, error) {
	events, cancel := c.Subscribe(user)
	defer cancel()

	snap, _, err := c.Session(ctx, user)
	if err != nil {
		return snap, err
	}
	for awaitingOracle(snap.Stage) {
		select {
		case ev := <-events:
			snap = ev.Session
		case <-ctx.Done():
			return snap, nil
		case <-c.done:
			return snap, nil
		}
	}
	return snap, nil
}

func awaitingOracle(st session.Stage) bool {
	return st == session.StageAwaitingStart || st == session.StageAwaitingVerdict
}
