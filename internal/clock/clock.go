// Package clock provides the logical tick source the coordinator reads deadlines
// against. The coordinator only ever reads the current tick; advancing it is the
// job of whoever hosts the clock (a Ticker in production, the test in tests).
package clock

import (
	"context"
	"sync/atomic"
	"time"
)

// Tick is a monotonically increasing logical time unit (a block or turn counter).
type Tick int64

// Clock reports the current tick.
type Clock interface {
	Now() Tick
}

// Manual is a Clock advanced explicitly. Safe for concurrent use.
type Manual struct {
	t atomic.Int64
}

// NewManual returns a Manual clock at start.
func NewManual(start Tick) *Manual {
	m := &Manual{}
	m.t.Store(int64(start))
	return m
}

func (m *Manual) Now() Tick { return Tick(m.t.Load()) }

// Advance moves the clock forward by n ticks (n < 1 is treated as 1) and returns
// the new tick.
func (m *Manual) Advance(n int64) Tick {
	if n < 1 {
		n = 1
	}
	return Tick(m.t.Add(n))
}

// Ticker advances a Manual clock once per interval and reports each new tick.
type Ticker struct {
	clock    *Manual
	interval time.Duration
}

// NewTicker drives c every interval.
func NewTicker(c *Manual, interval time.Duration) *Ticker {
	return &Ticker{clock: c, interval: interval}
}

// Run advances the clock until ctx is done, calling onTick with every new tick.
// onTick runs on the Run goroutine; it returns ctx.Err() on shutdown.
func (t *Ticker) Run(ctx context.Context, onTick func(Tick)) error {
	tk := time.NewTicker(t.interval)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tk.C:
			onTick(t.clock.Advance(1))
		}
	}
}
