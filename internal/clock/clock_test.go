package clock_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle/apps/game-session/internal/clock"
)

func TestManual(t *testing.T) {
	c := clock.NewManual(3)
	assert.Equal(t, clock.Tick(3), c.Now())
	assert.Equal(t, clock.Tick(4), c.Advance(1))
	assert.Equal(t, clock.Tick(9), c.Advance(5))
	assert.Equal(t, clock.Tick(10), c.Advance(0), "never stands still")
}

func TestTicker_Run(t *testing.T) {
	c := clock.NewManual(0)
	ctx, cancel := context.WithCancel(context.Background())

	var last atomic.Int64
	done := make(chan error, 1)
	go func() {
		done <- clock.NewTicker(c, time.Millisecond).Run(ctx, func(tk clock.Tick) {
			last.Store(int64(tk))
		})
	}()

	require.Eventually(t, func() bool { return last.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	err := <-done
	assert.True(t, errors.Is(err, context.Canceled))
	assert.GreaterOrEqual(t, int64(c.Now()), last.Load())
}
