package coordinator_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle/apps/game-session/internal/clock"
	"github.com/robalobadob/wordle/apps/game-session/internal/coordinator"
	"github.com/robalobadob/wordle/apps/game-session/internal/errclass"
	"github.com/robalobadob/wordle/apps/game-session/internal/evaluator"
	"github.com/robalobadob/wordle/apps/game-session/internal/oracle"
	"github.com/robalobadob/wordle/apps/game-session/internal/session"
	"github.com/robalobadob/wordle/apps/game-session/internal/store"
)

// running starts a Coordinator backed by the in-process oracle (secret "house").
func running(t *testing.T, opts ...evaluator.LocalOption) (*coordinator.Coordinator, *clock.Manual, context.CancelFunc) {
	t.Helper()
	clk := clock.NewManual(0)
	o := oracle.New(store.NewMemoryStore(), oracle.Fixed("house"), zerolog.Nop())
	ev := evaluator.NewLocal(o, zerolog.Nop(), opts...)
	c := coordinator.New(coordinator.DefaultConfig(), clk, ev, coordinator.NewBroker(), zerolog.Nop(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = c.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = ev.Close()
	})
	return c, clk, cancel
}

func settle(t *testing.T, c *coordinator.Coordinator, user string) session.Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	snap, err := c.Settle(ctx, user)
	require.NoError(t, err)
	return snap
}

func TestCoordinator_ScenarioWin(t *testing.T) {
	c, _, _ := running(t)
	ctx := context.Background()

	snap, err := c.StartGame(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, session.StageAwaitingStart, snap.Stage)
	assert.Equal(t, session.StageInProgress, settle(t, c, "alice").Stage)

	_, err = c.CheckWord(ctx, "alice", "human")
	require.NoError(t, err)
	snap = settle(t, c, "alice")
	assert.Equal(t, session.StageInProgress, snap.Stage)
	assert.Equal(t, 1, snap.CheckCount)

	_, err = c.CheckWord(ctx, "alice", "house")
	require.NoError(t, err)
	snap = settle(t, c, "alice")
	assert.Equal(t, session.ResultWin, snap.Result)
	assert.Equal(t, 2, snap.CheckCount)

	st, err := c.State(ctx)
	require.NoError(t, err)
	require.Len(t, st.UserSessions, 1)
	assert.Equal(t, "alice", st.UserSessions[0].User)
	assert.Equal(t, snap, st.UserSessions[0].Session)
}

func TestCoordinator_ScenarioTimeout(t *testing.T) {
	// Replies take far longer than the test runs, so every request is effectively lost.
	c, clk, _ := running(t, evaluator.WithDelay(time.Hour))
	ctx := context.Background()

	events, unsubscribe := c.Subscribe("carol")
	defer unsubscribe()

	_, err := c.StartGame(ctx, "carol")
	require.NoError(t, err)

	for i := 0; i < 11; i++ {
		c.Tick(clk.Advance(1))
	}

	select {
	case ev := <-events:
		assert.Equal(t, coordinator.EventGameFinished, ev.Kind)
		assert.Equal(t, session.ResultLose, ev.Session.Result)
		assert.Equal(t, session.ReasonTimeout, ev.Session.Reason)
	case <-time.After(2 * time.Second):
		t.Fatal("no timeout event")
	}

	snap, ok, err := c.Session(ctx, "carol")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, session.StageFinished, snap.Stage)
}

func TestCoordinator_Errors(t *testing.T) {
	c, _, _ := running(t)
	ctx := context.Background()

	_, err := c.CheckWord(ctx, "nobody", "house")
	require.ErrorIs(t, err, errclass.ErrSessionNotFound)

	_, err = c.StartGame(ctx, "bad user")
	require.ErrorIs(t, err, errclass.ErrInvalidUser)

	_, ok, err := c.Session(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCoordinator_SettleReturnsOnDeadline(t *testing.T) {
	c, _, _ := running(t, evaluator.WithDelay(time.Hour))
	_, err := c.StartGame(context.Background(), "dora")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	snap, err := c.Settle(ctx, "dora")
	require.NoError(t, err)
	assert.Equal(t, session.StageAwaitingStart, snap.Stage)
}

func TestCoordinator_Stopped(t *testing.T) {
	c, _, cancel := running(t)
	cancel()

	require.Eventually(t, func() bool {
		_, err := c.StartGame(context.Background(), "late")
		return err == coordinator.ErrStopped
	}, 2*time.Second, 10*time.Millisecond)

	_, err := c.State(context.Background())
	require.ErrorIs(t, err, coordinator.ErrStopped)

	// Replies and ticks after shutdown are dropped without blocking.
	c.Deliver(evaluator.Reply{User: "late"})
	c.Tick(99)
}

func TestCoordinator_SettleAfterMiss(t *testing.T) {
	c, _, _ := running(t, evaluator.WithDelay(20*time.Millisecond))
	ctx := context.Background()

	events, unsubscribe := c.Subscribe("erin")
	defer unsubscribe()

	_, err := c.StartGame(ctx, "erin")
	require.NoError(t, err)
	assert.Equal(t, session.StageInProgress, settle(t, c, "erin").Stage)

	for i, w := range []string{"human", "hello"} {
		snap, err := c.CheckWord(ctx, "erin", w)
		require.NoError(t, err)
		assert.Equal(t, session.StageAwaitingVerdict, snap.Stage)

		began := time.Now()
		snap = settle(t, c, "erin")
		assert.Less(t, time.Since(began), time.Second)
		assert.Equal(t, session.StageInProgress, snap.Stage)
		assert.Equal(t, i+1, snap.CheckCount)
	}

	var applied []coordinator.Event
	for len(applied) < 2 {
		select {
		case ev := <-events:
			if ev.Kind == coordinator.EventVerdictApplied {
				applied = append(applied, ev)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("missing verdict_applied events")
		}
	}
	for _, ev := range applied {
		assert.Equal(t, session.StageInProgress, ev.Session.Stage)
	}
}
