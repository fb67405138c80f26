package main

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle/apps/game-session/internal/clock"
	"github.com/robalobadob/wordle/apps/game-session/internal/config"
	"github.com/robalobadob/wordle/apps/game-session/internal/coordinator"
	"github.com/robalobadob/wordle/apps/game-session/internal/oracle"
	"github.com/robalobadob/wordle/apps/game-session/internal/session"
)

func fixedConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("ORACLE_URL", "")
	t.Setenv("ORACLE_MODE", "fixed")
	t.Setenv("ORACLE_WORD", "house")
	cfg, err := config.Parse()
	require.NoError(t, err)
	return cfg
}

func TestServeEvaluator_NonsenseGuessesExhaustBudget(t *testing.T) {
	cfg := fixedConfig(t)
	eval, err := newEvaluator(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eval.Close() })

	c := coordinator.New(coordinator.DefaultConfig(), clock.NewManual(0), eval, nil, zerolog.Nop(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = c.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	settle := func() session.Snapshot {
		sctx, scancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer scancel()
		snap, err := c.Settle(sctx, "bob")
		require.NoError(t, err)
		return snap
	}

	_, err = c.StartGame(context.Background(), "bob")
	require.NoError(t, err)
	require.Equal(t, session.StageInProgress, settle().Stage)

	var snap session.Snapshot
	for _, w := range []string{"jknkj", "abcdf", "hyuiy", "ppppp", "lllll", "ggggg"} {
		_, err := c.CheckWord(context.Background(), "bob", w)
		require.NoError(t, err, w)
		snap = settle()
	}
	assert.Equal(t, 6, snap.CheckCount)
	assert.Equal(t, session.ResultLose, snap.Result)
	assert.Equal(t, session.ReasonExhausted, snap.Reason)
}

func TestNewOracle_DictionaryIsOptIn(t *testing.T) {
	cfg := fixedConfig(t)
	o, err := newOracle(cfg)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, o.Start(ctx, "u1"))
	_, err = o.Check(ctx, "u1", "jknkj")
	require.NoError(t, err)

	cfg.OracleDict = true
	o, err = newOracle(cfg)
	require.NoError(t, err)
	require.NoError(t, o.Start(ctx, "u1"))
	_, err = o.Check(ctx, "u1", "jknkj")
	require.ErrorIs(t, err, oracle.ErrNotInList)
}

func TestNewOracle_RejectsMismatchedLength(t *testing.T) {
	cfg := fixedConfig(t)
	cfg.WordLength = 6
	_, err := newOracle(cfg)
	require.Error(t, err)

	cfg = fixedConfig(t)
	cfg.OracleWord = "houses"
	_, err = newOracle(cfg)
	require.Error(t, err)
}
