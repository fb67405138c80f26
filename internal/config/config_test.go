package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle/apps/game-session/internal/config"
	"github.com/robalobadob/wordle/apps/game-session/internal/session"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := config.Parse()
	require.NoError(t, err)

	assert.Equal(t, ":5175", cfg.HTTPAddr)
	assert.Equal(t, 6, cfg.MaxGuesses)
	assert.Equal(t, 5, cfg.WordLength)
	assert.Equal(t, int64(10), cfg.TimeoutTicks)
	assert.Equal(t, time.Second, cfg.TickInterval)
	assert.Empty(t, cfg.OracleURL)
	assert.False(t, cfg.Production())
	assert.Equal(t, 14*24*time.Hour, cfg.JWTTTL())

	policy, err := cfg.Restart()
	require.NoError(t, err)
	assert.Equal(t, session.RestartOverwrite, policy)
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("TIMEOUT_TICKS", "30")
	t.Setenv("TICK_INTERVAL", "250ms")
	t.Setenv("RESTART_POLICY", "reject")
	t.Setenv("ORACLE_URL", "http://oracle:5176")
	t.Setenv("RATE_LIMIT_RPS", "0.5")

	cfg, err := config.Parse()
	require.NoError(t, err)
	assert.Equal(t, int64(30), cfg.TimeoutTicks)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, "http://oracle:5176", cfg.OracleURL)
	assert.InDelta(t, 0.5, cfg.RateLimitRPS, 1e-9)

	policy, err := cfg.Restart()
	require.NoError(t, err)
	assert.Equal(t, session.RestartReject, policy)
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string][2]string{
		"unparseable int": {"MAX_GUESSES", "six"},
		"zero guesses":    {"MAX_GUESSES", "0"},
		"zero timeout":    {"TIMEOUT_TICKS", "0"},
		"bad policy":      {"RESTART_POLICY", "queue"},
		"bad duration":    {"TICK_INTERVAL", "soon"},
		"bad timezone":    {"DAILY_TZ", "Mars/Olympus"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := config.Parse()
			require.Error(t, err)
		})
	}
}

func TestParse_ProductionNeedsSecret(t *testing.T) {
	t.Setenv("NODE_ENV", "production")
	_, err := config.Parse()
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := config.Parse()
	require.NoError(t, err)
	assert.True(t, cfg.Production())
}

func TestConfig_DailySchedule(t *testing.T) {
	t.Setenv("DAILY_TZ", "UTC")
	cfg, err := config.Parse()
	require.NoError(t, err)

	ts := time.Date(2026, 10, 19, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-10-19", cfg.DailySchedule().Key(ts))
}
