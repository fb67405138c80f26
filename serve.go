package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/wordle/apps/game-session/assets"
	"github.com/robalobadob/wordle/apps/game-session/internal/accounts"
	"github.com/robalobadob/wordle/apps/game-session/internal/clock"
	"github.com/robalobadob/wordle/apps/game-session/internal/config"
	"github.com/robalobadob/wordle/apps/game-session/internal/coordinator"
	"github.com/robalobadob/wordle/apps/game-session/internal/evaluator"
	"github.com/robalobadob/wordle/apps/game-session/internal/httpserver"
	"github.com/robalobadob/wordle/apps/game-session/internal/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the session coordinator and its HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := log.Logger

	// --- accounts ---
	db, err := accounts.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening accounts db: %w", err)
	}
	defer db.Close()
	if err := accounts.Migrate(ctx, db, assets.Migrations(), logger); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info().Str("path", cfg.DBPath).Msg("accounts db ready")

	// --- oracle ---
	eval, err := newEvaluator(cfg)
	if err != nil {
		return err
	}
	defer eval.Close()

	// --- coordinator ---
	policy, err := cfg.Restart()
	if err != nil {
		return err
	}
	rules := coordinator.Config{
		MaxGuesses:   cfg.MaxGuesses,
		WordLength:   cfg.WordLength,
		TimeoutTicks: cfg.TimeoutTicks,
		Restart:      policy,
	}
	m := metrics.New()
	clk := clock.NewManual(0)
	coord := coordinator.New(rules, clk, eval, coordinator.NewBroker(), logger.With().Str("component", "coordinator").Logger(), m)

	srv := httpserver.New(coord, accounts.NewUsers(db), accounts.NewTokens(cfg.JWTSecret, cfg.JWTTTL()), m, httpserver.Options{
		ClientOrigin:   cfg.ClientOrigin,
		CookieName:     cfg.CookieName,
		Production:     cfg.Production(),
		VerdictWait:    cfg.VerdictWait,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, logger)

	logger.Info().
		Int("max_guesses", rules.MaxGuesses).
		Int64("timeout_ticks", rules.TimeoutTicks).
		Dur("tick_interval", cfg.TickInterval).
		Str("restart", string(rules.Restart)).
		Msg("starting game-session")

	// --- run ---
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ignoreCanceled(coord.Run(gctx)) })
	g.Go(func() error { return ignoreCanceled(clock.NewTicker(clk, cfg.TickInterval).Run(gctx, coord.Tick)) })
	g.Go(func() error { return srv.Serve(gctx, cfg.HTTPAddr) })
	return g.Wait()
}

// newEvaluator picks the remote oracle when ORACLE_URL is set, else runs one in-process.
func newEvaluator(cfg *config.Config) (evaluator.Evaluator, error) {
	logger := log.Logger.With().Str("component", "evaluator").Logger()
	if cfg.OracleURL != "" {
		logger.Info().Str("url", cfg.OracleURL).Dur("timeout", cfg.OracleTimeout).Msg("using remote oracle")
		return evaluator.NewHTTP(cfg.OracleURL, cfg.OracleTimeout, logger), nil
	}
	o, err := newOracle(cfg)
	if err != nil {
		return nil, err
	}
	var opts []evaluator.LocalOption
	if cfg.OracleDelay > 0 {
		opts = append(opts, evaluator.WithDelay(cfg.OracleDelay))
	}
	logger.Info().Str("mode", cfg.OracleMode).Msg("using in-process oracle")
	return evaluator.NewLocal(o, logger, opts...), nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
