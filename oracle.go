package main

import (
	"context"
	"fmt"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/wordle/apps/game-session/internal/config"
	"github.com/robalobadob/wordle/apps/game-session/internal/game"
	"github.com/robalobadob/wordle/apps/game-session/internal/httpserver"
	"github.com/robalobadob/wordle/apps/game-session/internal/oracle"
	"github.com/robalobadob/wordle/apps/game-session/internal/store"
	"github.com/robalobadob/wordle/apps/game-session/internal/words"
)

var oracleCmd = &cobra.Command{
	Use:   "oracle",
	Short: "Run the word oracle as a standalone HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return serveOracle(cmd.Context(), cfg)
	},
}

// newOracle loads the word lists and builds an oracle with the configured picker.
// It fails when the lists cannot serve the configured WORD_LENGTH.
func newOracle(cfg *config.Config) (*oracle.Oracle, error) {
	if cfg.WordLength != words.Length {
		return nil, fmt.Errorf("WORD_LENGTH %d does not match the %d-letter word lists", cfg.WordLength, words.Length)
	}
	if cfg.OracleMode == "fixed" && (len(cfg.OracleWord) != cfg.WordLength || !game.IsLowerAlpha(cfg.OracleWord)) {
		return nil, fmt.Errorf("ORACLE_WORD %q is not %d lowercase letters", cfg.OracleWord, cfg.WordLength)
	}

	list, err := words.Load(cfg.AnswersFile, cfg.AllowedFile)
	if err != nil {
		return nil, fmt.Errorf("loading word lists: %w", err)
	}
	a, g := list.Stats()
	log.Info().Int("answers", a).Int("allowed", g).Bool("dictionary", cfg.OracleDict).Msg("word lists loaded")

	picker, err := oracle.NewPicker(cfg.OracleMode, cfg.OracleWord, cfg.DailySchedule(), list)
	if err != nil {
		return nil, err
	}
	var opts []oracle.Option
	if cfg.OracleDict {
		opts = append(opts, oracle.WithDictionary(list))
	}
	return oracle.New(store.NewMemoryStore(), picker, log.Logger.With().Str("component", "oracle").Logger(), opts...), nil
}

func serveOracle(ctx context.Context, cfg *config.Config) error {
	o, err := newOracle(cfg)
	if err != nil {
		return err
	}
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	o.Routes(r)
	return httpserver.Run(ctx, cfg.OracleAddr, r, log.Logger)
}
