// apps/game-session/internal/accounts/db.go
//
// SQLite helpers for the accounts database.
// Responsibilities:
//   - Opening the database with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying the embedded migrations (idempotent, recorded in _migrations).
//
// Only accounts live here; game sessions are never persisted.

package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// OpenDB opens the accounts database at path, creating its directory if needed.
func OpenDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("accounts: create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("accounts: ping %s: %w", path, err)
	}
	return db, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Migrate applies every *.sql file in fsys in lexical order and records each one
// in _migrations. Files already recorded are skipped. A script that opens its own
// transaction or disables foreign keys runs without an outer transaction.
func Migrate(ctx context.Context, db *sql.DB, fsys fs.FS, log zerolog.Logger) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY)`); err != nil {
		return fmt.Errorf("accounts: create _migrations: %w", err)
	}
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return fmt.Errorf("accounts: list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		applied, err := migrated(ctx, db, name)
		if err != nil {
			return err
		}
		if applied {
			log.Debug().Str("migration", name).Msg("already applied")
			continue
		}
		script, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("accounts: read %s: %w", name, err)
		}
		if selfManaged(string(script)) {
			err = apply(ctx, db, name, string(script))
		} else {
			err = applyTx(ctx, db, name, string(script))
		}
		if err != nil {
			return err
		}
		log.Info().Str("migration", name).Msg("applied")
	}
	return nil
}

func migrated(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM _migrations WHERE name = ?`, name).Scan(&one)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	default:
		return false, fmt.Errorf("accounts: query _migrations: %w", err)
	}
}

func apply(ctx context.Context, ex execer, name, script string) error {
	if _, err := ex.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("accounts: apply %s: %w", name, err)
	}
	if _, err := ex.ExecContext(ctx, `INSERT INTO _migrations (name) VALUES (?)`, name); err != nil {
		return fmt.Errorf("accounts: record %s: %w", name, err)
	}
	return nil
}

func applyTx(ctx context.Context, db *sql.DB, name, script string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := apply(ctx, tx, name, script); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func selfManaged(script string) bool {
	s := strings.ReplaceAll(strings.ToUpper(script), " ", "")
	return strings.Contains(s, "BEGINTRANSACTION") || strings.Contains(s, "PRAGMAFOREIGN_KEYS=OFF")
}
