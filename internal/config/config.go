// apps/game-session/internal/config/config.go
//
// Process configuration. Values come from the environment (a .env file in the
// working directory is loaded first, if present) with the defaults below.

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/robalobadob/wordle/apps/game-session/internal/daily"
	"github.com/robalobadob/wordle/apps/game-session/internal/session"
)

type Config struct {
	// HTTP
	HTTPAddr     string `env:"HTTP_ADDR" envDefault:":5175"`
	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	NodeEnv      string `env:"NODE_ENV" envDefault:"development"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`

	// Accounts
	DBPath         string `env:"DB_PATH" envDefault:"./data/app.db"`
	JWTSecret      string `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	JWTExpiresDays int    `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName     string `env:"COOKIE_NAME" envDefault:"wordle_token"`

	// Game rules
	TickInterval  time.Duration `env:"TICK_INTERVAL" envDefault:"1s"`
	TimeoutTicks  int64         `env:"TIMEOUT_TICKS" envDefault:"10"`
	MaxGuesses    int           `env:"MAX_GUESSES" envDefault:"6"`
	WordLength    int           `env:"WORD_LENGTH" envDefault:"5"`
	RestartPolicy string        `env:"RESTART_POLICY" envDefault:"overwrite"`
	VerdictWait   time.Duration `env:"VERDICT_WAIT" envDefault:"2s"`

	// Oracle. An empty OracleURL runs the oracle in-process.
	OracleURL     string        `env:"ORACLE_URL"`
	OracleAddr    string        `env:"ORACLE_ADDR" envDefault:":5176"`
	OracleTimeout time.Duration `env:"ORACLE_TIMEOUT" envDefault:"3s"`
	OracleDelay   time.Duration `env:"ORACLE_DELAY" envDefault:"0s"`
	OracleMode    string        `env:"ORACLE_MODE" envDefault:"random"`
	OracleWord    string        `env:"ORACLE_WORD" envDefault:"house"`
	OracleDict    bool          `env:"ORACLE_DICTIONARY" envDefault:"false"`
	DailySalt     string        `env:"DAILY_SALT" envDefault:"wordle-daily"`
	DailyTZ       string        `env:"DAILY_TZ" envDefault:"UTC"`
	AnswersFile   string        `env:"WORDS_ANSWERS_FILE"`
	AllowedFile   string        `env:"WORDS_ALLOWED_FILE"`

	// Per-identity limit on action endpoints.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`
}

// Load reads .env (if present) and parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse parses the current environment without touching .env.
func Parse() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects rule values the coordinator cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.MaxGuesses < 1 {
		errs = append(errs, fmt.Errorf("MAX_GUESSES must be positive, got %d", c.MaxGuesses))
	}
	if c.WordLength < 1 {
		errs = append(errs, fmt.Errorf("WORD_LENGTH must be positive, got %d", c.WordLength))
	}
	if c.TimeoutTicks < 1 {
		errs = append(errs, fmt.Errorf("TIMEOUT_TICKS must be positive, got %d", c.TimeoutTicks))
	}
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("TICK_INTERVAL must be positive, got %s", c.TickInterval))
	}
	if _, err := c.Restart(); err != nil {
		errs = append(errs, err)
	}
	if _, err := time.LoadLocation(c.DailyTZ); err != nil {
		errs = append(errs, fmt.Errorf("DAILY_TZ: %w", err))
	}
	if c.Production() && c.JWTSecret == "dev_secret_change_me" {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	return errors.Join(errs...)
}

// Restart returns the parsed RESTART_POLICY.
func (c *Config) Restart() (session.RestartPolicy, error) {
	return session.ParseRestartPolicy(c.RestartPolicy)
}

// DailySchedule returns the daily picker's schedule.
func (c *Config) DailySchedule() daily.Schedule {
	loc, err := time.LoadLocation(c.DailyTZ)
	if err != nil {
		loc = time.UTC
	}
	return daily.NewSchedule(c.DailySalt, loc)
}

// Production reports whether cookies must be Secure/SameSite=None.
func (c *Config) Production() bool { return c.NodeEnv == "production" }

// JWTTTL is the lifetime of issued tokens.
func (c *Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTExpiresDays) * 24 * time.Hour
}
