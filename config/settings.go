package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

// Adapter types, chosen with ADAPTER_TYPE.
const (
	AdapterPGXPool = "pgx.pool"
	AdapterSQLDB   = "sql.db"
	AdapterSQLX    = "sqlx.db"
)

// ErrInvalidSettings is returned when an environment variable holds an unusable value.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings are the deployment settings of the lending ledger, decoded from the environment.
type Settings struct {
	PostgresDSN         string        `env:"LEDGER_POSTGRES_DSN"`
	AdapterType         string        `env:"ADAPTER_TYPE,default=pgx.pool"`
	BorrowingPeriodDays int           `env:"LEDGER_BORROWING_PERIOD_DAYS,default=14"`
	BorrowingLimit      int           `env:"LEDGER_BORROWING_LIMIT,default=5"`
	FineRatePerDay      string        `env:"LEDGER_FINE_RATE_PER_DAY,default=0.50"`
	LockTimeout         time.Duration `env:"LEDGER_LOCK_TIMEOUT,default=5s"`
	LogLevel            string        `env:"LEDGER_LOG_LEVEL,default=info"`
}

// SettingsFromEnv decodes and validates the settings from the environment.
func SettingsFromEnv() (Settings, error) {
	var s Settings

	if err := envdecode.Decode(&s); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Settings{}, errors.Join(ErrInvalidSettings, err)
	}

	if s.PostgresDSN == "" {
		s.PostgresDSN = DefaultPostgresDSN
	}

	s.AdapterType = strings.ToLower(strings.TrimSpace(s.AdapterType))

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}

	return s, nil
}

// Validate reports the first unusable setting.
func (s Settings) Validate() error {
	switch s.AdapterType {
	case AdapterPGXPool, AdapterSQLDB, AdapterSQLX:
	default:
		return fmt.Errorf("%w: unknown adapter type %q", ErrInvalidSettings, s.AdapterType)
	}

	if s.LockTimeout < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, ledger.ErrNegativeLockTimeout)
	}

	if _, err := s.Policy(); err != nil {
		return err
	}

	if _, err := s.SlogLevel(); err != nil {
		return err
	}

	return nil
}

// Policy returns the lending policy described by the settings.
func (s Settings) Policy() (ledger.Policy, error) {
	if s.BorrowingPeriodDays <= 0 {
		return ledger.Policy{}, fmt.Errorf("%w: borrowing period must be positive, got %d", ErrInvalidSettings, s.BorrowingPeriodDays)
	}

	if s.BorrowingLimit < 0 {
		return ledger.Policy{}, fmt.Errorf("%w: borrowing limit must not be negative, got %d", ErrInvalidSettings, s.BorrowingLimit)
	}

	rate, err := decimal.NewFromString(strings.TrimSpace(s.FineRatePerDay))
	if err != nil {
		return ledger.Policy{}, fmt.Errorf("%w: fine rate %q: %w", ErrInvalidSettings, s.FineRatePerDay, err)
	}

	if rate.IsNegative() {
		return ledger.Policy{}, fmt.Errorf("%w: fine rate must not be negative, got %s", ErrInvalidSettings, rate)
	}

	return ledger.Policy{
		BorrowingPeriodDays: s.BorrowingPeriodDays,
		BorrowingLimit:      s.BorrowingLimit,
		FineRatePerDay:      rate,
	}, nil
}

// SlogLevel parses the log level (debug, info, warn, error).
func (s Settings) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s.LogLevel))); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalidSettings, s.LogLevel)
	}

	return level, nil
}
