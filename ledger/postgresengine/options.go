package postgresengine

import (
	"time"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

// Option defines a functional option for configuring Store.
type Option func(*Store) error

// WithLogger sets the logger for the Store.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: Committed transactions with durations (production-safe)
// Warn level: Conflicts, rollbacks and rollback failures
// Error level: Store failures that cause operation failures.
func WithLogger(logger ledger.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
// It receives transaction durations, outcomes, conflicts and store errors.
func WithMetrics(collector ledger.MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithLockTimeout bounds how long a statement inside a transaction waits for a row lock.
// Zero disables the bound.
func WithLockTimeout(timeout time.Duration) Option {
	return func(s *Store) error {
		if timeout < 0 {
			return ledger.ErrNegativeLockTimeout
		}

		s.lockTimeout = timeout

		return nil
	}
}

// WithClock replaces time.Now for timestamps the store sets itself (created_at, fine_date defaults).
func WithClock(now func() time.Time) Option {
	return func(s *Store) error {
		s.now = now
		return nil
	}
}
