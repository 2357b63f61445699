package lending

import (
	"errors"
	"time"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shell"
)

var (
	// ErrInvalidPolicy is returned by WithPolicy for a non-positive period, a negative limit or a negative rate.
	ErrInvalidPolicy = errors.New("invalid lending policy")

	// ErrNilClock is returned by WithClock for a nil clock.
	ErrNilClock = errors.New("clock must not be nil")
)

type config struct {
	policy           ledger.Policy
	logger           ledger.Logger
	contextualLogger ledger.ContextualLogger
	metricsCollector ledger.MetricsCollector
	retryOptions     []shell.RetryOption
	now              func() time.Time
}

func defaultConfig() *config {
	return &config{
		policy: ledger.DefaultPolicy(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Option defines a functional option for configuring the Engine.
type Option func(*config) error

// WithPolicy sets the borrowing period and the fine rate. The borrowing limit is stored per member.
func WithPolicy(policy ledger.Policy) Option {
	return func(c *config) error {
		if policy.BorrowingPeriodDays <= 0 || policy.BorrowingLimit < 0 || policy.FineRatePerDay.IsNegative() {
			return ErrInvalidPolicy
		}

		c.policy = policy

		return nil
	}
}

// WithLogger sets the logger for command and query outcomes.
func WithLogger(logger ledger.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger. It takes precedence over WithLogger.
func WithContextualLogger(logger ledger.ContextualLogger) Option {
	return func(c *config) error {
		c.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for handler durations, calls and retries.
func WithMetrics(collector ledger.MetricsCollector) Option {
	return func(c *config) error {
		c.metricsCollector = collector
		return nil
	}
}

// WithRetryOptions overrides the retry defaults of all command handlers.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(c *config) error {
		c.retryOptions = opts
		return nil
	}
}

// WithClock sets the source of borrow, return and payment timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *config) error {
		if now == nil {
			return ErrNilClock
		}

		c.now = now

		return nil
	}
}
