package observable

import (
	"github.com/AntonStoeckl/lending-ledger-go/lending/shell"
)

type config struct {
	metricsCollector shell.MetricsCollector
	contextualLogger shell.ContextualLogger
	logger           shell.Logger
}

// Option configures a CommandWrapper or QueryWrapper.
type Option func(*config)

// WithMetrics sets the metrics collector.
func WithMetrics(collector shell.MetricsCollector) Option {
	return func(c *config) {
		c.metricsCollector = collector
	}
}

// WithContextualLogging sets the contextual logger. It takes precedence over WithLogging.
func WithContextualLogging(logger shell.ContextualLogger) Option {
	return func(c *config) {
		c.contextualLogger = logger
	}
}

// WithLogging sets the basic logger.
func WithLogging(logger shell.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func applyOptions(opts []Option) config {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}
