package observable

import (
	"context"
	"time"

	"github.com/AntonStoeckl/lending-ledger-go/lending/shell"
)

// sized is implemented by query results that can report how many items they hold.
type sized interface {
	Len() int
}

// QueryWrapper adds logging and metrics to a core query handler.
type QueryWrapper[Q shell.Query, R any] struct {
	coreHandler      shell.CoreQueryHandler[Q, R]
	queryType        string
	metricsCollector shell.MetricsCollector
	contextualLogger shell.ContextualLogger
	logger           shell.Logger
}

// NewQueryWrapper creates a new observable wrapper around the core query handler.
func NewQueryWrapper[Q shell.Query, R any](coreHandler shell.CoreQueryHandler[Q, R], opts ...Option) *QueryWrapper[Q, R] {
	var zeroQuery Q

	cfg := applyOptions(opts)

	return &QueryWrapper[Q, R]{
		coreHandler:      coreHandler,
		queryType:        zeroQuery.QueryType(),
		metricsCollector: cfg.metricsCollector,
		contextualLogger: cfg.contextualLogger,
		logger:           cfg.logger,
	}
}

// Handle delegates to the core handler and records the outcome.
func (w *QueryWrapper[Q, R]) Handle(ctx context.Context, query Q) (R, error) {
	queryStart := time.Now()

	result, err := w.coreHandler.Handle(ctx, query)
	duration := time.Since(queryStart)

	resultCount := 0
	if s, ok := any(result).(sized); ok {
		resultCount = s.Len()
	}

	shell.RecordQueryMetrics(w.metricsCollector, w.queryType, shell.StatusFromError(err), duration)
	shell.LogQueryOutcome(ctx, w.logger, w.contextualLogger, w.queryType, resultCount, duration, err)

	return result, err
}
