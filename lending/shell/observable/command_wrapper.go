package observable

import (
	"context"
	"time"

	"github.com/AntonStoeckl/lending-ledger-go/lending/shell"
)

// CommandWrapper adds logging and metrics to a core command handler.
// It translates the HandlerResult of the wrapped handler into retry metrics.
type CommandWrapper[C shell.Command, R any] struct {
	coreHandler      shell.CoreCommandHandler[C, R]
	commandType      string
	metricsCollector shell.MetricsCollector
	contextualLogger shell.ContextualLogger
	logger           shell.Logger
}

// NewCommandWrapper creates a new observable wrapper around the core command handler.
func NewCommandWrapper[C shell.Command, R any](
	coreHandler shell.CoreCommandHandler[C, R],
	opts ...Option,
) *CommandWrapper[C, R] {

	var zeroCommand C

	cfg := applyOptions(opts)

	return &CommandWrapper[C, R]{
		coreHandler:      coreHandler,
		commandType:      zeroCommand.CommandType(),
		metricsCollector: cfg.metricsCollector,
		contextualLogger: cfg.contextualLogger,
		logger:           cfg.logger,
	}
}

// Handle delegates to the core handler and records the outcome.
func (w *CommandWrapper[C, R]) Handle(ctx context.Context, command C) (R, error) {
	commandStart := time.Now()
	shell.LogCommandStart(ctx, w.logger, w.contextualLogger, w.commandType)

	result, handlerResult, err := w.coreHandler.Handle(ctx, command)
	duration := time.Since(commandStart)

	shell.RecordRetryMetrics(w.metricsCollector, w.commandType, handlerResult)
	shell.RecordCommandMetrics(w.metricsCollector, w.commandType, shell.StatusFromError(err), duration)
	shell.LogCommandOutcome(ctx, w.logger, w.contextualLogger, w.commandType, duration, err)

	return result, err
}
