package shell

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

const (
	// CommandHandlerDurationMetric tracks command handler execution duration.
	CommandHandlerDurationMetric = "commandhandler_handle_duration_seconds"

	// CommandHandlerCallsMetric tracks total command handler calls.
	CommandHandlerCallsMetric = "commandhandler_handle_calls_total"

	// QueryHandlerDurationMetric tracks query handler execution duration.
	QueryHandlerDurationMetric = "queryhandler_handle_duration_seconds"

	// QueryHandlerCallsMetric tracks total query handler calls.
	QueryHandlerCallsMetric = "queryhandler_handle_calls_total"

	// CommandHandlerRetriesMetric tracks retried command executions.
	//
	// Labels:
	//   - command_type: Type of command being retried (e.g., "BorrowBook")
	//   - attempt_number: Number of retries the call needed (1 to 5)
	//   - error_type: Ledger error kind of the final result
	CommandHandlerRetriesMetric = "commandhandler_retries_total"

	// CommandHandlerRetryDelayMetric tracks the total backoff delay of retried command executions.
	CommandHandlerRetryDelayMetric = "commandhandler_retry_delay_seconds"

	// CommandHandlerMaxRetriesReachedMetric tracks when max retries are exhausted.
	CommandHandlerMaxRetriesReachedMetric = "commandhandler_max_retries_reached_total"

	// StatusSuccess indicates successful completion.
	StatusSuccess = "success"

	// StatusRejected indicates a business rule rejected the command, e.g. no copy available.
	StatusRejected = "rejected"

	// StatusError indicates a processing error.
	StatusError = "error"

	// StatusCanceled indicates the operation was canceled due to context cancellation.
	StatusCanceled = "canceled"

	// StatusTimeout indicates the operation timed out due to context deadline exceeded.
	StatusTimeout = "timeout"

	// StatusConcurrencyConflict indicates the operation failed with a transient store conflict after all retries.
	StatusConcurrencyConflict = "concurrency_conflict"

	// StatusUnavailable indicates the store could not be reached.
	StatusUnavailable = "unavailable"

	LogMsgCommandStarted   = "command handler started"
	LogMsgCommandCompleted = "command handler completed"
	LogMsgCommandRejected  = "command handler rejected command"
	LogMsgCommandFailed    = "command handler failed"
	LogMsgQueryStarted     = "query handler started"
	LogMsgQueryCompleted   = "query handler completed"
	LogMsgQueryFailed      = "query handler failed"

	LogAttrCommandType   = "command_type"
	LogAttrQueryType     = "query_type"
	LogAttrStatus        = "status"
	LogAttrDurationMS    = "duration_ms"
	LogAttrErrorKind     = "error_kind"
	LogAttrError         = "error"
	LogAttrAttemptNumber = "attempt_number"
	LogAttrErrorType     = "error_type"
	LogAttrResultCount   = "result_count"
)

// StatusFromError maps the outcome of a handler call to a status label.
func StatusFromError(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case ledger.IsValidationError(err):
		return StatusRejected
	case errors.Is(err, context.Canceled):
		return StatusCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return StatusTimeout
	case errors.Is(err, ledger.ErrTransientStoreConflict):
		return StatusConcurrencyConflict
	case errors.Is(err, ledger.ErrStoreUnavailable):
		return StatusUnavailable
	default:
		return StatusError
	}
}

// BuildCommandLabels creates standard metric labels for command handler operations.
func BuildCommandLabels(commandType, status string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		LogAttrStatus:      status,
	}
}

// BuildQueryLabels creates standard metric labels for query handler operations.
func BuildQueryLabels(queryType, status string) map[string]string {
	return map[string]string{
		LogAttrQueryType: queryType,
		LogAttrStatus:    status,
	}
}

// BuildRetryLabels creates standard metric labels for retry operations.
func BuildRetryLabels(commandType string, attemptNumber int, errorType string) map[string]string {
	return map[string]string{
		LogAttrCommandType:   commandType,
		LogAttrAttemptNumber: strconv.Itoa(attemptNumber),
		LogAttrErrorType:     errorType,
	}
}

// ToMilliseconds converts a time.Duration to float64 milliseconds with precision.
func ToMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// RecordCommandMetrics records duration and call count of a command handler call.
func RecordCommandMetrics(collector MetricsCollector, commandType string, status string, duration time.Duration) {
	if collector == nil {
		return
	}

	labels := BuildCommandLabels(commandType, status)
	collector.RecordDuration(CommandHandlerDurationMetric, duration, labels)
	collector.IncrementCounter(CommandHandlerCallsMetric, labels)
}

// RecordQueryMetrics records duration and call count of a query handler call.
func RecordQueryMetrics(collector MetricsCollector, queryType string, status string, duration time.Duration) {
	if collector == nil {
		return
	}

	labels := BuildQueryLabels(queryType, status)
	collector.RecordDuration(QueryHandlerDurationMetric, duration, labels)
	collector.IncrementCounter(QueryHandlerCallsMetric, labels)
}

// RecordRetryMetrics records retries, their total delay and exhaustion from the handler result.
func RecordRetryMetrics(collector MetricsCollector, commandType string, result HandlerResult) {
	if collector == nil {
		return
	}

	if result.RetryAttempts > 1 {
		collector.IncrementCounter(CommandHandlerRetriesMetric,
			BuildRetryLabels(commandType, result.RetryAttempts-1, result.LastErrorType))
		collector.RecordDuration(CommandHandlerRetryDelayMetric, result.TotalRetryDelay,
			map[string]string{LogAttrCommandType: commandType})
	}

	if result.RetriesExhausted {
		collector.IncrementCounter(CommandHandlerMaxRetriesReachedMetric,
			map[string]string{LogAttrCommandType: commandType, LogAttrErrorType: result.LastErrorType})
	}
}

// LogCommandStart logs the beginning of command processing.
func LogCommandStart(ctx context.Context, logger Logger, contextualLogger ContextualLogger, commandType string) {
	if contextualLogger != nil {
		contextualLogger.InfoContext(ctx, LogMsgCommandStarted, LogAttrCommandType, commandType)
	} else if logger != nil {
		logger.Info(LogMsgCommandStarted, LogAttrCommandType, commandType)
	}
}

// LogCommandOutcome logs the end of command processing. Rejections are logged at info level,
// every other error at error level.
func LogCommandOutcome(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	commandType string,
	duration time.Duration,
	err error,
) {

	status := StatusFromError(err)
	args := []any{
		LogAttrCommandType, commandType,
		LogAttrStatus, status,
		LogAttrDurationMS, ToMilliseconds(duration),
	}

	switch status {
	case StatusSuccess:
		logInfo(ctx, logger, contextualLogger, LogMsgCommandCompleted, args...)
	case StatusRejected:
		args = append(args, LogAttrErrorKind, ledger.ErrorKind(err))
		logInfo(ctx, logger, contextualLogger, LogMsgCommandRejected, args...)
	default:
		args = append(args, LogAttrErrorKind, ledger.ErrorKind(err), LogAttrError, err.Error())
		logError(ctx, logger, contextualLogger, LogMsgCommandFailed, args...)
	}
}

// LogQueryOutcome logs the end of query processing.
func LogQueryOutcome(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	queryType string,
	resultCount int,
	duration time.Duration,
	err error,
) {

	args := []any{
		LogAttrQueryType, queryType,
		LogAttrStatus, StatusFromError(err),
		LogAttrDurationMS, ToMilliseconds(duration),
	}

	if err != nil {
		args = append(args, LogAttrErrorKind, ledger.ErrorKind(err), LogAttrError, err.Error())
		logError(ctx, logger, contextualLogger, LogMsgQueryFailed, args...)

		return
	}

	args = append(args, LogAttrResultCount, resultCount)
	logInfo(ctx, logger, contextualLogger, LogMsgQueryCompleted, args...)
}

func logInfo(ctx context.Context, logger Logger, contextualLogger ContextualLogger, msg string, args ...any) {
	if contextualLogger != nil {
		contextualLogger.InfoContext(ctx, msg, args...)
	} else if logger != nil {
		logger.Info(msg, args...)
	}
}

func logError(ctx context.Context, logger Logger, contextualLogger ContextualLogger, msg string, args ...any) {
	if contextualLogger != nil {
		contextualLogger.ErrorContext(ctx, msg, args...)
	} else if logger != nil {
		logger.Error(msg, args...)
	}
}
