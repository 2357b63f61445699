package shell

import (
	"context"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

// Command is implemented by every lending command. CommandType labels logs and metrics.
type Command interface {
	CommandType() string
}

// Query is implemented by every lending query. QueryType labels logs and metrics.
type Query interface {
	QueryType() string
}

// CoreCommandHandler processes a command with business logic and retry, free of observability.
type CoreCommandHandler[C Command, R any] interface {
	Handle(ctx context.Context, command C) (R, HandlerResult, error)
}

// CoreQueryHandler processes a query, free of observability.
type CoreQueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}

// TransactionRunner executes a unit of work in one locking transaction.
type TransactionRunner interface {
	RunInTx(ctx context.Context, work ledger.UnitOfWork) error
}

// MetricsCollector interface for collecting handler metrics.
type MetricsCollector = ledger.MetricsCollector

// Logger interface for basic logging in handlers.
type Logger = ledger.Logger

// ContextualLogger interface for context-aware logging in handlers.
type ContextualLogger = ledger.ContextualLogger
