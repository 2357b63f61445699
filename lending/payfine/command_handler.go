package payfine

import (
	"context"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shell"
)

// CommandHandler runs the payment workflow Lock -> Decide -> Apply inside one transaction, with retry.
type CommandHandler struct {
	txRunner     shell.TransactionRunner
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(txRunner shell.TransactionRunner, opts ...Option) CommandHandler {
	handler := CommandHandler{txRunner: txRunner}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the payment workflow with retry on transient store failures.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, shell.HandlerResult, error) {
	var result Result

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		result, execErr = h.executeCommand(retryCtx, command)

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return Result{}, shell.NewHandlerResult(retryMetrics), err
	}

	return result, shell.NewHandlerResult(retryMetrics), nil
}

// executeCommand contains the core command processing logic that can be retried.
func (h CommandHandler) executeCommand(ctx context.Context, command Command) (Result, error) {
	var result Result

	err := h.txRunner.RunInTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		fine, err := tx.LockFine(ctx, command.FineID)
		if err != nil {
			return err
		}

		if err = Decide(fine); err != nil {
			return err
		}

		if err = tx.MarkFinePaid(ctx, fine.ID, command.PaidAt); err != nil {
			return err
		}

		result = Result{FineID: fine.ID, Amount: fine.Amount, PaymentDate: command.PaidAt}

		return nil
	})

	return result, err
}
