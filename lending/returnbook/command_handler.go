package returnbook

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shell"
)

// CommandHandler runs the return workflow Lock -> Decide -> Apply inside one transaction, with retry.
type CommandHandler struct {
	txRunner     shell.TransactionRunner
	ratePerDay   decimal.Decimal
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

// WithFineRatePerDay sets the fine charged per overdue day.
func WithFineRatePerDay(rate decimal.Decimal) Option {
	return func(h *CommandHandler) {
		h.ratePerDay = rate
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(txRunner shell.TransactionRunner, opts ...Option) CommandHandler {
	handler := CommandHandler{
		txRunner:   txRunner,
		ratePerDay: ledger.DefaultPolicy().FineRatePerDay,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the return workflow with retry on transient store failures.
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
		// The record names its book. Reading it unlocked first keeps the lock order book -> record.
		unlocked, err := tx.FindBorrowingRecord(ctx, command.LogID)
		if err != nil {
			return err
		}

		// Lock phase
		book, err := tx.LockBook(ctx, unlocked.BookID)
		if err != nil {
			return err
		}

		record, err := tx.LockBorrowingRecord(ctx, command.LogID)
		if err != nil {
			return err
		}

		// Decide phase
		decision, err := Decide(record, command.ReturnedAt, h.ratePerDay)
		if err != nil {
			return err
		}

		// Apply phase
		if err = tx.IncrementAvailableCopies(ctx, book.ID); err != nil {
			return err
		}

		if err = tx.MarkRecordReturned(ctx, record.ID, command.ReturnedAt); err != nil {
			return err
		}

		result = Result{ReturnDate: command.ReturnedAt, FineAmount: decimal.Zero}

		if !decision.Fine.Overdue {
			return nil
		}

		fineID, err := tx.InsertFine(ctx, ledger.Fine{
			LogID:       record.ID,
			MemberID:    record.MemberID,
			Amount:      decision.Fine.Amount,
			RatePerDay:  decision.Fine.RatePerDay,
			DaysOverdue: decision.Fine.DaysOverdue,
			Status:      ledger.FineUnpaid,
			FineDate:    command.ReturnedAt,
		})
		if err != nil {
			return err
		}

		result.FineCharged = true
		result.FineID = &fineID
		result.FineAmount = decision.Fine.Amount
		result.DaysOverdue = decision.Fine.DaysOverdue

		return nil
	})

	return result, err
}
