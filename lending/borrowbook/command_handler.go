package borrowbook

import (
	"context"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shell"
)

// CommandHandler runs the borrow workflow Lock -> Decide -> Apply inside one transaction, with retry.
type CommandHandler struct {
	txRunner          shell.TransactionRunner
	defaultPeriodDays int
	retryOptions      []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// WithDefaultPeriodDays sets the borrowing period used when a command does not name one.
func WithDefaultPeriodDays(days int) Option {
	return func(h *CommandHandler) {
		if days > 0 {
			h.defaultPeriodDays = days
		}
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(txRunner shell.TransactionRunner, opts ...Option) CommandHandler {
	handler := CommandHandler{
		txRunner:          txRunner,
		defaultPeriodDays: ledger.DefaultBorrowingPeriodDays,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle executes the borrow workflow with retry on transient store failures.
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
	periodDays := command.PeriodDays
	if periodDays <= 0 {
		periodDays = h.defaultPeriodDays
	}

	var result Result

	err := h.txRunner.RunInTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		// Lock phase: book before member
		book, err := tx.LockBookByISBN(ctx, command.ISBN)
		if err != nil {
			return err
		}

		member, err := tx.LockMember(ctx, command.MemberID)
		if err != nil {
			return err
		}

		activeBorrowings, err := tx.CountActiveBorrowings(ctx, member.ID)
		if err != nil {
			return err
		}

		// Decide phase
		if err = Decide(State{Book: book, Member: member, ActiveBorrowings: activeBorrowings}); err != nil {
			return err
		}

		// Apply phase
		if err = tx.DecrementAvailableCopies(ctx, book.ID); err != nil {
			return err
		}

		record := ledger.BorrowingRecord{
			MemberID:   member.ID,
			BookID:     book.ID,
			BorrowDate: command.BorrowedAt,
			DueDate:    ledger.DueDate(command.BorrowedAt, periodDays),
			Status:     ledger.RecordBorrowed,
		}

		logID, err := tx.InsertBorrowingRecord(ctx, record)
		if err != nil {
			return err
		}

		result = Result{LogID: logID, BorrowDate: record.BorrowDate, DueDate: record.DueDate}

		return nil
	})

	return result, err
}
