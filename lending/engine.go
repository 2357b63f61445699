package lending

import (
	"context"
	"errors"
	"time"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/lending/borrowbook"
	"github.com/AntonStoeckl/lending-ledger-go/lending/payfine"
	"github.com/AntonStoeckl/lending-ledger-go/lending/query/currentborrowings"
	"github.com/AntonStoeckl/lending-ledger-go/lending/query/outstandingfines"
	"github.com/AntonStoeckl/lending-ledger-go/lending/returnbook"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shell"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shell/observable"
)

// ErrNilStore is returned when NewEngine receives no store.
var ErrNilStore = errors.New("store must not be nil")

// Store is everything the Engine needs from a ledger store.
type Store interface {
	shell.TransactionRunner
	outstandingfines.FinesReader
	currentborrowings.BorrowingsReader
}

// Engine exposes borrow, return, pay and the two member reads.
type Engine struct {
	borrow     *observable.CommandWrapper[borrowbook.Command, borrowbook.Result]
	giveBack   *observable.CommandWrapper[returnbook.Command, returnbook.Result]
	pay        *observable.CommandWrapper[payfine.Command, payfine.Result]
	fines      *observable.QueryWrapper[outstandingfines.Query, outstandingfines.Result]
	borrowings *observable.QueryWrapper[currentborrowings.Query, currentborrowings.Result]
	now        func() time.Time
}

// NewEngine creates an Engine on top of store.
func NewEngine(store Store, options ...Option) (*Engine, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	cfg := defaultConfig()
	for _, option := range options {
		if err := option(cfg); err != nil {
			return nil, err
		}
	}

	wrapperOptions := []observable.Option{
		observable.WithLogging(cfg.logger),
		observable.WithContextualLogging(cfg.contextualLogger),
		observable.WithMetrics(cfg.metricsCollector),
	}

	borrowHandler := borrowbook.NewCommandHandler(store,
		borrowbook.WithDefaultPeriodDays(cfg.policy.BorrowingPeriodDays),
		borrowbook.WithRetryOptions(cfg.retryOptions...))
	returnHandler := returnbook.NewCommandHandler(store,
		returnbook.WithFineRatePerDay(cfg.policy.FineRatePerDay),
		returnbook.WithRetryOptions(cfg.retryOptions...))
	payHandler := payfine.NewCommandHandler(store,
		payfine.WithRetryOptions(cfg.retryOptions...))

	return &Engine{
		borrow:     observable.NewCommandWrapper[borrowbook.Command, borrowbook.Result](borrowHandler, wrapperOptions...),
		giveBack:   observable.NewCommandWrapper[returnbook.Command, returnbook.Result](returnHandler, wrapperOptions...),
		pay:        observable.NewCommandWrapper[payfine.Command, payfine.Result](payHandler, wrapperOptions...),
		fines:      observable.NewQueryWrapper[outstandingfines.Query, outstandingfines.Result](outstandingfines.NewQueryHandler(store), wrapperOptions...),
		borrowings: observable.NewQueryWrapper[currentborrowings.Query, currentborrowings.Result](currentborrowings.NewQueryHandler(store), wrapperOptions...),
		now:        cfg.now,
	}, nil
}

// Borrow lends one copy of the book with isbn to memberID, due after periodDays.
// A periodDays <= 0 uses the configured borrowing period.
//
// Errors: ledger.ErrBookNotFound, ErrMemberNotFound, ErrBookNotAvailable, ErrMemberNotActive,
// ErrBorrowLimitExceeded, ErrTransientStoreConflict, ErrStoreUnavailable.
func (e *Engine) Borrow(ctx context.Context, isbn string, memberID int64, periodDays int) (borrowbook.Result, error) {
	return e.borrow.Handle(ctx, borrowbook.BuildCommand(isbn, memberID, periodDays, e.now()))
}

// Return closes the borrowing logID and charges a fine if it is overdue.
//
// Errors: ledger.ErrRecordNotFound, ErrAlreadyReturned, ErrTransientStoreConflict, ErrStoreUnavailable.
func (e *Engine) Return(ctx context.Context, logID int64) (returnbook.Result, error) {
	return e.giveBack.Handle(ctx, returnbook.BuildCommand(logID, e.now()))
}

// PayFine marks the fine fineID as paid.
//
// Errors: ledger.ErrFineNotFound, ErrFineNotPayable, ErrTransientStoreConflict, ErrStoreUnavailable.
func (e *Engine) PayFine(ctx context.Context, fineID int64) (payfine.Result, error) {
	return e.pay.Handle(ctx, payfine.BuildCommand(fineID, e.now()))
}

// GetOutstandingFines returns the Unpaid fines of memberID, newest first.
func (e *Engine) GetOutstandingFines(ctx context.Context, memberID int64) ([]ledger.Fine, error) {
	result, err := e.fines.Handle(ctx, outstandingfines.BuildQuery(memberID))
	if err != nil {
		return nil, err
	}

	return result.Fines, nil
}

// GetCurrentBorrowings returns the Borrowed and Overdue records of memberID, newest borrow first.
// Records past their due date are reported as Overdue.
func (e *Engine) GetCurrentBorrowings(ctx context.Context, memberID int64) ([]ledger.BorrowingRecord, error) {
	result, err := e.borrowings.Handle(ctx, currentborrowings.BuildQuery(memberID, e.now()))
	if err != nil {
		return nil, err
	}

	return result.Borrowings, nil
}
