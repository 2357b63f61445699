package ledger

import (
	"context"
	"time"
)

// Tx is the handle a UnitOfWork uses to read, lock and mutate rows inside one transaction.
//
// Lock methods acquire row-level exclusive locks that are held until commit or rollback.
// Callers must lock in the global order book, then member, then dependent rows
// (borrowing records, fines) to stay free of deadlock cycles.
type Tx interface {
	LockBookByISBN(ctx context.Context, isbn string) (Book, error)
	LockBook(ctx context.Context, bookID int64) (Book, error)
	LockMember(ctx context.Context, memberID int64) (Member, error)
	CountActiveBorrowings(ctx context.Context, memberID int64) (int, error)
	DecrementAvailableCopies(ctx context.Context, bookID int64) error
	IncrementAvailableCopies(ctx context.Context, bookID int64) error

	InsertBorrowingRecord(ctx context.Context, record BorrowingRecord) (int64, error)
	FindBorrowingRecord(ctx context.Context, logID int64) (BorrowingRecord, error)
	LockBorrowingRecord(ctx context.Context, logID int64) (BorrowingRecord, error)
	MarkRecordReturned(ctx context.Context, logID int64, returnedAt time.Time) error

	InsertFine(ctx context.Context, fine Fine) (int64, error)
	LockFine(ctx context.Context, fineID int64) (Fine, error)
	MarkFinePaid(ctx context.Context, fineID int64, paidAt time.Time) error
}

// UnitOfWork runs inside exactly one transaction. Returning nil commits, returning any error rolls back.
type UnitOfWork func(ctx context.Context, tx Tx) error
