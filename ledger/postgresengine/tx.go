package postgresengine

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/ledger/postgresengine/internal/adapters"
)

// lockingTx implements ledger.Tx on top of one open adapters.DBTx.
type lockingTx struct {
	store *Store
	tx    adapters.DBTx
}

func (t *lockingTx) LockBookByISBN(ctx context.Context, isbn string) (ledger.Book, error) {
	sqlQuery, err := selectBook(goqu.C(colISBN).Eq(isbn), true)
	if err != nil {
		return ledger.Book{}, err
	}

	return t.queryBook(ctx, sqlQuery)
}

func (t *lockingTx) LockBook(ctx context.Context, bookID int64) (ledger.Book, error) {
	sqlQuery, err := selectBook(goqu.C(colBookID).Eq(bookID), true)
	if err != nil {
		return ledger.Book{}, err
	}

	return t.queryBook(ctx, sqlQuery)
}

func (t *lockingTx) queryBook(ctx context.Context, sqlQuery string) (ledger.Book, error) {
	var book ledger.Book
	err := t.store.queryOne(ctx, t.tx, sqlQuery, actionLockBook, ledger.ErrBookNotFound,
		&book.ID, &book.ISBN, &book.Title, &book.PublicationYear, &book.TotalCopies, &book.AvailableCopies)

	return book, err
}

func (t *lockingTx) LockMember(ctx context.Context, memberID int64) (ledger.Member, error) {
	sqlQuery, err := selectMember(memberID, true)
	if err != nil {
		return ledger.Member{}, err
	}

	return t.store.scanMember(ctx, t.tx, sqlQuery, actionLockMember)
}

func (t *lockingTx) CountActiveBorrowings(ctx context.Context, memberID int64) (int, error) {
	sqlQuery, err := countActiveBorrowings(memberID)
	if err != nil {
		return 0, err
	}

	var count int64
	if err = t.store.queryOne(ctx, t.tx, sqlQuery, actionCountBorrowings, ledger.ErrStoreOperationFailed, &count); err != nil {
		return 0, err
	}

	return int(count), nil
}

func (t *lockingTx) DecrementAvailableCopies(ctx context.Context, bookID int64) error {
	sqlQuery, err := updateCopies(bookID, true)
	if err != nil {
		return err
	}

	return t.store.execExactlyOne(ctx, t.tx, sqlQuery, actionDecrementCopies, ledger.ErrCounterUpdateFailed)
}

func (t *lockingTx) IncrementAvailableCopies(ctx context.Context, bookID int64) error {
	sqlQuery, err := updateCopies(bookID, false)
	if err != nil {
		return err
	}

	return t.store.execExactlyOne(ctx, t.tx, sqlQuery, actionIncrementCopies, ledger.ErrCounterUpdateFailed)
}

func (t *lockingTx) InsertBorrowingRecord(ctx context.Context, record ledger.BorrowingRecord) (int64, error) {
	sqlQuery, err := insertBorrowingRecord(record)
	if err != nil {
		return 0, err
	}

	var logID int64
	err = t.store.queryOne(ctx, t.tx, sqlQuery, actionInsertRecord, ledger.ErrStoreOperationFailed, &logID)

	return logID, err
}

func (t *lockingTx) FindBorrowingRecord(ctx context.Context, logID int64) (ledger.BorrowingRecord, error) {
	sqlQuery, err := selectBorrowingRecord(logID, false)
	if err != nil {
		return ledger.BorrowingRecord{}, err
	}

	return t.store.scanRecord(ctx, t.tx, sqlQuery, actionFindRecord)
}

func (t *lockingTx) LockBorrowingRecord(ctx context.Context, logID int64) (ledger.BorrowingRecord, error) {
	sqlQuery, err := selectBorrowingRecord(logID, true)
	if err != nil {
		return ledger.BorrowingRecord{}, err
	}

	return t.store.scanRecord(ctx, t.tx, sqlQuery, actionLockRecord)
}

func (t *lockingTx) MarkRecordReturned(ctx context.Context, logID int64, returnedAt time.Time) error {
	sqlQuery, err := updateRecordReturned(logID, returnedAt)
	if err != nil {
		return err
	}

	return t.store.execExactlyOne(ctx, t.tx, sqlQuery, actionMarkReturned, ledger.ErrAlreadyReturned)
}

func (t *lockingTx) InsertFine(ctx context.Context, fine ledger.Fine) (int64, error) {
	sqlQuery, err := insertFine(fine)
	if err != nil {
		return 0, err
	}

	var fineID int64
	err = t.store.queryOne(ctx, t.tx, sqlQuery, actionInsertFine, ledger.ErrStoreOperationFailed, &fineID)

	return fineID, err
}

func (t *lockingTx) LockFine(ctx context.Context, fineID int64) (ledger.Fine, error) {
	sqlQuery, err := selectFine(fineID, true)
	if err != nil {
		return ledger.Fine{}, err
	}

	fines, err := t.store.scanFines(ctx, t.tx, sqlQuery, actionLockFine)
	if err != nil {
		return ledger.Fine{}, err
	}

	if len(fines) == 0 {
		return ledger.Fine{}, ledger.ErrFineNotFound
	}

	return fines[0], nil
}

func (t *lockingTx) MarkFinePaid(ctx context.Context, fineID int64, paidAt time.Time) error {
	sqlQuery, err := updateFinePaid(fineID, paidAt)
	if err != nil {
		return err
	}

	return t.store.execExactlyOne(ctx, t.tx, sqlQuery, actionMarkFinePaid, ledger.ErrFineNotPayable)
}
