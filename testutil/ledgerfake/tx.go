package ledgerfake

import (
	"context"
	"fmt"
	"time"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

// tx implements ledger.Tx on a private copy of the store state.
type tx struct {
	state *state
}

func (t *tx) trail(kind string, id int64) {
	t.state.lockTrail = append(t.state.lockTrail, fmt.Sprintf("%s:%d", kind, id))
}

func (t *tx) LockBookByISBN(_ context.Context, isbn string) (ledger.Book, error) {
	book, err := t.state.bookByISBN(isbn)
	if err != nil {
		return ledger.Book{}, err
	}

	t.trail("book", book.ID)

	return book, nil
}

func (t *tx) LockBook(_ context.Context, bookID int64) (ledger.Book, error) {
	book, ok := t.state.books[bookID]
	if !ok {
		return ledger.Book{}, ledger.ErrBookNotFound
	}

	t.trail("book", bookID)

	return book, nil
}

func (t *tx) LockMember(_ context.Context, memberID int64) (ledger.Member, error) {
	member, ok := t.state.members[memberID]
	if !ok {
		return ledger.Member{}, ledger.ErrMemberNotFound
	}

	t.trail("member", memberID)

	return member, nil
}

func (t *tx) CountActiveBorrowings(_ context.Context, memberID int64) (int, error) {
	count := 0
	for _, record := range t.state.records {
		if record.MemberID == memberID && record.Status.IsOpen() {
			count++
		}
	}

	return count, nil
}

func (t *tx) DecrementAvailableCopies(_ context.Context, bookID int64) error {
	book, ok := t.state.books[bookID]
	if !ok || book.AvailableCopies <= 0 {
		return ledger.ErrCounterUpdateFailed
	}

	book.AvailableCopies--
	t.state.books[bookID] = book

	return nil
}

func (t *tx) IncrementAvailableCopies(_ context.Context, bookID int64) error {
	book, ok := t.state.books[bookID]
	if !ok || book.AvailableCopies >= book.TotalCopies {
		return ledger.ErrCounterUpdateFailed
	}

	book.AvailableCopies++
	t.state.books[bookID] = book

	return nil
}

func (t *tx) InsertBorrowingRecord(_ context.Context, record ledger.BorrowingRecord) (int64, error) {
	record.ID = t.state.newID()
	t.state.records[record.ID] = record

	return record.ID, nil
}

func (t *tx) FindBorrowingRecord(_ context.Context, logID int64) (ledger.BorrowingRecord, error) {
	record, ok := t.state.records[logID]
	if !ok {
		return ledger.BorrowingRecord{}, ledger.ErrRecordNotFound
	}

	return record, nil
}

func (t *tx) LockBorrowingRecord(ctx context.Context, logID int64) (ledger.BorrowingRecord, error) {
	record, err := t.FindBorrowingRecord(ctx, logID)
	if err != nil {
		return ledger.BorrowingRecord{}, err
	}

	t.trail("record", logID)

	return record, nil
}

func (t *tx) MarkRecordReturned(_ context.Context, logID int64, returnedAt time.Time) error {
	record, ok := t.state.records[logID]
	if !ok || !record.Status.IsOpen() {
		return ledger.ErrAlreadyReturned
	}

	record.Status = ledger.RecordReturned
	record.ReturnDate = &returnedAt
	t.state.records[logID] = record

	return nil
}

func (t *tx) InsertFine(_ context.Context, fine ledger.Fine) (int64, error) {
	for _, existing := range t.state.fines {
		if existing.LogID == fine.LogID {
			return 0, fmt.Errorf("%w: fine for record %d exists", ledger.ErrStoreOperationFailed, fine.LogID)
		}
	}

	fine.ID = t.state.newID()
	t.state.fines[fine.ID] = fine

	return fine.ID, nil
}

func (t *tx) LockFine(_ context.Context, fineID int64) (ledger.Fine, error) {
	fine, ok := t.state.fines[fineID]
	if !ok {
		return ledger.Fine{}, ledger.ErrFineNotFound
	}

	t.trail("fine", fineID)

	return fine, nil
}

func (t *tx) MarkFinePaid(_ context.Context, fineID int64, paidAt time.Time) error {
	fine, ok := t.state.fines[fineID]
	if !ok || fine.Status != ledger.FineUnpaid {
		return ledger.ErrFineNotPayable
	}

	fine.Status = ledger.FinePaid
	fine.PaymentDate = &paidAt
	t.state.fines[fineID] = fine

	return nil
}
