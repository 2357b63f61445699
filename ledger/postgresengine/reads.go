package postgresengine

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/ledger/postgresengine/internal/adapters"
)

// OutstandingFines returns all Unpaid fines of a member, newest first.
// It does not lock anything and is safe to restart.
func (s *Store) OutstandingFines(ctx context.Context, memberID int64) ([]ledger.Fine, error) {
	sqlQuery, err := selectOutstandingFines(memberID)
	if err != nil {
		return nil, err
	}

	return s.scanFines(ctx, s.db, sqlQuery, actionOutstanding)
}

// CurrentBorrowings returns the open (Borrowed or Overdue) records of a member joined with
// the book's ISBN and title, newest borrow first. The stored status is returned as is.
func (s *Store) CurrentBorrowings(ctx context.Context, memberID int64) ([]ledger.BorrowingRecord, error) {
	sqlQuery, err := selectCurrentBorrowings(memberID)
	if err != nil {
		return nil, err
	}

	return s.scanRecordsWithBook(ctx, s.db, sqlQuery, actionCurrent)
}

// FindBook reads a book by ISBN without locking it.
func (s *Store) FindBook(ctx context.Context, isbn string) (ledger.Book, error) {
	sqlQuery, err := selectBook(goqu.C(colISBN).Eq(isbn), false)
	if err != nil {
		return ledger.Book{}, err
	}

	var book ledger.Book
	err = s.queryOne(ctx, s.db, sqlQuery, actionFindBook, ledger.ErrBookNotFound,
		&book.ID, &book.ISBN, &book.Title, &book.PublicationYear, &book.TotalCopies, &book.AvailableCopies)

	return book, err
}

// FindMember reads a member by id without locking it.
func (s *Store) FindMember(ctx context.Context, memberID int64) (ledger.Member, error) {
	sqlQuery, err := selectMember(memberID, false)
	if err != nil {
		return ledger.Member{}, err
	}

	return s.scanMember(ctx, s.db, sqlQuery, actionFindMember)
}

// InsertAuthor stores an author and returns its id. An author with the same first and last name
// is not duplicated, its existing id is returned instead.
func (s *Store) InsertAuthor(ctx context.Context, author ledger.Author) (int64, error) {
	sqlQuery, err := upsertAuthor(author)
	if err != nil {
		return 0, err
	}

	var authorID int64
	err = s.runInTx(ctx, func(txCtx context.Context, dbTx adapters.DBTx) error {
		return s.queryOne(txCtx, dbTx, sqlQuery, actionUpsertAuthor, ledger.ErrStoreOperationFailed, &authorID)
	})

	return authorID, err
}

// InsertBook stores a book with available_copies = total_copies and links it to the given authors,
// all in one transaction. For an already known ISBN the existing id is returned and the copy
// counters stay untouched, the author links are still added.
func (s *Store) InsertBook(ctx context.Context, book ledger.Book, authorIDs ...int64) (int64, error) {
	bookQuery, err := upsertBook(book, s.now())
	if err != nil {
		return 0, err
	}

	var bookID int64
	err = s.runInTx(ctx, func(txCtx context.Context, dbTx adapters.DBTx) error {
		if queryErr := s.queryOne(txCtx, dbTx, bookQuery, actionUpsertBook, ledger.ErrStoreOperationFailed, &bookID); queryErr != nil {
			return queryErr
		}

		if len(authorIDs) == 0 {
			return nil
		}

		linkQuery, buildErr := linkBookAuthors(bookID, authorIDs)
		if buildErr != nil {
			return buildErr
		}

		if _, execErr := dbTx.Exec(txCtx, linkQuery); execErr != nil {
			return s.storeError(actionLinkAuthors, execErr, linkQuery)
		}

		return nil
	})

	return bookID, err
}

// InsertMember stores a member and returns its id. A member with an already known email is not
// duplicated, its existing id is returned instead.
func (s *Store) InsertMember(ctx context.Context, member ledger.Member) (int64, error) {
	sqlQuery, err := upsertMember(member)
	if err != nil {
		return 0, err
	}

	var memberID int64
	err = s.runInTx(ctx, func(txCtx context.Context, dbTx adapters.DBTx) error {
		return s.queryOne(txCtx, dbTx, sqlQuery, actionUpsertMember, ledger.ErrStoreOperationFailed, &memberID)
	})

	return memberID, err
}

// UpdateMemberStatus sets the membership status of a member.
func (s *Store) UpdateMemberStatus(ctx context.Context, memberID int64, status ledger.MemberStatus) error {
	sqlQuery, err := updateMemberStatus(memberID, status)
	if err != nil {
		return err
	}

	return s.runInTx(ctx, func(txCtx context.Context, dbTx adapters.DBTx) error {
		return s.execExactlyOne(txCtx, dbTx, sqlQuery, actionUpdateMember, ledger.ErrMemberNotFound)
	})
}
