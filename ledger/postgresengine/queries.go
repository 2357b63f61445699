package postgresengine

import (
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

const (
	dialectPostgres = "postgres"

	tableAuthors          = "authors"
	tableBooks            = "books"
	tableBookAuthors      = "book_authors"
	tableMembers          = "members"
	tableBorrowingRecords = "borrowing_records"
	tableFines            = "fines"

	colAuthorID        = "author_id"
	colFirstName       = "first_name"
	colLastName        = "last_name"
	colBookID          = "book_id"
	colISBN            = "isbn"
	colTitle           = "title"
	colPublicationYear = "publication_year"
	colTotalCopies     = "total_copies"
	colAvailableCopies = "available_copies"
	colCreatedAt       = "created_at"
	colMemberID        = "member_id"
	colEmail           = "email"
	colPhone           = "phone"
	colAddress         = "address"
	colStatus          = "status"
	colBorrowingLimit  = "borrowing_limit"
	colMembershipDate  = "membership_date"
	colLogID           = "log_id"
	colBorrowDate      = "borrow_date"
	colDueDate         = "due_date"
	colReturnDate      = "return_date"
	colFineID          = "fine_id"
	colAmount          = "amount"
	colRatePerDay      = "rate_per_day"
	colDaysOverdue     = "days_overdue"
	colFineDate        = "fine_date"
	colPaymentDate     = "payment_date"

	castNumeric       = "?::numeric"
	exprDecrement     = "available_copies - 1"
	exprIncrement     = "available_copies + 1"
	exprExcludedISBN  = "EXCLUDED.isbn"
	exprExcludedEmail = "EXCLUDED.email"
	exprExcludedLast  = "EXCLUDED.last_name"
	conflictAuthor    = "first_name,last_name"
)

var builder = goqu.Dialect(dialectPostgres)

func bookColumns() []any {
	return []any{
		colBookID,
		colISBN,
		colTitle,
		goqu.COALESCE(goqu.C(colPublicationYear), 0).As(colPublicationYear),
		colTotalCopies,
		colAvailableCopies,
	}
}

func memberColumns() []any {
	return []any{
		colMemberID,
		colFirstName,
		colLastName,
		colEmail,
		goqu.COALESCE(goqu.C(colPhone), "").As(colPhone),
		goqu.COALESCE(goqu.C(colAddress), "").As(colAddress),
		colStatus,
		colBorrowingLimit,
		colMembershipDate,
	}
}

func recordColumns(table string) []any {
	return []any{
		goqu.T(table).Col(colLogID),
		goqu.T(table).Col(colMemberID),
		goqu.T(table).Col(colBookID),
		goqu.T(table).Col(colBorrowDate),
		goqu.T(table).Col(colDueDate),
		goqu.T(table).Col(colReturnDate),
		goqu.T(table).Col(colStatus),
	}
}

func fineColumns() []any {
	return []any{
		colFineID,
		colLogID,
		colMemberID,
		goqu.Cast(goqu.C(colAmount), "TEXT").As(colAmount),
		goqu.Cast(goqu.C(colRatePerDay), "TEXT").As(colRatePerDay),
		colDaysOverdue,
		colStatus,
		colFineDate,
		colPaymentDate,
	}
}

func toSQL(ds interface{ ToSQL() (string, []any, error) }) (string, error) {
	sqlQuery, _, err := ds.ToSQL()
	if err != nil {
		return "", errors.Join(ledger.ErrStoreOperationFailed, fmt.Errorf("building query failed: %w", err))
	}

	return sqlQuery, nil
}

func selectBook(where exp.Expression, forUpdate bool) (string, error) {
	ds := builder.From(tableBooks).Select(bookColumns()...).Where(where)
	if forUpdate {
		ds = ds.ForUpdate(exp.Wait)
	}

	return toSQL(ds)
}

func selectMember(memberID int64, forUpdate bool) (string, error) {
	ds := builder.From(tableMembers).Select(memberColumns()...).Where(goqu.C(colMemberID).Eq(memberID))
	if forUpdate {
		ds = ds.ForUpdate(exp.Wait)
	}

	return toSQL(ds)
}

func countActiveBorrowings(memberID int64) (string, error) {
	return toSQL(
		builder.From(tableBorrowingRecords).
			Select(goqu.COUNT(goqu.Star())).
			Where(
				goqu.C(colMemberID).Eq(memberID),
				goqu.C(colStatus).In(string(ledger.RecordBorrowed), string(ledger.RecordOverdue)),
			),
	)
}

func updateCopies(bookID int64, decrement bool) (string, error) {
	if decrement {
		return toSQL(
			builder.Update(tableBooks).
				Set(goqu.Record{colAvailableCopies: goqu.L(exprDecrement)}).
				Where(goqu.C(colBookID).Eq(bookID), goqu.C(colAvailableCopies).Gt(0)),
		)
	}

	return toSQL(
		builder.Update(tableBooks).
			Set(goqu.Record{colAvailableCopies: goqu.L(exprIncrement)}).
			Where(goqu.C(colBookID).Eq(bookID), goqu.C(colAvailableCopies).Lt(goqu.C(colTotalCopies))),
	)
}

func insertBorrowingRecord(record ledger.BorrowingRecord) (string, error) {
	return toSQL(
		builder.Insert(tableBorrowingRecords).
			Rows(goqu.Record{
				colMemberID:   record.MemberID,
				colBookID:     record.BookID,
				colBorrowDate: record.BorrowDate.UTC(),
				colDueDate:    record.DueDate.UTC(),
				colStatus:     string(record.Status),
			}).
			Returning(colLogID),
	)
}

func selectBorrowingRecord(logID int64, forUpdate bool) (string, error) {
	ds := builder.From(tableBorrowingRecords).
		Select(recordColumns(tableBorrowingRecords)...).
		Where(goqu.C(colLogID).Eq(logID))
	if forUpdate {
		ds = ds.ForUpdate(exp.Wait)
	}

	return toSQL(ds)
}

func updateRecordReturned(logID int64, returnedAt time.Time) (string, error) {
	return toSQL(
		builder.Update(tableBorrowingRecords).
			Set(goqu.Record{
				colReturnDate: returnedAt.UTC(),
				colStatus:     string(ledger.RecordReturned),
			}).
			Where(
				goqu.C(colLogID).Eq(logID),
				goqu.C(colStatus).In(string(ledger.RecordBorrowed), string(ledger.RecordOverdue)),
			),
	)
}

func insertFine(fine ledger.Fine) (string, error) {
	return toSQL(
		builder.Insert(tableFines).
			Rows(goqu.Record{
				colLogID:       fine.LogID,
				colMemberID:    fine.MemberID,
				colAmount:      goqu.L(castNumeric, fine.Amount.StringFixed(2)),
				colRatePerDay:  goqu.L(castNumeric, fine.RatePerDay.StringFixed(2)),
				colDaysOverdue: fine.DaysOverdue,
				colStatus:      string(fine.Status),
				colFineDate:    fine.FineDate.UTC(),
			}).
			Returning(colFineID),
	)
}

func selectFine(fineID int64, forUpdate bool) (string, error) {
	ds := builder.From(tableFines).Select(fineColumns()...).Where(goqu.C(colFineID).Eq(fineID))
	if forUpdate {
		ds = ds.ForUpdate(exp.Wait)
	}

	return toSQL(ds)
}

func updateFinePaid(fineID int64, paidAt time.Time) (string, error) {
	return toSQL(
		builder.Update(tableFines).
			Set(goqu.Record{
				colStatus:      string(ledger.FinePaid),
				colPaymentDate: paidAt.UTC(),
			}).
			Where(goqu.C(colFineID).Eq(fineID), goqu.C(colStatus).Eq(string(ledger.FineUnpaid))),
	)
}

func selectOutstandingFines(memberID int64) (string, error) {
	return toSQL(
		builder.From(tableFines).
			Select(fineColumns()...).
			Where(goqu.C(colMemberID).Eq(memberID), goqu.C(colStatus).Eq(string(ledger.FineUnpaid))).
			Order(goqu.C(colFineDate).Desc(), goqu.C(colFineID).Desc()),
	)
}

func selectCurrentBorrowings(memberID int64) (string, error) {
	columns := recordColumns(tableBorrowingRecords)
	columns = append(columns, goqu.T(tableBooks).Col(colISBN), goqu.T(tableBooks).Col(colTitle))

	return toSQL(
		builder.From(tableBorrowingRecords).
			Join(goqu.T(tableBooks), goqu.On(goqu.T(tableBooks).Col(colBookID).Eq(goqu.T(tableBorrowingRecords).Col(colBookID)))).
			Select(columns...).
			Where(
				goqu.T(tableBorrowingRecords).Col(colMemberID).Eq(memberID),
				goqu.T(tableBorrowingRecords).Col(colStatus).In(string(ledger.RecordBorrowed), string(ledger.RecordOverdue)),
			).
			Order(goqu.T(tableBorrowingRecords).Col(colBorrowDate).Desc(), goqu.T(tableBorrowingRecords).Col(colLogID).Desc()),
	)
}

func upsertAuthor(author ledger.Author) (string, error) {
	return toSQL(
		builder.Insert(tableAuthors).
			Rows(goqu.Record{colFirstName: author.FirstName, colLastName: author.LastName}).
			OnConflict(goqu.DoUpdate(conflictAuthor, goqu.Record{colLastName: goqu.L(exprExcludedLast)})).
			Returning(colAuthorID),
	)
}

func upsertBook(book ledger.Book, createdAt time.Time) (string, error) {
	var publicationYear any
	if book.PublicationYear > 0 {
		publicationYear = book.PublicationYear
	}

	return toSQL(
		builder.Insert(tableBooks).
			Rows(goqu.Record{
				colISBN:            book.ISBN,
				colTitle:           book.Title,
				colPublicationYear: publicationYear,
				colTotalCopies:     book.TotalCopies,
				colAvailableCopies: book.TotalCopies,
				colCreatedAt:       createdAt.UTC(),
			}).
			OnConflict(goqu.DoUpdate(colISBN, goqu.Record{colISBN: goqu.L(exprExcludedISBN)})).
			Returning(colBookID),
	)
}

func linkBookAuthors(bookID int64, authorIDs []int64) (string, error) {
	rows := make([]any, 0, len(authorIDs))
	for _, authorID := range authorIDs {
		rows = append(rows, goqu.Record{colBookID: bookID, colAuthorID: authorID})
	}

	return toSQL(
		builder.Insert(tableBookAuthors).
			Rows(rows...).
			OnConflict(goqu.DoNothing()),
	)
}

func upsertMember(member ledger.Member) (string, error) {
	return toSQL(
		builder.Insert(tableMembers).
			Rows(goqu.Record{
				colFirstName:      member.FirstName,
				colLastName:       member.LastName,
				colEmail:          member.Email,
				colPhone:          nullIfEmpty(member.Phone),
				colAddress:        nullIfEmpty(member.Address),
				colStatus:         string(member.Status),
				colBorrowingLimit: member.BorrowingLimit,
				colMembershipDate: member.MembershipDate.UTC(),
			}).
			OnConflict(goqu.DoUpdate(colEmail, goqu.Record{colEmail: goqu.L(exprExcludedEmail)})).
			Returning(colMemberID),
	)
}

func updateMemberStatus(memberID int64, status ledger.MemberStatus) (string, error) {
	return toSQL(
		builder.Update(tableMembers).
			Set(goqu.Record{colStatus: string(status)}).
			Where(goqu.C(colMemberID).Eq(memberID)),
	)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}

	return s
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.Join(ledger.ErrStoreOperationFailed, fmt.Errorf("parsing numeric %q failed: %w", raw, err))
	}

	return d, nil
}
