package postgresengine_test

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lending-ledger-go/ledger/postgresengine"
)

var (
	fixedNow   = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	fixedClock = func() time.Time { return fixedNow }
)

const (
	lockBookPattern     = `FROM "books" WHERE .+ FOR UPDATE`
	lockMemberPattern   = `FROM "members" WHERE .+ FOR UPDATE`
	countPattern        = `SELECT COUNT\(\*\) FROM "borrowing_records"`
	decrementPattern    = `UPDATE "books" SET .+available_copies - 1`
	incrementPattern    = `UPDATE "books" SET .+available_copies \+ 1`
	insertRecordPattern = `INSERT INTO "borrowing_records" .+ RETURNING "log_id"`
	findRecordPattern   = `FROM "borrowing_records" WHERE .+log_id`
	lockRecordPattern   = `FROM "borrowing_records" WHERE .+ FOR UPDATE`
	markReturnedPattern = `UPDATE "borrowing_records" SET .+'Returned'`
	lockFinePattern     = `FROM "fines" WHERE .+ FOR UPDATE`
	markPaidPattern     = `UPDATE "fines" SET .+'Paid'`
)

// setupSQLMockStore creates a Store over a sqlmock database. Lock timeouts are disabled unless options enable them.
func setupSQLMockStore(t *testing.T, options ...postgresengine.Option) (*postgresengine.Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	options = append([]postgresengine.Option{postgresengine.WithLockTimeout(0), postgresengine.WithClock(fixedClock)}, options...)
	store, err := postgresengine.NewStoreFromSQLDB(db, options...)
	require.NoError(t, err)

	return store, mock
}

func bookRows(bookID int64, isbn string, total, available int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"book_id", "isbn", "title", "publication_year", "total_copies", "available_copies"}).
		AddRow(bookID, isbn, "Clean Code", int64(2008), total, available)
}

func memberRows(memberID int64, status string, limit int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"member_id", "first_name", "last_name", "email", "phone", "address", "status", "borrowing_limit", "membership_date",
	}).AddRow(memberID, "Ada", "Lovelace", "ada@example.org", "", "", status, limit, fixedNow.AddDate(-1, 0, 0))
}

func countRows(n int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count"}).AddRow(n)
}

func idRows(column string, id int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{column}).AddRow(id)
}

func recordRows(logID, memberID, bookID int64, borrowDate, dueDate time.Time, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"log_id", "member_id", "book_id", "borrow_date", "due_date", "return_date", "status"}).
		AddRow(logID, memberID, bookID, borrowDate, dueDate, nil, status)
}

func fineRows(fineID, logID, memberID int64, amount string, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"fine_id", "log_id", "member_id", "amount", "rate_per_day", "days_overdue", "status", "fine_date", "payment_date",
	}).AddRow(fineID, logID, memberID, amount, "0.50", int64(3), status, fixedNow.AddDate(0, 0, -1), nil)
}
