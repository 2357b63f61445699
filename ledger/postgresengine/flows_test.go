package postgresengine_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/ledger/postgresengine"
	"github.com/AntonStoeckl/lending-ledger-go/lending"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shell"
)

func setupSQLMockEngine(t *testing.T) (*lending.Engine, sqlmock.Sqlmock) {
	t.Helper()

	store, mock := setupSQLMockStore(t)
	engine, err := lending.NewEngine(store,
		lending.WithClock(fixedClock),
		lending.WithRetryOptions(shell.WithMaxAttempts(1)),
	)
	require.NoError(t, err)

	return engine, mock
}

func Test_Borrow_CommitsLockedDecrementAndRecord(t *testing.T) {
	// setup
	engine, mock := setupSQLMockEngine(t)

	// arrange
	mock.ExpectBegin()
	mock.ExpectQuery(lockBookPattern).WillReturnRows(bookRows(1, "978-0132350884", 1, 1))
	mock.ExpectQuery(lockMemberPattern).WillReturnRows(memberRows(2, "Active", 5))
	mock.ExpectQuery(countPattern).WillReturnRows(countRows(0))
	mock.ExpectExec(decrementPattern).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(insertRecordPattern).WillReturnRows(idRows("log_id", 7))
	mock.ExpectCommit()

	// act
	result, err := engine.Borrow(context.Background(), "978-0132350884", 2, 0)

	// assert
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.LogID)
	assert.Equal(t, fixedNow, result.BorrowDate)
	assert.Equal(t, time.Date(2024, time.March, 24, 0, 0, 0, 0, time.UTC), result.DueDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_Borrow_RollsBackWhenRecordInsertFails(t *testing.T) {
	// setup
	engine, mock := setupSQLMockEngine(t)

	// arrange
	mock.ExpectBegin()
	mock.ExpectQuery(lockBookPattern).WillReturnRows(bookRows(1, "978-0132350884", 1, 1))
	mock.ExpectQuery(lockMemberPattern).WillReturnRows(memberRows(2, "Active", 5))
	mock.ExpectQuery(countPattern).WillReturnRows(countRows(0))
	mock.ExpectExec(decrementPattern).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(insertRecordPattern).WillReturnError(&pq.Error{Code: "23503", Message: "violates foreign key constraint"})
	mock.ExpectRollback()

	// act
	_, err := engine.Borrow(context.Background(), "978-0132350884", 2, 0)

	// assert
	assert.ErrorIs(t, err, ledger.ErrStoreOperationFailed)
	assert.NoError(t, mock.ExpectationsWereMet(), "the decrement must be rolled back, not committed")
}

func Test_Borrow_RejectsWithoutWriting(t *testing.T) {
	tests := map[string]struct {
		available   int64
		status      string
		active      int64
		expectedErr error
	}{
		"no copy available": {0, "Active", 0, ledger.ErrBookNotAvailable},
		"member suspended":  {1, "Suspended", 0, ledger.ErrMemberNotActive},
		"limit reached":     {1, "Active", 5, ledger.ErrBorrowLimitExceeded},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			// setup
			engine, mock := setupSQLMockEngine(t)

			// arrange
			mock.ExpectBegin()
			mock.ExpectQuery(lockBookPattern).WillReturnRows(bookRows(1, "978-0132350884", 1, tc.available))
			mock.ExpectQuery(lockMemberPattern).WillReturnRows(memberRows(2, tc.status, 5))
			mock.ExpectQuery(countPattern).WillReturnRows(countRows(tc.active))
			mock.ExpectRollback()

			// act
			_, err := engine.Borrow(context.Background(), "978-0132350884", 2, 0)

			// assert
			assert.ErrorIs(t, err, tc.expectedErr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func Test_Borrow_UnknownBookDoesNotLockMember(t *testing.T) {
	// setup
	engine, mock := setupSQLMockEngine(t)

	// arrange
	mock.ExpectBegin()
	mock.ExpectQuery(lockBookPattern).WillReturnRows(sqlmock.NewRows([]string{"book_id"}))
	mock.ExpectRollback()

	// act
	_, err := engine.Borrow(context.Background(), "000", 2, 0)

	// assert
	assert.ErrorIs(t, err, ledger.ErrBookNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_Return_OverdueChargesFineInSameTransaction(t *testing.T) {
	// setup
	engine, mock := setupSQLMockEngine(t)
	borrowed := fixedNow.AddDate(0, 0, -17)
	due := fixedNow.AddDate(0, 0, -3)

	// arrange
	mock.ExpectBegin()
	mock.ExpectQuery(findRecordPattern).WillReturnRows(recordRows(7, 2, 1, borrowed, due, "Borrowed"))
	mock.ExpectQuery(lockBookPattern).WillReturnRows(bookRows(1, "978-0132350884", 1, 0))
	mock.ExpectQuery(lockRecordPattern).WillReturnRows(recordRows(7, 2, 1, borrowed, due, "Borrowed"))
	mock.ExpectExec(incrementPattern).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(markReturnedPattern).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "fines" .+'1\.50'::numeric.+RETURNING "fine_id"`).WillReturnRows(idRows("fine_id", 3))
	mock.ExpectCommit()

	// act
	result, err := engine.Return(context.Background(), 7)

	// assert
	require.NoError(t, err)
	assert.True(t, result.FineCharged)
	require.NotNil(t, result.FineID)
	assert.Equal(t, int64(3), *result.FineID)
	assert.Equal(t, 3, result.DaysOverdue)
	assert.True(t, result.FineAmount.Equal(decimal.RequireFromString("1.50")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_Return_AlreadyReturnedWritesNothing(t *testing.T) {
	// setup
	engine, mock := setupSQLMockEngine(t)
	borrowed := fixedNow.AddDate(0, 0, -5)

	// arrange
	mock.ExpectBegin()
	mock.ExpectQuery(findRecordPattern).WillReturnRows(recordRows(7, 2, 1, borrowed, fixedNow, "Returned"))
	mock.ExpectQuery(lockBookPattern).WillReturnRows(bookRows(1, "978-0132350884", 1, 1))
	mock.ExpectQuery(lockRecordPattern).WillReturnRows(recordRows(7, 2, 1, borrowed, fixedNow, "Returned"))
	mock.ExpectRollback()

	// act
	_, err := engine.Return(context.Background(), 7)

	// assert
	assert.ErrorIs(t, err, ledger.ErrAlreadyReturned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_PayFine_MarksUnpaidFinePaid(t *testing.T) {
	// setup
	engine, mock := setupSQLMockEngine(t)

	// arrange
	mock.ExpectBegin()
	mock.ExpectQuery(lockFinePattern).WillReturnRows(fineRows(3, 7, 2, "1.50", "Unpaid"))
	mock.ExpectExec(markPaidPattern).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// act
	result, err := engine.PayFine(context.Background(), 3)

	// assert
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.FineID)
	assert.Equal(t, "1.50", result.Amount.StringFixed(2))
	assert.Equal(t, fixedNow, result.PaymentDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_PayFine_PaidFineIsNotPayable(t *testing.T) {
	// setup
	engine, mock := setupSQLMockEngine(t)

	// arrange
	mock.ExpectBegin()
	mock.ExpectQuery(lockFinePattern).WillReturnRows(fineRows(3, 7, 2, "1.50", "Paid"))
	mock.ExpectRollback()

	// act
	_, err := engine.PayFine(context.Background(), 3)

	// assert
	assert.ErrorIs(t, err, ledger.ErrFineNotPayable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_OutstandingFines_ReadsWithoutTransaction(t *testing.T) {
	// setup
	store, mock := setupSQLMockStore(t)

	// arrange
	rows := fineRows(3, 7, 2, "1.50", "Unpaid")
	rows.AddRow(int64(4), int64(8), int64(2), "0.50", "0.50", int64(1), "Unpaid", fixedNow.AddDate(0, 0, -2), nil)
	mock.ExpectQuery(`FROM "fines" WHERE .+'Unpaid'.+ORDER BY "fine_date" DESC`).WillReturnRows(rows)

	// act
	fines, err := store.OutstandingFines(context.Background(), 2)

	// assert
	require.NoError(t, err)
	require.Len(t, fines, 2)
	assert.Equal(t, "1.50", fines[0].Amount.StringFixed(2))
	assert.Equal(t, ledger.FineUnpaid, fines[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_UpdateMemberStatus_UnknownMember(t *testing.T) {
	// setup
	store, mock := setupSQLMockStore(t)

	// arrange
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "members" SET "status"='Suspended'`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	// act
	err := store.UpdateMemberStatus(context.Background(), 99, ledger.MemberSuspended)

	// assert
	assert.ErrorIs(t, err, ledger.ErrMemberNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

var _ lending.Store = (*postgresengine.Store)(nil)
