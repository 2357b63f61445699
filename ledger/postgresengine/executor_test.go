package postgresengine_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/ledger/postgresengine"
	"github.com/AntonStoeckl/lending-ledger-go/testutil/spy"
)

func Test_RunInTx_CommitsWhenWorkSucceeds(t *testing.T) {
	// setup
	metricsSpy := spy.NewMetricsCollectorSpy()
	store, mock := setupSQLMockStore(t, postgresengine.WithLockTimeout(250*time.Millisecond), postgresengine.WithMetrics(metricsSpy))

	// arrange
	mock.ExpectBegin()
	mock.ExpectExec(`SET LOCAL lock_timeout = '250ms'`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(lockBookPattern).WillReturnRows(bookRows(1, "978-0132350884", 2, 2))
	mock.ExpectCommit()

	// act
	var locked ledger.Book
	err := store.RunInTx(context.Background(), func(ctx context.Context, tx ledger.Tx) error {
		var lockErr error
		locked, lockErr = tx.LockBook(ctx, 1)

		return lockErr
	})

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, locked.AvailableCopies)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.True(t, metricsSpy.HasDuration(postgresengine.TransactionDurationMetric, map[string]string{"status": "committed"}))
}

func Test_RunInTx_RollsBackAndReturnsWorkError(t *testing.T) {
	// setup
	store, mock := setupSQLMockStore(t)
	workErr := errors.Join(ledger.ErrBookNotAvailable, errors.New("no copy left"))

	// arrange
	mock.ExpectBegin()
	mock.ExpectRollback()

	// act
	err := store.RunInTx(context.Background(), func(context.Context, ledger.Tx) error {
		return workErr
	})

	// assert
	assert.Equal(t, workErr, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_RunInTx_RollsBackAndRepanics(t *testing.T) {
	// setup
	store, mock := setupSQLMockStore(t)

	// arrange
	mock.ExpectBegin()
	mock.ExpectRollback()

	// act + assert
	assert.PanicsWithValue(t, "boom", func() {
		_ = store.RunInTx(context.Background(), func(context.Context, ledger.Tx) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_RunInTx_BeginFailureIsUnavailableBeforeBegin(t *testing.T) {
	// setup
	metricsSpy := spy.NewMetricsCollectorSpy()
	store, mock := setupSQLMockStore(t, postgresengine.WithMetrics(metricsSpy))

	// arrange
	mock.ExpectBegin().WillReturnError(errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"))

	// act
	err := store.RunInTx(context.Background(), func(context.Context, ledger.Tx) error {
		t.Fatal("work must not run without a transaction")
		return nil
	})

	// assert
	assert.ErrorIs(t, err, ledger.ErrStoreUnavailable)
	assert.ErrorIs(t, err, ledger.ErrBeginTransactionFailed)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 1, metricsSpy.CounterCount(postgresengine.StoreErrorsMetric, map[string]string{"action": "begin"}))
}

func Test_RunInTx_CanceledContextDoesNotBegin(t *testing.T) {
	// setup
	store, mock := setupSQLMockStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// act
	err := store.RunInTx(ctx, func(context.Context, ledger.Tx) error {
		t.Fatal("work must not run for a canceled context")
		return nil
	})

	// assert
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_RunInTx_CommitFailureIsClassified(t *testing.T) {
	// setup
	store, mock := setupSQLMockStore(t)

	// arrange
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(&pq.Error{Code: "40001", Message: "could not serialize access"})

	// act
	err := store.RunInTx(context.Background(), func(context.Context, ledger.Tx) error { return nil })

	// assert
	assert.ErrorIs(t, err, ledger.ErrCommitFailed)
	assert.ErrorIs(t, err, ledger.ErrTransientStoreConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_RunInTx_StatementConflictRollsBack(t *testing.T) {
	// setup
	metricsSpy := spy.NewMetricsCollectorSpy()
	logSpy := spy.NewLogHandlerSpy(false)
	store, mock := setupSQLMockStore(t, postgresengine.WithMetrics(metricsSpy), postgresengine.WithLogger(logSpy.Logger()))

	// arrange
	mock.ExpectBegin()
	mock.ExpectQuery(lockBookPattern).WillReturnError(&pq.Error{Code: "55P03", Message: "canceling statement due to lock timeout"})
	mock.ExpectRollback()

	// act
	err := store.RunInTx(context.Background(), func(ctx context.Context, tx ledger.Tx) error {
		_, lockErr := tx.LockBook(ctx, 1)
		return lockErr
	})

	// assert
	assert.ErrorIs(t, err, ledger.ErrTransientStoreConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 1, metricsSpy.CounterCount(postgresengine.ConflictsMetric, map[string]string{"action": "lock_book"}))
	assert.True(t, metricsSpy.HasDuration(postgresengine.TransactionDurationMetric, map[string]string{"status": "rolled_back"}))
	assert.True(t, logSpy.HasLogWithAttr(slog.LevelWarn, "concurrency conflict detected", "sql_state", "55P03"))
}

func Test_RunInTx_LockTimeoutStatementFailureRollsBack(t *testing.T) {
	// setup
	store, mock := setupSQLMockStore(t, postgresengine.WithLockTimeout(time.Second))

	// arrange
	mock.ExpectBegin()
	mock.ExpectExec(`SET LOCAL lock_timeout = '1000ms'`).WillReturnError(&pq.Error{Code: "57P01", Message: "terminating connection"})
	mock.ExpectRollback()

	// act
	err := store.RunInTx(context.Background(), func(context.Context, ledger.Tx) error {
		t.Fatal("work must not run when the lock timeout could not be set")
		return nil
	})

	// assert
	assert.ErrorIs(t, err, ledger.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ledger.ErrBeginTransactionFailed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_NewStore_RejectsInvalidConfiguration(t *testing.T) {
	// act
	_, nilErr := postgresengine.NewStoreFromSQLDB(nil)
	_, nilPoolErr := postgresengine.NewStoreFromPGXPool(nil)

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	_, negativeErr := postgresengine.NewStoreFromSQLDB(db, postgresengine.WithLockTimeout(-time.Second))

	// assert
	assert.ErrorIs(t, nilErr, ledger.ErrNilDatabaseConnection)
	assert.ErrorIs(t, nilPoolErr, ledger.ErrNilDatabaseConnection)
	assert.ErrorIs(t, negativeErr, ledger.ErrNegativeLockTimeout)
}
