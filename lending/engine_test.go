package lending_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/lending"
	"github.com/AntonStoeckl/lending-ledger-go/lending/shell"
	"github.com/AntonStoeckl/lending-ledger-go/testutil/ledgerfake"
	"github.com/AntonStoeckl/lending-ledger-go/testutil/spy"
)

const isbn = "978-0132350884"

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func setupEngine(t *testing.T, options ...lending.Option) (*lending.Engine, *ledgerfake.Store, *testClock, int64, int64) {
	t.Helper()

	store := ledgerfake.NewStore()
	bookID := store.AddBook(ledger.Book{ISBN: isbn, Title: "Clean Code", TotalCopies: 1, AvailableCopies: 1})
	memberID := store.AddMember(ledger.Member{Email: "ada@example.org", Status: ledger.MemberActive, BorrowingLimit: 5})

	clock := &testClock{now: time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)}
	options = append([]lending.Option{lending.WithClock(clock.Now)}, options...)

	engine, err := lending.NewEngine(store, options...)
	require.NoError(t, err)

	return engine, store, clock, bookID, memberID
}

func Test_Engine_BorrowReturnPay_FullLifecycle(t *testing.T) {
	// setup
	engine, store, clock, bookID, memberID := setupEngine(t)
	ctx := context.Background()

	// act
	borrowed, err := engine.Borrow(ctx, isbn, memberID, 0)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 29, 0, 0, 0, 0, time.UTC), borrowed.DueDate)

	clock.now = time.Date(2024, time.January, 30, 0, 0, 0, 0, time.UTC)
	current, err := engine.GetCurrentBorrowings(ctx, memberID)
	require.NoError(t, err)

	returned, err := engine.Return(ctx, borrowed.LogID)
	require.NoError(t, err)

	fines, err := engine.GetOutstandingFines(ctx, memberID)
	require.NoError(t, err)

	paid, err := engine.PayFine(ctx, *returned.FineID)
	require.NoError(t, err)

	finesAfterPayment, err := engine.GetOutstandingFines(ctx, memberID)
	require.NoError(t, err)

	// assert
	require.Len(t, current, 1)
	assert.Equal(t, ledger.RecordOverdue, current[0].Status)

	assert.True(t, returned.FineCharged)
	assert.Equal(t, 1, returned.DaysOverdue)
	assert.True(t, returned.FineAmount.Equal(decimal.RequireFromString("0.50")))

	require.Len(t, fines, 1)
	assert.Equal(t, *returned.FineID, fines[0].ID)

	assert.Equal(t, clock.now, paid.PaymentDate)
	assert.Empty(t, finesAfterPayment)
	assert.Equal(t, 1, store.Book(bookID).AvailableCopies)
}

func Test_Engine_Return_OnTime_CreatesNoFine(t *testing.T) {
	// setup
	engine, store, clock, _, memberID := setupEngine(t)
	ctx := context.Background()

	borrowed, err := engine.Borrow(ctx, isbn, memberID, 0)
	require.NoError(t, err)

	// act
	clock.now = borrowed.DueDate
	returned, err := engine.Return(ctx, borrowed.LogID)

	// assert
	require.NoError(t, err)
	assert.False(t, returned.FineCharged)
	assert.Equal(t, 0, store.FineCount())
}

func Test_Engine_Return_LaterOnTheDueDate_CreatesNoFine(t *testing.T) {
	// setup
	engine, store, clock, _, memberID := setupEngine(t)
	ctx := context.Background()

	// arrange
	clock.now = time.Date(2024, time.January, 15, 9, 30, 0, 0, time.UTC)
	borrowed, err := engine.Borrow(ctx, isbn, memberID, 14)
	require.NoError(t, err)

	// act
	clock.now = time.Date(2024, time.January, 29, 17, 0, 0, 0, time.UTC)
	current, err := engine.GetCurrentBorrowings(ctx, memberID)
	require.NoError(t, err)
	returned, err := engine.Return(ctx, borrowed.LogID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 29, 0, 0, 0, 0, time.UTC), borrowed.DueDate)
	require.Len(t, current, 1)
	assert.Equal(t, ledger.RecordBorrowed, current[0].Status)
	assert.False(t, returned.FineCharged)
	assert.Nil(t, returned.FineID)
	assert.Equal(t, 0, store.FineCount())
}

func Test_Engine_Return_JustAfterMidnight_ChargesOneDay(t *testing.T) {
	// setup
	engine, _, clock, _, memberID := setupEngine(t)
	ctx := context.Background()

	// arrange
	clock.now = time.Date(2024, time.January, 15, 9, 30, 0, 0, time.UTC)
	borrowed, err := engine.Borrow(ctx, isbn, memberID, 14)
	require.NoError(t, err)

	// act
	clock.now = time.Date(2024, time.January, 30, 0, 1, 0, 0, time.UTC)
	current, err := engine.GetCurrentBorrowings(ctx, memberID)
	require.NoError(t, err)
	returned, err := engine.Return(ctx, borrowed.LogID)

	// assert
	require.NoError(t, err)
	require.Len(t, current, 1)
	assert.Equal(t, ledger.RecordOverdue, current[0].Status)
	assert.True(t, returned.FineCharged)
	assert.Equal(t, 1, returned.DaysOverdue)
	assert.True(t, returned.FineAmount.Equal(decimal.RequireFromString("0.50")))
}

func Test_Engine_UsesConfiguredPolicy(t *testing.T) {
	// setup
	policy := ledger.Policy{BorrowingPeriodDays: 7, BorrowingLimit: 5, FineRatePerDay: decimal.RequireFromString("1.25")}
	engine, _, clock, _, memberID := setupEngine(t, lending.WithPolicy(policy))
	ctx := context.Background()

	// act
	borrowed, err := engine.Borrow(ctx, isbn, memberID, 0)
	require.NoError(t, err)

	clock.now = borrowed.DueDate.AddDate(0, 0, 2)
	returned, err := engine.Return(ctx, borrowed.LogID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, borrowed.BorrowDate.AddDate(0, 0, 7), borrowed.DueDate)
	assert.True(t, returned.FineAmount.Equal(decimal.RequireFromString("2.50")))
}

func Test_Engine_RecordsLogsAndMetrics(t *testing.T) {
	// setup
	logSpy := spy.NewLogHandlerSpy(false)
	metricsSpy := spy.NewMetricsCollectorSpy()
	engine, _, _, _, memberID := setupEngine(t, lending.WithLogger(logSpy.Logger()), lending.WithMetrics(metricsSpy))
	ctx := context.Background()

	// act
	_, err := engine.Borrow(ctx, isbn, memberID, 0)
	require.NoError(t, err)
	_, err = engine.Borrow(ctx, isbn, memberID, 0)
	require.ErrorIs(t, err, ledger.ErrBookNotAvailable)
	_, err = engine.GetOutstandingFines(ctx, memberID)
	require.NoError(t, err)

	// assert
	assert.True(t, logSpy.HasLog(slog.LevelInfo, shell.LogMsgCommandCompleted))
	assert.True(t, logSpy.HasLogWithAttr(slog.LevelInfo, shell.LogMsgCommandRejected, shell.LogAttrErrorKind, ledger.KindBookNotAvailable))
	assert.True(t, logSpy.HasLogWithAttr(slog.LevelInfo, shell.LogMsgQueryCompleted, shell.LogAttrQueryType, "OutstandingFines"))

	assert.Equal(t, 1, metricsSpy.CounterCount(shell.CommandHandlerCallsMetric,
		map[string]string{shell.LogAttrCommandType: "BorrowBook", shell.LogAttrStatus: shell.StatusSuccess}))
	assert.Equal(t, 1, metricsSpy.CounterCount(shell.CommandHandlerCallsMetric,
		map[string]string{shell.LogAttrCommandType: "BorrowBook", shell.LogAttrStatus: shell.StatusRejected}))
	assert.True(t, metricsSpy.HasDuration(shell.QueryHandlerDurationMetric,
		map[string]string{shell.LogAttrQueryType: "OutstandingFines", shell.LogAttrStatus: shell.StatusSuccess}))
}

func Test_Engine_RecordsRetryMetrics(t *testing.T) {
	// setup
	metricsSpy := spy.NewMetricsCollectorSpy()
	engine, store, _, _, memberID := setupEngine(t,
		lending.WithMetrics(metricsSpy),
		lending.WithRetryOptions(shell.WithBaseDelay(time.Millisecond)))
	store.FailNextRuns(ledger.ErrTransientStoreConflict)

	// act
	_, err := engine.Borrow(context.Background(), isbn, memberID, 0)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, metricsSpy.CounterCount(shell.CommandHandlerRetriesMetric,
		map[string]string{shell.LogAttrCommandType: "BorrowBook", shell.LogAttrAttemptNumber: "1"}))
}

func Test_NewEngine_RejectsInvalidConfiguration(t *testing.T) {
	// act
	_, nilStoreErr := lending.NewEngine(nil)
	_, policyErr := lending.NewEngine(ledgerfake.NewStore(), lending.WithPolicy(ledger.Policy{BorrowingPeriodDays: 0}))
	_, clockErr := lending.NewEngine(ledgerfake.NewStore(), lending.WithClock(nil))

	// assert
	assert.ErrorIs(t, nilStoreErr, lending.ErrNilStore)
	assert.ErrorIs(t, policyErr, lending.ErrInvalidPolicy)
	assert.ErrorIs(t, clockErr, lending.ErrNilClock)
}
