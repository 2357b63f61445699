package outstandingfines_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/lending/query/outstandingfines"
	"github.com/AntonStoeckl/lending-ledger-go/testutil/ledgerfake"
)

func Test_QueryHandler_Handle_ReturnsUnpaidFinesNewestFirst(t *testing.T) {
	// setup
	store := ledgerfake.NewStore()
	const memberID, otherMemberID = 10, 11

	older := store.AddFine(ledger.Fine{MemberID: memberID, LogID: 1, Amount: decimal.RequireFromString("0.50"), Status: ledger.FineUnpaid, FineDate: ledgerfake.Now})
	newer := store.AddFine(ledger.Fine{MemberID: memberID, LogID: 2, Amount: decimal.RequireFromString("2.00"), Status: ledger.FineUnpaid, FineDate: ledgerfake.Now.Add(time.Hour)})
	store.AddFine(ledger.Fine{MemberID: memberID, LogID: 3, Amount: decimal.RequireFromString("9.00"), Status: ledger.FinePaid, FineDate: ledgerfake.Now})
	store.AddFine(ledger.Fine{MemberID: otherMemberID, LogID: 4, Amount: decimal.RequireFromString("1.00"), Status: ledger.FineUnpaid, FineDate: ledgerfake.Now})

	handler := outstandingfines.NewQueryHandler(store)

	// act
	result, err := handler.Handle(context.Background(), outstandingfines.BuildQuery(memberID))

	// assert
	require.NoError(t, err)
	require.Equal(t, 2, result.Len())
	assert.Equal(t, newer, result.Fines[0].ID)
	assert.Equal(t, older, result.Fines[1].ID)
	assert.True(t, result.Total.Equal(decimal.RequireFromString("2.50")))
}

func Test_QueryHandler_Handle_UnknownMemberHasNoFines(t *testing.T) {
	// setup
	handler := outstandingfines.NewQueryHandler(ledgerfake.NewStore())

	// act
	result, err := handler.Handle(context.Background(), outstandingfines.BuildQuery(42))

	// assert
	require.NoError(t, err)
	assert.Equal(t, 0, result.Len())
	assert.NotNil(t, result.Fines)
	assert.True(t, result.Total.IsZero())
}

func Test_QueryHandler_Handle_Error_Canceled(t *testing.T) {
	// setup
	handler := outstandingfines.NewQueryHandler(ledgerfake.NewStore())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// act
	_, err := handler.Handle(ctx, outstandingfines.BuildQuery(1))

	// assert
	assert.ErrorIs(t, err, context.Canceled)
}
