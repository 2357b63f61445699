package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

func Test_AssessFine_OneDayLate(t *testing.T) {
	due := time.Date(2024, 1, 29, 0, 0, 0, 0, time.UTC)
	returned := time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC)

	assessment := ledger.AssessFine(due, returned, decimal.RequireFromString("0.50"))

	assert.True(t, assessment.Overdue)
	assert.Equal(t, 1, assessment.DaysOverdue)
	assert.Equal(t, "0.5", assessment.Amount.String())
	assert.True(t, assessment.Amount.Equal(decimal.RequireFromString("0.50")))
}

func Test_AssessFine_OnTime(t *testing.T) {
	due := time.Date(2024, 1, 29, 0, 0, 0, 0, time.UTC)

	assessment := ledger.AssessFine(due, due, decimal.RequireFromString("0.50"))

	assert.False(t, assessment.Overdue)
	assert.Equal(t, 0, assessment.DaysOverdue)
	assert.True(t, assessment.Amount.IsZero())
}

func Test_AssessFine_EarlyReturn(t *testing.T) {
	due := time.Date(2024, 1, 29, 0, 0, 0, 0, time.UTC)

	assessment := ledger.AssessFine(due, due.Add(-72*time.Hour), decimal.RequireFromString("0.50"))

	assert.False(t, assessment.Overdue)
}

func Test_AssessFine_ReturnDuringTheDueDateIsOnTime(t *testing.T) {
	// arrange
	borrowed := time.Date(2024, time.January, 15, 9, 30, 0, 0, time.UTC)
	due := ledger.DueDate(borrowed, 14)

	// act
	assessment := ledger.AssessFine(due, time.Date(2024, time.January, 29, 17, 0, 0, 0, time.UTC), decimal.RequireFromString("0.50"))

	// assert
	assert.False(t, assessment.Overdue)
	assert.Equal(t, 0, assessment.DaysOverdue)
	assert.True(t, assessment.Amount.IsZero())
}

func Test_AssessFine_CountsCalendarDays(t *testing.T) {
	due := ledger.DueDate(time.Date(2024, time.January, 15, 9, 30, 0, 0, time.UTC), 14)

	testCases := []struct {
		name     string
		returned time.Time
		days     int
		amount   string
	}{
		{"one minute past midnight", time.Date(2024, time.January, 30, 0, 1, 0, 0, time.UTC), 1, "0.50"},
		{"late in the next day", time.Date(2024, time.January, 30, 23, 59, 0, 0, time.UTC), 1, "0.50"},
		{"two days later", time.Date(2024, time.January, 31, 8, 0, 0, 0, time.UTC), 2, "1.00"},
		{"ten days later", time.Date(2024, time.February, 8, 12, 0, 0, 0, time.UTC), 10, "5.00"},
		{"non UTC zone on the due date", time.Date(2024, time.January, 29, 20, 0, 0, 0, time.FixedZone("UTC-3", -3*3600)), 1, "0.50"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assessment := ledger.AssessFine(due, tc.returned, decimal.RequireFromString("0.50"))

			assert.True(t, assessment.Overdue)
			assert.Equal(t, tc.days, assessment.DaysOverdue)
			assert.True(t, assessment.Amount.Equal(decimal.RequireFromString(tc.amount)), "got %s", assessment.Amount)
		})
	}
}

func Test_AssessFine_IsDeterministic(t *testing.T) {
	due := time.Date(2024, 1, 29, 0, 0, 0, 0, time.UTC)
	returned := due.Add(74 * time.Hour)
	rate := decimal.RequireFromString("0.35")

	first := ledger.AssessFine(due, returned, rate)
	second := ledger.AssessFine(due, returned, rate)

	assert.Equal(t, first.DaysOverdue, second.DaysOverdue)
	assert.True(t, first.Amount.Equal(second.Amount))
	assert.True(t, first.Amount.Equal(decimal.RequireFromString("1.05")))
}

func Test_DueDate_IsTheCalendarDayAfterThePeriod(t *testing.T) {
	borrowed := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 1, 29, 0, 0, 0, 0, time.UTC), ledger.DueDate(borrowed, 14))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), ledger.DueDate(time.Date(2024, 2, 28, 23, 59, 0, 0, time.UTC), 2))
}

func Test_BorrowingRecord_IsOverdueAt_ComparesCalendarDates(t *testing.T) {
	record := ledger.BorrowingRecord{
		Status:  ledger.RecordBorrowed,
		DueDate: ledger.DueDate(time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC), 14),
	}

	assert.False(t, record.IsOverdueAt(time.Date(2024, 1, 29, 17, 0, 0, 0, time.UTC)), "due date itself")
	assert.True(t, record.IsOverdueAt(time.Date(2024, 1, 30, 0, 1, 0, 0, time.UTC)), "next day")

	record.Status = ledger.RecordReturned
	assert.False(t, record.IsOverdueAt(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)), "closed records are never overdue")
}
