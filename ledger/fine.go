package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	day            = 24 * time.Hour
	moneyPrecision = 2
)

// FineAssessment is the outcome of comparing a return against its due date.
type FineAssessment struct {
	Overdue     bool
	DaysOverdue int
	RatePerDay  decimal.Decimal
	Amount      decimal.Decimal
}

// AssessFine computes the fine for a copy due on the calendar day of due and returned at returned.
// Both are compared as UTC calendar dates: a return on the due date itself is on time, and days
// overdue are the whole days between the two dates, at least 1. The amount is rounded to cents.
//
// The result depends only on its arguments, so callers inject both dates instead of reading a clock.
func AssessFine(due time.Time, returned time.Time, ratePerDay decimal.Decimal) FineAssessment {
	days := DaysBetween(due, returned)
	if days <= 0 {
		return FineAssessment{RatePerDay: ratePerDay, Amount: decimal.Zero}
	}

	return FineAssessment{
		Overdue:     true,
		DaysOverdue: days,
		RatePerDay:  ratePerDay,
		Amount:      ratePerDay.Mul(decimal.NewFromInt(int64(days))).Round(moneyPrecision),
	}
}

// DueDate returns the due date for a copy borrowed at borrowed for periodDays calendar days.
// The result is midnight UTC of the due day.
func DueDate(borrowed time.Time, periodDays int) time.Time {
	return CalendarDay(borrowed).AddDate(0, 0, periodDays)
}

// CalendarDay truncates t to midnight of its UTC calendar date.
func CalendarDay(t time.Time) time.Time {
	year, month, dayOfMonth := t.UTC().Date()

	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of UTC calendar days from the date of from to the date of to.
// It is negative when to lies on an earlier date.
func DaysBetween(from time.Time, to time.Time) int {
	return int(CalendarDay(to).Sub(CalendarDay(from)) / day)
}
