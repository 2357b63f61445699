package ledger

import (
	"github.com/shopspring/decimal"
)

const (
	DefaultBorrowingPeriodDays = 14
	DefaultBorrowingLimit      = 5
	DefaultFineRatePerDay      = "0.50"
)

// Policy holds the lending rules that are configured per deployment.
type Policy struct {
	BorrowingPeriodDays int
	BorrowingLimit      int
	FineRatePerDay      decimal.Decimal
}

// DefaultPolicy returns a 14 day borrowing period, a limit of 5 books and a fine of 0.50 per day.
func DefaultPolicy() Policy {
	return Policy{
		BorrowingPeriodDays: DefaultBorrowingPeriodDays,
		BorrowingLimit:      DefaultBorrowingLimit,
		FineRatePerDay:      decimal.RequireFromString(DefaultFineRatePerDay),
	}
}
