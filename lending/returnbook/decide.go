package returnbook

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

// Decision is the outcome of a successful Decide.
type Decision struct {
	Fine ledger.FineAssessment
}

// Decide implements the business rules for returning a copy. It is a pure function.
//
// Business Rules:
//
//	ERROR: ErrAlreadyReturned if the record is not Borrowed or Overdue
//	THEN: a fine of days_overdue * ratePerDay is assessed if returnedAt lies after the due date
func Decide(record ledger.BorrowingRecord, returnedAt time.Time, ratePerDay decimal.Decimal) (Decision, error) {
	if !record.Status.IsOpen() {
		return Decision{}, fmt.Errorf("%w: record %d is %s", ledger.ErrAlreadyReturned, record.ID, record.Status)
	}

	return Decision{Fine: ledger.AssessFine(record.DueDate, returnedAt, ratePerDay)}, nil
}
