package payfine

import (
	"fmt"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

// Decide implements the business rule for paying a fine. It is a pure function.
//
//	ERROR: ErrFineNotPayable if the fine is Paid or Waived
func Decide(fine ledger.Fine) error {
	if fine.Status != ledger.FineUnpaid {
		return fmt.Errorf("%w: fine %d is %s", ledger.ErrFineNotPayable, fine.ID, fine.Status)
	}

	return nil
}
