package borrowbook

import (
	"fmt"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

// State is what the handler has locked and counted before deciding.
type State struct {
	Book             ledger.Book
	Member           ledger.Member
	ActiveBorrowings int
}

// Decide implements the business rules for lending a copy. It is a pure function.
//
// Business Rules, checked in this order:
//
//	ERROR: ErrBookNotAvailable if the book has no available copy
//	ERROR: ErrMemberNotActive if the member is Inactive or Suspended
//	ERROR: ErrBorrowLimitExceeded if the member's open borrowings reached the borrowing limit
func Decide(s State) error {
	if !s.Book.HasAvailableCopy() {
		return fmt.Errorf("%w: isbn %s", ledger.ErrBookNotAvailable, s.Book.ISBN)
	}

	if s.Member.Status != ledger.MemberActive {
		return fmt.Errorf("%w: member %d is %s", ledger.ErrMemberNotActive, s.Member.ID, s.Member.Status)
	}

	if s.ActiveBorrowings >= s.Member.BorrowingLimit {
		return fmt.Errorf("%w: member %d has %d of %d",
			ledger.ErrBorrowLimitExceeded, s.Member.ID, s.ActiveBorrowings, s.Member.BorrowingLimit)
	}

	return nil
}
