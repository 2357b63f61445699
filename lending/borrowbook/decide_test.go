package borrowbook_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/lending/borrowbook"
)

func givenState(available int, status ledger.MemberStatus, active int, limit int) borrowbook.State {
	return borrowbook.State{
		Book:             ledger.Book{ID: 1, ISBN: "978-0132350884", TotalCopies: 2, AvailableCopies: available},
		Member:           ledger.Member{ID: 7, Status: status, BorrowingLimit: limit},
		ActiveBorrowings: active,
	}
}

func Test_Decide_Success_WhenAllPreconditionsMet(t *testing.T) {
	// arrange
	s := givenState(2, ledger.MemberActive, 0, 5)

	// act
	err := borrowbook.Decide(s)

	// assert
	assert.NoError(t, err)
}

func Test_Decide_Success_WhenMemberBorrowsUpToTheLimit(t *testing.T) {
	// arrange
	s := givenState(1, ledger.MemberActive, 4, 5)

	// act
	err := borrowbook.Decide(s)

	// assert
	assert.NoError(t, err)
}

func Test_Decide_Error_WhenNoCopyAvailable(t *testing.T) {
	// arrange
	s := givenState(0, ledger.MemberActive, 0, 5)

	// act
	err := borrowbook.Decide(s)

	// assert
	assert.ErrorIs(t, err, ledger.ErrBookNotAvailable)
}

func Test_Decide_Error_WhenMemberNotActive(t *testing.T) {
	for _, status := range []ledger.MemberStatus{ledger.MemberSuspended, ledger.MemberInactive} {
		t.Run(string(status), func(t *testing.T) {
			// arrange
			s := givenState(1, status, 0, 5)

			// act
			err := borrowbook.Decide(s)

			// assert
			assert.ErrorIs(t, err, ledger.ErrMemberNotActive)
			assert.True(t, ledger.IsBorrowLimitClass(err), "member not active belongs to the borrow limit class")
		})
	}
}

func Test_Decide_Error_WhenLimitReached(t *testing.T) {
	// arrange
	s := givenState(1, ledger.MemberActive, 5, 5)

	// act
	err := borrowbook.Decide(s)

	// assert
	assert.ErrorIs(t, err, ledger.ErrBorrowLimitExceeded)
}

func Test_Decide_ChecksAvailabilityBeforeMemberStatusBeforeLimit(t *testing.T) {
	// arrange
	everythingWrong := givenState(0, ledger.MemberSuspended, 9, 5)
	memberAndLimitWrong := givenState(1, ledger.MemberSuspended, 9, 5)

	// act
	first := borrowbook.Decide(everythingWrong)
	second := borrowbook.Decide(memberAndLimitWrong)

	// assert
	assert.ErrorIs(t, first, ledger.ErrBookNotAvailable)
	assert.ErrorIs(t, second, ledger.ErrMemberNotActive)
	assert.NotErrorIs(t, second, ledger.ErrBorrowLimitExceeded)
}
