package currentborrowings

import (
	"time"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

const (
	queryType = "CurrentBorrowings"
)

// Query asks for the open borrowings of MemberID as of At.
type Query struct {
	MemberID int64
	At       time.Time
}

// QueryType returns the type identifier for this query, used for observability.
func (q Query) QueryType() string {
	return queryType
}

// BuildQuery creates a new Query.
func BuildQuery(memberID int64, at time.Time) Query {
	return Query{MemberID: memberID, At: at}
}

// Result holds the open borrowings, newest borrow first.
type Result struct {
	MemberID     int64
	Borrowings   []ledger.BorrowingRecord
	OverdueCount int
}

// Len returns the number of borrowings.
func (r Result) Len() int {
	return len(r.Borrowings)
}
