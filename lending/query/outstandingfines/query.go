package outstandingfines

import (
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

const (
	queryType = "OutstandingFines"
)

// Query asks for the Unpaid fines of MemberID.
type Query struct {
	MemberID int64
}

// QueryType returns the type identifier for this query, used for observability.
func (q Query) QueryType() string {
	return queryType
}

// BuildQuery creates a new Query.
func BuildQuery(memberID int64) Query {
	return Query{MemberID: memberID}
}

// Result holds the unpaid fines, newest first, and their sum.
type Result struct {
	MemberID int64
	Fines    []ledger.Fine
	Total    decimal.Decimal
}

// Len returns the number of fines.
func (r Result) Len() int {
	return len(r.Fines)
}
