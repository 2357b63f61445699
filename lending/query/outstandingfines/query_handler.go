package outstandingfines

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

// FinesReader defines the store read needed by the QueryHandler.
type FinesReader interface {
	OutstandingFines(ctx context.Context, memberID int64) ([]ledger.Fine, error)
}

// QueryHandler reads the unpaid fines of a member. It takes no locks.
type QueryHandler struct {
	reader FinesReader
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(reader FinesReader) QueryHandler {
	return QueryHandler{reader: reader}
}

// Handle returns the unpaid fines of the member. An unknown member has no fines.
func (h QueryHandler) Handle(ctx context.Context, query Query) (Result, error) {
	fines, err := h.reader.OutstandingFines(ctx, query.MemberID)
	if err != nil {
		return Result{}, err
	}

	return Project(query, fines), nil
}

// Project filters fines down to the Unpaid ones of the queried member and sums their amounts.
func Project(query Query, fines []ledger.Fine) Result {
	result := Result{MemberID: query.MemberID, Fines: make([]ledger.Fine, 0, len(fines)), Total: decimal.Zero}

	for _, fine := range fines {
		if fine.MemberID != query.MemberID || fine.Status != ledger.FineUnpaid {
			continue
		}

		result.Fines = append(result.Fines, fine)
		result.Total = result.Total.Add(fine.Amount)
	}

	return result
}
