package currentborrowings

import (
	"context"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

// BorrowingsReader defines the store read needed by the QueryHandler.
type BorrowingsReader interface {
	CurrentBorrowings(ctx context.Context, memberID int64) ([]ledger.BorrowingRecord, error)
}

// QueryHandler reads the open borrowings of a member. It takes no locks.
type QueryHandler struct {
	reader BorrowingsReader
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(reader BorrowingsReader) QueryHandler {
	return QueryHandler{reader: reader}
}

// Handle returns the open borrowings of the member.
func (h QueryHandler) Handle(ctx context.Context, query Query) (Result, error) {
	records, err := h.reader.CurrentBorrowings(ctx, query.MemberID)
	if err != nil {
		return Result{}, err
	}

	return Project(query, records), nil
}

// Project keeps the open records of the queried member and reports every record
// whose due date lies before query.At as Overdue. The stored status is not changed.
func Project(query Query, records []ledger.BorrowingRecord) Result {
	result := Result{MemberID: query.MemberID, Borrowings: make([]ledger.BorrowingRecord, 0, len(records))}

	for _, record := range records {
		if record.MemberID != query.MemberID || !record.Status.IsOpen() {
			continue
		}

		if record.IsOverdueAt(query.At) {
			record.Status = ledger.RecordOverdue
			result.OverdueCount++
		}

		result.Borrowings = append(result.Borrowings, record)
	}

	return result
}
