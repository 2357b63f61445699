package returnbook

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	commandType = "ReturnBook"
)

// Command represents the intent to return the copy lent with the borrowing record LogID.
type Command struct {
	LogID      int64
	ReturnedAt time.Time
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(logID int64, returnedAt time.Time) Command {
	return Command{
		LogID:      logID,
		ReturnedAt: returnedAt,
	}
}

// Result describes the completed return. FineID is nil if no fine was charged.
type Result struct {
	ReturnDate  time.Time
	FineCharged bool
	FineID      *int64
	FineAmount  decimal.Decimal
	DaysOverdue int
}
