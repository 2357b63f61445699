package payfine

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	commandType = "PayFine"
)

// Command represents the intent to pay the fine FineID.
type Command struct {
	FineID int64
	PaidAt time.Time
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(fineID int64, paidAt time.Time) Command {
	return Command{
		FineID: fineID,
		PaidAt: paidAt,
	}
}

// Result describes the settled fine.
type Result struct {
	FineID      int64
	Amount      decimal.Decimal
	PaymentDate time.Time
}
