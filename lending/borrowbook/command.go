package borrowbook

import (
	"time"
)

const (
	commandType = "BorrowBook"
)

// Command represents the intent to borrow one copy of the book with ISBN for a member.
type Command struct {
	ISBN       string
	MemberID   int64
	PeriodDays int
	BorrowedAt time.Time
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command. A periodDays <= 0 selects the handler's default period.
func BuildCommand(isbn string, memberID int64, periodDays int, borrowedAt time.Time) Command {
	return Command{
		ISBN:       isbn,
		MemberID:   memberID,
		PeriodDays: periodDays,
		BorrowedAt: borrowedAt,
	}
}

// Result is the borrowing that was recorded.
type Result struct {
	LogID      int64
	BorrowDate time.Time
	DueDate    time.Time
}
