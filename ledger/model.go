package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// MemberStatus is the membership state of a Member.
type MemberStatus string

const (
	MemberActive    MemberStatus = "Active"
	MemberInactive  MemberStatus = "Inactive"
	MemberSuspended MemberStatus = "Suspended"
)

// Valid reports whether s is one of the known member states.
func (s MemberStatus) Valid() bool {
	switch s {
	case MemberActive, MemberInactive, MemberSuspended:
		return true
	}

	return false
}

// RecordStatus is the lifecycle state of a BorrowingRecord.
type RecordStatus string

const (
	RecordBorrowed RecordStatus = "Borrowed"
	RecordReturned RecordStatus = "Returned"
	RecordOverdue  RecordStatus = "Overdue"
	RecordLost     RecordStatus = "Lost"
)

// IsOpen reports whether the copy is still out with the member.
func (s RecordStatus) IsOpen() bool {
	return s == RecordBorrowed || s == RecordOverdue
}

// FineStatus is the payment state of a Fine.
type FineStatus string

const (
	FineUnpaid FineStatus = "Unpaid"
	FinePaid   FineStatus = "Paid"
	FineWaived FineStatus = "Waived"
)

// Book is a catalog title with its copy counters.
// Invariant: 0 <= AvailableCopies <= TotalCopies.
type Book struct {
	ID              int64
	ISBN            string
	Title           string
	PublicationYear int
	TotalCopies     int
	AvailableCopies int
}

// HasAvailableCopy reports whether at least one copy can be lent.
func (b Book) HasAvailableCopy() bool {
	return b.AvailableCopies > 0
}

// Author is a book author, unique by first and last name.
type Author struct {
	ID        int64
	FirstName string
	LastName  string
}

// Member is a registered library member.
type Member struct {
	ID             int64
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Address        string
	Status         MemberStatus
	BorrowingLimit int
	MembershipDate time.Time
}

// FullName returns first and last name separated by a blank.
func (m Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

// BorrowingRecord is one lending of one copy of a Book to a Member.
type BorrowingRecord struct {
	ID         int64
	MemberID   int64
	BookID     int64
	BorrowDate time.Time
	DueDate    time.Time
	ReturnDate *time.Time
	Status     RecordStatus

	// Filled by read models that join the book.
	ISBN  string
	Title string
}

// IsOverdueAt reports whether the record is still open and the UTC date of now lies after its due date.
func (r BorrowingRecord) IsOverdueAt(now time.Time) bool {
	return r.Status.IsOpen() && DaysBetween(r.DueDate, now) > 0
}

// Fine is a penalty for an overdue return, at most one per BorrowingRecord.
type Fine struct {
	ID          int64
	LogID       int64
	MemberID    int64
	Amount      decimal.Decimal
	RatePerDay  decimal.Decimal
	DaysOverdue int
	Status      FineStatus
	FineDate    time.Time
	PaymentDate *time.Time
}
