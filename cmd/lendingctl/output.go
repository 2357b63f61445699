package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/lending/borrowbook"
	"github.com/AntonStoeckl/lending-ledger-go/lending/payfine"
	"github.com/AntonStoeckl/lending-ledger-go/lending/returnbook"
)

var jsonOutput = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

func (c *cli) print(v any) error {
	encoder := jsonOutput.NewEncoder(c.stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}

func parseID(name, arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", ledger.ErrInvalidInput, name, arg)
	}

	return id, nil
}

type idView struct {
	ID int64 `json:"id"`
}

type bookView struct {
	ID              int64  `json:"id"`
	ISBN            string `json:"isbn"`
	Title           string `json:"title"`
	PublicationYear int    `json:"publication_year,omitempty"`
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
}

func toBookView(b ledger.Book) bookView {
	return bookView{
		ID:              b.ID,
		ISBN:            b.ISBN,
		Title:           b.Title,
		PublicationYear: b.PublicationYear,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
	}
}

type memberView struct {
	ID             int64     `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	Address        string    `json:"address,omitempty"`
	Status         string    `json:"status"`
	BorrowingLimit int       `json:"borrowing_limit"`
	MembershipDate time.Time `json:"membership_date"`
}

func toMemberView(m ledger.Member) memberView {
	return memberView{
		ID:             m.ID,
		FirstName:      m.FirstName,
		LastName:       m.LastName,
		Email:          m.Email,
		Phone:          m.Phone,
		Address:        m.Address,
		Status:         string(m.Status),
		BorrowingLimit: m.BorrowingLimit,
		MembershipDate: m.MembershipDate,
	}
}

type borrowView struct {
	LogID      int64     `json:"log_id"`
	BorrowDate time.Time `json:"borrow_date"`
	DueDate    time.Time `json:"due_date"`
}

func toBorrowView(r borrowbook.Result) borrowView {
	return borrowView{LogID: r.LogID, BorrowDate: r.BorrowDate, DueDate: r.DueDate}
}

type returnView struct {
	ReturnDate  time.Time `json:"return_date"`
	FineCharged bool      `json:"fine_charged"`
	FineID      *int64    `json:"fine_id,omitempty"`
	FineAmount  *string   `json:"fine_amount,omitempty"`
	DaysOverdue int       `json:"days_overdue"`
}

func toReturnView(r returnbook.Result) returnView {
	v := returnView{
		ReturnDate:  r.ReturnDate,
		FineCharged: r.FineCharged,
		FineID:      r.FineID,
		DaysOverdue: r.DaysOverdue,
	}

	if r.FineCharged {
		amount := r.FineAmount.StringFixed(2)
		v.FineAmount = &amount
	}

	return v
}

type paymentView struct {
	FineID      int64     `json:"fine_id"`
	Amount      string    `json:"amount"`
	PaymentDate time.Time `json:"payment_date"`
}

func toPaymentView(r payfine.Result) paymentView {
	return paymentView{FineID: r.FineID, Amount: r.Amount.StringFixed(2), PaymentDate: r.PaymentDate}
}

type fineView struct {
	ID          int64     `json:"fine_id"`
	LogID       int64     `json:"log_id"`
	Amount      string    `json:"amount"`
	DaysOverdue int       `json:"days_overdue"`
	Status      string    `json:"status"`
	FineDate    time.Time `json:"fine_date"`
}

type finesView struct {
	MemberID int64      `json:"member_id"`
	Total    string     `json:"total"`
	Fines    []fineView `json:"fines"`
}

func toFinesView(memberID int64, fines []ledger.Fine) finesView {
	v := finesView{MemberID: memberID, Fines: make([]fineView, 0, len(fines))}
	total := decimal.Zero

	for _, f := range fines {
		total = total.Add(f.Amount)
		v.Fines = append(v.Fines, fineView{
			ID:          f.ID,
			LogID:       f.LogID,
			Amount:      f.Amount.StringFixed(2),
			DaysOverdue: f.DaysOverdue,
			Status:      string(f.Status),
			FineDate:    f.FineDate,
		})
	}

	v.Total = total.StringFixed(2)

	return v
}

type borrowingView struct {
	LogID      int64     `json:"log_id"`
	ISBN       string    `json:"isbn"`
	Title      string    `json:"title"`
	BorrowDate time.Time `json:"borrow_date"`
	DueDate    time.Time `json:"due_date"`
	Status     string    `json:"status"`
}

func toBorrowingViews(records []ledger.BorrowingRecord) []borrowingView {
	views := make([]borrowingView, 0, len(records))
	for _, r := range records {
		views = append(views, borrowingView{
			LogID:      r.ID,
			ISBN:       r.ISBN,
			Title:      r.Title,
			BorrowDate: r.BorrowDate,
			DueDate:    r.DueDate,
			Status:     string(r.Status),
		})
	}

	return views
}
