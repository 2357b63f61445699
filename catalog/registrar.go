package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
)

// ErrNilRegistryStore is returned when NewRegistrar receives no store.
var ErrNilRegistryStore = errors.New("registry store must not be nil")

// RegistryStore defines the store operations needed by the Registrar.
type RegistryStore interface {
	InsertAuthor(ctx context.Context, author ledger.Author) (int64, error)
	InsertBook(ctx context.Context, book ledger.Book, authorIDs ...int64) (int64, error)
	InsertMember(ctx context.Context, member ledger.Member) (int64, error)
	UpdateMemberStatus(ctx context.Context, memberID int64, status ledger.MemberStatus) error
	FindBook(ctx context.Context, isbn string) (ledger.Book, error)
	FindMember(ctx context.Context, memberID int64) (ledger.Member, error)
}

// Registrar is the registration side of the catalog. It never touches copy counters of existing books.
type Registrar struct {
	store          RegistryStore
	borrowingLimit int
	logger         ledger.Logger
	now            func() time.Time
}

// RegistrarOption configures a Registrar.
type RegistrarOption func(*Registrar)

// WithDefaultBorrowingLimit sets the limit given to members registered without one.
func WithDefaultBorrowingLimit(limit int) RegistrarOption {
	return func(r *Registrar) {
		if limit >= 0 {
			r.borrowingLimit = limit
		}
	}
}

// WithLogger sets the logger for registrations.
func WithLogger(logger ledger.Logger) RegistrarOption {
	return func(r *Registrar) {
		r.logger = logger
	}
}

// WithClock sets the source of membership dates.
func WithClock(now func() time.Time) RegistrarOption {
	return func(r *Registrar) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRegistrar creates a Registrar on top of store.
func NewRegistrar(store RegistryStore, options ...RegistrarOption) (*Registrar, error) {
	if store == nil {
		return nil, ErrNilRegistryStore
	}

	r := &Registrar{
		store:          store,
		borrowingLimit: ledger.DefaultBorrowingLimit,
		now:            func() time.Time { return time.Now().UTC() },
	}

	for _, option := range options {
		option(r)
	}

	return r, nil
}

// AddAuthor registers an author and returns its id.
func (r *Registrar) AddAuthor(ctx context.Context, firstName, lastName string) (int64, error) {
	firstName, lastName = strings.TrimSpace(firstName), strings.TrimSpace(lastName)
	if firstName == "" && lastName == "" {
		return 0, fmt.Errorf("%w: author needs a name", ledger.ErrInvalidInput)
	}

	authorID, err := r.store.InsertAuthor(ctx, ledger.Author{FirstName: firstName, LastName: lastName})
	if err != nil {
		return 0, err
	}

	r.logInfo(logMsgAuthorRegistered, logAttrAuthorID, authorID)

	return authorID, nil
}

// AddBook registers a book written by authorIDs and returns its id.
// A new book starts with all copies available.
func (r *Registrar) AddBook(ctx context.Context, book ledger.Book, authorIDs ...int64) (int64, error) {
	book.ISBN, book.Title = strings.TrimSpace(book.ISBN), strings.TrimSpace(book.Title)

	switch {
	case book.ISBN == "":
		return 0, fmt.Errorf("%w: isbn is required", ledger.ErrInvalidInput)
	case book.Title == "":
		return 0, fmt.Errorf("%w: title is required", ledger.ErrInvalidInput)
	case book.TotalCopies < 0:
		return 0, fmt.Errorf("%w: total copies must not be negative", ledger.ErrInvalidInput)
	}

	book.AvailableCopies = book.TotalCopies

	bookID, err := r.store.InsertBook(ctx, book, authorIDs...)
	if err != nil {
		return 0, err
	}

	r.logInfo(logMsgBookRegistered, logAttrBookID, bookID, logAttrISBN, book.ISBN)

	return bookID, nil
}

// RegisterMember registers a member and returns its id. A member without status is Active,
// a member without a borrowing limit gets the default limit.
func (r *Registrar) RegisterMember(ctx context.Context, member ledger.Member) (int64, error) {
	member.Email = strings.TrimSpace(member.Email)
	if member.Email == "" {
		return 0, fmt.Errorf("%w: email is required", ledger.ErrInvalidInput)
	}

	if member.Status == "" {
		member.Status = ledger.MemberActive
	}

	if !member.Status.Valid() {
		return 0, fmt.Errorf("%w: unknown member status %q", ledger.ErrInvalidInput, member.Status)
	}

	if member.BorrowingLimit <= 0 {
		member.BorrowingLimit = r.borrowingLimit
	}

	if member.MembershipDate.IsZero() {
		member.MembershipDate = r.now()
	}

	memberID, err := r.store.InsertMember(ctx, member)
	if err != nil {
		return 0, err
	}

	r.logInfo(logMsgMemberRegistered, logAttrMemberID, memberID)

	return memberID, nil
}

// SetMemberStatus suspends, deactivates or reactivates a member.
func (r *Registrar) SetMemberStatus(ctx context.Context, memberID int64, status ledger.MemberStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown member status %q", ledger.ErrInvalidInput, status)
	}

	if err := r.store.UpdateMemberStatus(ctx, memberID, status); err != nil {
		return err
	}

	r.logInfo(logMsgMemberStatusChanged, logAttrMemberID, memberID, logAttrStatus, string(status))

	return nil
}

// GetBook returns the book with isbn or ledger.ErrBookNotFound.
func (r *Registrar) GetBook(ctx context.Context, isbn string) (ledger.Book, error) {
	return r.store.FindBook(ctx, strings.TrimSpace(isbn))
}

// GetMember returns the member with memberID or ledger.ErrMemberNotFound.
func (r *Registrar) GetMember(ctx context.Context, memberID int64) (ledger.Member, error) {
	return r.store.FindMember(ctx, memberID)
}

func (r *Registrar) logInfo(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Info(msg, args...)
	}
}
