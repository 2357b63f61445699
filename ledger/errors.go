package ledger

import (
	"context"
	"errors"
)

// Validation errors. They are deterministic given the current state and are never retried.
var (
	ErrBookNotFound        = errors.New("book not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrBookNotAvailable    = errors.New("book has no available copies")
	ErrMemberNotActive     = errors.New("member is not active")
	ErrBorrowLimitExceeded = errors.New("member reached the borrowing limit")
	ErrRecordNotFound      = errors.New("borrowing record not found")
	ErrAlreadyReturned     = errors.New("borrowing record is already returned")
	ErrFineNotFound        = errors.New("fine not found")
	ErrFineNotPayable      = errors.New("fine is not payable")
	ErrInvalidInput        = errors.New("invalid input")
)

// Store errors.
var (
	// ErrTransientStoreConflict is a lock or serialization conflict caused by concurrent access.
	ErrTransientStoreConflict = errors.New("transient store conflict")

	// ErrStoreUnavailable means the store could not be reached or failed fatally.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrBeginTransactionFailed marks failures that happened before a transaction was started,
	// so nothing can have been applied.
	ErrBeginTransactionFailed = errors.New("beginning the transaction failed")

	// ErrCommitFailed marks failures while committing a transaction.
	ErrCommitFailed = errors.New("committing the transaction failed")

	// ErrStoreOperationFailed wraps any other failed store statement.
	ErrStoreOperationFailed = errors.New("store operation failed")

	// ErrCounterUpdateFailed is returned when a copy counter update did not hit exactly one row.
	ErrCounterUpdateFailed = errors.New("copy counter update affected no row")

	ErrNilDatabaseConnection = errors.New("database connection must not be nil")
	ErrNegativeLockTimeout   = errors.New("lock timeout must not be negative")
)

// Error kinds, stable strings for metric labels and caller-visible status mapping.
const (
	KindNone                   = "none"
	KindBookNotFound           = "book_not_found"
	KindMemberNotFound         = "member_not_found"
	KindBookNotAvailable       = "book_not_available"
	KindMemberNotActive        = "member_not_active"
	KindBorrowLimitExceeded    = "borrow_limit_exceeded"
	KindRecordNotFound         = "record_not_found"
	KindAlreadyReturned        = "already_returned"
	KindFineNotFound           = "fine_not_found"
	KindFineNotPayable         = "fine_not_payable"
	KindInvalidInput           = "invalid_input"
	KindTransientStoreConflict = "transient_store_conflict"
	KindStoreUnavailable       = "store_unavailable"
	KindContextCanceled        = "context_canceled"
	KindContextDeadline        = "context_deadline_exceeded"
	KindOther                  = "other"
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrBookNotFound, KindBookNotFound},
	{ErrMemberNotFound, KindMemberNotFound},
	{ErrBookNotAvailable, KindBookNotAvailable},
	{ErrMemberNotActive, KindMemberNotActive},
	{ErrBorrowLimitExceeded, KindBorrowLimitExceeded},
	{ErrRecordNotFound, KindRecordNotFound},
	{ErrAlreadyReturned, KindAlreadyReturned},
	{ErrFineNotFound, KindFineNotFound},
	{ErrFineNotPayable, KindFineNotPayable},
	{ErrInvalidInput, KindInvalidInput},
	{ErrTransientStoreConflict, KindTransientStoreConflict},
	{ErrStoreUnavailable, KindStoreUnavailable},
	{context.Canceled, KindContextCanceled},
	{context.DeadlineExceeded, KindContextDeadline},
}

// ErrorKind maps err to its stable kind string. Validation errors win over store errors.
func ErrorKind(err error) string {
	if err == nil {
		return KindNone
	}

	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}

	return KindOther
}

// IsValidationError reports whether err is a deterministic business rule violation.
func IsValidationError(err error) bool {
	switch ErrorKind(err) {
	case KindBookNotFound, KindMemberNotFound, KindBookNotAvailable, KindMemberNotActive,
		KindBorrowLimitExceeded, KindRecordNotFound, KindAlreadyReturned, KindFineNotFound,
		KindFineNotPayable, KindInvalidInput:
		return true
	}

	return false
}

// IsBorrowLimitClass reports whether err belongs to the borrow-limit class,
// which covers an inactive member as well as an exhausted limit.
func IsBorrowLimitClass(err error) bool {
	return errors.Is(err, ErrBorrowLimitExceeded) || errors.Is(err, ErrMemberNotActive)
}
