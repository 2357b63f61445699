package adapters

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrorClass groups driver errors by how the ledger store reacts to them.
type ErrorClass int

const (
	// ClassOther is any error that is neither a conflict nor an availability problem.
	ClassOther ErrorClass = iota

	// ClassConflict is a lock or serialization conflict caused by concurrent transactions.
	ClassConflict

	// ClassUnavailable means the database could not be reached or terminated the session.
	ClassUnavailable
)

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateLockNotAvailable     = "55P03"
	sqlStateClassConnection      = "08"
	sqlStateAdminShutdown        = "57P01"
	sqlStateCrashShutdown        = "57P02"
	sqlStateCannotConnectNow     = "57P03"
)

// Classify maps an error from any of the supported drivers to an ErrorClass.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassOther
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ClassOther
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifySQLState(pgErr.Code)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return classifySQLState(string(pqErr.Code))
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return ClassUnavailable
	}

	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) {

		return ClassUnavailable
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ClassUnavailable
	}

	return ClassOther
}

// SQLState extracts the SQLSTATE code from a pgx or lib/pq error, or returns "".
func SQLState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}

	return ""
}

func classifySQLState(code string) ErrorClass {
	switch code {
	case sqlStateSerializationFailure, sqlStateDeadlockDetected, sqlStateLockNotAvailable:
		return ClassConflict
	case sqlStateAdminShutdown, sqlStateCrashShutdown, sqlStateCannotConnectNow:
		return ClassUnavailable
	}

	if strings.HasPrefix(code, sqlStateClassConnection) {
		return ClassUnavailable
	}

	return ClassOther
}
