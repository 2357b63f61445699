package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/ledger/postgresengine/internal/adapters"
)

// queryer is satisfied by both the adapter (plain reads) and an open transaction.
type queryer interface {
	Query(ctx context.Context, query string) (adapters.DBRows, error)
}

// queryOne runs sqlQuery, scans the first row into dest and returns notFound if there is no row.
func (s *Store) queryOne(
	ctx context.Context,
	q queryer,
	sqlQuery string,
	action string,
	notFound error,
	dest ...any,
) error {

	found := false
	err := s.query(ctx, q, sqlQuery, action, func(rows adapters.DBRows) error {
		if found {
			return nil
		}

		found = true

		return rows.Scan(dest...)
	})
	if err != nil {
		return err
	}

	if !found {
		return notFound
	}

	return nil
}

// query runs sqlQuery and calls scan once per row.
func (s *Store) query(
	ctx context.Context,
	q queryer,
	sqlQuery string,
	action string,
	scan func(rows adapters.DBRows) error,
) error {

	start := time.Now()
	rows, queryErr := q.Query(ctx, sqlQuery)
	s.logQueryWithDuration(sqlQuery, action, time.Since(start))

	if queryErr != nil {
		return s.storeError(action, queryErr, sqlQuery)
	}
	defer s.closeRows(rows)

	for rows.Next() {
		if scanErr := scan(rows); scanErr != nil {
			return s.storeError(action, scanErr, sqlQuery)
		}
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return s.storeError(action, rowsErr, sqlQuery)
	}

	return nil
}

// execExactlyOne runs a conditional update and returns zeroRows if it did not hit exactly one row.
func (s *Store) execExactlyOne(
	ctx context.Context,
	tx adapters.DBTx,
	sqlQuery string,
	action string,
	zeroRows error,
) error {

	start := time.Now()
	result, execErr := tx.Exec(ctx, sqlQuery)
	s.logQueryWithDuration(sqlQuery, action, time.Since(start))

	if execErr != nil {
		return s.storeError(action, execErr, sqlQuery)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		return s.storeError(action, rowsAffectedErr, sqlQuery)
	}

	if rowsAffected != 1 {
		s.logWarn(logMsgUnexpectedRowsAffected, logAttrAction, action, logAttrRowsAffected, rowsAffected)
		return zeroRows
	}

	return nil
}

// storeError classifies a driver error, logs it, records it and joins it with the matching ledger error.
func (s *Store) storeError(action string, err error, sqlQuery string) error {
	classified := classify(err)
	errorType := ledger.ErrorKind(classified)

	if errors.Is(classified, ledger.ErrTransientStoreConflict) {
		s.logWarn(logMsgConflict, logAttrAction, action, logAttrError, err.Error(), logAttrSQLState, adapters.SQLState(err))
		s.recordConflict(action)
	} else {
		s.logError(logMsgStatementFailed, err, logAttrAction, action, logAttrQuery, sqlQuery, logAttrSQLState, adapters.SQLState(err))
	}

	s.recordStoreError(action, errorType)

	return classified
}

// classify joins err with the ledger error that matches its class.
func classify(err error) error {
	switch adapters.Classify(err) {
	case adapters.ClassConflict:
		return errors.Join(ledger.ErrTransientStoreConflict, err)
	case adapters.ClassUnavailable:
		return errors.Join(ledger.ErrStoreUnavailable, err)
	default:
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		return errors.Join(ledger.ErrStoreOperationFailed, err)
	}
}

func (s *Store) scanMember(ctx context.Context, q queryer, sqlQuery string, action string) (ledger.Member, error) {
	var member ledger.Member
	var status string

	err := s.queryOne(ctx, q, sqlQuery, action, ledger.ErrMemberNotFound,
		&member.ID,
		&member.FirstName,
		&member.LastName,
		&member.Email,
		&member.Phone,
		&member.Address,
		&status,
		&member.BorrowingLimit,
		&member.MembershipDate,
	)
	member.Status = ledger.MemberStatus(status)

	return member, err
}

func (s *Store) scanRecord(ctx context.Context, q queryer, sqlQuery string, action string) (ledger.BorrowingRecord, error) {
	var record ledger.BorrowingRecord
	var status string

	err := s.queryOne(ctx, q, sqlQuery, action, ledger.ErrRecordNotFound,
		&record.ID,
		&record.MemberID,
		&record.BookID,
		&record.BorrowDate,
		&record.DueDate,
		&record.ReturnDate,
		&status,
	)
	record.Status = ledger.RecordStatus(status)

	return record, err
}

func (s *Store) scanRecordsWithBook(ctx context.Context, q queryer, sqlQuery string, action string) ([]ledger.BorrowingRecord, error) {
	records := make([]ledger.BorrowingRecord, 0)

	err := s.query(ctx, q, sqlQuery, action, func(rows adapters.DBRows) error {
		var record ledger.BorrowingRecord
		var status string

		scanErr := rows.Scan(
			&record.ID,
			&record.MemberID,
			&record.BookID,
			&record.BorrowDate,
			&record.DueDate,
			&record.ReturnDate,
			&status,
			&record.ISBN,
			&record.Title,
		)
		if scanErr != nil {
			return scanErr
		}

		record.Status = ledger.RecordStatus(status)
		records = append(records, record)

		return nil
	})

	return records, err
}

func (s *Store) scanFines(ctx context.Context, q queryer, sqlQuery string, action string) ([]ledger.Fine, error) {
	fines := make([]ledger.Fine, 0)

	err := s.query(ctx, q, sqlQuery, action, func(rows adapters.DBRows) error {
		var fine ledger.Fine
		var amount, rate, status string

		scanErr := rows.Scan(
			&fine.ID,
			&fine.LogID,
			&fine.MemberID,
			&amount,
			&rate,
			&fine.DaysOverdue,
			&status,
			&fine.FineDate,
			&fine.PaymentDate,
		)
		if scanErr != nil {
			return scanErr
		}

		var parseErr error
		if fine.Amount, parseErr = parseDecimal(amount); parseErr != nil {
			return parseErr
		}
		if fine.RatePerDay, parseErr = parseDecimal(rate); parseErr != nil {
			return parseErr
		}

		fine.Status = ledger.FineStatus(status)
		fines = append(fines, fine)

		return nil
	})

	return fines, err
}
