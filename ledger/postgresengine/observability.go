package postgresengine

import (
	"math"
	"time"
)

const (
	logMsgSQLExecuted            = "executed sql for: "
	logMsgOperation              = "ledger store operation: "
	logMsgCommitted              = "transaction committed"
	logMsgRolledBack             = "transaction rolled back"
	logMsgBeginFailed            = "beginning transaction failed"
	logMsgRollbackFailed         = "rolling back transaction failed"
	logMsgStatementFailed        = "database statement failed"
	logMsgConflict               = "concurrency conflict detected"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgUnexpectedRowsAffected = "conditional update did not hit exactly one row"
	logAttrError                 = "error"
	logAttrQuery                 = "query"
	logAttrAction                = "action"
	logAttrTxID                  = "operation_id"
	logAttrReason                = "reason"
	logAttrSQLState              = "sql_state"
	logAttrDurationMS            = "duration_ms"
	logAttrRowsAffected          = "rows_affected"

	actionBegin           = "begin"
	actionCommit          = "commit"
	actionSetLockTimeout  = "set_lock_timeout"
	actionLockBook        = "lock_book"
	actionLockMember      = "lock_member"
	actionCountBorrowings = "count_active_borrowings"
	actionDecrementCopies = "decrement_available_copies"
	actionIncrementCopies = "increment_available_copies"
	actionInsertRecord    = "insert_borrowing_record"
	actionFindRecord      = "find_borrowing_record"
	actionLockRecord      = "lock_borrowing_record"
	actionMarkReturned    = "mark_record_returned"
	actionInsertFine      = "insert_fine"
	actionLockFine        = "lock_fine"
	actionMarkFinePaid    = "mark_fine_paid"
	actionOutstanding     = "outstanding_fines"
	actionCurrent         = "current_borrowings"
	actionFindBook        = "find_book"
	actionFindMember      = "find_member"
	actionUpsertAuthor    = "upsert_author"
	actionUpsertBook      = "upsert_book"
	actionLinkAuthors     = "link_book_authors"
	actionUpsertMember    = "upsert_member"
	actionUpdateMember    = "update_member_status"

	// TransactionDurationMetric tracks the duration of RunInTx calls.
	TransactionDurationMetric = "ledger_transaction_duration_seconds"

	// TransactionsMetric counts RunInTx calls by outcome.
	TransactionsMetric = "ledger_transactions_total"

	// ConflictsMetric counts serialization failures, deadlocks and lock timeouts.
	ConflictsMetric = "ledger_store_conflicts_total"

	// StoreErrorsMetric counts failed store statements by action and error type.
	StoreErrorsMetric = "ledger_store_errors_total"

	labelStatus    = "status"
	labelAction    = "action"
	labelErrorType = "error_type"

	statusCommitted  = "committed"
	statusRolledBack = "rolled_back"
	statusError      = "error"
)

// logQueryWithDuration logs SQL queries with execution time at debug level if the logger is configured.
func (s *Store) logQueryWithDuration(sqlQuery string, action string, duration time.Duration) {
	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, s.toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level if the logger is configured.
func (s *Store) logOperation(action string, args ...any) {
	if s.logger != nil {
		s.logger.Info(logMsgOperation+action, args...)
	}
}

func (s *Store) logWarn(message string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(message, args...)
	}
}

// logError logs error information at the error level if the logger is configured.
func (s *Store) logError(message string, err error, args ...any) {
	if s.logger != nil {
		allArgs := []any{logAttrError, err.Error()}
		allArgs = append(allArgs, args...)
		s.logger.Error(message, allArgs...)
	}
}

// closeRows safely closes database rows and logs any errors.
func (s *Store) closeRows(rows interface{ Close() error }) {
	if closeErr := rows.Close(); closeErr != nil {
		s.logWarn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (s *Store) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

func (s *Store) recordTransaction(status string, duration time.Duration) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{labelStatus: status}
	s.metricsCollector.RecordDuration(TransactionDurationMetric, duration, labels)
	s.metricsCollector.IncrementCounter(TransactionsMetric, labels)
}

func (s *Store) recordConflict(action string) {
	if s.metricsCollector != nil {
		s.metricsCollector.IncrementCounter(ConflictsMetric, map[string]string{labelAction: action})
	}
}

func (s *Store) recordStoreError(action string, errorType string) {
	if s.metricsCollector != nil {
		s.metricsCollector.IncrementCounter(StoreErrorsMetric, map[string]string{
			labelAction:    action,
			labelErrorType: errorType,
		})
	}
}
