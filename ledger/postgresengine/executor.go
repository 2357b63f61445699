package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/lending-ledger-go/ledger"
	"github.com/AntonStoeckl/lending-ledger-go/ledger/postgresengine/internal/adapters"
)

// RunInTx executes work as one atomic, SERIALIZABLE transaction.
//
// A canceled ctx is honored only before the transaction begins. After that, the transaction
// runs on a context without cancellation and always ends in commit or complete rollback.
// The transaction commits if work returns nil. Any error returned by work, or a panic,
// rolls back all writes; the error is returned unchanged, the panic is re-raised.
//
// Store failures are joined with ledger.ErrTransientStoreConflict, ledger.ErrStoreUnavailable
// or ledger.ErrStoreOperationFailed. A failure to begin is additionally joined with
// ledger.ErrBeginTransactionFailed, a failure to commit with ledger.ErrCommitFailed.
func (s *Store) RunInTx(ctx context.Context, work ledger.UnitOfWork) error {
	return s.runInTx(ctx, func(txCtx context.Context, dbTx adapters.DBTx) error {
		return work(txCtx, &lockingTx{store: s, tx: dbTx})
	})
}

// runInTx is the transaction frame shared by RunInTx and the registrar writes.
func (s *Store) runInTx(ctx context.Context, work func(ctx context.Context, dbTx adapters.DBTx) error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	txCtx := context.WithoutCancel(ctx)
	txID := uuid.NewString()
	start := time.Now()

	dbTx, beginErr := s.db.BeginSerializable(txCtx)
	if beginErr != nil {
		s.logError(logMsgBeginFailed, beginErr, logAttrTxID, txID)
		s.recordStoreError(actionBegin, ledger.KindStoreUnavailable)
		s.recordTransaction(statusError, time.Since(start))

		return errors.Join(ledger.ErrStoreUnavailable, ledger.ErrBeginTransactionFailed, beginErr)
	}

	defer func() {
		if p := recover(); p != nil {
			s.rollback(txCtx, dbTx, txID)
			s.recordTransaction(statusRolledBack, time.Since(start))
			panic(p)
		}
	}()

	if lockErr := s.setLockTimeout(txCtx, dbTx); lockErr != nil {
		s.rollback(txCtx, dbTx, txID)
		s.recordTransaction(statusRolledBack, time.Since(start))

		return lockErr
	}

	if workErr := work(txCtx, dbTx); workErr != nil {
		s.rollback(txCtx, dbTx, txID)
		s.logOperation(logMsgRolledBack,
			logAttrTxID, txID,
			logAttrReason, ledger.ErrorKind(workErr),
			logAttrDurationMS, s.toMilliseconds(time.Since(start)))
		s.recordTransaction(statusRolledBack, time.Since(start))

		return workErr
	}

	if commitErr := dbTx.Commit(txCtx); commitErr != nil {
		s.recordTransaction(statusError, time.Since(start))

		return errors.Join(ledger.ErrCommitFailed, s.storeError(actionCommit, commitErr, ""))
	}

	duration := time.Since(start)
	s.logOperation(logMsgCommitted, logAttrTxID, txID, logAttrDurationMS, s.toMilliseconds(duration))
	s.recordTransaction(statusCommitted, duration)

	return nil
}

// setLockTimeout bounds row lock waits for the rest of the transaction.
func (s *Store) setLockTimeout(ctx context.Context, dbTx adapters.DBTx) error {
	if s.lockTimeout == 0 {
		return nil
	}

	sqlQuery := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())

	start := time.Now()
	_, execErr := dbTx.Exec(ctx, sqlQuery)
	s.logQueryWithDuration(sqlQuery, actionSetLockTimeout, time.Since(start))

	if execErr != nil {
		return s.storeError(actionSetLockTimeout, execErr, sqlQuery)
	}

	return nil
}

// rollback discards the transaction and logs a failure to do so.
func (s *Store) rollback(ctx context.Context, dbTx adapters.DBTx, txID string) {
	if rollbackErr := dbTx.Rollback(ctx); rollbackErr != nil {
		s.logWarn(logMsgRollbackFailed, logAttrTxID, txID, logAttrError, rollbackErr.Error())
	}
}
