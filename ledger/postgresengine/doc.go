// Package postgresengine provides a PostgreSQL implementation of the ledger store
// and its locking transaction executor.
//
// It can be created from one of three supported connection types:
//   - pgxpool.Pool (NewStoreFromPGXPool)
//   - sql.DB (NewStoreFromSQLDB)
//   - sqlx.DB (NewStoreFromSQLX)
//
// RunInTx executes a unit of work in a SERIALIZABLE transaction. Inside, the unit of work
// takes row-level exclusive locks (SELECT ... FOR UPDATE) in the global order book, member,
// dependent rows. The transaction commits when the unit of work returns nil and rolls back
// completely on any error or panic.
//
// Once a transaction has begun it is detached from the caller's cancellation, so it always
// runs to commit or rollback. A lock_timeout bounds how long a statement waits for a row lock.
//
// Driver errors are mapped to ledger.ErrTransientStoreConflict (serialization failures,
// deadlocks, lock timeouts), ledger.ErrStoreUnavailable (connection problems) or
// ledger.ErrStoreOperationFailed, always joined with the original error.
package postgresengine
