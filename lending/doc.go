// Package lending is the external interface of the borrowing engine.
//
// Engine wires the command and query handlers of the feature packages to a ledger store
// and adds logging and metrics around each call. Every state-changing call runs as one
// serializable, row-locking transaction and is retried on transient store conflicts.
//
//	engine, err := lending.NewEngine(store, lending.WithLogger(slog.Default()))
//	borrowed, err := engine.Borrow(ctx, "978-0132350884", memberID, 0)
//	returned, err := engine.Return(ctx, borrowed.LogID)
package lending
