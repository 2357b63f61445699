// Package ledger provides the core types of the lending ledger: books, members,
// borrowing records and fines, together with the error taxonomy and the
// contract a store transaction has to fulfill.
//
// All state that is shared between concurrent requests (available copies of a
// book, the active borrowings of a member, record and fine status) lives in the
// store and is only mutated inside a locked transaction. Nothing in this
// package caches such values across calls.
//
// Key types:
//   - Book, Member, BorrowingRecord, Fine: the persisted entities
//   - Tx: the handle a unit of work receives from the transaction executor
//   - UnitOfWork: a function that runs inside exactly one transaction
//
// Common usage pattern:
//
//	err := store.RunInTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
//		book, err := tx.LockBookByISBN(ctx, isbn)
//		if err != nil {
//			return err // rolls back
//		}
//
//		return tx.DecrementAvailableCopies(ctx, book.ID)
//	})
package ledger
