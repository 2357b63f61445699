// Package catalog registers authors, books and members and bulk-loads catalog entries.
//
// Registrations are idempotent on their natural keys: an author on first and last name,
// a book on ISBN and a member on email. Registering an existing key returns the stored id.
package catalog
