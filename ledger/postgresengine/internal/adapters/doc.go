// Package adapters provide database adapter implementations for the PostgreSQL ledger store.
//
// This package implements the adapter pattern to support multiple PostgreSQL database libraries:
// pgx.Pool, sql.DB, and sqlx.DB. All adapters provide equivalent functionality through
// a common DBAdapter interface, allowing the ledger store to work with any
// supported database connection type.
//
// Every transaction an adapter begins runs at SERIALIZABLE isolation.
package adapters
