// Package config provides database and lending configuration for the lending ledger.
//
// It contains factory functions for PostgreSQL connections with the different drivers
// (pgx.Pool, sql.DB, sqlx.DB) and decodes the deployment settings (DSN, driver, lending
// policy, lock timeout, log level) from the environment.
package config
