// Package spy provides test spies for the ledger observability interfaces:
// a slog.Handler that captures records and a MetricsCollector that captures calls.
package spy
