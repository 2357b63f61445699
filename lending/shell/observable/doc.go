// Package observable wraps core command and query handlers with logging and metrics.
// The wrapped handlers stay free of observability concerns.
package observable
