// Package payfine marks an unpaid fine as paid.
package payfine
