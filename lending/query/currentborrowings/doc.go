// Package currentborrowings lists the books a member currently has out.
// A borrowing past its due date is reported as Overdue, derived at read time.
package currentborrowings
