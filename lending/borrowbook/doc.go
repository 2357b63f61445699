// Package borrowbook lends one copy of a book to a member.
//
// The handler locks the book, then the member, counts the member's open borrowings,
// lets Decide check the business rules and, on success, takes one copy and records the borrowing,
// all in one transaction.
package borrowbook
