// Package returnbook closes a borrowing, puts the copy back and charges a fine for a late return.
package returnbook
