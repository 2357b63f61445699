// Package outstandingfines lists the unpaid fines of a member.
package outstandingfines
