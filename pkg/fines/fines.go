// Package fines implements the lending policy's date arithmetic: due
// dates, overdue checks, and fine amounts. Everything here is pure; the
// loan ledger owns all state.
package fines

import (
	"math"
	"time"
)

const day = 24 * time.Hour

// Policy holds the lending policy knobs. Amounts are whole currency units.
type Policy struct {
	LoanPeriodDays int
	RatePerDay     int
	MaxRenewals    int
}

// DefaultPolicy mirrors the config defaults; mostly useful in tests.
func DefaultPolicy() Policy {
	return Policy{
		LoanPeriodDays: 15,
		RatePerDay:     1,
		MaxRenewals:    2,
	}
}

// DueDate returns the initial due date for a borrow at the given time.
func (p Policy) DueDate(borrowDate time.Time) time.Time {
	return borrowDate.AddDate(0, 0, p.LoanPeriodDays)
}

// Fine returns the fine for a loan due at dueDate and returned at
// returnDate. Returns on or before the due date are free; after that every
// started calendar day is charged, so a partial day counts as a full one.
func (p Policy) Fine(dueDate, returnDate time.Time) int {
	return p.daysLate(dueDate, returnDate) * p.RatePerDay
}

// IsOverdue reports whether a loan due at dueDate is overdue at now.
func (p Policy) IsOverdue(dueDate, now time.Time) bool {
	return now.After(dueDate)
}

// DaysOverdue returns how many chargeable days a loan due at dueDate has
// accumulated by now, zero if it isn't overdue.
func (p Policy) DaysOverdue(dueDate, now time.Time) int {
	return p.daysLate(dueDate, now)
}

func (p Policy) daysLate(dueDate, at time.Time) int {
	if !at.After(dueDate) {
		return 0
	}
	return int(math.Ceil(at.Sub(dueDate).Hours() / day.Hours()))
}
