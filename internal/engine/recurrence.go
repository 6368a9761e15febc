package engine

import (
	"strings"
	"time"

	"grana/internal/core"
)

// matchTolerance is the amount-proximity window for deciding that a fixed
// template was paid this month: within 1% of the template amount.
const matchTolerancePercent = 100

// UnpaidFixedExpenses returns the templates with no matching expense in
// the reference month. A template matches an expense transaction whose
// amount sits within 1% of the template amount. Each transaction is
// consumed by at most one template, so two templates with near-identical
// amounts need two separate payments to both read as paid.
func UnpaidFixedExpenses(templates []core.FixedExpense, txs []core.Transaction, ref time.Time) []core.FixedExpense {
	used := make(map[int]bool)
	var unpaid []core.FixedExpense
	for _, tpl := range templates {
		matched := false
		for i, t := range txs {
			if used[i] || t.Type != core.Expense || !t.Date.SameMonth(ref) {
				continue
			}
			if withinTolerance(t.Amount.Cents, tpl.Amount.Cents) {
				used[i] = true
				matched = true
				break
			}
		}
		if !matched {
			unpaid = append(unpaid, tpl)
		}
	}
	return unpaid
}

// PendingFixedAmount sums the amounts of the templates still unpaid in
// the reference month.
func PendingFixedAmount(templates []core.FixedExpense, txs []core.Transaction, ref time.Time) core.Money {
	var total core.Money
	for _, tpl := range UnpaidFixedExpenses(templates, txs, ref) {
		total.Cents += tpl.Amount.Cents
	}
	return total
}

// PendingRent is how much of this month's rent is still open. Unlike the
// generic template check it subtracts exactly: partial rent payments
// reduce the pending amount instead of leaving it untouched.
func PendingRent(house core.HouseConfig, txs []core.Transaction, ref time.Time) core.Money {
	paid := int64(0)
	for _, t := range txs {
		if t.Type != core.Expense || !t.Date.SameMonth(ref) {
			continue
		}
		if t.Category != core.CategoryHouse {
			continue
		}
		if !strings.Contains(t.Subcategory, core.RentSubcategory) {
			continue
		}
		paid += amountOrZero(t)
	}
	pending := house.Rent.Cents - paid
	if pending < 0 {
		pending = 0
	}
	return core.Money{Cents: pending}
}

// withinTolerance reports whether got is within 1% of want, on cents.
func withinTolerance(got, want int64) bool {
	diff := got - want
	if diff < 0 {
		diff = -diff
	}
	return diff <= want/matchTolerancePercent
}
