package engine

import (
	"time"

	"grana/internal/core"
)

// DebtStatus is the derived amortization view of a single debt.
type DebtStatus struct {
	Installment     core.Money
	Remaining       core.Money
	RemainingMonths int
	ProgressPercent float64
	PaidOff         bool
}

// ComputeDebtStatus derives the amortization figures for one debt. A debt
// with more installments paid than its total (which well-formed input
// never produces) reads as fully paid rather than as a negative balance.
func ComputeDebtStatus(d core.Debt) DebtStatus {
	installment := InstallmentValue(d)
	remaining := d.Total.Cents - installment.Cents*int64(d.InstallmentsPaid)
	if remaining < 0 {
		remaining = 0
	}
	months := d.InstallmentsTotal - d.InstallmentsPaid
	if months < 0 {
		months = 0
	}
	var progress float64
	if d.InstallmentsTotal > 0 {
		progress = float64(d.InstallmentsPaid) / float64(d.InstallmentsTotal) * 100
	}
	return DebtStatus{
		Installment:     installment,
		Remaining:       core.Money{Cents: remaining},
		RemainingMonths: months,
		ProgressPercent: progress,
		PaidOff:         d.InstallmentsPaid >= d.InstallmentsTotal,
	}
}

// InstallmentValue is the amount due per period: the explicit value when
// stored, otherwise an even split of the total.
func InstallmentValue(d core.Debt) core.Money {
	if d.Installment.Cents > 0 {
		return d.Installment
	}
	if d.InstallmentsTotal < 1 {
		return core.Money{}
	}
	return core.Money{Cents: d.Total.Cents / int64(d.InstallmentsTotal)}
}

// PayInstallment advances a debt by one payment. At the cap it returns the
// debt unchanged, so a double-submitted payment can never push the counter
// past the installment total.
func PayInstallment(d core.Debt) core.Debt {
	if d.InstallmentsPaid >= d.InstallmentsTotal {
		return d
	}
	d.InstallmentsPaid++
	return d
}

// MonthlyCommitment sums the installment of every active debt. A debt
// stops contributing the moment it reaches its cap; there is no
// partial-month proration.
func MonthlyCommitment(debts []core.Debt) core.Money {
	var total core.Money
	for _, d := range debts {
		status := ComputeDebtStatus(d)
		if status.PaidOff {
			continue
		}
		total.Cents += status.Installment.Cents
	}
	return total
}

// FreedomDate projects the first-of-month date when the debt will be paid
// off. For an already settled debt it returns ok=false instead of a date.
func FreedomDate(d core.Debt, ref time.Time) (time.Time, bool) {
	status := ComputeDebtStatus(d)
	if status.RemainingMonths == 0 {
		return time.Time{}, false
	}
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	return first.AddDate(0, status.RemainingMonths, 0), true
}

// NextDueDate resolves a debt's day-of-month due day into the next
// concrete date on or after ref, clamping day 29-31 to the last day of
// short months.
func NextDueDate(d core.Debt, ref time.Time) time.Time {
	due := dateWithClampedDay(ref.Year(), ref.Month(), d.DueDay, ref.Location())
	if due.Before(time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())) {
		next := ref.AddDate(0, 1, 0)
		due = dateWithClampedDay(next.Year(), next.Month(), d.DueDay, ref.Location())
	}
	return due
}

func dateWithClampedDay(year int, month time.Month, day int, loc *time.Location) time.Time {
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}
