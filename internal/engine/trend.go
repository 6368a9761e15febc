package engine

import (
	"sort"
	"time"

	"grana/internal/core"
)

// MonthFlow is the income/expense pair for one calendar month.
type MonthFlow struct {
	Year    int
	Month   int // 1-12
	Income  core.Money
	Expense core.Money
}

// MonthlyFlows groups the ledger by (year, month) for the last `months`
// months ending at ref, oldest first. Months without activity appear with
// zero totals so charts keep a continuous axis.
func MonthlyFlows(txs []core.Transaction, ref time.Time, months int) []MonthFlow {
	if months < 1 {
		return nil
	}
	flows := make([]MonthFlow, months)
	index := make(map[[2]int]int, months)
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	for i := 0; i < months; i++ {
		m := first.AddDate(0, i, 0)
		flows[i] = MonthFlow{Year: m.Year(), Month: int(m.Month())}
		index[[2]int{m.Year(), int(m.Month())}] = i
	}
	for _, t := range txs {
		i, ok := index[[2]int{t.Date.Year(), t.Date.Month()}]
		if !ok {
			continue
		}
		amount := amountOrZero(t)
		switch t.Type {
		case core.Income:
			flows[i].Income.Cents += amount
		case core.Expense:
			flows[i].Expense.Cents += amount
		}
	}
	return flows
}

// CategoryTotals sums the expenses of one calendar month per category,
// largest first, ties broken by name for a stable order.
func CategoryTotals(txs []core.Transaction, year, month int) []core.CategoryAmount {
	sums := make(map[string]int64)
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		if t.Date.Year() != year || t.Date.Month() != month {
			continue
		}
		sums[t.Category] += amountOrZero(t)
	}
	out := make([]core.CategoryAmount, 0, len(sums))
	for name, cents := range sums {
		out = append(out, core.CategoryAmount{Name: name, Amount: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// InvestmentProgress is the amount/target ratio as a percentage for
// reserve and goal investments. Without a target there is no progress to
// report and the result is 0, never NaN.
func InvestmentProgress(inv core.Investment) float64 {
	if inv.Target.Cents <= 0 {
		return 0
	}
	return float64(inv.Amount.Cents) / float64(inv.Target.Cents) * 100
}
