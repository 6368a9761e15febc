package engine

import (
	"testing"
	"time"

	"grana/internal/core"
)

func TestMonthlyFlows(t *testing.T) {
	ref := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		tx(core.Income, 500000, onDate(2025, 6, 1)),
		tx(core.Expense, 120000, onDate(2025, 6, 10)),
		tx(core.Expense, 90000, onDate(2025, 5, 20)),
		tx(core.Income, 480000, onDate(2025, 1, 5)),
		tx(core.Expense, 70000, onDate(2024, 12, 28)), // outside the window
	}

	flows := MonthlyFlows(txs, ref, 6)
	if len(flows) != 6 {
		t.Fatalf("len(flows) = %d, want 6", len(flows))
	}
	if flows[0].Year != 2025 || flows[0].Month != 1 {
		t.Fatalf("flows[0] = %d-%d, want 2025-1 (oldest first)", flows[0].Year, flows[0].Month)
	}
	if flows[0].Income.Cents != 480000 {
		t.Errorf("January income = %d, want 480000", flows[0].Income.Cents)
	}
	if flows[4].Expense.Cents != 90000 {
		t.Errorf("May expense = %d, want 90000", flows[4].Expense.Cents)
	}
	if flows[5].Income.Cents != 500000 || flows[5].Expense.Cents != 120000 {
		t.Errorf("June = %+v, want income 500000 / expense 120000", flows[5])
	}
	// February had no movement but keeps its slot.
	if flows[1].Month != 2 || flows[1].Income.Cents != 0 || flows[1].Expense.Cents != 0 {
		t.Errorf("February slot = %+v, want zero totals", flows[1])
	}
}

func TestMonthlyFlowsZeroMonths(t *testing.T) {
	if flows := MonthlyFlows(nil, time.Now(), 0); flows != nil {
		t.Errorf("MonthlyFlows(0) = %v, want nil", flows)
	}
}

func TestCategoryTotals(t *testing.T) {
	groceries := func(cents int64) core.Transaction {
		trx := tx(core.Expense, cents)
		trx.Category = core.CategoryGroceries
		return trx
	}
	fuel := tx(core.Expense, 30000)
	fuel.Category = core.CategoryCar

	txs := []core.Transaction{
		groceries(40000),
		groceries(20000),
		fuel,
		tx(core.Income, 999999), // income never shows in the expense breakdown
		tx(core.Expense, 50000, onDate(2025, 5, 1)),
	}

	got := CategoryTotals(txs, 2025, 6)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(got), got)
	}
	if got[0].Name != core.CategoryGroceries || got[0].Amount.Cents != 60000 {
		t.Errorf("got[0] = %+v, want Mercado/60000 first", got[0])
	}
	if got[1].Name != core.CategoryCar || got[1].Amount.Cents != 30000 {
		t.Errorf("got[1] = %+v, want Carro/30000", got[1])
	}
}

func TestInvestmentProgress(t *testing.T) {
	tests := []struct {
		name string
		inv  core.Investment
		want float64
	}{
		{
			name: "halfway to the goal",
			inv:  core.Investment{Type: core.Goal, Amount: core.Money{Cents: 50000}, Target: core.Money{Cents: 100000}},
			want: 50,
		},
		{
			name: "zero target reports zero, not infinity",
			inv:  core.Investment{Type: core.Variable, Amount: core.Money{Cents: 50000}},
			want: 0,
		},
		{
			name: "past the goal",
			inv:  core.Investment{Type: core.Reserve, Amount: core.Money{Cents: 150000}, Target: core.Money{Cents: 100000}},
			want: 150,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InvestmentProgress(tt.inv); got != tt.want {
				t.Errorf("InvestmentProgress = %f, want %f", got, tt.want)
			}
		})
	}
}
