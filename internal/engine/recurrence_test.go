package engine

import (
	"testing"
	"time"

	"grana/internal/core"
)

func TestPendingFixedAmount(t *testing.T) {
	ref := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	internet := core.FixedExpense{Title: "Internet", Amount: core.Money{Cents: 10000}, Day: 5, Category: core.CategoryHouse}
	academia := core.FixedExpense{Title: "Academia", Amount: core.Money{Cents: 15000}, Day: 10, Category: core.CategoryHealth}

	tests := []struct {
		name      string
		templates []core.FixedExpense
		txs       []core.Transaction
		want      int64
	}{
		{
			name:      "no transactions leaves everything pending",
			templates: []core.FixedExpense{internet, academia},
			want:      25000,
		},
		{
			name:      "payment within one percent counts as paid",
			templates: []core.FixedExpense{internet},
			txs:       []core.Transaction{tx(core.Expense, 9950)}, // 99.50 vs 100.00
			want:      0,
		},
		{
			name:      "payment five percent off stays pending",
			templates: []core.FixedExpense{internet},
			txs:       []core.Transaction{tx(core.Expense, 9500)},
			want:      10000,
		},
		{
			name:      "last month's payment does not count",
			templates: []core.FixedExpense{internet},
			txs:       []core.Transaction{tx(core.Expense, 10000, onDate(2025, 5, 5))},
			want:      10000,
		},
		{
			name:      "income of matching amount does not count",
			templates: []core.FixedExpense{internet},
			txs:       []core.Transaction{tx(core.Income, 10000)},
			want:      10000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PendingFixedAmount(tt.templates, tt.txs, ref)
			if got.Cents != tt.want {
				t.Errorf("PendingFixedAmount = %d, want %d", got.Cents, tt.want)
			}
		})
	}
}

func TestPendingFixedAmountConsumesEachPaymentOnce(t *testing.T) {
	// Two templates with the same amount: a single payment can only settle
	// one of them.
	ref := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	templates := []core.FixedExpense{
		{Title: "Streaming A", Amount: core.Money{Cents: 4000}, Day: 5, Category: core.CategorySubscriptions},
		{Title: "Streaming B", Amount: core.Money{Cents: 4000}, Day: 12, Category: core.CategorySubscriptions},
	}

	onePayment := []core.Transaction{tx(core.Expense, 4000)}
	if got := PendingFixedAmount(templates, onePayment, ref); got.Cents != 4000 {
		t.Errorf("one payment, two templates: pending = %d, want 4000", got.Cents)
	}

	twoPayments := []core.Transaction{tx(core.Expense, 4000), tx(core.Expense, 4000)}
	if got := PendingFixedAmount(templates, twoPayments, ref); got.Cents != 0 {
		t.Errorf("two payments, two templates: pending = %d, want 0", got.Cents)
	}
}

func TestPendingRent(t *testing.T) {
	ref := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	house := core.HouseConfig{Rent: core.Money{Cents: 250000}}

	rentTx := func(cents int64, opts ...func(*core.Transaction)) core.Transaction {
		trx := tx(core.Expense, cents, opts...)
		trx.Category = core.CategoryHouse
		trx.Subcategory = "Aluguel"
		return trx
	}

	tests := []struct {
		name string
		txs  []core.Transaction
		want int64
	}{
		{
			name: "nothing paid yet",
			want: 250000,
		},
		{
			name: "partial payment subtracts exactly",
			txs:  []core.Transaction{rentTx(100000)},
			want: 150000,
		},
		{
			name: "full payment clears the pending rent",
			txs:  []core.Transaction{rentTx(250000)},
			want: 0,
		},
		{
			name: "overpayment clamps at zero",
			txs:  []core.Transaction{rentTx(300000)},
			want: 0,
		},
		{
			name: "other house expenses do not count",
			txs: []core.Transaction{func() core.Transaction {
				trx := tx(core.Expense, 250000)
				trx.Category = core.CategoryHouse
				trx.Subcategory = "Condomínio"
				return trx
			}()},
			want: 250000,
		},
		{
			name: "last month's rent does not count",
			txs:  []core.Transaction{rentTx(250000, onDate(2025, 5, 5))},
			want: 250000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PendingRent(house, tt.txs, ref)
			if got.Cents != tt.want {
				t.Errorf("PendingRent = %d, want %d", got.Cents, tt.want)
			}
		})
	}
}
