package engine

import (
	"testing"

	"grana/internal/core"
)

func tx(t core.TransactionType, cents int64, opts ...func(*core.Transaction)) core.Transaction {
	trx := core.Transaction{
		Type:     t,
		Amount:   core.Money{Cents: cents},
		Date:     core.NewDate(2025, 6, 10),
		Category: core.CategoryOther,
		Method:   core.Debit,
	}
	for _, opt := range opts {
		opt(&trx)
	}
	return trx
}

func onCredit(card string) func(*core.Transaction) {
	return func(t *core.Transaction) {
		t.Method = core.Credit
		t.CardID = card
	}
}

func asBenefit(t *core.Transaction) { t.Benefit = true }

func onDate(year, month, day int) func(*core.Transaction) {
	return func(t *core.Transaction) { t.Date = core.NewDate(year, month, day) }
}

func TestComputeBalances(t *testing.T) {
	tests := []struct {
		name        string
		txs         []core.Transaction
		settings    core.Settings
		wantNet     int64
		wantBenefit int64
	}{
		{
			name:        "empty ledger yields the initial offsets",
			settings:    core.Settings{InitialBalance: core.Money{Cents: 1500}, InitialBenefitBalance: core.Money{Cents: 700}},
			wantNet:     1500,
			wantBenefit: 700,
		},
		{
			name: "credit expenses stay off the net balance",
			txs: []core.Transaction{
				tx(core.Income, 500000),
				tx(core.Expense, 120000),
				tx(core.Expense, 30000, onCredit("nubank")),
			},
			wantNet: 380000,
		},
		{
			name: "benefit income feeds only the benefit balance",
			txs: []core.Transaction{
				tx(core.Income, 500000),
				tx(core.Income, 80000, asBenefit),
			},
			wantNet:     500000,
			wantBenefit: 80000,
		},
		{
			name: "negative amount contributes zero",
			txs: []core.Transaction{
				tx(core.Income, 100000),
				tx(core.Expense, -5000),
			},
			wantNet: 100000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeBalances(tt.txs, tt.settings)
			if got.Net.Cents != tt.wantNet {
				t.Errorf("Net = %d, want %d", got.Net.Cents, tt.wantNet)
			}
			if got.Benefit.Cents != tt.wantBenefit {
				t.Errorf("Benefit = %d, want %d", got.Benefit.Cents, tt.wantBenefit)
			}
		})
	}
}

func TestReconcileOffsetRoundTrip(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Income, 420000),
		tx(core.Expense, 98750),
	}
	raw := ComputeBalances(txs, core.Settings{}).Net

	target := core.Money{Cents: 512345}
	offset := ReconcileOffset(target, raw)

	got := ComputeBalances(txs, core.Settings{InitialBalance: offset}).Net
	if got.Cents != target.Cents {
		t.Errorf("reconciled net = %d, want exactly %d", got.Cents, target.Cents)
	}
}

func TestReconcileOffsetNegative(t *testing.T) {
	raw := core.Money{Cents: 100000}
	target := core.Money{Cents: 40000}
	if got := ReconcileOffset(target, raw); got.Cents != -60000 {
		t.Errorf("offset = %d, want -60000", got.Cents)
	}
}
