package engine

import (
	"testing"
	"time"

	"grana/internal/core"
)

func TestComputeInvoice(t *testing.T) {
	ref := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	card := core.CardConfig{
		ID:         "nubank",
		Limit:      core.Money{Cents: 500000},
		ClosingDay: 28,
		DueDay:     5,
	}

	txs := []core.Transaction{
		tx(core.Expense, 30000, onCredit("nubank")),                      // this month
		tx(core.Expense, 20000, onCredit("nubank"), onDate(2025, 7, 2)),  // next cycle
		tx(core.Expense, 50000, onCredit("nubank"), onDate(2025, 5, 20)), // last month
		tx(core.Expense, 10000, onCredit("inter")),                       // other card
		tx(core.Expense, 40000),                                          // debit, ignored
	}

	inv := ComputeInvoice(txs, card, ref)
	if inv.Current.Cents != 30000 {
		t.Errorf("Current = %d, want 30000", inv.Current.Cents)
	}
	if inv.LimitUsed.Cents != 50000 {
		t.Errorf("LimitUsed = %d, want 50000 (this month plus future cycles)", inv.LimitUsed.Cents)
	}
	if inv.Available.Cents != 450000 {
		t.Errorf("Available = %d, want 450000", inv.Available.Cents)
	}
	if inv.LimitPercent != 10 {
		t.Errorf("LimitPercent = %f, want 10", inv.LimitPercent)
	}
}

func TestComputeInvoiceOffset(t *testing.T) {
	ref := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	card := core.CardConfig{ID: "nubank", Limit: core.Money{Cents: 100000}, ClosingDay: 28, DueDay: 5,
		InvoiceOffset: core.Money{Cents: 12300}}

	inv := ComputeInvoice(nil, card, ref)
	if inv.Current.Cents != 12300 {
		t.Errorf("Current = %d, want the bare offset 12300", inv.Current.Cents)
	}
	if inv.LimitUsed.Cents != 12300 {
		t.Errorf("LimitUsed = %d, want 12300", inv.LimitUsed.Cents)
	}
}

func TestComputeInvoiceZeroLimit(t *testing.T) {
	ref := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	card := core.CardConfig{ID: "nubank", ClosingDay: 28, DueDay: 5}

	txs := []core.Transaction{tx(core.Expense, 99999, onCredit("nubank"))}
	inv := ComputeInvoice(txs, card, ref)
	if inv.LimitPercent != 0 {
		t.Errorf("LimitPercent with zero limit = %f, want 0", inv.LimitPercent)
	}
}

func TestComputeInvoiceOverLimit(t *testing.T) {
	ref := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	card := core.CardConfig{ID: "nubank", Limit: core.Money{Cents: 10000}, ClosingDay: 28, DueDay: 5}

	txs := []core.Transaction{tx(core.Expense, 15000, onCredit("nubank"))}
	inv := ComputeInvoice(txs, card, ref)
	if inv.Available.Cents != -5000 {
		t.Errorf("Available = %d, want -5000 (over-limit is representable)", inv.Available.Cents)
	}
}

func TestAggregateInvoices(t *testing.T) {
	ref := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	cards := []core.CardConfig{
		{ID: "nubank", Limit: core.Money{Cents: 300000}, ClosingDay: 28, DueDay: 5},
		{ID: "inter", Limit: core.Money{Cents: 100000}, ClosingDay: 20, DueDay: 1},
	}
	txs := []core.Transaction{
		tx(core.Expense, 30000, onCredit("nubank")),
		tx(core.Expense, 10000, onCredit("inter")),
		tx(core.Expense, 7000, onCredit("desconhecido")), // no configured card
	}

	inv := AggregateInvoices(txs, cards, ref)
	if inv.Current.Cents != 40000 {
		t.Errorf("Current = %d, want 40000 (sum of per-card invoices)", inv.Current.Cents)
	}
	if inv.Available.Cents != 360000 {
		t.Errorf("Available = %d, want 360000 against the combined limit", inv.Available.Cents)
	}
	if inv.LimitPercent != 10 {
		t.Errorf("LimitPercent = %f, want 10", inv.LimitPercent)
	}
}
