package memory

import (
	"context"
	"errors"
	"testing"

	"grana/internal/core"
)

func TestTransactionCRUD(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.CreateTransaction(ctx, core.Transaction{
		Type:     core.Expense,
		Amount:   core.Money{Cents: 4200},
		Date:     core.NewDate(2025, 6, 10),
		Category: core.CategoryGroceries,
		Method:   core.Debit,
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	if id != 1 {
		t.Errorf("first id = %d, want 1", id)
	}

	got, err := s.GetTransaction(ctx, id)
	if err != nil {
		t.Fatalf("GetTransaction() error = %v", err)
	}
	if got.Amount.Cents != 4200 {
		t.Errorf("Amount.Cents = %d, want 4200", got.Amount.Cents)
	}

	got.Amount = core.Money{Cents: 5000}
	if err := s.UpdateTransaction(ctx, got); err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}
	updated, _ := s.GetTransaction(ctx, id)
	if updated.Amount.Cents != 5000 {
		t.Errorf("Amount.Cents after update = %d, want 5000", updated.Amount.Cents)
	}

	if err := s.DeleteTransaction(ctx, id); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
	if _, err := s.GetTransaction(ctx, id); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetTransaction() after delete error = %v, want ErrNotFound", err)
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.CreateTransaction(ctx, core.Transaction{
		Type:   core.Expense,
		Amount: core.Money{Cents: 100},
		Date:   core.NewDate(2025, 6, 10),
		Method: core.Debit,
	}); !errors.Is(err, core.ErrEmptyCategory) {
		t.Errorf("CreateTransaction() error = %v, want ErrEmptyCategory", err)
	}

	if _, err := s.CreateDebt(ctx, core.Debt{
		Name:              "Empréstimo",
		Total:             core.Money{Cents: 100000},
		InstallmentsTotal: 10,
		DueDay:            42,
	}); !errors.Is(err, core.ErrInvalidDay) {
		t.Errorf("CreateDebt() error = %v, want ErrInvalidDay", err)
	}
}

func TestListReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.CreateTransaction(ctx, core.Transaction{
		Type:     core.Expense,
		Amount:   core.Money{Cents: 100},
		Date:     core.NewDate(2025, 6, 10),
		Category: core.CategoryHouse,
		Method:   core.Debit,
	})

	list, _ := s.ListTransactions(ctx)
	list[0].Amount = core.Money{Cents: 999}

	again, _ := s.ListTransactions(ctx)
	if again[0].Amount.Cents != 100 {
		t.Errorf("store mutated through returned slice: Cents = %d, want 100", again[0].Amount.Cents)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	cfg := core.Config{
		Settings: core.Settings{InitialBalance: core.Money{Cents: 12345}},
		Cards: []core.CardConfig{
			{ID: "nubank", Name: "Nubank", Limit: core.Money{Cents: 500000}, ClosingDay: 28, DueDay: 7},
		},
	}
	if err := s.SaveConfig(ctx, cfg); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	got, err := s.GetConfig(ctx)
	if err != nil {
		t.Fatalf("GetConfig() error = %v", err)
	}
	if got.Settings.InitialBalance.Cents != 12345 {
		t.Errorf("InitialBalance.Cents = %d, want 12345", got.Settings.InitialBalance.Cents)
	}
	if len(got.Cards) != 1 || got.Cards[0].ID != "nubank" {
		t.Errorf("Cards = %+v, want the one saved card", got.Cards)
	}

	// Mutating the returned config must not touch the stored one.
	got.Cards[0].Limit = core.Money{Cents: 1}
	again, _ := s.GetConfig(ctx)
	if again.Cards[0].Limit.Cents != 500000 {
		t.Errorf("stored card limit = %d, want 500000", again.Cards[0].Limit.Cents)
	}
}

func TestNewSeeded(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	txs, _ := s.ListTransactions(ctx)
	if len(txs) == 0 {
		t.Error("seeded store has no transactions")
	}
	debts, _ := s.ListDebts(ctx)
	if len(debts) == 0 {
		t.Error("seeded store has no debts")
	}
	cfg, _ := s.GetConfig(ctx)
	if len(cfg.Cards) == 0 {
		t.Error("seeded store has no card config")
	}
}
