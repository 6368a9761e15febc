package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"grana/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleTransaction() core.Transaction {
	return core.Transaction{
		Type:     core.Expense,
		Amount:   core.Money{Cents: 4200},
		Date:     core.NewDate(2025, 6, 10),
		Category: core.CategoryGroceries,
		Method:   core.Debit,
	}
}

func TestSQLiteTransactionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.CreateTransaction(ctx, sampleTransaction())
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	got, err := repo.GetTransaction(ctx, id)
	if err != nil {
		t.Fatalf("GetTransaction() error = %v", err)
	}
	if got.Amount.Cents != 4200 {
		t.Errorf("Amount.Cents = %d, want 4200", got.Amount.Cents)
	}
	if got.Date.Format(dateLayout) != "2025-06-10" {
		t.Errorf("Date = %s, want 2025-06-10", got.Date.Format(dateLayout))
	}

	got.Amount = core.Money{Cents: 5000}
	if err := repo.UpdateTransaction(ctx, got); err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}

	if err := repo.DeleteTransaction(ctx, id); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
	if _, err := repo.GetTransaction(ctx, id); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetTransaction() after delete error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteSyncBookkeeping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.CreateTransaction(ctx, sampleTransaction())
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	// A fresh row starts dirty at version 1.
	version, err := repo.RowVersion(ctx, EntityTransaction, id)
	if err != nil {
		t.Fatalf("RowVersion() error = %v", err)
	}
	if version != 1 {
		t.Errorf("version = %d, want 1", version)
	}

	pending, err := repo.GetPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSync() error = %v", err)
	}
	found := false
	for _, p := range pending {
		if p.Entity == EntityTransaction && p.ID == id {
			found = true
		}
	}
	if !found {
		t.Fatalf("new transaction missing from pending set: %+v", pending)
	}

	if err := repo.MarkSynced(ctx, EntityTransaction, id, version); err != nil {
		t.Fatalf("MarkSynced() error = %v", err)
	}
	pending, _ = repo.GetPendingSync(ctx, 10)
	for _, p := range pending {
		if p.Entity == EntityTransaction && p.ID == id {
			t.Fatal("transaction still pending after MarkSynced")
		}
	}

	// An update bumps the version and dirties the row again.
	tx, _ := repo.GetTransaction(ctx, id)
	tx.Amount = core.Money{Cents: 9999}
	if err := repo.UpdateTransaction(ctx, tx); err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}
	version, _ = repo.RowVersion(ctx, EntityTransaction, id)
	if version != 2 {
		t.Errorf("version after update = %d, want 2", version)
	}

	// MarkSynced with a stale version must not clear the dirty flag.
	if err := repo.MarkSynced(ctx, EntityTransaction, id, 1); err != nil {
		t.Fatalf("MarkSynced() error = %v", err)
	}
	pending, _ = repo.GetPendingSync(ctx, 10)
	found = false
	for _, p := range pending {
		if p.Entity == EntityTransaction && p.ID == id {
			found = true
		}
	}
	if !found {
		t.Error("stale MarkSynced cleared the dirty flag, row should stay pending")
	}
}

func TestSQLiteConfigRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Migration seeds an empty config under id 1.
	cfg, err := repo.GetConfig(ctx)
	if err != nil {
		t.Fatalf("GetConfig() on fresh db error = %v", err)
	}
	if len(cfg.Cards) != 0 {
		t.Errorf("fresh config has %d cards, want 0", len(cfg.Cards))
	}

	cfg.Settings.InitialBalance = core.Money{Cents: 12345}
	cfg.Cards = []core.CardConfig{
		{ID: "nubank", Name: "Nubank", Limit: core.Money{Cents: 500000}, ClosingDay: 28, DueDay: 7},
	}
	if err := repo.SaveConfig(ctx, cfg); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	got, err := repo.GetConfig(ctx)
	if err != nil {
		t.Fatalf("GetConfig() error = %v", err)
	}
	if got.Settings.InitialBalance.Cents != 12345 {
		t.Errorf("InitialBalance.Cents = %d, want 12345", got.Settings.InitialBalance.Cents)
	}
	if len(got.Cards) != 1 || got.Cards[0].ID != "nubank" {
		t.Errorf("Cards = %+v, want the one saved card", got.Cards)
	}

	if _, err := repo.RowVersion(ctx, EntityConfig, 1); err != nil {
		t.Errorf("RowVersion(config) error = %v", err)
	}
}

func TestSQLiteFixedAndDebts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	fid, err := repo.CreateFixedExpense(ctx, core.FixedExpense{
		Title: "Internet", Amount: core.Money{Cents: 11990}, Day: 5, Category: core.CategoryHouse,
	})
	if err != nil {
		t.Fatalf("CreateFixedExpense() error = %v", err)
	}
	templates, err := repo.ListFixedExpenses(ctx)
	if err != nil {
		t.Fatalf("ListFixedExpenses() error = %v", err)
	}
	if len(templates) != 1 || templates[0].ID != fid {
		t.Errorf("templates = %+v, want the one created row", templates)
	}

	did, err := repo.CreateDebt(ctx, core.Debt{
		Name: "Financiamento", Total: core.Money{Cents: 1200000},
		InstallmentsTotal: 12, InstallmentsPaid: 3, DueDay: 10,
	})
	if err != nil {
		t.Fatalf("CreateDebt() error = %v", err)
	}
	d, err := repo.GetDebt(ctx, did)
	if err != nil {
		t.Fatalf("GetDebt() error = %v", err)
	}
	if d.InstallmentsPaid != 3 {
		t.Errorf("InstallmentsPaid = %d, want 3", d.InstallmentsPaid)
	}
}
