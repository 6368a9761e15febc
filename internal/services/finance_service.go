// Package services orchestrates the backend, the computation engine and the
// optional sync publisher. Handlers talk to this layer, never to a
// repository directly.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"grana/internal/amqp"
	"grana/internal/backend"
	"grana/internal/core"
	"grana/internal/engine"
	"grana/internal/storage"
)

// FinanceService owns every read and write path of the application. Writes
// go to the backend first; the sync message is best effort and never fails
// the request, the periodic worker scan catches anything that was dropped.
type FinanceService struct {
	backend    backend.Backend
	amqpClient *amqp.Client
}

func NewFinanceService(b backend.Backend, amqpClient *amqp.Client) *FinanceService {
	return &FinanceService{
		backend:    b,
		amqpClient: amqpClient,
	}
}

// Snapshot materializes the full data set the engine computes from.
func (s *FinanceService) Snapshot(ctx context.Context) (engine.Snapshot, error) {
	var snap engine.Snapshot
	var err error

	if snap.Transactions, err = s.backend.ListTransactions(ctx); err != nil {
		return snap, fmt.Errorf("load transactions: %w", err)
	}
	if snap.Debts, err = s.backend.ListDebts(ctx); err != nil {
		return snap, fmt.Errorf("load debts: %w", err)
	}
	if snap.FixedExpenses, err = s.backend.ListFixedExpenses(ctx); err != nil {
		return snap, fmt.Errorf("load fixed expenses: %w", err)
	}
	if snap.FixedIncomes, err = s.backend.ListFixedIncomes(ctx); err != nil {
		return snap, fmt.Errorf("load fixed incomes: %w", err)
	}
	if snap.Investments, err = s.backend.ListInvestments(ctx); err != nil {
		return snap, fmt.Errorf("load investments: %w", err)
	}
	if snap.Config, err = s.backend.GetConfig(ctx); err != nil {
		return snap, fmt.Errorf("load config: %w", err)
	}
	return snap, nil
}

func (s *FinanceService) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return s.backend.ListTransactions(ctx)
}

func (s *FinanceService) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	return s.backend.GetTransaction(ctx, id)
}

func (s *FinanceService) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	id, err := s.backend.CreateTransaction(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}
	s.publishSync(ctx, storage.EntityTransaction, id, 1)
	return id, nil
}

func (s *FinanceService) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := s.backend.UpdateTransaction(ctx, t); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	s.publishSync(ctx, storage.EntityTransaction, t.ID, 0)
	return nil
}

func (s *FinanceService) DeleteTransaction(ctx context.Context, id int64) error {
	if err := s.backend.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.publishDelete(ctx, storage.EntityTransaction, id)
	return nil
}

func (s *FinanceService) ListDebts(ctx context.Context) ([]core.Debt, error) {
	return s.backend.ListDebts(ctx)
}

func (s *FinanceService) GetDebt(ctx context.Context, id int64) (core.Debt, error) {
	return s.backend.GetDebt(ctx, id)
}

func (s *FinanceService) CreateDebt(ctx context.Context, d core.Debt) (int64, error) {
	id, err := s.backend.CreateDebt(ctx, d)
	if err != nil {
		return 0, fmt.Errorf("create debt: %w", err)
	}
	s.publishSync(ctx, storage.EntityDebt, id, 1)
	return id, nil
}

func (s *FinanceService) UpdateDebt(ctx context.Context, d core.Debt) error {
	if err := s.backend.UpdateDebt(ctx, d); err != nil {
		return fmt.Errorf("update debt: %w", err)
	}
	s.publishSync(ctx, storage.EntityDebt, d.ID, 0)
	return nil
}

func (s *FinanceService) DeleteDebt(ctx context.Context, id int64) error {
	if err := s.backend.DeleteDebt(ctx, id); err != nil {
		return fmt.Errorf("delete debt: %w", err)
	}
	s.publishDelete(ctx, storage.EntityDebt, id)
	return nil
}

// PayDebtInstallment advances a debt by exactly one installment. Paying a
// settled debt is a no-op, the stored counters never move past the ceiling.
func (s *FinanceService) PayDebtInstallment(ctx context.Context, id int64) (core.Debt, error) {
	d, err := s.backend.GetDebt(ctx, id)
	if err != nil {
		return core.Debt{}, err
	}

	paid := engine.PayInstallment(d)
	if paid.InstallmentsPaid == d.InstallmentsPaid {
		return d, nil
	}

	if err := s.backend.UpdateDebt(ctx, paid); err != nil {
		return core.Debt{}, fmt.Errorf("pay installment: %w", err)
	}
	s.publishSync(ctx, storage.EntityDebt, paid.ID, 0)

	slog.InfoContext(ctx, "Debt installment paid",
		"debt_id", paid.ID,
		"installments_paid", paid.InstallmentsPaid,
		"installments_total", paid.InstallmentsTotal)
	return paid, nil
}

func (s *FinanceService) ListFixedExpenses(ctx context.Context) ([]core.FixedExpense, error) {
	return s.backend.ListFixedExpenses(ctx)
}

func (s *FinanceService) CreateFixedExpense(ctx context.Context, f core.FixedExpense) (int64, error) {
	id, err := s.backend.CreateFixedExpense(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("create fixed expense: %w", err)
	}
	s.publishSync(ctx, storage.EntityFixedExpense, id, 1)
	return id, nil
}

func (s *FinanceService) UpdateFixedExpense(ctx context.Context, f core.FixedExpense) error {
	if err := s.backend.UpdateFixedExpense(ctx, f); err != nil {
		return fmt.Errorf("update fixed expense: %w", err)
	}
	s.publishSync(ctx, storage.EntityFixedExpense, f.ID, 0)
	return nil
}

func (s *FinanceService) DeleteFixedExpense(ctx context.Context, id int64) error {
	if err := s.backend.DeleteFixedExpense(ctx, id); err != nil {
		return fmt.Errorf("delete fixed expense: %w", err)
	}
	s.publishDelete(ctx, storage.EntityFixedExpense, id)
	return nil
}

func (s *FinanceService) ListFixedIncomes(ctx context.Context) ([]core.FixedIncome, error) {
	return s.backend.ListFixedIncomes(ctx)
}

func (s *FinanceService) CreateFixedIncome(ctx context.Context, f core.FixedIncome) (int64, error) {
	id, err := s.backend.CreateFixedIncome(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("create fixed income: %w", err)
	}
	s.publishSync(ctx, storage.EntityFixedIncome, id, 1)
	return id, nil
}

func (s *FinanceService) UpdateFixedIncome(ctx context.Context, f core.FixedIncome) error {
	if err := s.backend.UpdateFixedIncome(ctx, f); err != nil {
		return fmt.Errorf("update fixed income: %w", err)
	}
	s.publishSync(ctx, storage.EntityFixedIncome, f.ID, 0)
	return nil
}

func (s *FinanceService) DeleteFixedIncome(ctx context.Context, id int64) error {
	if err := s.backend.DeleteFixedIncome(ctx, id); err != nil {
		return fmt.Errorf("delete fixed income: %w", err)
	}
	s.publishDelete(ctx, storage.EntityFixedIncome, id)
	return nil
}

func (s *FinanceService) ListInvestments(ctx context.Context) ([]core.Investment, error) {
	return s.backend.ListInvestments(ctx)
}

func (s *FinanceService) CreateInvestment(ctx context.Context, inv core.Investment) (int64, error) {
	id, err := s.backend.CreateInvestment(ctx, inv)
	if err != nil {
		return 0, fmt.Errorf("create investment: %w", err)
	}
	s.publishSync(ctx, storage.EntityInvestment, id, 1)
	return id, nil
}

func (s *FinanceService) UpdateInvestment(ctx context.Context, inv core.Investment) error {
	if err := s.backend.UpdateInvestment(ctx, inv); err != nil {
		return fmt.Errorf("update investment: %w", err)
	}
	s.publishSync(ctx, storage.EntityInvestment, inv.ID, 0)
	return nil
}

func (s *FinanceService) DeleteInvestment(ctx context.Context, id int64) error {
	if err := s.backend.DeleteInvestment(ctx, id); err != nil {
		return fmt.Errorf("delete investment: %w", err)
	}
	s.publishDelete(ctx, storage.EntityInvestment, id)
	return nil
}

func (s *FinanceService) GetConfig(ctx context.Context) (core.Config, error) {
	return s.backend.GetConfig(ctx)
}

func (s *FinanceService) SaveConfig(ctx context.Context, cfg core.Config) error {
	for _, card := range cfg.Cards {
		if err := card.Validate(); err != nil {
			return fmt.Errorf("card %q: %w", card.ID, err)
		}
	}
	if err := s.backend.SaveConfig(ctx, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	s.publishSync(ctx, storage.EntityConfig, 1, 0)
	return nil
}

// ReconcileBalances adjusts the stored initial balances so the displayed
// figures land exactly on the real-world values the user just checked.
// Transaction history is never touched.
func (s *FinanceService) ReconcileBalances(ctx context.Context, targetNet, targetBenefit core.Money) (core.Config, error) {
	cfg, err := s.backend.GetConfig(ctx)
	if err != nil {
		return core.Config{}, fmt.Errorf("load config: %w", err)
	}
	txs, err := s.backend.ListTransactions(ctx)
	if err != nil {
		return core.Config{}, fmt.Errorf("load transactions: %w", err)
	}

	raw := engine.ComputeBalances(txs, core.Settings{})
	cfg.Settings.InitialBalance = engine.ReconcileOffset(targetNet, raw.Net)
	cfg.Settings.InitialBenefitBalance = engine.ReconcileOffset(targetBenefit, raw.Benefit)

	if err := s.backend.SaveConfig(ctx, cfg); err != nil {
		return core.Config{}, fmt.Errorf("save config: %w", err)
	}
	s.publishSync(ctx, storage.EntityConfig, 1, 0)

	slog.InfoContext(ctx, "Balances reconciled",
		"net_offset_cents", cfg.Settings.InitialBalance.Cents,
		"benefit_offset_cents", cfg.Settings.InitialBenefitBalance.Cents)
	return cfg, nil
}

// ReconcileInvoice adjusts one card's invoice offset so the computed
// current invoice matches the real statement.
func (s *FinanceService) ReconcileInvoice(ctx context.Context, cardID string, target core.Money, ref time.Time) (core.Config, error) {
	cfg, err := s.backend.GetConfig(ctx)
	if err != nil {
		return core.Config{}, fmt.Errorf("load config: %w", err)
	}
	txs, err := s.backend.ListTransactions(ctx)
	if err != nil {
		return core.Config{}, fmt.Errorf("load transactions: %w", err)
	}

	found := false
	for i, card := range cfg.Cards {
		if card.ID != cardID {
			continue
		}
		card.InvoiceOffset = core.Money{}
		raw := engine.ComputeInvoice(txs, card, ref)
		cfg.Cards[i].InvoiceOffset = engine.ReconcileOffset(target, raw.Current)
		found = true
		break
	}
	if !found {
		return core.Config{}, fmt.Errorf("card %q: %w", cardID, core.ErrNotFound)
	}

	if err := s.backend.SaveConfig(ctx, cfg); err != nil {
		return core.Config{}, fmt.Errorf("save config: %w", err)
	}
	s.publishSync(ctx, storage.EntityConfig, 1, 0)
	return cfg, nil
}

func (s *FinanceService) Close() error {
	var errs []error

	if s.backend != nil {
		if err := s.backend.Close(); err != nil {
			errs = append(errs, fmt.Errorf("backend: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close finance service: %v", errs)
	}
	return nil
}

func (s *FinanceService) publishSync(ctx context.Context, entity string, id, version int64) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishSync(ctx, entity, id, version); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"entity", entity, "id", id, "error", err)
	}
}

func (s *FinanceService) publishDelete(ctx context.Context, entity string, id int64) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishDelete(ctx, entity, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"entity", entity, "id", id, "error", err)
	}
}
