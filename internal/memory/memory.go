// Package memory provides an in-memory backend used by the demo mode and
// by tests. It keeps everything behind a single mutex and hands out copies,
// so callers can never mutate the store through a returned slice.
package memory

import (
	"context"
	"fmt"
	"sync"

	"grana/internal/core"
)

type Store struct {
	mu            sync.Mutex
	nextID        int64
	transactions  []core.Transaction
	debts         []core.Debt
	fixedExpenses []core.FixedExpense
	fixedIncomes  []core.FixedIncome
	investments   []core.Investment
	config        core.Config
}

func New() *Store {
	return &Store{nextID: 1}
}

// NewSeeded returns a store pre-filled with a plausible month of data so the
// demo mode has something to show.
func NewSeeded() *Store {
	s := New()
	ctx := context.Background()
	now := core.Today()
	y, m := now.Year(), now.Month()

	seedTxs := []core.Transaction{
		{Type: core.Income, Amount: core.Money{Cents: 650000}, Date: core.NewDate(y, m, 5), Category: core.CategoryWork, Salary: true},
		{Type: core.Expense, Amount: core.Money{Cents: 180000}, Date: core.NewDate(y, m, 6), Category: core.CategoryHouse, Subcategory: core.RentSubcategory},
		{Type: core.Expense, Amount: core.Money{Cents: 42050}, Date: core.NewDate(y, m, 8), Category: core.CategoryGroceries},
		{Type: core.Expense, Amount: core.Money{Cents: 12900}, Date: core.NewDate(y, m, 10), Category: core.CategoryFood, Method: core.Credit, CardID: "nubank"},
		{Type: core.Expense, Amount: core.Money{Cents: 25000}, Date: core.NewDate(y, m, 12), Category: core.CategoryCar, Subcategory: "Combustível"},
		{Type: core.Income, Amount: core.Money{Cents: 80000}, Date: core.NewDate(y, m, 1), Category: core.CategoryWork, Benefit: true},
	}
	for i := range seedTxs {
		if seedTxs[i].Method == "" {
			seedTxs[i].Method = core.Debit
		}
		s.CreateTransaction(ctx, seedTxs[i])
	}

	s.CreateDebt(ctx, core.Debt{
		Name:              "Financiamento carro",
		Total:             core.Money{Cents: 3600000},
		InstallmentsTotal: 36,
		InstallmentsPaid:  12,
		DueDay:            15,
		Category:          core.CategoryCar,
	})
	s.CreateFixedExpense(ctx, core.FixedExpense{Title: "Internet", Amount: core.Money{Cents: 11990}, Day: 5, Category: core.CategoryHouse})
	s.CreateFixedExpense(ctx, core.FixedExpense{Title: "Academia", Amount: core.Money{Cents: 14900}, Day: 10, Category: core.CategoryHealth})
	s.CreateFixedIncome(ctx, core.FixedIncome{Title: "Salário", Amount: core.Money{Cents: 650000}, Day: 5, Category: core.CategoryWork})
	s.CreateInvestment(ctx, core.Investment{Name: "Reserva de emergência", Type: core.Reserve, Amount: core.Money{Cents: 1200000}, Target: core.Money{Cents: 3900000}})

	s.SaveConfig(ctx, core.Config{
		Settings: core.Settings{InitialBalance: core.Money{Cents: 250000}},
		Cards: []core.CardConfig{
			{ID: "nubank", Name: "Nubank", Limit: core.Money{Cents: 800000}, ClosingDay: 28, DueDay: 7},
		},
		House: core.HouseConfig{Rent: core.Money{Cents: 180000}, Condo: core.Money{Cents: 45000}},
	})
	return s
}

func (s *Store) Close() error { return nil }

func (s *Store) allocID() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.transactions...), nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.transactions {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.allocID()
	s.transactions = append(s.transactions, t)
	return t.ID, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.transactions {
		if s.transactions[i].ID == t.ID {
			s.transactions[i] = t
			return nil
		}
	}
	return fmt.Errorf("transaction %d: %w", t.ID, core.ErrNotFound)
}

func (s *Store) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
}

func (s *Store) ListDebts(_ context.Context) ([]core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Debt(nil), s.debts...), nil
}

func (s *Store) GetDebt(_ context.Context, id int64) (core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.debts {
		if d.ID == id {
			return d, nil
		}
	}
	return core.Debt{}, fmt.Errorf("debt %d: %w", id, core.ErrNotFound)
}

func (s *Store) CreateDebt(_ context.Context, d core.Debt) (int64, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = s.allocID()
	s.debts = append(s.debts, d)
	return d.ID, nil
}

func (s *Store) UpdateDebt(_ context.Context, d core.Debt) error {
	if err := d.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.debts {
		if s.debts[i].ID == d.ID {
			s.debts[i] = d
			return nil
		}
	}
	return fmt.Errorf("debt %d: %w", d.ID, core.ErrNotFound)
}

func (s *Store) DeleteDebt(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.debts {
		if s.debts[i].ID == id {
			s.debts = append(s.debts[:i], s.debts[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("debt %d: %w", id, core.ErrNotFound)
}

func (s *Store) ListFixedExpenses(_ context.Context) ([]core.FixedExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.FixedExpense(nil), s.fixedExpenses...), nil
}

func (s *Store) CreateFixedExpense(_ context.Context, f core.FixedExpense) (int64, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f.ID = s.allocID()
	s.fixedExpenses = append(s.fixedExpenses, f)
	return f.ID, nil
}

func (s *Store) UpdateFixedExpense(_ context.Context, f core.FixedExpense) error {
	if err := f.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.fixedExpenses {
		if s.fixedExpenses[i].ID == f.ID {
			s.fixedExpenses[i] = f
			return nil
		}
	}
	return fmt.Errorf("fixed expense %d: %w", f.ID, core.ErrNotFound)
}

func (s *Store) DeleteFixedExpense(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.fixedExpenses {
		if s.fixedExpenses[i].ID == id {
			s.fixedExpenses = append(s.fixedExpenses[:i], s.fixedExpenses[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("fixed expense %d: %w", id, core.ErrNotFound)
}

func (s *Store) ListFixedIncomes(_ context.Context) ([]core.FixedIncome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.FixedIncome(nil), s.fixedIncomes...), nil
}

func (s *Store) CreateFixedIncome(_ context.Context, f core.FixedIncome) (int64, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f.ID = s.allocID()
	s.fixedIncomes = append(s.fixedIncomes, f)
	return f.ID, nil
}

func (s *Store) UpdateFixedIncome(_ context.Context, f core.FixedIncome) error {
	if err := f.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.fixedIncomes {
		if s.fixedIncomes[i].ID == f.ID {
			s.fixedIncomes[i] = f
			return nil
		}
	}
	return fmt.Errorf("fixed income %d: %w", f.ID, core.ErrNotFound)
}

func (s *Store) DeleteFixedIncome(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.fixedIncomes {
		if s.fixedIncomes[i].ID == id {
			s.fixedIncomes = append(s.fixedIncomes[:i], s.fixedIncomes[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("fixed income %d: %w", id, core.ErrNotFound)
}

func (s *Store) ListInvestments(_ context.Context) ([]core.Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Investment(nil), s.investments...), nil
}

func (s *Store) CreateInvestment(_ context.Context, inv core.Investment) (int64, error) {
	if err := inv.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	inv.ID = s.allocID()
	s.investments = append(s.investments, inv)
	return inv.ID, nil
}

func (s *Store) UpdateInvestment(_ context.Context, inv core.Investment) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.investments {
		if s.investments[i].ID == inv.ID {
			s.investments[i] = inv
			return nil
		}
	}
	return fmt.Errorf("investment %d: %w", inv.ID, core.ErrNotFound)
}

func (s *Store) DeleteInvestment(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.investments {
		if s.investments[i].ID == id {
			s.investments = append(s.investments[:i], s.investments[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("investment %d: %w", id, core.ErrNotFound)
}

func (s *Store) GetConfig(_ context.Context) (core.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.config
	cfg.Cards = append([]core.CardConfig(nil), s.config.Cards...)
	return cfg, nil
}

func (s *Store) SaveConfig(_ context.Context, cfg core.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg.Cards = append([]core.CardConfig(nil), cfg.Cards...)
	s.config = cfg
	return nil
}
