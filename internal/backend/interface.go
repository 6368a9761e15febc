package backend

import (
	"context"

	"grana/internal/core"
)

// TransactionStore persists individual money movements.
type TransactionStore interface {
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	CreateTransaction(ctx context.Context, t core.Transaction) (int64, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) error
	DeleteTransaction(ctx context.Context, id int64) error
}

// DebtStore persists amortized debts.
type DebtStore interface {
	ListDebts(ctx context.Context) ([]core.Debt, error)
	GetDebt(ctx context.Context, id int64) (core.Debt, error)
	CreateDebt(ctx context.Context, d core.Debt) (int64, error)
	UpdateDebt(ctx context.Context, d core.Debt) error
	DeleteDebt(ctx context.Context, id int64) error
}

// RecurringStore persists the fixed expense and income templates.
type RecurringStore interface {
	ListFixedExpenses(ctx context.Context) ([]core.FixedExpense, error)
	CreateFixedExpense(ctx context.Context, f core.FixedExpense) (int64, error)
	UpdateFixedExpense(ctx context.Context, f core.FixedExpense) error
	DeleteFixedExpense(ctx context.Context, id int64) error

	ListFixedIncomes(ctx context.Context) ([]core.FixedIncome, error)
	CreateFixedIncome(ctx context.Context, f core.FixedIncome) (int64, error)
	UpdateFixedIncome(ctx context.Context, f core.FixedIncome) error
	DeleteFixedIncome(ctx context.Context, id int64) error
}

// InvestmentStore persists investment positions.
type InvestmentStore interface {
	ListInvestments(ctx context.Context) ([]core.Investment, error)
	CreateInvestment(ctx context.Context, inv core.Investment) (int64, error)
	UpdateInvestment(ctx context.Context, inv core.Investment) error
	DeleteInvestment(ctx context.Context, id int64) error
}

// SettingsStore persists the user configuration blob as a single unit.
type SettingsStore interface {
	GetConfig(ctx context.Context) (core.Config, error)
	SaveConfig(ctx context.Context, cfg core.Config) error
}

// Backend is the unified persistence interface the service layer talks to.
type Backend interface {
	TransactionStore
	DebtStore
	RecurringStore
	InvestmentStore
	SettingsStore

	Close() error
}

// BackendType represents the type of backend
type BackendType string

const (
	PostgresBackend BackendType = "postgres"
	SQLiteBackend   BackendType = "sqlite"
	MemoryBackend   BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case PostgresBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Postgres specific
	DatabaseURL string

	// SQLite specific
	SQLiteDBPath string
}
