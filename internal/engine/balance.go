// Package engine computes every derived figure shown on the dashboard
// from a raw snapshot of the ledger. All functions are pure: they take the
// in-memory records plus a reference time and return plain values, so the
// same snapshot always yields the same numbers.
package engine

import (
	"grana/internal/core"
)

// Snapshot is the full set of records an engine call operates on. Callers
// materialize it from the backend before computing; the engine never does
// I/O of its own.
type Snapshot struct {
	Transactions  []core.Transaction
	Debts         []core.Debt
	FixedExpenses []core.FixedExpense
	FixedIncomes  []core.FixedIncome
	Investments   []core.Investment
	Config        core.Config
}

// Balances are the two headline account figures.
type Balances struct {
	Net     core.Money
	Benefit core.Money
}

// ComputeBalances folds the ledger into the checking-account and benefit
// balances. Credit-card expenses are excluded from the net balance: they
// hit the invoice, not the account, until the statement is paid. Benefit
// income feeds its own balance and never the net one.
func ComputeBalances(txs []core.Transaction, settings core.Settings) Balances {
	b := Balances{
		Net:     settings.InitialBalance,
		Benefit: settings.InitialBenefitBalance,
	}
	for _, t := range txs {
		amount := amountOrZero(t)
		switch t.Type {
		case core.Income:
			if t.Benefit {
				b.Benefit.Cents += amount
			} else {
				b.Net.Cents += amount
			}
		case core.Expense:
			if t.Method != core.Credit {
				b.Net.Cents -= amount
			}
		}
	}
	return b
}

// ReconcileOffset solves the offset that makes a computed raw total show
// as a known real-world value: computed-display = raw + offset. Feeding
// the result back as the stored offset makes the display land exactly on
// target without touching transaction history.
func ReconcileOffset(target, raw core.Money) core.Money {
	return target.Sub(raw)
}

// amountOrZero clamps malformed negative amounts to zero so they cannot
// flip the direction a transaction type encodes.
func amountOrZero(t core.Transaction) int64 {
	if t.Amount.Cents < 0 {
		return 0
	}
	return t.Amount.Cents
}
