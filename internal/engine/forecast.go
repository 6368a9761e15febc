package engine

import (
	"time"

	"grana/internal/core"
)

// Breakdown bucket labels, in display order.
const (
	BucketInvoice      = "Invoice"
	BucketDebts        = "Debts"
	BucketFixedAndRent = "FixedAndRent"
	BucketFree         = "Free"
)

// ForecastBucket is one slice of the liquidity breakdown.
type ForecastBucket struct {
	Label  string
	Amount core.Money
}

// Forecast is the liquidity projection: what is left of the net balance
// after every known upcoming obligation.
type Forecast struct {
	// FreeBalance keeps its sign: negative means the known obligations
	// exceed the current balance.
	FreeBalance core.Money
	// Breakdown lists the non-zero buckets; its Free bucket is clamped at
	// zero for display even when the headline figure is negative.
	Breakdown []ForecastBucket
}

// ComputeForecast deducts the current invoice, pending rent, monthly debt
// commitment and unpaid fixed expenses from the net balance.
func ComputeForecast(net, invoice, rent, commitment, pendingFixed core.Money) Forecast {
	free := net.Cents - invoice.Cents - rent.Cents - commitment.Cents - pendingFixed.Cents

	f := Forecast{FreeBalance: core.Money{Cents: free}}

	freeBucket := free
	if freeBucket < 0 {
		freeBucket = 0
	}
	buckets := []ForecastBucket{
		{Label: BucketInvoice, Amount: invoice},
		{Label: BucketDebts, Amount: commitment},
		{Label: BucketFixedAndRent, Amount: rent.Add(pendingFixed)},
		{Label: BucketFree, Amount: core.Money{Cents: freeBucket}},
	}
	for _, b := range buckets {
		if b.Amount.Cents != 0 {
			f.Breakdown = append(f.Breakdown, b)
		}
	}
	return f
}

// ForecastFromSnapshot runs the whole pipeline: balances, aggregated
// invoice, rent, commitment and pending fixed expenses, then the forecast
// over them. It is the single call the dashboard needs.
func ForecastFromSnapshot(s Snapshot, ref time.Time) Forecast {
	balances := ComputeBalances(s.Transactions, s.Config.Settings)
	invoice := AggregateInvoices(s.Transactions, s.Config.Cards, ref)
	rent := PendingRent(s.Config.House, s.Transactions, ref)
	commitment := MonthlyCommitment(s.Debts)
	pendingFixed := PendingFixedAmount(s.FixedExpenses, s.Transactions, ref)
	return ComputeForecast(balances.Net, invoice.Current, rent, commitment, pendingFixed)
}
