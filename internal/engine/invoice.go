package engine

import (
	"time"

	"grana/internal/core"
)

// Invoice is the derived credit-card statement view for one card or for
// the whole wallet.
type Invoice struct {
	Current      core.Money // this month's statement, offset included
	LimitUsed    core.Money // statement plus everything charged this cycle forward
	LimitPercent float64    // 0 when the limit is zero
	Available    core.Money // may be negative; over-limit is representable
}

// ComputeInvoice aggregates the credit expenses of a single card for the
// reference month. The statement boundary is approximated by the calendar
// month; the card's InvoiceOffset reconciles the computed total with the
// real statement.
func ComputeInvoice(txs []core.Transaction, card core.CardConfig, ref time.Time) Invoice {
	firstOfMonth := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())

	inv := Invoice{
		Current:   card.InvoiceOffset,
		LimitUsed: card.InvoiceOffset,
	}
	for _, t := range txs {
		if !isCreditExpense(t, card.ID) {
			continue
		}
		amount := amountOrZero(t)
		if t.Date.SameMonth(ref) {
			inv.Current.Cents += amount
		}
		if !t.Date.Before(firstOfMonth) {
			inv.LimitUsed.Cents += amount
		}
	}
	inv.LimitPercent = percentOf(inv.LimitUsed.Cents, card.Limit.Cents)
	inv.Available = card.Limit.Sub(inv.LimitUsed)
	return inv
}

// AggregateInvoices sums per-card invoices into a wallet-wide view. Limits
// are totaled across cards, so utilization is relative to the combined
// limit rather than to any single card.
func AggregateInvoices(txs []core.Transaction, cards []core.CardConfig, ref time.Time) Invoice {
	var total Invoice
	var limitCents int64
	for _, card := range cards {
		inv := ComputeInvoice(txs, card, ref)
		total.Current.Cents += inv.Current.Cents
		total.LimitUsed.Cents += inv.LimitUsed.Cents
		limitCents += card.Limit.Cents
	}
	total.LimitPercent = percentOf(total.LimitUsed.Cents, limitCents)
	total.Available = core.Money{Cents: limitCents - total.LimitUsed.Cents}
	return total
}

// isCreditExpense matches credit expenses for a card. An empty cardID
// matches every card, covering setups with a single unnamed card.
func isCreditExpense(t core.Transaction, cardID string) bool {
	if t.Type != core.Expense || t.Method != core.Credit {
		return false
	}
	return cardID == "" || t.CardID == cardID
}

// percentOf returns used/limit as a percentage, 0 when limit is zero.
func percentOf(used, limit int64) float64 {
	if limit <= 0 {
		return 0
	}
	return float64(used) / float64(limit) * 100
}
