package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"grana/internal/engine"
	"grana/internal/services"
)

// DigestSender is what the reminder worker needs from the mail layer.
type DigestSender interface {
	Send(to, subject, body string) error
}

// ReminderWorker mails a digest of debt installments coming due and fixed
// expenses still unmatched in the current month. It only reads; posting the
// payments stays a manual action.
type ReminderWorker struct {
	svc     *services.FinanceService
	sender  DigestSender
	to      string
	horizon int // days ahead a due date counts as upcoming
}

func NewReminderWorker(svc *services.FinanceService, sender DigestSender, to string, horizonDays int) *ReminderWorker {
	if horizonDays <= 0 {
		horizonDays = 5
	}
	return &ReminderWorker{
		svc:     svc,
		sender:  sender,
		to:      to,
		horizon: horizonDays,
	}
}

// Run builds the digest for the reference time and sends it. Nothing due
// means no email.
func (w *ReminderWorker) Run(ctx context.Context, ref time.Time) error {
	snap, err := w.svc.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	body := BuildDigest(snap, ref, w.horizon)
	if body == "" {
		slog.InfoContext(ctx, "Nothing due, skipping reminder digest")
		return nil
	}

	subject := fmt.Sprintf("Contas a vencer - %s", ref.Format("02/01/2006"))
	if err := w.sender.Send(w.to, subject, body); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}

	slog.InfoContext(ctx, "Reminder digest sent", "to", w.to)
	return nil
}

// BuildDigest renders the plain-text reminder body. Empty output means
// there is nothing to remind about.
func BuildDigest(snap engine.Snapshot, ref time.Time, horizonDays int) string {
	var b strings.Builder

	deadline := ref.AddDate(0, 0, horizonDays)
	var due []string
	for _, d := range snap.Debts {
		status := engine.ComputeDebtStatus(d)
		if status.PaidOff {
			continue
		}
		next := engine.NextDueDate(d, ref)
		if next.After(deadline) {
			continue
		}
		due = append(due, fmt.Sprintf("  - %s: parcela de R$ %.2f vence em %s (%d/%d)",
			d.Name, status.Installment.Reais(), next.Format("02/01/2006"),
			d.InstallmentsPaid+1, d.InstallmentsTotal))
	}
	if len(due) > 0 {
		b.WriteString("Parcelas a vencer:\n")
		b.WriteString(strings.Join(due, "\n"))
		b.WriteString("\n")
	}

	unpaid := engine.UnpaidFixedExpenses(snap.FixedExpenses, snap.Transactions, ref)
	if len(unpaid) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Despesas fixas ainda não pagas neste mês:\n")
		for _, f := range unpaid {
			b.WriteString(fmt.Sprintf("  - %s: R$ %.2f (dia %d)\n", f.Title, f.Amount.Reais(), f.Day))
		}
	}

	return b.String()
}
