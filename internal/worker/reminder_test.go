package worker

import (
	"context"
	"strings"
	"testing"
	"time"

	"grana/internal/core"
	"grana/internal/engine"
	"grana/internal/memory"
	"grana/internal/services"
)

type fakeSender struct {
	to      string
	subject string
	body    string
	calls   int
}

func (f *fakeSender) Send(to, subject, body string) error {
	f.to = to
	f.subject = subject
	f.body = body
	f.calls++
	return nil
}

func TestBuildDigest(t *testing.T) {
	ref := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	snap := engine.Snapshot{
		Debts: []core.Debt{
			{Name: "Financiamento", Total: core.Money{Cents: 1200000}, InstallmentsTotal: 12,
				InstallmentsPaid: 3, DueDay: 12},
			{Name: "Empréstimo distante", Total: core.Money{Cents: 600000}, InstallmentsTotal: 6,
				InstallmentsPaid: 1, DueDay: 28},
			{Name: "Quitada", Total: core.Money{Cents: 100000}, InstallmentsTotal: 10,
				InstallmentsPaid: 10, DueDay: 11},
		},
		FixedExpenses: []core.FixedExpense{
			{Title: "Internet", Amount: core.Money{Cents: 10000}, Day: 5, Category: core.CategoryHouse},
			{Title: "Academia", Amount: core.Money{Cents: 15000}, Day: 15, Category: core.CategoryHealth},
		},
		Transactions: []core.Transaction{
			// Internet already paid this month.
			{Type: core.Expense, Amount: core.Money{Cents: 10000}, Date: core.NewDate(2025, 6, 5),
				Category: core.CategoryHouse, Method: core.Debit},
		},
	}

	digest := BuildDigest(snap, ref, 5)

	if !strings.Contains(digest, "Financiamento") {
		t.Error("digest should list the debt due within the horizon")
	}
	if strings.Contains(digest, "Empréstimo distante") {
		t.Error("digest should not list debts due past the horizon")
	}
	if strings.Contains(digest, "Quitada") {
		t.Error("digest should not list settled debts")
	}
	if !strings.Contains(digest, "Academia") {
		t.Error("digest should list fixed expenses still unpaid")
	}
	if strings.Contains(digest, "Internet") {
		t.Error("digest should not list fixed expenses already matched")
	}
	// 4th of 12 installments, 100000 cents each.
	if !strings.Contains(digest, "4/12") {
		t.Errorf("digest should show the upcoming installment position, got:\n%s", digest)
	}
}

func TestBuildDigestEmpty(t *testing.T) {
	ref := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	if got := BuildDigest(engine.Snapshot{}, ref, 5); got != "" {
		t.Errorf("BuildDigest(empty) = %q, want empty string", got)
	}
}

func TestReminderRun(t *testing.T) {
	ctx := context.Background()
	svc := services.NewFinanceService(memory.New(), nil)
	ref := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	if _, err := svc.CreateDebt(ctx, core.Debt{
		Name:              "Financiamento",
		Total:             core.Money{Cents: 1200000},
		InstallmentsTotal: 12,
		InstallmentsPaid:  3,
		DueDay:            12,
	}); err != nil {
		t.Fatalf("CreateDebt() error = %v", err)
	}

	sender := &fakeSender{}
	w := NewReminderWorker(svc, sender, "me@example.com", 5)

	if err := w.Run(ctx, ref); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sender.calls != 1 {
		t.Fatalf("sender called %d times, want 1", sender.calls)
	}
	if sender.to != "me@example.com" {
		t.Errorf("to = %q", sender.to)
	}
	if !strings.Contains(sender.subject, "10/06/2025") {
		t.Errorf("subject = %q, want the reference date", sender.subject)
	}
	if !strings.Contains(sender.body, "Financiamento") {
		t.Errorf("body should mention the debt, got:\n%s", sender.body)
	}
}

func TestReminderRunNothingDue(t *testing.T) {
	svc := services.NewFinanceService(memory.New(), nil)
	sender := &fakeSender{}
	w := NewReminderWorker(svc, sender, "me@example.com", 5)

	if err := w.Run(context.Background(), time.Now()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sender.calls != 0 {
		t.Errorf("sender called %d times, want 0 when nothing is due", sender.calls)
	}
}
