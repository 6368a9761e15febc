package engine

import (
	"testing"
	"time"

	"grana/internal/core"
)

func TestComputeDebtStatus(t *testing.T) {
	tests := []struct {
		name          string
		debt          core.Debt
		wantValue     int64
		wantRemaining int64
		wantMonths    int
		wantProgress  float64
		wantPaidOff   bool
	}{
		{
			name:          "derived installment from even split",
			debt:          core.Debt{Total: core.Money{Cents: 120000}, InstallmentsTotal: 12, InstallmentsPaid: 0, DueDay: 10},
			wantValue:     10000,
			wantRemaining: 120000,
			wantMonths:    12,
			wantProgress:  0,
		},
		{
			name:          "one installment before payoff",
			debt:          core.Debt{Total: core.Money{Cents: 120000}, InstallmentsTotal: 12, InstallmentsPaid: 11, Installment: core.Money{Cents: 10000}, DueDay: 10},
			wantValue:     10000,
			wantRemaining: 10000,
			wantMonths:    1,
			wantProgress:  11.0 / 12.0 * 100,
		},
		{
			name:          "paid off exactly at the cap",
			debt:          core.Debt{Total: core.Money{Cents: 120000}, InstallmentsTotal: 12, InstallmentsPaid: 12, Installment: core.Money{Cents: 10000}, DueDay: 10},
			wantValue:     10000,
			wantRemaining: 0,
			wantMonths:    0,
			wantProgress:  100,
			wantPaidOff:   true,
		},
		{
			name:          "counter past the cap clamps instead of going negative",
			debt:          core.Debt{Total: core.Money{Cents: 120000}, InstallmentsTotal: 12, InstallmentsPaid: 15, Installment: core.Money{Cents: 10000}, DueDay: 10},
			wantValue:     10000,
			wantRemaining: 0,
			wantMonths:    0,
			wantProgress:  125,
			wantPaidOff:   true,
		},
		{
			name:          "explicit installment overrides the even split",
			debt:          core.Debt{Total: core.Money{Cents: 100000}, InstallmentsTotal: 10, InstallmentsPaid: 2, Installment: core.Money{Cents: 12000}, DueDay: 5},
			wantValue:     12000,
			wantRemaining: 76000,
			wantMonths:    8,
			wantProgress:  20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeDebtStatus(tt.debt)
			if got.Installment.Cents != tt.wantValue {
				t.Errorf("Installment = %d, want %d", got.Installment.Cents, tt.wantValue)
			}
			if got.Remaining.Cents != tt.wantRemaining {
				t.Errorf("Remaining = %d, want %d", got.Remaining.Cents, tt.wantRemaining)
			}
			if got.RemainingMonths != tt.wantMonths {
				t.Errorf("RemainingMonths = %d, want %d", got.RemainingMonths, tt.wantMonths)
			}
			if got.ProgressPercent != tt.wantProgress {
				t.Errorf("ProgressPercent = %f, want %f", got.ProgressPercent, tt.wantProgress)
			}
			if got.PaidOff != tt.wantPaidOff {
				t.Errorf("PaidOff = %v, want %v", got.PaidOff, tt.wantPaidOff)
			}
		})
	}
}

func TestRemainingNeverIncreases(t *testing.T) {
	debt := core.Debt{Total: core.Money{Cents: 123400}, InstallmentsTotal: 10, DueDay: 1}
	prev := ComputeDebtStatus(debt).Remaining.Cents
	for paid := 1; paid <= 14; paid++ {
		debt.InstallmentsPaid = paid
		remaining := ComputeDebtStatus(debt).Remaining.Cents
		if remaining > prev {
			t.Fatalf("remaining grew from %d to %d at paid=%d", prev, remaining, paid)
		}
		if paid >= debt.InstallmentsTotal && remaining != 0 {
			t.Fatalf("remaining = %d at paid=%d, want 0 at or past the cap", remaining, paid)
		}
		prev = remaining
	}
}

func TestPayInstallment(t *testing.T) {
	debt := core.Debt{
		Name: "Financiamento", Total: core.Money{Cents: 120000},
		InstallmentsTotal: 12, InstallmentsPaid: 11,
		Installment: core.Money{Cents: 10000}, DueDay: 10,
	}

	paid := PayInstallment(debt)
	if paid.InstallmentsPaid != 12 {
		t.Fatalf("InstallmentsPaid = %d, want 12", paid.InstallmentsPaid)
	}
	status := ComputeDebtStatus(paid)
	if !status.PaidOff || status.RemainingMonths != 0 {
		t.Errorf("after final payment: PaidOff=%v RemainingMonths=%d, want true/0", status.PaidOff, status.RemainingMonths)
	}

	// Paying at the ceiling is a no-op, even when invoked twice.
	again := PayInstallment(PayInstallment(paid))
	if again.InstallmentsPaid != 12 {
		t.Errorf("InstallmentsPaid after paying at the cap = %d, want still 12", again.InstallmentsPaid)
	}
}

func TestMonthlyCommitment(t *testing.T) {
	active := core.Debt{Total: core.Money{Cents: 120000}, InstallmentsTotal: 12, InstallmentsPaid: 11, Installment: core.Money{Cents: 10000}, DueDay: 10}
	other := core.Debt{Total: core.Money{Cents: 60000}, InstallmentsTotal: 6, InstallmentsPaid: 1, DueDay: 20}
	settled := core.Debt{Total: core.Money{Cents: 50000}, InstallmentsTotal: 5, InstallmentsPaid: 5, DueDay: 15}

	got := MonthlyCommitment([]core.Debt{active, other, settled})
	if got.Cents != 20000 {
		t.Fatalf("commitment = %d, want 20000 (active debts only)", got.Cents)
	}

	// The contribution drops to zero the moment the cap is reached.
	got = MonthlyCommitment([]core.Debt{PayInstallment(active), other, settled})
	if got.Cents != 10000 {
		t.Errorf("commitment after payoff = %d, want 10000", got.Cents)
	}
}

func TestFreedomDate(t *testing.T) {
	ref := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	debt := core.Debt{Total: core.Money{Cents: 120000}, InstallmentsTotal: 12, InstallmentsPaid: 9, DueDay: 10}
	date, ok := FreedomDate(debt, ref)
	if !ok {
		t.Fatal("FreedomDate ok = false for an active debt")
	}
	want := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	if !date.Equal(want) {
		t.Errorf("FreedomDate = %v, want %v", date, want)
	}

	debt.InstallmentsPaid = 12
	if _, ok := FreedomDate(debt, ref); ok {
		t.Error("FreedomDate ok = true for a settled debt, want the paid-off sentinel")
	}
}

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		name string
		ref  time.Time
		day  int
		want time.Time
	}{
		{
			name: "due day still ahead this month",
			ref:  time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
			day:  10,
			want: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "due day already past rolls to next month",
			ref:  time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
			day:  10,
			want: time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "day 31 clamps to the end of short months",
			ref:  time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
			day:  31,
			want: time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextDueDate(core.Debt{DueDay: tt.day}, tt.ref)
			if !got.Equal(tt.want) {
				t.Errorf("NextDueDate = %v, want %v", got, tt.want)
			}
		})
	}
}
