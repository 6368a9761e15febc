package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{"12", 1200, false},
		{"0.05", 5, false},
		{"12.345", 1234, false}, // rounds down
		{"12.346", 1235, false}, // rounds up
		{"", 0, true},
		{"abc", 0, true},
		{"-5", 0, true},
		{"+5", 0, true},
		{"0", 0, true},
		{"1.2.3", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDecimalToCents(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseSignedDecimalToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"-12.34", -1234, false},
		{"+12.34", 1234, false},
		{"0", 0, false},
		{"0,00", 0, false},
		{"-abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSignedDecimalToCents(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSignedDecimalToCents(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSignedDecimalToCents(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 1000}
	b := Money{Cents: 1500}
	if got := a.Add(b); got.Cents != 2500 {
		t.Errorf("Add = %d, want 2500", got.Cents)
	}
	if got := a.Sub(b); got.Cents != -500 || !got.IsNegative() {
		t.Errorf("Sub = %d (negative=%v), want -500/true", got.Cents, got.IsNegative())
	}
	if (Money{Cents: 1050}).Reais() != 10.5 {
		t.Error("Reais conversion mismatch")
	}
}
