package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	Debit  PaymentMethod = "debit"
	Credit PaymentMethod = "credit"

	Reserve  InvestmentType = "reserve"
	Fixed    InvestmentType = "fixed"
	Variable InvestmentType = "variable"
	Goal     InvestmentType = "goal"
)

type (
	TransactionType string
	PaymentMethod   string
	InvestmentType  string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a single ledger entry. Direction is carried by Type,
	// never by a negative amount.
	Transaction struct {
		ID          int64
		Type        TransactionType
		Amount      Money
		Date        Date
		Category    string
		Subcategory string
		Benefit     bool
		Salary      bool
		Method      PaymentMethod
		CardID      string
		// Car-specific detail, zero when not a car expense.
		CarKM  int64
		Liters float64
		// Installment purchase position, e.g. 3 of 10. Zero when not installed.
		InstallmentNum int
		InstallmentOf  int
	}

	// Debt is an installment loan. InstallmentsPaid only moves forward,
	// one payment at a time, capped at InstallmentsTotal.
	Debt struct {
		ID                int64
		Name              string
		Total             Money
		InstallmentsTotal int
		InstallmentsPaid  int
		DueDay            int   // day of month, 1..31
		Installment       Money // zero means derived from Total
		Category          string
	}

	// FixedExpense is a recurring bill template. It never posts a
	// transaction by itself; it is only matched against the ledger.
	FixedExpense struct {
		ID       int64
		Title    string
		Amount   Money
		Day      int // day of month, 1..31
		Category string
	}

	FixedIncome struct {
		ID       int64
		Title    string
		Amount   Money
		Day      int
		Category string
	}

	Investment struct {
		ID     int64
		Name   string
		Type   InvestmentType
		Amount Money
		Target Money // zero when the investment has no goal
	}

	// CardConfig describes one credit card. InvoiceOffset is a signed
	// correction added to the computed invoice so the displayed total can
	// match the real statement when history is incomplete.
	CardConfig struct {
		ID            string
		Name          string
		Limit         Money
		ClosingDay    int
		DueDay        int
		InvoiceOffset Money
	}

	HouseConfig struct {
		Rent          Money
		Condo         Money
		ContractStart Date
	}

	CarConfig struct {
		Model        string
		IPVATotal    Money
		FuelBudget   Money
		MarketBudget Money
	}

	PartnerConfig struct {
		Name          string
		SharedPercent int // 0..100 split of shared expenses
	}

	// Settings carries the signed reconciliation offsets added to the raw
	// transaction sums (offset = known real-world total - computed raw).
	Settings struct {
		InitialBalance        Money
		InitialBenefitBalance Money
	}

	// Config is the full per-user configuration blob persisted as a unit.
	Config struct {
		Settings Settings
		Cards    []CardConfig
		House    HouseConfig
		Car      CarConfig
		Partner  PartnerConfig
	}
)

var (
	ErrInvalidDay         = errors.New("invalid day of month")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidType        = errors.New("invalid type")
	ErrEmptyName          = errors.New("empty name")
	ErrEmptyCategory      = errors.New("empty category")
	ErrInvalidInstallment = errors.New("invalid installment counters")
	ErrNotFound           = errors.New("not found")
)

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current date truncated to midnight UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

// SameMonth reports whether the date falls in the reference calendar month.
func (d Date) SameMonth(ref time.Time) bool {
	return d.Time.Year() == ref.Year() && d.Time.Month() == ref.Month()
}

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

func (m PaymentMethod) IsValid() bool {
	return m == Debit || m == Credit
}

func (it InvestmentType) IsValid() bool {
	switch it {
	case Reserve, Fixed, Variable, Goal:
		return true
	default:
		return false
	}
}

func (t Transaction) Validate() error {
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.Method != "" && !t.Method.IsValid() {
		return ErrInvalidType
	}
	if t.InstallmentOf < 0 || t.InstallmentNum < 0 || t.InstallmentNum > t.InstallmentOf {
		return ErrInvalidInstallment
	}
	return nil
}

func (d Debt) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if err := d.Total.Validate(); err != nil {
		return err
	}
	if d.InstallmentsTotal < 1 {
		return ErrInvalidInstallment
	}
	if d.InstallmentsPaid < 0 || d.InstallmentsPaid > d.InstallmentsTotal {
		return ErrInvalidInstallment
	}
	if d.DueDay < 1 || d.DueDay > 31 {
		return ErrInvalidDay
	}
	if d.Installment.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (f FixedExpense) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return ErrEmptyName
	}
	if err := f.Amount.Validate(); err != nil {
		return err
	}
	if f.Day < 1 || f.Day > 31 {
		return ErrInvalidDay
	}
	if strings.TrimSpace(f.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (f FixedIncome) Validate() error {
	return FixedExpense(f).Validate()
}

func (i Investment) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrEmptyName
	}
	if !i.Type.IsValid() {
		return ErrInvalidType
	}
	if i.Amount.Cents < 0 || i.Target.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (c CardConfig) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrEmptyName
	}
	if c.Limit.Cents < 0 {
		return ErrInvalidAmount
	}
	if c.ClosingDay < 1 || c.ClosingDay > 31 || c.DueDay < 1 || c.DueDay > 31 {
		return ErrInvalidDay
	}
	return nil
}
