// Package storage holds the two SQL repositories. SQLite is the local,
// offline-first store and carries per-row sync bookkeeping; Postgres is the
// remote store the sync worker writes into, and can also serve as the
// primary backend on deployments without a local database.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"grana/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// Sync entity names carried in sync messages and accepted by the
// Pending/Mark helpers.
const (
	EntityTransaction  = "transaction"
	EntityDebt         = "debt"
	EntityFixedExpense = "fixed_expense"
	EntityFixedIncome  = "fixed_income"
	EntityInvestment   = "investment"
	EntityConfig       = "config"
)

var entityTables = map[string]string{
	EntityTransaction:  "transactions",
	EntityDebt:         "debts",
	EntityFixedExpense: "fixed_expenses",
	EntityFixedIncome:  "fixed_incomes",
	EntityInvestment:   "investments",
	EntityConfig:       "settings",
}

// PendingRow identifies a local row that has not reached the remote store.
type PendingRow struct {
	Entity  string
	ID      int64
	Version int64
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunSQLiteMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, amount_cents, date, category, subcategory, benefit, salary,
		       method, card_id, car_km, liters, installment_num, installment_of
		FROM transactions ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanSQLiteTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, type, amount_cents, date, category, subcategory, benefit, salary,
		       method, card_id, car_km, liters, installment_num, installment_of
		FROM transactions WHERE id = ?`, id)
	t, err := scanSQLiteTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	return t, err
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (type, amount_cents, date, category, subcategory, benefit,
		                          salary, method, card_id, car_km, liters, installment_num, installment_of)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(t.Type), t.Amount.Cents, t.Date.Format(dateLayout), t.Category, t.Subcategory,
		t.Benefit, t.Salary, string(t.Method), t.CardID, t.CarKM, t.Liters,
		t.InstallmentNum, t.InstallmentOf)
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET type = ?, amount_cents = ?, date = ?, category = ?,
		       subcategory = ?, benefit = ?, salary = ?, method = ?, card_id = ?,
		       car_km = ?, liters = ?, installment_num = ?, installment_of = ?,
		       version = version + 1, synced = 0, sync_error = ''
		WHERE id = ?`,
		string(t.Type), t.Amount.Cents, t.Date.Format(dateLayout), t.Category, t.Subcategory,
		t.Benefit, t.Salary, string(t.Method), t.CardID, t.CarKM, t.Liters,
		t.InstallmentNum, t.InstallmentOf, t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res, "transaction", t.ID)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "transactions", "transaction", id)
}

func (r *SQLiteRepository) ListDebts(ctx context.Context) ([]core.Debt, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, total_cents, installments_total, installments_paid,
		       due_day, installment_cents, category
		FROM debts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	defer rows.Close()

	var out []core.Debt
	for rows.Next() {
		var d core.Debt
		if err := rows.Scan(&d.ID, &d.Name, &d.Total.Cents, &d.InstallmentsTotal,
			&d.InstallmentsPaid, &d.DueDay, &d.Installment.Cents, &d.Category); err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetDebt(ctx context.Context, id int64) (core.Debt, error) {
	var d core.Debt
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, total_cents, installments_total, installments_paid,
		       due_day, installment_cents, category
		FROM debts WHERE id = ?`, id).
		Scan(&d.ID, &d.Name, &d.Total.Cents, &d.InstallmentsTotal,
			&d.InstallmentsPaid, &d.DueDay, &d.Installment.Cents, &d.Category)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Debt{}, fmt.Errorf("debt %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Debt{}, fmt.Errorf("get debt: %w", err)
	}
	return d, nil
}

func (r *SQLiteRepository) CreateDebt(ctx context.Context, d core.Debt) (int64, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO debts (name, total_cents, installments_total, installments_paid,
		                   due_day, installment_cents, category)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.Name, d.Total.Cents, d.InstallmentsTotal, d.InstallmentsPaid,
		d.DueDay, d.Installment.Cents, d.Category)
	if err != nil {
		return 0, fmt.Errorf("create debt: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) UpdateDebt(ctx context.Context, d core.Debt) error {
	if err := d.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE debts SET name = ?, total_cents = ?, installments_total = ?,
		       installments_paid = ?, due_day = ?, installment_cents = ?, category = ?,
		       version = version + 1, synced = 0, sync_error = ''
		WHERE id = ?`,
		d.Name, d.Total.Cents, d.InstallmentsTotal, d.InstallmentsPaid,
		d.DueDay, d.Installment.Cents, d.Category, d.ID)
	if err != nil {
		return fmt.Errorf("update debt: %w", err)
	}
	return requireRow(res, "debt", d.ID)
}

func (r *SQLiteRepository) DeleteDebt(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "debts", "debt", id)
}

func (r *SQLiteRepository) ListFixedExpenses(ctx context.Context) ([]core.FixedExpense, error) {
	return r.listFixed(ctx, "fixed_expenses")
}

func (r *SQLiteRepository) CreateFixedExpense(ctx context.Context, f core.FixedExpense) (int64, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	return r.createFixed(ctx, "fixed_expenses", f)
}

func (r *SQLiteRepository) UpdateFixedExpense(ctx context.Context, f core.FixedExpense) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return r.updateFixed(ctx, "fixed_expenses", "fixed expense", f)
}

func (r *SQLiteRepository) DeleteFixedExpense(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "fixed_expenses", "fixed expense", id)
}

func (r *SQLiteRepository) ListFixedIncomes(ctx context.Context) ([]core.FixedIncome, error) {
	templates, err := r.listFixed(ctx, "fixed_incomes")
	if err != nil {
		return nil, err
	}
	out := make([]core.FixedIncome, len(templates))
	for i, f := range templates {
		out[i] = core.FixedIncome(f)
	}
	return out, nil
}

func (r *SQLiteRepository) CreateFixedIncome(ctx context.Context, f core.FixedIncome) (int64, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	return r.createFixed(ctx, "fixed_incomes", core.FixedExpense(f))
}

func (r *SQLiteRepository) UpdateFixedIncome(ctx context.Context, f core.FixedIncome) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return r.updateFixed(ctx, "fixed_incomes", "fixed income", core.FixedExpense(f))
}

func (r *SQLiteRepository) DeleteFixedIncome(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "fixed_incomes", "fixed income", id)
}

func (r *SQLiteRepository) ListInvestments(ctx context.Context) ([]core.Investment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, type, amount_cents, target_cents FROM investments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}
	defer rows.Close()

	var out []core.Investment
	for rows.Next() {
		var inv core.Investment
		var typ string
		if err := rows.Scan(&inv.ID, &inv.Name, &typ, &inv.Amount.Cents, &inv.Target.Cents); err != nil {
			return nil, fmt.Errorf("scan investment: %w", err)
		}
		inv.Type = core.InvestmentType(typ)
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateInvestment(ctx context.Context, inv core.Investment) (int64, error) {
	if err := inv.Validate(); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO investments (name, type, amount_cents, target_cents) VALUES (?, ?, ?, ?)`,
		inv.Name, string(inv.Type), inv.Amount.Cents, inv.Target.Cents)
	if err != nil {
		return 0, fmt.Errorf("create investment: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) UpdateInvestment(ctx context.Context, inv core.Investment) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE investments SET name = ?, type = ?, amount_cents = ?, target_cents = ?,
		       version = version + 1, synced = 0, sync_error = ''
		WHERE id = ?`,
		inv.Name, string(inv.Type), inv.Amount.Cents, inv.Target.Cents, inv.ID)
	if err != nil {
		return fmt.Errorf("update investment: %w", err)
	}
	return requireRow(res, "investment", inv.ID)
}

func (r *SQLiteRepository) DeleteInvestment(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "investments", "investment", id)
}

func (r *SQLiteRepository) GetConfig(ctx context.Context) (core.Config, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT config FROM settings WHERE id = 1`).Scan(&raw)
	if err != nil {
		return core.Config{}, fmt.Errorf("get config: %w", err)
	}
	var cfg core.Config
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return core.Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func (r *SQLiteRepository) SaveConfig(ctx context.Context, cfg core.Config) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE settings SET config = ?, version = version + 1, synced = 0, sync_error = ''
		WHERE id = 1`, string(raw))
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// GetPendingSync returns rows that have not reached the remote store,
// oldest ids first, at most limit per entity.
func (r *SQLiteRepository) GetPendingSync(ctx context.Context, limit int) ([]PendingRow, error) {
	var out []PendingRow
	for _, entity := range []string{
		EntityTransaction, EntityDebt, EntityFixedExpense,
		EntityFixedIncome, EntityInvestment, EntityConfig,
	} {
		table := entityTables[entity]
		rows, err := r.db.QueryContext(ctx,
			fmt.Sprintf(`SELECT id, version FROM %s WHERE synced = 0 ORDER BY id LIMIT ?`, table),
			limit)
		if err != nil {
			return nil, fmt.Errorf("pending sync %s: %w", entity, err)
		}
		for rows.Next() {
			p := PendingRow{Entity: entity}
			if err := rows.Scan(&p.ID, &p.Version); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan pending %s: %w", entity, err)
			}
			out = append(out, p)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return out, nil
}

// RowVersion reads the current version of a local row.
func (r *SQLiteRepository) RowVersion(ctx context.Context, entity string, id int64) (int64, error) {
	table, ok := entityTables[entity]
	if !ok {
		return 0, fmt.Errorf("unknown sync entity %q", entity)
	}
	var version int64
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT version FROM %s WHERE id = ?`, table), id).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%s %d: %w", entity, id, core.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("row version %s %d: %w", entity, id, err)
	}
	return version, nil
}

// MarkSynced flags a row as delivered. The version guard keeps a row dirty
// when it was modified again while the sync was in flight.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, entity string, id, version int64) error {
	table, ok := entityTables[entity]
	if !ok {
		return fmt.Errorf("unknown sync entity %q", entity)
	}
	_, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET synced = 1, sync_error = '' WHERE id = ? AND version = ?`, table),
		id, version)
	if err != nil {
		return fmt.Errorf("mark synced %s %d: %w", entity, id, err)
	}
	return nil
}

// MarkSyncError records the last delivery failure without clearing the
// dirty flag, so the periodic scan retries the row.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, entity string, id int64, msg string) error {
	table, ok := entityTables[entity]
	if !ok {
		return fmt.Errorf("unknown sync entity %q", entity)
	}
	_, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET sync_error = ? WHERE id = ?`, table), msg, id)
	if err != nil {
		return fmt.Errorf("mark sync error %s %d: %w", entity, id, err)
	}
	return nil
}

func (r *SQLiteRepository) deleteByID(ctx context.Context, table, label string, id int64) error {
	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", label, err)
	}
	return requireRow(res, label, id)
}

func (r *SQLiteRepository) listFixed(ctx context.Context, table string) ([]core.FixedExpense, error) {
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, title, amount_cents, day, category FROM %s ORDER BY day, id`, table))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	var out []core.FixedExpense
	for rows.Next() {
		var f core.FixedExpense
		if err := rows.Scan(&f.ID, &f.Title, &f.Amount.Cents, &f.Day, &f.Category); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) createFixed(ctx context.Context, table string, f core.FixedExpense) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (title, amount_cents, day, category) VALUES (?, ?, ?, ?)`, table),
		f.Title, f.Amount.Cents, f.Day, f.Category)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", table, err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) updateFixed(ctx context.Context, table, label string, f core.FixedExpense) error {
	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET title = ?, amount_cents = ?, day = ?, category = ?,
		       version = version + 1, synced = 0, sync_error = '' WHERE id = ?`, table),
		f.Title, f.Amount.Cents, f.Day, f.Category, f.ID)
	if err != nil {
		return fmt.Errorf("update %s: %w", label, err)
	}
	return requireRow(res, label, f.ID)
}

func requireRow(res sql.Result, label string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", label, id, core.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	var typ, method, date string
	err := row.Scan(&t.ID, &typ, &t.Amount.Cents, &date, &t.Category, &t.Subcategory,
		&t.Benefit, &t.Salary, &method, &t.CardID, &t.CarKM, &t.Liters,
		&t.InstallmentNum, &t.InstallmentOf)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(typ)
	t.Method = core.PaymentMethod(method)
	parsed, err := time.Parse(dateLayout, date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date %q: %w", date, err)
	}
	t.Date = core.Date{Time: parsed}
	return t, nil
}
