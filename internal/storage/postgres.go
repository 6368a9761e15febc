package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"grana/internal/core"

	_ "github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(connStr string) (*PostgresRepository, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunPostgresMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *PostgresRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
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
		t, err := scanPostgresTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, type, amount_cents, date, category, subcategory, benefit, salary,
		       method, card_id, car_km, liters, installment_num, installment_of
		FROM transactions WHERE id = $1`, id)
	t, err := scanPostgresTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	return t, err
}

func (r *PostgresRepository) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO transactions (type, amount_cents, date, category, subcategory, benefit,
		                          salary, method, card_id, car_km, liters, installment_num, installment_of)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`,
		string(t.Type), t.Amount.Cents, t.Date.Time, t.Category, t.Subcategory,
		t.Benefit, t.Salary, string(t.Method), t.CardID, t.CarKM, t.Liters,
		t.InstallmentNum, t.InstallmentOf).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET type = $1, amount_cents = $2, date = $3, category = $4,
		       subcategory = $5, benefit = $6, salary = $7, method = $8, card_id = $9,
		       car_km = $10, liters = $11, installment_num = $12, installment_of = $13
		WHERE id = $14`,
		string(t.Type), t.Amount.Cents, t.Date.Time, t.Category, t.Subcategory,
		t.Benefit, t.Salary, string(t.Method), t.CardID, t.CarKM, t.Liters,
		t.InstallmentNum, t.InstallmentOf, t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res, "transaction", t.ID)
}

func (r *PostgresRepository) DeleteTransaction(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "transactions", "transaction", id)
}

// UpsertTransaction writes a locally-owned row under its original id. The
// sync worker uses it so replays stay idempotent.
func (r *PostgresRepository) UpsertTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, type, amount_cents, date, category, subcategory, benefit,
		                          salary, method, card_id, car_km, liters, installment_num, installment_of)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			type = EXCLUDED.type, amount_cents = EXCLUDED.amount_cents, date = EXCLUDED.date,
			category = EXCLUDED.category, subcategory = EXCLUDED.subcategory,
			benefit = EXCLUDED.benefit, salary = EXCLUDED.salary, method = EXCLUDED.method,
			card_id = EXCLUDED.card_id, car_km = EXCLUDED.car_km, liters = EXCLUDED.liters,
			installment_num = EXCLUDED.installment_num, installment_of = EXCLUDED.installment_of`,
		t.ID, string(t.Type), t.Amount.Cents, t.Date.Time, t.Category, t.Subcategory,
		t.Benefit, t.Salary, string(t.Method), t.CardID, t.CarKM, t.Liters,
		t.InstallmentNum, t.InstallmentOf)
	if err != nil {
		return fmt.Errorf("upsert transaction %d: %w", t.ID, err)
	}
	return nil
}

func (r *PostgresRepository) ListDebts(ctx context.Context) ([]core.Debt, error) {
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

func (r *PostgresRepository) GetDebt(ctx context.Context, id int64) (core.Debt, error) {
	var d core.Debt
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, total_cents, installments_total, installments_paid,
		       due_day, installment_cents, category
		FROM debts WHERE id = $1`, id).
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

func (r *PostgresRepository) CreateDebt(ctx context.Context, d core.Debt) (int64, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO debts (name, total_cents, installments_total, installments_paid,
		                   due_day, installment_cents, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		d.Name, d.Total.Cents, d.InstallmentsTotal, d.InstallmentsPaid,
		d.DueDay, d.Installment.Cents, d.Category).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create debt: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) UpdateDebt(ctx context.Context, d core.Debt) error {
	if err := d.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE debts SET name = $1, total_cents = $2, installments_total = $3,
		       installments_paid = $4, due_day = $5, installment_cents = $6, category = $7
		WHERE id = $8`,
		d.Name, d.Total.Cents, d.InstallmentsTotal, d.InstallmentsPaid,
		d.DueDay, d.Installment.Cents, d.Category, d.ID)
	if err != nil {
		return fmt.Errorf("update debt: %w", err)
	}
	return requireRow(res, "debt", d.ID)
}

func (r *PostgresRepository) DeleteDebt(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "debts", "debt", id)
}

func (r *PostgresRepository) UpsertDebt(ctx context.Context, d core.Debt) error {
	if err := d.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO debts (id, name, total_cents, installments_total, installments_paid,
		                   due_day, installment_cents, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, total_cents = EXCLUDED.total_cents,
			installments_total = EXCLUDED.installments_total,
			installments_paid = EXCLUDED.installments_paid, due_day = EXCLUDED.due_day,
			installment_cents = EXCLUDED.installment_cents, category = EXCLUDED.category`,
		d.ID, d.Name, d.Total.Cents, d.InstallmentsTotal, d.InstallmentsPaid,
		d.DueDay, d.Installment.Cents, d.Category)
	if err != nil {
		return fmt.Errorf("upsert debt %d: %w", d.ID, err)
	}
	return nil
}

func (r *PostgresRepository) ListFixedExpenses(ctx context.Context) ([]core.FixedExpense, error) {
	return r.listFixed(ctx, "fixed_expenses")
}

func (r *PostgresRepository) CreateFixedExpense(ctx context.Context, f core.FixedExpense) (int64, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	return r.createFixed(ctx, "fixed_expenses", f)
}

func (r *PostgresRepository) UpdateFixedExpense(ctx context.Context, f core.FixedExpense) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return r.updateFixed(ctx, "fixed_expenses", "fixed expense", f)
}

func (r *PostgresRepository) DeleteFixedExpense(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "fixed_expenses", "fixed expense", id)
}

func (r *PostgresRepository) UpsertFixedExpense(ctx context.Context, f core.FixedExpense) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return r.upsertFixed(ctx, "fixed_expenses", f)
}

func (r *PostgresRepository) ListFixedIncomes(ctx context.Context) ([]core.FixedIncome, error) {
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

func (r *PostgresRepository) CreateFixedIncome(ctx context.Context, f core.FixedIncome) (int64, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	return r.createFixed(ctx, "fixed_incomes", core.FixedExpense(f))
}

func (r *PostgresRepository) UpdateFixedIncome(ctx context.Context, f core.FixedIncome) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return r.updateFixed(ctx, "fixed_incomes", "fixed income", core.FixedExpense(f))
}

func (r *PostgresRepository) DeleteFixedIncome(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "fixed_incomes", "fixed income", id)
}

func (r *PostgresRepository) UpsertFixedIncome(ctx context.Context, f core.FixedIncome) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return r.upsertFixed(ctx, "fixed_incomes", core.FixedExpense(f))
}

func (r *PostgresRepository) ListInvestments(ctx context.Context) ([]core.Investment, error) {
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

func (r *PostgresRepository) CreateInvestment(ctx context.Context, inv core.Investment) (int64, error) {
	if err := inv.Validate(); err != nil {
		return 0, err
	}
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO investments (name, type, amount_cents, target_cents)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		inv.Name, string(inv.Type), inv.Amount.Cents, inv.Target.Cents).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create investment: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) UpdateInvestment(ctx context.Context, inv core.Investment) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE investments SET name = $1, type = $2, amount_cents = $3, target_cents = $4
		WHERE id = $5`,
		inv.Name, string(inv.Type), inv.Amount.Cents, inv.Target.Cents, inv.ID)
	if err != nil {
		return fmt.Errorf("update investment: %w", err)
	}
	return requireRow(res, "investment", inv.ID)
}

func (r *PostgresRepository) DeleteInvestment(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "investments", "investment", id)
}

func (r *PostgresRepository) UpsertInvestment(ctx context.Context, inv core.Investment) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO investments (id, name, type, amount_cents, target_cents)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, type = EXCLUDED.type,
			amount_cents = EXCLUDED.amount_cents, target_cents = EXCLUDED.target_cents`,
		inv.ID, inv.Name, string(inv.Type), inv.Amount.Cents, inv.Target.Cents)
	if err != nil {
		return fmt.Errorf("upsert investment %d: %w", inv.ID, err)
	}
	return nil
}

func (r *PostgresRepository) GetConfig(ctx context.Context) (core.Config, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, `SELECT config FROM settings WHERE id = 1`).Scan(&raw)
	if err != nil {
		return core.Config{}, fmt.Errorf("get config: %w", err)
	}
	var cfg core.Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return core.Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func (r *PostgresRepository) SaveConfig(ctx context.Context, cfg core.Config) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `UPDATE settings SET config = $1 WHERE id = 1`, raw)
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// DeleteRemote removes a row by sync entity name. Used when a delete message
// arrives for an entity the worker does not otherwise load.
func (r *PostgresRepository) DeleteRemote(ctx context.Context, entity string, id int64) error {
	table, ok := entityTables[entity]
	if !ok || entity == EntityConfig {
		return fmt.Errorf("unknown sync entity %q", entity)
	}
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return fmt.Errorf("delete remote %s %d: %w", entity, id, err)
	}
	return nil
}

func (r *PostgresRepository) deleteByID(ctx context.Context, table, label string, id int64) error {
	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", label, err)
	}
	return requireRow(res, label, id)
}

func (r *PostgresRepository) listFixed(ctx context.Context, table string) ([]core.FixedExpense, error) {
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

func (r *PostgresRepository) createFixed(ctx context.Context, table string, f core.FixedExpense) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (title, amount_cents, day, category)
		VALUES ($1, $2, $3, $4) RETURNING id`, table),
		f.Title, f.Amount.Cents, f.Day, f.Category).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", table, err)
	}
	return id, nil
}

func (r *PostgresRepository) updateFixed(ctx context.Context, table, label string, f core.FixedExpense) error {
	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET title = $1, amount_cents = $2, day = $3, category = $4
		WHERE id = $5`, table),
		f.Title, f.Amount.Cents, f.Day, f.Category, f.ID)
	if err != nil {
		return fmt.Errorf("update %s: %w", label, err)
	}
	return requireRow(res, label, f.ID)
}

func (r *PostgresRepository) upsertFixed(ctx context.Context, table string, f core.FixedExpense) error {
	_, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, title, amount_cents, day, category)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title, amount_cents = EXCLUDED.amount_cents,
			day = EXCLUDED.day, category = EXCLUDED.category`, table),
		f.ID, f.Title, f.Amount.Cents, f.Day, f.Category)
	if err != nil {
		return fmt.Errorf("upsert %s %d: %w", table, f.ID, err)
	}
	return nil
}

func scanPostgresTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	var typ, method string
	var date time.Time
	err := row.Scan(&t.ID, &typ, &t.Amount.Cents, &date, &t.Category, &t.Subcategory,
		&t.Benefit, &t.Salary, &method, &t.CardID, &t.CarKM, &t.Liters,
		&t.InstallmentNum, &t.InstallmentOf)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(typ)
	t.Method = core.PaymentMethod(method)
	t.Date = core.Date{Time: date.UTC()}
	return t, nil
}
