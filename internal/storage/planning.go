package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fluxo/internal/core"
)

// SaveRecurring upserts a recurring transaction template.
func (r *SQLiteRepository) SaveRecurring(ctx context.Context, rt core.RecurringTransaction) error {
	var linkedBill any
	if rt.LinkedBillID != "" {
		linkedBill = rt.LinkedBillID
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO recurring_transactions
			(id, description, amount_cents, type, category, subcategory, frequency, start_date, next_due_date, linked_bill_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rt.ID, rt.Description, int64(rt.Amount), string(rt.Type), rt.Category,
		rt.Subcategory, string(rt.Frequency), rt.StartDate.String(),
		rt.NextDueDate.String(), linkedBill)
	if err != nil {
		return fmt.Errorf("save recurring %s: %w", rt.ID, err)
	}
	return nil
}

// ListRecurring returns every recurring template.
func (r *SQLiteRepository) ListRecurring(ctx context.Context) ([]core.RecurringTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, description, amount_cents, type, category, subcategory, frequency, start_date, next_due_date, linked_bill_id
		FROM recurring_transactions ORDER BY next_due_date`)
	if err != nil {
		return nil, fmt.Errorf("query recurring: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringTransaction
	for rows.Next() {
		var (
			rt         core.RecurringTransaction
			amount     int64
			typ, freq  string
			start, due string
			linked     sql.NullString
		)
		if err := rows.Scan(&rt.ID, &rt.Description, &amount, &typ, &rt.Category,
			&rt.Subcategory, &freq, &start, &due, &linked); err != nil {
			return nil, fmt.Errorf("scan recurring: %w", err)
		}
		rt.Amount = core.Money(amount)
		rt.Type = core.TransactionType(typ)
		rt.Frequency = core.Frequency(freq)
		rt.LinkedBillID = linked.String
		if rt.StartDate, err = core.ParseDate(start); err != nil {
			return nil, fmt.Errorf("recurring %s: %w", rt.ID, err)
		}
		if rt.NextDueDate, err = core.ParseDate(due); err != nil {
			return nil, fmt.Errorf("recurring %s: %w", rt.ID, err)
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

// AdvanceRecurring moves a template's next due date forward after it has
// been materialized.
func (r *SQLiteRepository) AdvanceRecurring(ctx context.Context, id string, nextDue core.Date) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE recurring_transactions SET next_due_date = ? WHERE id = ?`,
		nextDue.String(), id)
	if err != nil {
		return fmt.Errorf("advance recurring: %w", err)
	}
	return nil
}

// DeleteRecurring removes a template.
func (r *SQLiteRepository) DeleteRecurring(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM recurring_transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recurring: %w", err)
	}
	return nil
}

// SaveGoal upserts a financial goal.
func (r *SQLiteRepository) SaveGoal(ctx context.Context, g core.FinancialGoal) error {
	var deadline any
	if !g.Deadline.IsZero() {
		deadline = g.Deadline.String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO goals (id, name, target_cents, current_cents, deadline)
		VALUES (?, ?, ?, ?, ?)`,
		g.ID, g.Name, int64(g.TargetAmount), int64(g.CurrentAmount), deadline)
	if err != nil {
		return fmt.Errorf("save goal %s: %w", g.ID, err)
	}
	return nil
}

// ListGoals returns all goals.
func (r *SQLiteRepository) ListGoals(ctx context.Context) ([]core.FinancialGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, target_cents, current_cents, deadline FROM goals ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	var out []core.FinancialGoal
	for rows.Next() {
		var (
			g               core.FinancialGoal
			target, current int64
			deadline        sql.NullString
		)
		if err := rows.Scan(&g.ID, &g.Name, &target, &current, &deadline); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		g.TargetAmount = core.Money(target)
		g.CurrentAmount = core.Money(current)
		if deadline.Valid {
			if g.Deadline, err = core.ParseDate(deadline.String); err != nil {
				return nil, fmt.Errorf("goal %s: %w", g.ID, err)
			}
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// DeleteGoal removes a goal.
func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return nil
}

// SaveBudget upserts a category budget.
func (r *SQLiteRepository) SaveBudget(ctx context.Context, b core.Budget) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO budgets (id, category, amount_cents, period)
		VALUES (?, ?, ?, ?)`,
		b.ID, b.Category, int64(b.Amount), b.Period)
	if err != nil {
		return fmt.Errorf("save budget %s: %w", b.ID, err)
	}
	return nil
}

// ListBudgets returns all budgets.
func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category, amount_cents, period FROM budgets ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var (
			b      core.Budget
			amount int64
		)
		if err := rows.Scan(&b.ID, &b.Category, &amount, &b.Period); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.Amount = core.Money(amount)
		out = append(out, b)
	}
	return out, rows.Err()
}

// SavePayslip replaces a payslip and its item lines atomically.
func (r *SQLiteRepository) SavePayslip(ctx context.Context, p core.Payslip) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin payslip save: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx,
		`DELETE FROM payslips WHERE id = ? OR month = ?`, p.ID, p.Month.String()); err != nil {
		return fmt.Errorf("replace payslip: %w", err)
	}
	if _, err := dbTx.ExecContext(ctx,
		`INSERT INTO payslips (id, month) VALUES (?, ?)`, p.ID, p.Month.String()); err != nil {
		return fmt.Errorf("insert payslip: %w", err)
	}

	insert := func(kind string, items []core.PayslipItem) error {
		for i, it := range items {
			if _, err := dbTx.ExecContext(ctx, `
				INSERT INTO payslip_items (payslip_id, position, kind, description, value_cents)
				VALUES (?, ?, ?, ?, ?)`,
				p.ID, i, kind, it.Description, int64(it.Value)); err != nil {
				return fmt.Errorf("insert payslip item: %w", err)
			}
		}
		return nil
	}
	if err := insert("payment", p.Payments); err != nil {
		return err
	}
	if err := insert("deduction", p.Deductions); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit payslip: %w", err)
	}
	return nil
}

// GetPayslip fetches the payslip for one month, with items.
func (r *SQLiteRepository) GetPayslip(ctx context.Context, month core.Month) (core.Payslip, error) {
	var p core.Payslip
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM payslips WHERE month = ?`, month.String()).Scan(&p.ID)
	if err == sql.ErrNoRows {
		return core.Payslip{}, fmt.Errorf("payslip for %s: %w", month, ErrNotFound)
	}
	if err != nil {
		return core.Payslip{}, fmt.Errorf("get payslip: %w", err)
	}
	p.Month = month

	rows, err := r.db.QueryContext(ctx, `
		SELECT kind, description, value_cents FROM payslip_items
		WHERE payslip_id = ? ORDER BY kind, position`, p.ID)
	if err != nil {
		return core.Payslip{}, fmt.Errorf("query payslip items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kind, desc string
			value      int64
		)
		if err := rows.Scan(&kind, &desc, &value); err != nil {
			return core.Payslip{}, fmt.Errorf("scan payslip item: %w", err)
		}
		item := core.PayslipItem{Description: desc, Value: core.Money(value)}
		if kind == "deduction" {
			p.Deductions = append(p.Deductions, item)
		} else {
			p.Payments = append(p.Payments, item)
		}
	}
	return p, rows.Err()
}
