package storage

import (
	"context"
	"database/sql"
	"fmt"

	"fluxo/internal/core"
)

// SaveBill upserts a bill by id. Payment links are stored separately
// through RecordBillPayment.
func (r *SQLiteRepository) SaveBill(ctx context.Context, b core.Bill) error {
	var recurringID any
	if b.RecurringTransactionID != "" {
		recurringID = b.RecurringTransactionID
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO bills
			(id, description, due_day, is_auto_debit, amount_cents, category, subcategory, recurring_transaction_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Description, b.DueDay, b.IsAutoDebit, int64(b.Amount),
		b.Category, b.Subcategory, recurringID)
	if err != nil {
		return fmt.Errorf("save bill %s: %w", b.ID, err)
	}
	return nil
}

// ListBills returns all bills with their payment links attached.
func (r *SQLiteRepository) ListBills(ctx context.Context) ([]core.Bill, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, description, due_day, is_auto_debit, amount_cents, category, subcategory, recurring_transaction_id
		FROM bills ORDER BY due_day, description`)
	if err != nil {
		return nil, fmt.Errorf("query bills: %w", err)
	}
	defer rows.Close()

	var bills []core.Bill
	for rows.Next() {
		var (
			b           core.Bill
			amount      int64
			recurringID sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.Description, &b.DueDay, &b.IsAutoDebit,
			&amount, &b.Category, &b.Subcategory, &recurringID); err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		b.Amount = core.Money(amount)
		b.RecurringTransactionID = recurringID.String
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range bills {
		payments, err := r.listBillPayments(ctx, bills[i].ID)
		if err != nil {
			return nil, err
		}
		bills[i].Payments = payments
	}
	return bills, nil
}

// GetBill fetches one bill with its payment links.
func (r *SQLiteRepository) GetBill(ctx context.Context, id string) (core.Bill, error) {
	bills, err := r.ListBills(ctx)
	if err != nil {
		return core.Bill{}, err
	}
	for _, b := range bills {
		if b.ID == id {
			return b, nil
		}
	}
	return core.Bill{}, fmt.Errorf("bill %s: %w", id, ErrNotFound)
}

// DeleteBill removes a bill; payment links cascade.
func (r *SQLiteRepository) DeleteBill(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM bills WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	return nil
}

// RecordBillPayment links a bill occurrence to the transaction that paid
// it. One link per bill per month; paying again replaces the link.
func (r *SQLiteRepository) RecordBillPayment(ctx context.Context, billID string, month core.Month, transactionID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO bill_payments (bill_id, month, transaction_id)
		VALUES (?, ?, ?)`,
		billID, month.String(), transactionID)
	if err != nil {
		return fmt.Errorf("record bill payment: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) listBillPayments(ctx context.Context, billID string) ([]core.BillPayment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT month, transaction_id FROM bill_payments WHERE bill_id = ? ORDER BY month`, billID)
	if err != nil {
		return nil, fmt.Errorf("query bill payments: %w", err)
	}
	defer rows.Close()

	var out []core.BillPayment
	for rows.Next() {
		var monthStr, txID string
		if err := rows.Scan(&monthStr, &txID); err != nil {
			return nil, fmt.Errorf("scan bill payment: %w", err)
		}
		month, err := core.ParseMonth(monthStr)
		if err != nil {
			return nil, err
		}
		out = append(out, core.BillPayment{Month: month, TransactionID: txID})
	}
	return out, rows.Err()
}
