// Package storage persists the domain to SQLite. Writes are
// insert-or-replace by id (last write wins); there is no merge semantics or
// optimistic concurrency token.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fluxo/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound marks lookups for rows that do not exist.
var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
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

// SaveTransaction upserts one transaction by id.
func (r *SQLiteRepository) SaveTransaction(ctx context.Context, t core.Transaction) error {
	return r.saveTransactionTx(ctx, r.db, t)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *SQLiteRepository) saveTransactionTx(ctx context.Context, ex execer, t core.Transaction) error {
	var purchaseID, installmentNum, installmentTotal, purchaseCents any
	if t.Installment != nil {
		purchaseID = t.Installment.PurchaseID
		installmentNum = t.Installment.Current
		installmentTotal = t.Installment.Total
		purchaseCents = int64(t.Installment.TotalAmount)
	}
	_, err := ex.ExecContext(ctx, `
		INSERT OR REPLACE INTO transactions
			(id, description, amount_cents, type, date, category, subcategory,
			 payment_method, purchase_id, installment_num, installment_total, purchase_cents)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Description, int64(t.Amount), string(t.Type), t.Date.String(),
		t.Category, t.Subcategory, string(t.PaymentMethod),
		purchaseID, installmentNum, installmentTotal, purchaseCents)
	if err != nil {
		return fmt.Errorf("save transaction %s: %w", t.ID, err)
	}
	return nil
}

// SaveTransactions upserts a batch atomically. Installment plans are
// created through this so a purchase never half-exists.
func (r *SQLiteRepository) SaveTransactions(ctx context.Context, txs []core.Transaction) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	for _, t := range txs {
		if err := r.saveTransactionTx(ctx, dbTx, t); err != nil {
			return err
		}
	}
	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

const transactionColumns = `id, description, amount_cents, type, date, category,
	subcategory, payment_method, purchase_id, installment_num, installment_total, purchase_cents`

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var (
		t                core.Transaction
		amount           int64
		typ, date, pm    string
		purchaseID       sql.NullString
		installmentNum   sql.NullInt64
		installmentTotal sql.NullInt64
		purchaseCents    sql.NullInt64
	)
	err := row.Scan(&t.ID, &t.Description, &amount, &typ, &date, &t.Category,
		&t.Subcategory, &pm, &purchaseID, &installmentNum, &installmentTotal, &purchaseCents)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Amount = core.Money(amount)
	t.Type = core.TransactionType(typ)
	t.PaymentMethod = core.PaymentMethod(pm)
	if t.Date, err = core.ParseDate(date); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", t.ID, err)
	}
	if purchaseID.Valid {
		t.Installment = &core.InstallmentDetails{
			PurchaseID:  purchaseID.String,
			Current:     int(installmentNum.Int64),
			Total:       int(installmentTotal.Int64),
			TotalAmount: core.Money(purchaseCents.Int64),
		}
	}
	return t, nil
}

// GetTransaction fetches one transaction by id.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListTransactionsByMonth returns all transactions dated inside the month,
// oldest first.
func (r *SQLiteRepository) ListTransactionsByMonth(ctx context.Context, month core.Month) ([]core.Transaction, error) {
	prefix := month.String() + "-%"
	return r.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE date LIKE ? ORDER BY date, created_at`,
		prefix)
}

// ListTransactionsSince returns all transactions dated on or after the
// given date, oldest first. The projection engine uses this for trailing
// window computations.
func (r *SQLiteRepository) ListTransactionsSince(ctx context.Context, from core.Date) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE date >= ? ORDER BY date, created_at`,
		from.String())
}

// ListUnclassified returns transactions still tagged for verification.
func (r *SQLiteRepository) ListUnclassified(ctx context.Context) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE category = ? OR category = '' ORDER BY date`,
		core.CategoryToVerify)
}

// ListInstallments returns every row of one purchase ordered by position.
func (r *SQLiteRepository) ListInstallments(ctx context.Context, purchaseID string) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE purchase_id = ? ORDER BY installment_num`,
		purchaseID)
}

// UpdateTransactionCategory rewrites only the classification columns.
func (r *SQLiteRepository) UpdateTransactionCategory(ctx context.Context, id, category, subcategory string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET category = ?, subcategory = ? WHERE id = ?`,
		category, subcategory, id)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteTransaction removes a single row.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// DeleteInstallmentsFrom removes every installment of a purchase from the
// given position onward (the all-future deletion scope).
func (r *SQLiteRepository) DeleteInstallmentsFrom(ctx context.Context, purchaseID string, fromCurrent int) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE purchase_id = ? AND installment_num >= ?`,
		purchaseID, fromCurrent)
	if err != nil {
		return 0, fmt.Errorf("delete installments: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
