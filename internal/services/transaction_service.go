package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"fluxo/internal/amqp"
	"fluxo/internal/core"
	"fluxo/internal/storage"
)

// DeleteScope controls how deleting an installment row propagates to the
// rest of its purchase.
type DeleteScope string

const (
	// DeleteSingle removes only the named transaction.
	DeleteSingle DeleteScope = "single"
	// DeleteFuture removes the named installment and every later one of the
	// same purchase.
	DeleteFuture DeleteScope = "future"
)

// TransactionService orchestrates transaction writes across SQLite and AMQP.
type TransactionService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewTransactionService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *TransactionService {
	return &TransactionService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// CreateTransaction validates and saves a transaction. Unclassified
// transactions get a classification message published for the worker.
func (s *TransactionService) CreateTransaction(ctx context.Context, t core.Transaction) (string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Category == "" {
		t.Category = core.CategoryToVerify
	}
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("validate transaction: %w", err)
	}

	if err := s.storage.SaveTransaction(ctx, t); err != nil {
		return "", fmt.Errorf("save transaction: %w", err)
	}

	if !t.IsClassified() {
		if err := s.publishClassify(ctx, t.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to publish classify message",
				"transaction_id", t.ID, "error", err)
			// Don't fail the request - transaction is saved locally
		}
	}

	return t.ID, nil
}

// InstallmentPlan describes a credit purchase to split into monthly rows.
type InstallmentPlan struct {
	Description string
	TotalAmount core.Money
	Parts       int
	FirstDate   core.Date
	Category    string
	Subcategory string
}

// CreateInstallmentPlan splits a purchase into monthly installment
// transactions sharing a purchase id. The first part absorbs the rounding
// remainder so the parts always sum to the full price. Each part lands on
// the same day of consecutive months, clamped in shorter months.
func (s *TransactionService) CreateInstallmentPlan(ctx context.Context, plan InstallmentPlan) ([]core.Transaction, error) {
	if plan.Parts < 2 {
		return nil, fmt.Errorf("%w: %d parts", core.ErrInvalidInstallment, plan.Parts)
	}
	if plan.TotalAmount <= 0 {
		return nil, core.ErrInvalidAmount
	}
	if strings.TrimSpace(plan.Description) == "" {
		return nil, core.ErrEmptyDescription
	}

	category := plan.Category
	if category == "" {
		category = core.CategoryToVerify
	}

	purchaseID := uuid.NewString()
	amounts := core.SplitInstallments(plan.TotalAmount, plan.Parts)
	targetDay := plan.FirstDate.Day()
	month := plan.FirstDate.MonthOf()

	txs := make([]core.Transaction, 0, plan.Parts)
	for i, amount := range amounts {
		day := targetDay
		if last := month.Days(); day > last {
			day = last
		}
		t := core.Transaction{
			ID:          uuid.NewString(),
			Description: fmt.Sprintf("%s (%d/%d)", plan.Description, i+1, plan.Parts),
			Amount:      amount,
			Type:        core.Expense,
			Date:        core.NewDate(month.Year, month.Month, day),
			Category:    category,
			Subcategory: plan.Subcategory,
			PaymentMethod: core.Credit,
			Installment: &core.InstallmentDetails{
				PurchaseID:  purchaseID,
				Current:     i + 1,
				Total:       plan.Parts,
				TotalAmount: plan.TotalAmount,
			},
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("validate installment %d/%d: %w", i+1, plan.Parts, err)
		}
		txs = append(txs, t)
		month = month.Next()
	}

	if err := s.storage.SaveTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("save installment plan: %w", err)
	}

	// One classify message covers the purchase; the worker propagates the
	// category to every row of it.
	if txs[0].Category == core.CategoryToVerify {
		if err := s.publishClassify(ctx, txs[0].ID); err != nil {
			slog.ErrorContext(ctx, "Failed to publish classify message",
				"transaction_id", txs[0].ID, "error", err)
		}
	}

	slog.InfoContext(ctx, "Created installment plan",
		"purchase_id", purchaseID,
		"parts", plan.Parts,
		"total_cents", int64(plan.TotalAmount))

	return txs, nil
}

// UpdateInstallmentPurchase rewrites every row of a purchase with a new
// description and total price, re-splitting the amount across the existing
// parts. Rows keep their ids and dates.
func (s *TransactionService) UpdateInstallmentPurchase(ctx context.Context, purchaseID, description string, totalAmount core.Money) error {
	rows, err := s.storage.ListInstallments(ctx, purchaseID)
	if err != nil {
		return fmt.Errorf("list installments: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("purchase %s: %w", purchaseID, storage.ErrNotFound)
	}
	if totalAmount <= 0 {
		return core.ErrInvalidAmount
	}

	total := rows[0].Installment.Total
	amounts := core.SplitInstallments(totalAmount, total)
	for i := range rows {
		current := rows[i].Installment.Current
		rows[i].Description = fmt.Sprintf("%s (%d/%d)", description, current, total)
		rows[i].Amount = amounts[current-1]
		rows[i].Installment.TotalAmount = totalAmount
	}

	if err := s.storage.SaveTransactions(ctx, rows); err != nil {
		return fmt.Errorf("rewrite purchase %s: %w", purchaseID, err)
	}
	return nil
}

// DeleteTransaction removes a transaction. For installment rows, scope
// picks between the single row and the row plus all later installments of
// the same purchase.
func (s *TransactionService) DeleteTransaction(ctx context.Context, id string, scope DeleteScope) error {
	t, err := s.storage.GetTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}

	if scope == DeleteFuture && t.Installment != nil {
		deleted, err := s.storage.DeleteInstallmentsFrom(ctx, t.Installment.PurchaseID, t.Installment.Current)
		if err != nil {
			return fmt.Errorf("delete installments: %w", err)
		}
		slog.InfoContext(ctx, "Deleted installment rows",
			"purchase_id", t.Installment.PurchaseID,
			"from", t.Installment.Current,
			"deleted", deleted)
		return nil
	}

	return s.storage.DeleteTransaction(ctx, id)
}

// PayBill records a bill as paid for the given month: a settling expense is
// created today and linked to the bill occurrence so projections stop
// counting it as upcoming. amount overrides the bill's stored amount when
// positive.
func (s *TransactionService) PayBill(ctx context.Context, billID string, month core.Month, amount core.Money, today core.Date) (string, error) {
	bill, err := s.storage.GetBill(ctx, billID)
	if err != nil {
		return "", fmt.Errorf("get bill: %w", err)
	}

	if amount <= 0 {
		amount = bill.Amount
	}
	if amount <= 0 {
		return "", fmt.Errorf("bill %s: %w", billID, core.ErrInvalidAmount)
	}

	category := bill.Category
	if category == "" {
		category = core.CategoryToVerify
	}

	t := core.Transaction{
		ID:          uuid.NewString(),
		Description: bill.Description,
		Amount:      amount,
		Type:        core.Expense,
		Date:        today,
		Category:    category,
		Subcategory: bill.Subcategory,
	}
	if err := s.storage.SaveTransaction(ctx, t); err != nil {
		return "", fmt.Errorf("save bill payment: %w", err)
	}

	if err := s.storage.RecordBillPayment(ctx, billID, month, t.ID); err != nil {
		return "", fmt.Errorf("record bill payment: %w", err)
	}

	slog.InfoContext(ctx, "Bill paid",
		"bill_id", billID, "month", month.String(), "transaction_id", t.ID)
	return t.ID, nil
}

func (s *TransactionService) publishClassify(ctx context.Context, transactionID string) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping classify message")
		return nil
	}
	return s.amqpClient.PublishClassify(ctx, transactionID)
}

// Close closes both storage and AMQP connections.
func (s *TransactionService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}
	return nil
}
