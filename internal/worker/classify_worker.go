package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fluxo/internal/ai"
	"fluxo/internal/amqp"
	"fluxo/internal/core"
	"fluxo/internal/storage"
)

// ClassifyWorker consumes classification messages and fills in the category
// of transactions still marked for verification.
type ClassifyWorker struct {
	storage    *storage.SQLiteRepository
	classifier *ai.Classifier
}

func NewClassifyWorker(storage *storage.SQLiteRepository, classifier *ai.Classifier) *ClassifyWorker {
	return &ClassifyWorker{
		storage:    storage,
		classifier: classifier,
	}
}

// HandleClassifyMessage processes a single classification message from AMQP.
// A transaction deleted before the message arrives is not an error; returning
// nil acks the message instead of requeueing it forever.
func (w *ClassifyWorker) HandleClassifyMessage(ctx context.Context, msg *amqp.ClassifyMessage) error {
	slog.InfoContext(ctx, "Processing classify message",
		"transaction_id", msg.TransactionID)

	t, err := w.storage.GetTransaction(ctx, msg.TransactionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			slog.WarnContext(ctx, "Transaction gone before classification, dropping message",
				"transaction_id", msg.TransactionID)
			return nil
		}
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	if t.IsClassified() {
		slog.InfoContext(ctx, "Transaction already classified, nothing to do",
			"transaction_id", t.ID, "category", t.Category)
		return nil
	}

	category, subcategory, err := w.classifier.Classify(ctx, t)
	if err != nil {
		return fmt.Errorf("classify transaction: %w", err)
	}

	if err := w.applyClassification(ctx, t, category, subcategory); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction classified",
		"transaction_id", t.ID,
		"category", category,
		"subcategory", subcategory)
	return nil
}

// applyClassification writes the suggested category. For installment rows
// the whole purchase gets the same category, so the plan never splits
// across categories.
func (w *ClassifyWorker) applyClassification(ctx context.Context, t core.Transaction, category, subcategory string) error {
	if t.Installment == nil {
		if err := w.storage.UpdateTransactionCategory(ctx, t.ID, category, subcategory); err != nil {
			return fmt.Errorf("update category: %w", err)
		}
		return nil
	}

	rows, err := w.storage.ListInstallments(ctx, t.Installment.PurchaseID)
	if err != nil {
		return fmt.Errorf("list installments: %w", err)
	}
	for _, row := range rows {
		if err := w.storage.UpdateTransactionCategory(ctx, row.ID, category, subcategory); err != nil {
			return fmt.Errorf("update installment category: %w", err)
		}
	}
	return nil
}
