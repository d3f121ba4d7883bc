package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fluxo/internal/core"
	"fluxo/internal/storage"
)

// RecurringProcessor materializes recurring templates into real
// transactions once their due date arrives.
type RecurringProcessor struct {
	storage *storage.SQLiteRepository
	txs     *TransactionService
}

func NewRecurringProcessor(storage *storage.SQLiteRepository, txs *TransactionService) *RecurringProcessor {
	return &RecurringProcessor{
		storage: storage,
		txs:     txs,
	}
}

// ProcessDue creates a transaction for every template whose next due date
// is today or earlier, then advances the template to the following month.
// A template that sat unprocessed for several months yields one transaction
// per missed month.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.storage == nil || p.txs == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	templates, err := p.storage.ListRecurring(ctx)
	if err != nil {
		return 0, fmt.Errorf("list recurring templates: %w", err)
	}

	today := core.Today(now)
	slog.InfoContext(ctx, "Processing recurring templates",
		"total", len(templates),
		"processing_date", today.String())

	processed := 0
	for _, rt := range templates {
		for !rt.NextDueDate.After(today) {
			t := core.Transaction{
				ID:          uuid.NewString(),
				Description: rt.Description,
				Amount:      rt.Amount,
				Type:        rt.Type,
				Date:        rt.NextDueDate,
				Category:    rt.Category,
				Subcategory: rt.Subcategory,
			}

			if _, err := p.txs.CreateTransaction(ctx, t); err != nil {
				slog.ErrorContext(ctx, "Failed to create transaction from recurring template",
					"recurring_id", rt.ID,
					"description", rt.Description,
					"error", err)
				break
			}

			next := NextMonthlyOccurrence(rt.NextDueDate, rt.StartDate.Day())
			if err := p.storage.AdvanceRecurring(ctx, rt.ID, next); err != nil {
				slog.ErrorContext(ctx, "Failed to advance recurring template",
					"recurring_id", rt.ID,
					"error", err)
				break
			}
			rt.NextDueDate = next

			processed++
			slog.InfoContext(ctx, "Created transaction from recurring template",
				"recurring_id", rt.ID,
				"description", rt.Description,
				"amount_cents", int64(rt.Amount),
				"next_due", next.String())
		}
	}

	slog.InfoContext(ctx, "Recurring processing complete",
		"processed", processed,
		"total_checked", len(templates))

	return processed, nil
}

// NextMonthlyOccurrence returns the same target day in the month after
// current. Target days 29-31 clamp to the last day of shorter months, then
// recover in months long enough to hold them.
func NextMonthlyOccurrence(current core.Date, targetDay int) core.Date {
	month := current.MonthOf().Next()
	day := targetDay
	if last := month.Days(); day > last {
		day = last
	}
	return core.NewDate(month.Year, month.Month, day)
}
