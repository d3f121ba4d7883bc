package projection

import (
	"sort"
	"strings"

	"fluxo/internal/core"
)

// Commitment statuses, ordered by urgency.
const (
	StatusPaid     = "paid"
	StatusUrgent   = "urgent"
	StatusUpcoming = "upcoming"
)

// Commitment is a bill obligation with its next resolved due date.
type Commitment struct {
	BillID      string     `json:"billId"`
	Description string     `json:"description"`
	DueDate     core.Date  `json:"dueDate"`
	Amount      core.Money `json:"amount"`
	Status      string     `json:"status"`
	IsAutoDebit bool       `json:"isAutoDebit"`
}

// PaidTransaction resolves whether a bill was settled in the given month.
// The explicit payment link is checked first; textual matching (same month,
// case-insensitive substring of the description) remains as a fallback for
// bills paid before links existed.
func PaidTransaction(b core.Bill, txs []core.Transaction, month core.Month) (core.Transaction, bool) {
	if id, ok := b.PaidBy(month); ok {
		for _, t := range txs {
			if t.ID == id {
				return t, true
			}
		}
		// Link points at a transaction outside the slice; trust the link.
		return core.Transaction{}, true
	}

	needle := strings.ToLower(strings.TrimSpace(b.Description))
	if needle == "" {
		return core.Transaction{}, false
	}
	for _, t := range txs {
		if t.Type != core.Expense || !month.Contains(t.Date) {
			continue
		}
		if strings.Contains(strings.ToLower(t.Description), needle) {
			return t, true
		}
	}
	return core.Transaction{}, false
}

// UpcomingCommitments resolves every bill to its next due date (this month
// if the due day has not passed, otherwise next month), attaches a status
// and returns the soonest `limit` commitments sorted by date.
func UpcomingCommitments(bills []core.Bill, txs []core.Transaction, today core.Date, limit int) []Commitment {
	if limit <= 0 {
		limit = 5
	}
	tomorrow := today.AddDays(1)

	var out []Commitment
	for _, b := range bills {
		month := today.MonthOf()
		due := b.DueDateIn(month)
		if due.Before(today) {
			month = month.Next()
			due = b.DueDateIn(month)
		}

		_, paid := PaidTransaction(b, txs, month)
		status := StatusUpcoming
		switch {
		case paid:
			status = StatusPaid
		case !due.After(tomorrow):
			status = StatusUrgent
		}

		out = append(out, Commitment{
			BillID:      b.ID,
			Description: b.Description,
			DueDate:     due,
			Amount:      b.Amount,
			Status:      status,
			IsAutoDebit: b.IsAutoDebit,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate.Before(out[j].DueDate)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
