package projection

import (
	"testing"

	"fluxo/internal/core"
)

func TestDetectSpendingAnomalies(t *testing.T) {
	today := core.NewDate(2025, 3, 14)
	// currentWeek falls inside the trailing 7 days, previousWeek inside the
	// 7 days before that.
	currentWeek := core.NewDate(2025, 3, 12)
	previousWeek := core.NewDate(2025, 3, 5)

	withCat := func(tx core.Transaction, cat string) core.Transaction {
		tx.Category = cat
		return tx
	}

	tests := []struct {
		name string
		txs  []core.Transaction
		want []Anomaly
	}{
		{
			name: "no transactions",
			txs:  nil,
			want: nil,
		},
		{
			name: "threshold is inclusive",
			txs: []core.Transaction{
				withCat(expense("prev", 10000, previousWeek), "Alimentação"),
				withCat(expense("cur", 12000, currentWeek), "Alimentação"),
			},
			want: []Anomaly{{Category: "Alimentação", Previous: 10000, Current: 12000, ChangePercent: 20}},
		},
		{
			name: "below threshold not flagged",
			txs: []core.Transaction{
				withCat(expense("prev", 10000, previousWeek), "Alimentação"),
				withCat(expense("cur", 11900, currentWeek), "Alimentação"),
			},
			want: nil,
		},
		{
			name: "new category flagged at 100",
			txs: []core.Transaction{
				withCat(expense("cur", 5000, currentWeek), "Lazer"),
			},
			want: []Anomaly{{Category: "Lazer", Current: 5000, ChangePercent: 100}},
		},
		{
			name: "decrease never flagged",
			txs: []core.Transaction{
				withCat(expense("prev", 20000, previousWeek), "Transporte"),
				withCat(expense("cur", 5000, currentWeek), "Transporte"),
			},
			want: nil,
		},
		{
			name: "income ignored",
			txs: []core.Transaction{
				withCat(income("salario", 500000, currentWeek), "Salário"),
			},
			want: nil,
		},
		{
			name: "uncategorized buckets as Outros",
			txs: []core.Transaction{
				expense("sem categoria", 3000, currentWeek),
			},
			want: []Anomaly{{Category: core.CategoryOther, Current: 3000, ChangePercent: 100}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectSpendingAnomalies(tt.txs, today, DefaultAnomalyThreshold)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d (%+v)", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("anomaly %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDetectSpendingAnomaliesSortsByChange(t *testing.T) {
	today := core.NewDate(2025, 3, 14)
	cur := core.NewDate(2025, 3, 13)
	prev := core.NewDate(2025, 3, 5)

	txs := []core.Transaction{
		{ID: "1", Description: "a", Amount: 10000, Type: core.Expense, Date: prev, Category: "Lazer"},
		{ID: "2", Description: "b", Amount: 15000, Type: core.Expense, Date: cur, Category: "Lazer"}, // +50%
		{ID: "3", Description: "c", Amount: 10000, Type: core.Expense, Date: prev, Category: "Transporte"},
		{ID: "4", Description: "d", Amount: 30000, Type: core.Expense, Date: cur, Category: "Transporte"}, // +200%
	}

	got := DetectSpendingAnomalies(txs, today, DefaultAnomalyThreshold)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Category != "Transporte" || got[1].Category != "Lazer" {
		t.Errorf("order = [%s, %s], want [Transporte, Lazer]", got[0].Category, got[1].Category)
	}
}
