package projection

import (
	"testing"

	"fluxo/internal/core"
)

func expense(desc string, cents int64, d core.Date) core.Transaction {
	return core.Transaction{ID: desc, Description: desc, Amount: core.Money(cents), Type: core.Expense, Date: d}
}

func income(desc string, cents int64, d core.Date) core.Transaction {
	return core.Transaction{ID: desc, Description: desc, Amount: core.Money(cents), Type: core.Income, Date: d}
}

func TestCurrentBalance(t *testing.T) {
	d := core.NewDate(2025, 3, 10)

	tests := []struct {
		name string
		txs  []core.Transaction
		want core.Money
	}{
		{name: "empty list", txs: nil, want: 0},
		{
			name: "income minus expense",
			txs: []core.Transaction{
				income("salario", 100000, d),
				expense("mercado", 30000, d),
			},
			want: 70000,
		},
		{
			name: "order independent",
			txs: []core.Transaction{
				expense("mercado", 30000, d),
				income("salario", 100000, d),
			},
			want: 70000,
		},
		{
			name: "can go negative",
			txs: []core.Transaction{
				expense("aluguel", 150000, d),
				income("freela", 50000, d),
			},
			want: -100000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CurrentBalance(tt.txs)
			if got != tt.want {
				t.Errorf("CurrentBalance() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDailyBurnRate(t *testing.T) {
	today := core.NewDate(2025, 3, 20)
	txs := []core.Transaction{
		expense("dentro da janela", 30000, core.NewDate(2025, 3, 18)),
		expense("hoje", 15000, today),
		expense("fora da janela", 99900, core.NewDate(2025, 2, 1)),
		income("nao conta", 500000, today),
	}

	// 450.00 over 30 days
	if got := DailyBurnRate(txs, 30, today); got != 1500 {
		t.Errorf("DailyBurnRate(30) = %d, want 1500", got)
	}
	if got := DailyBurnRate(txs, 0, today); got != 0 {
		t.Errorf("DailyBurnRate(0) = %d, want 0", got)
	}
	if got := DailyBurnRate(txs, -5, today); got != 0 {
		t.Errorf("DailyBurnRate(-5) = %d, want 0", got)
	}

	// A 1-day window only sees today.
	if got := DailyBurnRate(txs, 1, today); got != 15000 {
		t.Errorf("DailyBurnRate(1) = %d, want 15000", got)
	}
}

func TestMonthEndProjection(t *testing.T) {
	month := core.Month{Year: 2025, Month: 3}

	t.Run("last day returns plain balance", func(t *testing.T) {
		txs := []core.Transaction{
			income("salario", 500000, core.NewDate(2025, 3, 5)),
			expense("mercado", 120000, core.NewDate(2025, 3, 10)),
		}
		bills := []core.Bill{{ID: "b1", Description: "Internet", DueDay: 31, Amount: 9900}}

		p := MonthEndProjection(txs, bills, month, core.NewDate(2025, 3, 31))
		if p.Projected != CurrentBalance(txs) {
			t.Errorf("Projected = %d, want current balance %d", p.Projected, CurrentBalance(txs))
		}
		if p.UpcomingBills != 0 || p.ProjectedVariable != 0 {
			t.Errorf("expected no extrapolation on the last day, got bills=%d variable=%d",
				p.UpcomingBills, p.ProjectedVariable)
		}
	})

	t.Run("three term model", func(t *testing.T) {
		today := core.NewDate(2025, 3, 10)
		txs := []core.Transaction{
			income("salario", 500000, core.NewDate(2025, 3, 5)),
			// 100.00/day over the trailing 10 days
			expense("gastos", 100000, core.NewDate(2025, 3, 3)),
		}
		bills := []core.Bill{
			{ID: "b1", Description: "Internet", DueDay: 20, Amount: 9900},
			{ID: "b2", Description: "Aluguel", DueDay: 5, Amount: 150000}, // already past
		}

		p := MonthEndProjection(txs, bills, month, today)
		if p.CurrentBalance != 400000 {
			t.Fatalf("CurrentBalance = %d, want 400000", p.CurrentBalance)
		}
		if p.UpcomingBills != 9900 {
			t.Errorf("UpcomingBills = %d, want 9900", p.UpcomingBills)
		}
		// avg daily = 100000/10 = 10000; 21 days remaining
		if p.ProjectedVariable != 210000 {
			t.Errorf("ProjectedVariable = %d, want 210000", p.ProjectedVariable)
		}
		want := p.CurrentBalance - p.UpcomingBills - p.ProjectedVariable
		if p.Projected != want {
			t.Errorf("Projected = %d, want %d", p.Projected, want)
		}
	})

	t.Run("paid bill excluded from upcoming total", func(t *testing.T) {
		today := core.NewDate(2025, 3, 10)
		txs := []core.Transaction{
			expense("Pagamento Internet fibra", 9900, core.NewDate(2025, 3, 20)),
		}
		bills := []core.Bill{{ID: "b1", Description: "Internet", DueDay: 20, Amount: 9900}}

		p := MonthEndProjection(txs, bills, month, today)
		if p.UpcomingBills != 0 {
			t.Errorf("UpcomingBills = %d, want 0 (bill already matched this month)", p.UpcomingBills)
		}
	})

	t.Run("explicitly linked payment excluded", func(t *testing.T) {
		today := core.NewDate(2025, 3, 10)
		txs := []core.Transaction{
			expense("pgto avulso", 9900, core.NewDate(2025, 3, 8)),
		}
		bills := []core.Bill{{
			ID: "b1", Description: "Internet", DueDay: 20, Amount: 9900,
			Payments: []core.BillPayment{{Month: month, TransactionID: "pgto avulso"}},
		}}

		p := MonthEndProjection(txs, bills, month, today)
		if p.UpcomingBills != 0 {
			t.Errorf("UpcomingBills = %d, want 0 (explicit payment link)", p.UpcomingBills)
		}
	})
}
