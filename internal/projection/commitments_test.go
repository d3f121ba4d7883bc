package projection

import (
	"testing"

	"fluxo/internal/core"
)

func TestUpcomingCommitments(t *testing.T) {
	today := core.NewDate(2025, 3, 10)
	bills := []core.Bill{
		{ID: "luz", Description: "Energia", DueDay: 11, Amount: 18000},
		{ID: "net", Description: "Internet", DueDay: 25, Amount: 9900},
		{ID: "aluguel", Description: "Aluguel", DueDay: 5, Amount: 150000}, // rolls to April
		{ID: "agua", Description: "Água", DueDay: 15, Amount: 7000},
	}
	txs := []core.Transaction{
		expense("Conta de Água março", 7000, core.NewDate(2025, 3, 2)),
	}

	got := UpcomingCommitments(bills, txs, today, 5)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}

	// Sorted ascending by due date: luz (11), água (15), net (25), aluguel (Apr 5).
	wantOrder := []string{"luz", "agua", "net", "aluguel"}
	for i, id := range wantOrder {
		if got[i].BillID != id {
			t.Fatalf("position %d = %s, want %s", i, got[i].BillID, id)
		}
	}

	if got[0].Status != StatusUrgent {
		t.Errorf("luz status = %s, want urgent (due tomorrow)", got[0].Status)
	}
	if got[1].Status != StatusPaid {
		t.Errorf("agua status = %s, want paid (fuzzy match)", got[1].Status)
	}
	if got[2].Status != StatusUpcoming {
		t.Errorf("net status = %s, want upcoming", got[2].Status)
	}
	if got[3].DueDate != core.NewDate(2025, 4, 5) {
		t.Errorf("aluguel due = %s, want 2025-04-05", got[3].DueDate)
	}
}

func TestUpcomingCommitmentsLimit(t *testing.T) {
	today := core.NewDate(2025, 3, 1)
	var bills []core.Bill
	for day := 2; day <= 9; day++ {
		bills = append(bills, core.Bill{
			ID: string(rune('a' + day)), Description: "Conta", DueDay: day, Amount: 1000,
		})
	}

	got := UpcomingCommitments(bills, nil, today, 3)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}

	// Zero limit falls back to the default of 5.
	got = UpcomingCommitments(bills, nil, today, 0)
	if len(got) != 5 {
		t.Fatalf("len with default limit = %d, want 5", len(got))
	}
}

func TestUpcomingCommitmentsClampsShortMonths(t *testing.T) {
	// Due day 31 in February resolves to the month's last day.
	today := core.NewDate(2025, 2, 10)
	bills := []core.Bill{{ID: "cartao", Description: "Fatura Cartão", DueDay: 31, Amount: 250000}}

	got := UpcomingCommitments(bills, nil, today, 5)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].DueDate != core.NewDate(2025, 2, 28) {
		t.Errorf("due = %s, want 2025-02-28", got[0].DueDate)
	}
}

func TestPaidTransactionPrefersExplicitLink(t *testing.T) {
	month := core.Month{Year: 2025, Month: 3}
	bill := core.Bill{
		ID: "net", Description: "Internet", DueDay: 20, Amount: 9900,
		Payments: []core.BillPayment{{Month: month, TransactionID: "tx-42"}},
	}
	txs := []core.Transaction{
		expense("sem relacao nenhuma", 9900, core.NewDate(2025, 3, 18)),
	}
	txs[0].ID = "tx-42"

	tx, paid := PaidTransaction(bill, txs, month)
	if !paid {
		t.Fatal("expected paid via explicit link")
	}
	if tx.ID != "tx-42" {
		t.Errorf("tx.ID = %s, want tx-42", tx.ID)
	}

	// Fuzzy fallback is case-insensitive substring containment.
	bill.Payments = nil
	if _, paid := PaidTransaction(bill, txs, month); paid {
		t.Error("unrelated description should not fuzzy-match")
	}
	txs = append(txs, expense("pagamento INTERNET fibra", 9900, core.NewDate(2025, 3, 20)))
	if _, paid := PaidTransaction(bill, txs, month); !paid {
		t.Error("expected case-insensitive substring match")
	}
}
