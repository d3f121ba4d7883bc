package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fluxo/internal/services"
	"fluxo/internal/storage"
)

// newTestServer wires a real SQLite repository in a temp dir, no AMQP and
// no AI. The clock is pinned so month math stays deterministic.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "fluxo_test.db"))
	if err != nil {
		t.Fatalf("open test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	srv := NewServer(":0", Deps{
		Storage:   repo,
		TxService: services.NewTransactionService(repo, nil),
	})
	srv.now = func() time.Time {
		return time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	}
	t.Cleanup(func() { srv.rateLimiter.stop() })
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestCreateAndListTransactions(t *testing.T) {
	srv := newTestServer(t)

	// Wrong method
	rr := doJSON(t, srv, http.MethodDelete, "/api/transactions", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}

	// Invalid amount
	rr = doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"description": "mercado", "amount": "abc", "type": "expense"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad amount, got %d: %s", rr.Code, rr.Body.String())
	}

	// Missing description
	rr = doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"description": "", "amount": "12,34", "type": "expense"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for empty description, got %d: %s", rr.Code, rr.Body.String())
	}

	// Success
	rr = doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"description": "mercado", "amount": "45,90", "type": "expense", "date": "2025-03-10"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var created transactionJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created transaction: %v", err)
	}
	if created.AmountCents != 4590 {
		t.Errorf("amountCents = %d, want 4590", created.AmountCents)
	}
	if created.Category != "A Verificar" {
		t.Errorf("category = %q, want pending verification", created.Category)
	}

	// Listed under its month
	rr = doJSON(t, srv, http.MethodGet, "/api/transactions?month=2025-03", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status=%d", rr.Code)
	}
	var listed []transactionJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("listed = %+v, want the created transaction", listed)
	}

	// Absent from other months
	rr = doJSON(t, srv, http.MethodGet, "/api/transactions?month=2025-04", "")
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("april should be empty, got %+v", listed)
	}
}

func TestInstallmentPlanLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/api/installments",
		`{"description": "Notebook", "totalAmount": "1000,00", "parts": 3, "firstDate": "2025-01-31", "category": "Outros"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var rows []transactionJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode plan: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("parts = %d, want 3", len(rows))
	}

	// Remainder on the first part, dates clamped through february.
	if rows[0].AmountCents != 33334 || rows[1].AmountCents != 33333 {
		t.Errorf("split = %d, %d, %d", rows[0].AmountCents, rows[1].AmountCents, rows[2].AmountCents)
	}
	if rows[1].Date != "2025-02-28" {
		t.Errorf("second part date = %s, want clamped 2025-02-28", rows[1].Date)
	}
	if rows[2].Date != "2025-03-31" {
		t.Errorf("third part date = %s, want 2025-03-31", rows[2].Date)
	}
	if !strings.Contains(rows[0].Description, "(1/3)") {
		t.Errorf("description = %q, want numbering suffix", rows[0].Description)
	}

	purchaseID := rows[0].Installment.PurchaseID

	// Rewriting the purchase re-splits amounts and renames every row.
	rr = doJSON(t, srv, http.MethodPut, "/api/installments/"+purchaseID,
		`{"description": "Notebook gamer", "totalAmount": "1200,00"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("rewrite status=%d: %s", rr.Code, rr.Body.String())
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode rewrite: %v", err)
	}
	if rows[0].AmountCents != 40000 {
		t.Errorf("rewritten first part = %d, want 40000", rows[0].AmountCents)
	}
	if !strings.Contains(rows[1].Description, "Notebook gamer (2/3)") {
		t.Errorf("rewritten description = %q", rows[1].Description)
	}

	// Deleting with the all-future scope drops parts 2 and 3.
	rr = doJSON(t, srv, http.MethodDelete, "/api/transactions/"+rows[1].ID+"?scope=future", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d: %s", rr.Code, rr.Body.String())
	}
	rr = doJSON(t, srv, http.MethodGet, "/api/installments/"+purchaseID, "")
	if err := json.Unmarshal(rr.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode remaining: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("remaining rows = %d, want only the first part", len(rows))
	}
}

func TestBillPayFlow(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/api/bills",
		`{"description": "Conta de Luz", "dueDay": 20, "amount": "150,00", "category": "Moradia"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create bill status=%d: %s", rr.Code, rr.Body.String())
	}
	var bill billJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &bill); err != nil {
		t.Fatalf("decode bill: %v", err)
	}

	// Unpaid bill with a future due day counts as an upcoming commitment.
	rr = doJSON(t, srv, http.MethodGet, "/api/dashboard/commitments", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("commitments status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Conta de Luz") {
		t.Fatalf("commitments missing bill: %s", rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"status":"upcoming"`) {
		t.Fatalf("expected upcoming status: %s", rr.Body.String())
	}

	// Paying records the link and creates a real expense.
	rr = doJSON(t, srv, http.MethodPost, "/api/bills/"+bill.ID+"/pay", `{"month": "2025-03"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("pay status=%d: %s", rr.Code, rr.Body.String())
	}
	var paid transactionJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &paid); err != nil {
		t.Fatalf("decode payment: %v", err)
	}
	if paid.AmountCents != 15000 {
		t.Errorf("payment amount = %d, want the bill's 15000", paid.AmountCents)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/bills/"+bill.ID, "")
	if err := json.Unmarshal(rr.Body.Bytes(), &bill); err != nil {
		t.Fatalf("decode bill after pay: %v", err)
	}
	if len(bill.Payments) != 1 || bill.Payments[0].TransactionID != paid.ID {
		t.Fatalf("payments = %+v, want link to %s", bill.Payments, paid.ID)
	}

	// The paid bill leaves the upcoming list.
	rr = doJSON(t, srv, http.MethodGet, "/api/dashboard/commitments", "")
	if !strings.Contains(rr.Body.String(), `"status":"paid"`) {
		t.Fatalf("expected paid status after payment: %s", rr.Body.String())
	}
}

func TestProjectionEndpoint(t *testing.T) {
	srv := newTestServer(t)

	// Income on the 1st, one unpaid bill due the 20th.
	rr := doJSON(t, srv, http.MethodPost, "/api/transactions",
		`{"description": "Salário", "amount": "3000,00", "type": "income", "date": "2025-03-01", "category": "Salário"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create income status=%d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodPost, "/api/bills",
		`{"description": "Aluguel", "dueDay": 20, "amount": "1000,00"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create bill status=%d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/api/dashboard/projection?month=2025-03", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("projection status=%d: %s", rr.Code, rr.Body.String())
	}
	var p projectionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode projection: %v", err)
	}
	if p.CurrentBalanceCents != 300000 {
		t.Errorf("balance = %d, want 300000", p.CurrentBalanceCents)
	}
	if p.UpcomingBillsCents != 100000 {
		t.Errorf("upcoming bills = %d, want 100000", p.UpcomingBillsCents)
	}
	// No variable spending yet: projection is balance minus the bill.
	if p.ProjectedCents != 200000 {
		t.Errorf("projected = %d, want 200000", p.ProjectedCents)
	}
}

func TestInsightsAlwaysThreeSlots(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodGet, "/api/dashboard/insights", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("insights status=%d: %s", rr.Code, rr.Body.String())
	}
	var insights []map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &insights); err != nil {
		t.Fatalf("decode insights: %v", err)
	}
	if len(insights) != 3 {
		t.Fatalf("insights = %d, want exactly 3 slots", len(insights))
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  mercado  ", "mercado"},
		{"linha\x00nula", "linhanula"},
		{"com\ttab", "com\ttab"},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
