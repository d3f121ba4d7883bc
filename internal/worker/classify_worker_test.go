package worker

import (
	"context"
	"path/filepath"
	"testing"

	"fluxo/internal/ai"
	"fluxo/internal/amqp"
	"fluxo/internal/core"
	"fluxo/internal/storage"
)

type fakeGenerator struct {
	response string
	err      error
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "worker_test.db"))
	if err != nil {
		t.Fatalf("open test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestHandleClassifyMessage(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	tx := core.Transaction{
		ID:          "t1",
		Description: "uber aeroporto",
		Amount:      4500,
		Type:        core.Expense,
		Date:        core.NewDate(2025, 3, 10),
		Category:    core.CategoryToVerify,
	}
	if err := repo.SaveTransaction(ctx, tx); err != nil {
		t.Fatalf("seed transaction: %v", err)
	}

	gen := &fakeGenerator{response: `{"category": "Transporte", "subcategory": "Aplicativo"}`}
	w := NewClassifyWorker(repo, ai.NewClassifier(gen))

	if err := w.HandleClassifyMessage(ctx, amqp.NewClassifyMessage("t1")); err != nil {
		t.Fatalf("HandleClassifyMessage: %v", err)
	}

	got, err := repo.GetTransaction(ctx, "t1")
	if err != nil {
		t.Fatalf("reload transaction: %v", err)
	}
	if got.Category != "Transporte" || got.Subcategory != "Aplicativo" {
		t.Errorf("classification = (%q, %q)", got.Category, got.Subcategory)
	}
}

func TestHandleClassifyMessagePropagatesToPurchase(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for i := 1; i <= 3; i++ {
		tx := core.Transaction{
			ID:          string(rune('a' + i - 1)),
			Description: "Notebook",
			Amount:      100000,
			Type:        core.Expense,
			Date:        core.NewDate(2025, 3, i),
			Category:    core.CategoryToVerify,
			Installment: &core.InstallmentDetails{
				PurchaseID:  "p1",
				Current:     i,
				Total:       3,
				TotalAmount: 300000,
			},
		}
		if err := repo.SaveTransaction(ctx, tx); err != nil {
			t.Fatalf("seed installment %d: %v", i, err)
		}
	}

	gen := &fakeGenerator{response: `{"category": "Outros", "subcategory": "Diversos"}`}
	w := NewClassifyWorker(repo, ai.NewClassifier(gen))

	if err := w.HandleClassifyMessage(ctx, amqp.NewClassifyMessage("a")); err != nil {
		t.Fatalf("HandleClassifyMessage: %v", err)
	}

	rows, err := repo.ListInstallments(ctx, "p1")
	if err != nil {
		t.Fatalf("list installments: %v", err)
	}
	for _, row := range rows {
		if row.Category != "Outros" {
			t.Errorf("row %s category = %q, want whole purchase classified", row.ID, row.Category)
		}
	}
}

func TestHandleClassifyMessageDropsMissingTransaction(t *testing.T) {
	repo := newTestRepo(t)
	gen := &fakeGenerator{response: `{"category": "Outros", "subcategory": "Diversos"}`}
	w := NewClassifyWorker(repo, ai.NewClassifier(gen))

	// Deleted before the message arrived: ack, don't requeue forever.
	if err := w.HandleClassifyMessage(context.Background(), amqp.NewClassifyMessage("gone")); err != nil {
		t.Fatalf("expected nil for missing transaction, got %v", err)
	}
}

func TestHandleClassifyMessageSkipsClassified(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	tx := core.Transaction{
		ID:          "t1",
		Description: "mercado",
		Amount:      4500,
		Type:        core.Expense,
		Date:        core.NewDate(2025, 3, 10),
		Category:    "Alimentação",
		Subcategory: "Mercado",
	}
	if err := repo.SaveTransaction(ctx, tx); err != nil {
		t.Fatalf("seed transaction: %v", err)
	}

	// A generator failure proves the model was never called.
	gen := &fakeGenerator{err: context.DeadlineExceeded}
	w := NewClassifyWorker(repo, ai.NewClassifier(gen))

	if err := w.HandleClassifyMessage(ctx, amqp.NewClassifyMessage("t1")); err != nil {
		t.Fatalf("already-classified row should be a no-op, got %v", err)
	}
}
