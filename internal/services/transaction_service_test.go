package services

import (
	"context"
	"errors"
	"testing"

	"fluxo/internal/core"
)

func TestCreateInstallmentPlanRejectsBadInput(t *testing.T) {
	s := NewTransactionService(nil, nil)

	tests := []struct {
		name    string
		plan    InstallmentPlan
		wantErr error
	}{
		{
			name: "single part is not a plan",
			plan: InstallmentPlan{
				Description: "Notebook",
				TotalAmount: 300000,
				Parts:       1,
				FirstDate:   core.NewDate(2025, 3, 10),
			},
			wantErr: core.ErrInvalidInstallment,
		},
		{
			name: "zero total",
			plan: InstallmentPlan{
				Description: "Notebook",
				TotalAmount: 0,
				Parts:       3,
				FirstDate:   core.NewDate(2025, 3, 10),
			},
			wantErr: core.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateInstallmentPlan(context.Background(), tt.plan)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewTransactionService(t *testing.T) {
	s := NewTransactionService(nil, nil)
	if s == nil {
		t.Fatal("NewTransactionService returned nil")
	}
}

func TestTransactionServiceClose(t *testing.T) {
	t.Run("nil components", func(t *testing.T) {
		s := &TransactionService{}
		if err := s.Close(); err != nil {
			t.Fatalf("Close with nil components: %v", err)
		}
	})
}
