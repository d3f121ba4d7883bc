package ai

import (
	"context"
	"testing"

	"fluxo/internal/core"
)

func TestParseLocal(t *testing.T) {
	today := core.NewDate(2025, 3, 15)
	p := NewQuickAddParser(nil)

	tests := []struct {
		name            string
		text            string
		wantDescription string
		wantAmount      core.Money
		wantType        core.TransactionType
		wantCategory    string
	}{
		{
			name:            "expense with comma decimals",
			text:            "mercado 45,90 no pix",
			wantDescription: "mercado no pix",
			wantAmount:      4590,
			wantType:        core.Expense,
			wantCategory:    core.CategoryToVerify,
		},
		{
			name:            "whole number amount",
			text:            "farmácia 30",
			wantDescription: "farmácia",
			wantAmount:      3000,
			wantType:        core.Expense,
			wantCategory:    core.CategoryToVerify,
		},
		{
			name:            "income keyword flips type",
			text:            "recebi 1500,00 freela",
			wantDescription: "recebi freela",
			wantAmount:      150000,
			wantType:        core.Income,
			wantCategory:    core.CategoryOther,
		},
		{
			name:            "amount only keeps raw text as description",
			text:            "12,50",
			wantDescription: "12,50",
			wantAmount:      1250,
			wantType:        core.Expense,
			wantCategory:    core.CategoryToVerify,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ParseLocal(tt.text, today)
			if err != nil {
				t.Fatalf("ParseLocal(%q) error: %v", tt.text, err)
			}
			if got.Description != tt.wantDescription {
				t.Errorf("Description = %q, want %q", got.Description, tt.wantDescription)
			}
			if got.Amount != tt.wantAmount {
				t.Errorf("Amount = %d, want %d", got.Amount, tt.wantAmount)
			}
			if got.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", got.Type, tt.wantType)
			}
			if got.Category != tt.wantCategory {
				t.Errorf("Category = %q, want %q", got.Category, tt.wantCategory)
			}
			if !got.Date.Equal(today.Time) {
				t.Errorf("Date = %v, want today", got.Date)
			}
		})
	}
}

func TestParseLocalNoAmount(t *testing.T) {
	p := NewQuickAddParser(nil)
	if _, err := p.ParseLocal("almoço com a equipe", core.NewDate(2025, 3, 15)); err == nil {
		t.Fatal("expected error when text carries no amount")
	}
}

func TestParseFallsBackWhenModelFails(t *testing.T) {
	gen := &fakeGenerator{err: context.DeadlineExceeded}
	p := NewQuickAddParser(gen)

	got, err := p.Parse(context.Background(), "uber 23,00", core.NewDate(2025, 3, 15))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got.Description != "uber" || got.Amount != 2300 {
		t.Errorf("fallback draft = %+v", got)
	}
}

func TestParseUsesModelDraft(t *testing.T) {
	gen := &fakeGenerator{responses: []string{
		`{"description": "Uber para o aeroporto", "amount": "23,00", "type": "expense",` +
			` "date": "2025-03-14", "category": "Transporte", "subcategory": "Aplicativo"}`,
	}}
	p := NewQuickAddParser(gen)

	got, err := p.Parse(context.Background(), "uber aeroporto ontem 23", core.NewDate(2025, 3, 15))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got.Description != "Uber para o aeroporto" {
		t.Errorf("Description = %q", got.Description)
	}
	if got.Amount != 2300 {
		t.Errorf("Amount = %d, want 2300", got.Amount)
	}
	if got.Category != "Transporte" || got.Subcategory != "Aplicativo" {
		t.Errorf("classification = (%q, %q)", got.Category, got.Subcategory)
	}
	want := core.NewDate(2025, 3, 14)
	if !got.Date.Equal(want.Time) {
		t.Errorf("Date = %v, want %v", got.Date, want)
	}
}
