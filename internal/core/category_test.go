package core

import "testing"

func TestLookupCategory(t *testing.T) {
	if _, ok := LookupCategory("Moradia", Expense); !ok {
		t.Error("expected Moradia to exist for expenses")
	}
	if _, ok := LookupCategory("moradia", Expense); !ok {
		t.Error("lookup should be case-insensitive")
	}
	if _, ok := LookupCategory("Moradia", Income); ok {
		t.Error("Moradia is not an income category")
	}
	if _, ok := LookupCategory("Salário", Income); !ok {
		t.Error("expected Salário to exist for income")
	}
	if _, ok := LookupCategory("Criptomoedas", Expense); ok {
		t.Error("unknown category should not resolve")
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		name    string
		cat     string
		sub     string
		typ     TransactionType
		wantCat string
		wantSub string
	}{
		{name: "valid pair passes through", cat: "Moradia", sub: "Aluguel", typ: Expense, wantCat: "Moradia", wantSub: "Aluguel"},
		{name: "case folded", cat: "moradia", sub: "aluguel", typ: Expense, wantCat: "Moradia", wantSub: "Aluguel"},
		{name: "unknown category coerced to Outros", cat: "Criptomoedas", sub: "", typ: Expense, wantCat: CategoryOther, wantSub: "Diversos"},
		{name: "unknown subcategory gets first available", cat: "Transporte", sub: "Foguete", typ: Expense, wantCat: "Transporte", wantSub: "Combustível"},
		{name: "income side", cat: "Salário", sub: "Bônus", typ: Income, wantCat: "Salário", wantSub: "Bônus"},
		{name: "empty input coerced", cat: "", sub: "", typ: Expense, wantCat: CategoryOther, wantSub: "Diversos"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, sub := NormalizeCategory(tt.cat, tt.sub, tt.typ)
			if cat != tt.wantCat || sub != tt.wantSub {
				t.Errorf("NormalizeCategory(%q, %q) = (%q, %q), want (%q, %q)",
					tt.cat, tt.sub, cat, sub, tt.wantCat, tt.wantSub)
			}
		})
	}
}

func TestCategoriesSplitByType(t *testing.T) {
	for _, c := range Categories(Expense) {
		if c.Type != Expense {
			t.Errorf("expense list contains %s of type %s", c.Name, c.Type)
		}
	}
	if len(Categories(Income)) == 0 {
		t.Error("expected income categories")
	}
}

func TestIsClassified(t *testing.T) {
	base := Transaction{Description: "x", Amount: 100, Type: Expense, Date: NewDate(2025, 3, 1)}

	tx := base
	tx.Category = "Moradia"
	if !tx.IsClassified() {
		t.Error("valid category should classify")
	}

	tx.Category = CategoryToVerify
	if tx.IsClassified() {
		t.Error("A Verificar is not classified")
	}

	tx.Category = "Inexistente"
	if tx.IsClassified() {
		t.Error("unknown category is not classified")
	}
}
