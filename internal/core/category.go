package core

import "strings"

// CategoryOther is the safe default every classification path falls back to.
const CategoryOther = "Outros"

// CategoryToVerify tags transactions that still await classification.
const CategoryToVerify = "A Verificar"

// CategoryInfo describes one entry of the closed category registry: display
// metadata plus the valid subcategories for that category.
type CategoryInfo struct {
	Name          string
	Type          TransactionType
	Icon          string
	Color         string
	Subcategories []string
}

// The registry is a fixed enumeration. Category names flowing through the
// system are validated against it at every boundary (user input, AI
// suggestions, imports).
var categoryRegistry = []CategoryInfo{
	{Name: "Moradia", Type: Expense, Icon: "home", Color: "#0ea5e9",
		Subcategories: []string{"Aluguel", "Condomínio", "Energia", "Água", "Internet", "Gás"}},
	{Name: "Alimentação", Type: Expense, Icon: "utensils", Color: "#f97316",
		Subcategories: []string{"Mercado", "Restaurante", "Delivery", "Padaria"}},
	{Name: "Transporte", Type: Expense, Icon: "car", Color: "#8b5cf6",
		Subcategories: []string{"Combustível", "Aplicativo", "Transporte Público", "Manutenção", "Estacionamento"}},
	{Name: "Saúde", Type: Expense, Icon: "heart-pulse", Color: "#ef4444",
		Subcategories: []string{"Plano de Saúde", "Farmácia", "Consultas", "Exames"}},
	{Name: "Educação", Type: Expense, Icon: "graduation-cap", Color: "#14b8a6",
		Subcategories: []string{"Mensalidade", "Cursos", "Livros", "Material"}},
	{Name: "Lazer", Type: Expense, Icon: "gamepad-2", Color: "#ec4899",
		Subcategories: []string{"Streaming", "Viagem", "Cinema", "Bares", "Hobbies"}},
	{Name: "Assinaturas", Type: Expense, Icon: "repeat", Color: "#6366f1",
		Subcategories: []string{"Software", "Música", "Vídeo", "Academia"}},
	{Name: "Vestuário", Type: Expense, Icon: "shirt", Color: "#a855f7",
		Subcategories: []string{"Roupas", "Calçados", "Acessórios"}},
	{Name: "Impostos e Taxas", Type: Expense, Icon: "landmark", Color: "#64748b",
		Subcategories: []string{"IPTU", "IPVA", "Tarifas Bancárias", "Multas"}},
	{Name: CategoryOther, Type: Expense, Icon: "circle-help", Color: "#9ca3af",
		Subcategories: []string{"Diversos"}},
	{Name: CategoryToVerify, Type: Expense, Icon: "flag", Color: "#fbbf24",
		Subcategories: nil},

	{Name: "Salário", Type: Income, Icon: "briefcase", Color: "#22c55e",
		Subcategories: []string{"Salário Líquido", "13º Salário", "Férias", "Bônus"}},
	{Name: "Renda Extra", Type: Income, Icon: "trending-up", Color: "#10b981",
		Subcategories: []string{"Freelance", "Vendas", "Aluguel Recebido"}},
	{Name: "Investimentos", Type: Income, Icon: "piggy-bank", Color: "#06b6d4",
		Subcategories: []string{"Dividendos", "Rendimentos", "Resgate"}},
	{Name: "Reembolsos", Type: Income, Icon: "rotate-ccw", Color: "#84cc16",
		Subcategories: []string{"Trabalho", "Saúde", "Diversos"}},
	{Name: CategoryOther, Type: Income, Icon: "circle-help", Color: "#9ca3af",
		Subcategories: []string{"Diversos"}},
}

// Categories returns the registry entries for one transaction type.
func Categories(t TransactionType) []CategoryInfo {
	var out []CategoryInfo
	for _, c := range categoryRegistry {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// LookupCategory finds a registry entry by name (case-insensitive) for the
// given transaction type.
func LookupCategory(name string, t TransactionType) (CategoryInfo, bool) {
	for _, c := range categoryRegistry {
		if c.Type == t && strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return c, true
		}
	}
	return CategoryInfo{}, false
}

// NormalizeCategory coerces a (category, subcategory) pair to a valid
// registry entry. Unknown categories become "Outros"; an unknown
// subcategory becomes the category's first subcategory. Classification
// never blocks a transaction from being saved, so this cannot fail.
func NormalizeCategory(category, subcategory string, t TransactionType) (string, string) {
	info, ok := LookupCategory(category, t)
	if !ok {
		info, _ = LookupCategory(CategoryOther, t)
	}
	if len(info.Subcategories) == 0 {
		return info.Name, ""
	}
	for _, s := range info.Subcategories {
		if strings.EqualFold(s, strings.TrimSpace(subcategory)) {
			return info.Name, s
		}
	}
	return info.Name, info.Subcategories[0]
}

// IsClassified reports whether a transaction carries a valid category other
// than the to-verify marker.
func (t Transaction) IsClassified() bool {
	if strings.EqualFold(t.Category, CategoryToVerify) {
		return false
	}
	_, ok := LookupCategory(t.Category, t.Type)
	return ok
}
