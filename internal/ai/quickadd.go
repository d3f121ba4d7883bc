package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"fluxo/internal/core"
)

// QuickAddParser turns free text like "mercado 45,90 ontem no pix" into a
// transaction draft. The model path is best-effort; a local regex parser
// always stands behind it so quick-add works offline.
type QuickAddParser struct {
	gen Generator
}

// NewQuickAddParser accepts a nil generator, in which case only the local
// parser runs.
func NewQuickAddParser(gen Generator) *QuickAddParser {
	return &QuickAddParser{gen: gen}
}

type quickAddDraft struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Date        string `json:"date"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

// Parse builds a transaction draft from natural language. The AI result is
// validated field by field; any failure falls through to ParseLocal.
func (p *QuickAddParser) Parse(ctx context.Context, text string, today core.Date) (core.Transaction, error) {
	if p.gen != nil {
		if t, err := p.parseWithModel(ctx, text, today); err == nil {
			return t, nil
		} else {
			slog.WarnContext(ctx, "Quick-add AI parse failed, using local parser", "error", err)
		}
	}
	return p.ParseLocal(text, today)
}

func (p *QuickAddParser) parseWithModel(ctx context.Context, text string, today core.Date) (core.Transaction, error) {
	prompt := fmt.Sprintf(
		"Extract a financial transaction from this Brazilian Portuguese text: %q\n"+
			"Today is %s.\n\n%s\n"+
			"Return STRICT JSON only, no Markdown:\n"+
			`{"description": "...", "amount": "12,34", "type": "income|expense", `+
			`"date": "YYYY-MM-DD", "category": "...", "subcategory": "..."}`+"\n",
		text, today, categoriesPrompt(core.Expense))

	raw, err := p.gen.GenerateText(ctx, prompt)
	if err != nil {
		return core.Transaction{}, err
	}

	var d quickAddDraft
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &d); err != nil {
		return core.Transaction{}, fmt.Errorf("malformed quick-add response: %w", err)
	}

	amount, err := core.ParseMoney(d.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("quick-add amount %q: %w", d.Amount, err)
	}
	typ := core.Expense
	if d.Type == string(core.Income) {
		typ = core.Income
	}
	date := today
	if d.Date != "" {
		if parsed, err := core.ParseDate(d.Date); err == nil {
			date = parsed
		}
	}
	category, subcategory := core.NormalizeCategory(d.Category, d.Subcategory, typ)

	t := core.Transaction{
		Description: strings.TrimSpace(d.Description),
		Amount:      amount,
		Type:        typ,
		Date:        date,
		Category:    category,
		Subcategory: subcategory,
	}
	if t.Description == "" {
		t.Description = strings.TrimSpace(text)
	}
	return t, t.Validate()
}

var (
	amountPattern = regexp.MustCompile(`\d+(?:[.,]\d{1,2})?`)
	incomeWords   = regexp.MustCompile(`(?i)\b(recebi|salário|salario|pagamento recebido|entrou)\b`)
)

// ParseLocal is the deterministic fallback: first number is the amount,
// income keywords flip the type, everything else becomes the description,
// and the category is left for verification.
func (p *QuickAddParser) ParseLocal(text string, today core.Date) (core.Transaction, error) {
	raw := strings.TrimSpace(text)
	match := amountPattern.FindString(raw)
	if match == "" {
		return core.Transaction{}, fmt.Errorf("quick-add: no amount found in %q", text)
	}
	amount, err := core.ParseMoney(match)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("quick-add amount %q: %w", match, err)
	}

	typ := core.Expense
	if incomeWords.MatchString(raw) {
		typ = core.Income
	}

	description := strings.TrimSpace(strings.Replace(raw, match, "", 1))
	description = strings.Join(strings.Fields(description), " ")
	if description == "" {
		description = raw
	}

	category, subcategory := core.CategoryToVerify, ""
	if typ == core.Income {
		category, subcategory = core.NormalizeCategory("", "", typ)
	}

	t := core.Transaction{
		Description: description,
		Amount:      amount,
		Type:        typ,
		Date:        today,
		Category:    category,
		Subcategory: subcategory,
	}
	return t, t.Validate()
}
