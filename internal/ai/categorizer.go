package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"fluxo/internal/core"
)

// Classifier assigns categories to transactions through the text model,
// always validating the suggestion against the category registry.
type Classifier struct {
	gen Generator
}

func NewClassifier(gen Generator) *Classifier {
	return &Classifier{gen: gen}
}

// Progress reports how far a batch classification has advanced, for a
// caller rendering a progress indicator.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Suggestion is a validated (category, subcategory) pair accepted from
// the model.
type Suggestion struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

func categoriesPrompt(t core.TransactionType) string {
	var b strings.Builder
	b.WriteString("Use ONLY the following categories and subcategories:\n\n")
	for _, c := range core.Categories(t) {
		b.WriteString(c.Name + ":\n")
		if len(c.Subcategories) == 0 {
			b.WriteString("  (no subcategories - use empty string \"\")\n")
			continue
		}
		for _, s := range c.Subcategories {
			b.WriteString("  - " + s + "\n")
		}
	}
	b.WriteString("\nIf unsure, use category \"" + core.CategoryOther + "\".\n")
	return b.String()
}

// Classify suggests a (category, subcategory) pair for one transaction.
// Whatever comes back is coerced to a valid registry entry, so the result
// is always safe to store.
func (c *Classifier) Classify(ctx context.Context, t core.Transaction) (string, string, error) {
	prompt := fmt.Sprintf(
		"You are a personal finance categorizer for Brazilian household transactions.\n"+
			"Classify the transaction below.\n\n"+
			"Description: %s\nAmount: %s\nType: %s\n\n%s\n"+
			"Return STRICT JSON only, no Markdown, in the form "+
			`{"category": "...", "subcategory": "..."}`+"\n",
		t.Description, t.Amount, t.Type, categoriesPrompt(t.Type))

	raw, err := c.gen.GenerateText(ctx, prompt)
	if err != nil {
		return "", "", fmt.Errorf("classify %q: %w", t.Description, err)
	}

	var s Suggestion
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &s); err != nil {
		return "", "", fmt.Errorf("classify %q: malformed model response: %w", t.Description, err)
	}

	category, subcategory := core.NormalizeCategory(s.Category, s.Subcategory, t.Type)
	return category, subcategory, nil
}

// ClassifyBatch runs sequentially over the given transactions, reporting
// progress after every item. A failed item is logged and skipped; the
// batch continues. Cancelling the context stops between items.
//
// The returned map holds the accepted suggestions keyed by transaction id.
func (c *Classifier) ClassifyBatch(ctx context.Context, txs []core.Transaction, onProgress func(Progress)) (map[string]Suggestion, error) {
	results := make(map[string]Suggestion)
	total := len(txs)

	for i, t := range txs {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		category, subcategory, err := c.Classify(ctx, t)
		if err != nil {
			slog.WarnContext(ctx, "Skipping transaction in batch classification",
				"transaction_id", t.ID, "error", err)
		} else {
			results[t.ID] = Suggestion{Category: category, Subcategory: subcategory}
		}

		if onProgress != nil {
			onProgress(Progress{Current: i + 1, Total: total})
		}
	}
	return results, nil
}
