package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fluxo/internal/core"
	"fluxo/internal/projection"
)

// Summarizer produces the natural-language monthly overview shown on the
// dashboard. When the model is unavailable it degrades to concatenating
// the deterministic rule-based insights, so the endpoint never fails.
type Summarizer struct {
	gen Generator
}

func NewSummarizer(gen Generator) *Summarizer {
	return &Summarizer{gen: gen}
}

// MonthlySummary narrates the month's numbers. Best-effort: any model
// failure falls back to the rule-based insight messages.
func (s *Summarizer) MonthlySummary(ctx context.Context, month core.Month, proj projection.Projection, insights []projection.Insight) string {
	if s.gen != nil {
		prompt := fmt.Sprintf(
			"You are a friendly Brazilian personal finance assistant. Write a short "+
				"paragraph (3-4 sentences, Brazilian Portuguese) about this month so far.\n\n"+
				"Month: %s\nBalance: %s\nProjected month-end balance: %s\n"+
				"Upcoming bills still due: %s\nProjected variable spending: %s\n\n"+
				"Plain text only, no Markdown, no lists.",
			month, proj.CurrentBalance, proj.Projected, proj.UpcomingBills, proj.ProjectedVariable)

		text, err := s.gen.GenerateText(ctx, prompt)
		if err == nil {
			return strings.TrimSpace(text)
		}
		slog.WarnContext(ctx, "Monthly summary generation failed, using rule-based fallback", "error", err)
	}

	parts := make([]string, 0, len(insights))
	for _, in := range insights {
		parts = append(parts, in.Message)
	}
	return strings.Join(parts, " ")
}
