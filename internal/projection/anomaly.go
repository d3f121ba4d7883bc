package projection

import (
	"math"
	"sort"

	"fluxo/internal/core"
)

// DefaultAnomalyThreshold flags categories whose week-over-week spending
// grew by 20% or more.
const DefaultAnomalyThreshold = 0.20

// Anomaly reports a category whose spending jumped between the two trailing
// 7-day windows.
type Anomaly struct {
	Category      string     `json:"category"`
	Previous      core.Money `json:"previous"`
	Current       core.Money `json:"current"`
	ChangePercent int        `json:"changePercent"`
}

// DetectSpendingAnomalies compares per-category expense totals between the
// trailing 7 days and the 7 days before that. A category is anomalous when
// it is new (no prior spend, reported as 100%) or when its relative growth
// meets the threshold (inclusive). This is deliberately a two-bucket
// comparison, cheap and explainable rather than a statistical outlier test.
func DetectSpendingAnomalies(txs []core.Transaction, today core.Date, threshold float64) []Anomaly {
	currentFrom := today.AddDays(-6)
	previousFrom := today.AddDays(-13)
	previousTo := today.AddDays(-7)

	current := make(map[string]core.Money)
	previous := make(map[string]core.Money)
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		cat := t.Category
		if cat == "" {
			cat = core.CategoryOther
		}
		switch {
		case !t.Date.Before(currentFrom) && !t.Date.After(today):
			current[cat] += t.Amount
		case !t.Date.Before(previousFrom) && !t.Date.After(previousTo):
			previous[cat] += t.Amount
		}
	}

	var out []Anomaly
	for cat, cur := range current {
		if cur <= 0 {
			continue
		}
		prev := previous[cat]
		if prev == 0 {
			// Spending in a category untouched last week.
			out = append(out, Anomaly{Category: cat, Current: cur, ChangePercent: 100})
			continue
		}
		change := float64(cur-prev) / float64(prev)
		if change >= threshold {
			out = append(out, Anomaly{
				Category:      cat,
				Previous:      prev,
				Current:       cur,
				ChangePercent: int(math.Round(change * 100)),
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ChangePercent > out[j].ChangePercent
	})
	return out
}
