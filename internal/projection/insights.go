package projection

import (
	"fmt"

	"fluxo/internal/core"
)

const (
	InsightTip   = "tip"
	InsightAlert = "alert"
)

// InvestableThreshold is the projected balance above which the
// recommendation slot suggests investing part of the surplus.
const InvestableThreshold = core.Money(50000) // R$ 500,00

// Insight is one dashboard observation produced by fixed conditional logic.
type Insight struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Icon    string `json:"icon"`
	Color   string `json:"color"`
}

// RuleBasedInsights always emits exactly three insights, one per slot:
// goal progress, spending alert, and a recommendation keyed off the
// projected balance. Slots never go empty; each has a filler fallback
// because the dashboard renders all three unconditionally.
func RuleBasedInsights(txs []core.Transaction, goals []core.FinancialGoal, budgets []core.Budget, projected core.Money, today core.Date) []Insight {
	return []Insight{
		goalInsight(goals),
		anomalyInsight(txs, today),
		recommendationInsight(projected),
	}
}

func goalInsight(goals []core.FinancialGoal) Insight {
	var best *core.FinancialGoal
	for i := range goals {
		g := &goals[i]
		if g.CurrentAmount >= g.TargetAmount {
			continue
		}
		if best == nil || g.Progress() > best.Progress() {
			best = g
		}
	}
	if best == nil {
		return Insight{
			Type:    InsightTip,
			Title:   "Defina uma meta",
			Message: "Você ainda não tem metas ativas. Criar uma meta ajuda a manter o foco na sua reserva.",
			Icon:    "target",
			Color:   "#6366f1",
		}
	}
	return Insight{
		Type:  InsightTip,
		Title: fmt.Sprintf("Meta: %s", best.Name),
		Message: fmt.Sprintf("Você já completou %d%% desta meta. Faltam %s para alcançá-la.",
			int(best.Progress()*100), best.Remaining()),
		Icon:  "target",
		Color: "#22c55e",
	}
}

func anomalyInsight(txs []core.Transaction, today core.Date) Insight {
	anomalies := DetectSpendingAnomalies(txs, today, DefaultAnomalyThreshold)
	if len(anomalies) == 0 {
		return Insight{
			Type:    InsightTip,
			Title:   "Gastos estáveis",
			Message: "Nenhuma categoria teve aumento relevante em relação à semana passada. Continue assim!",
			Icon:    "shield-check",
			Color:   "#22c55e",
		}
	}
	top := anomalies[0]
	return Insight{
		Type:  InsightAlert,
		Title: fmt.Sprintf("Atenção com %s", top.Category),
		Message: fmt.Sprintf("Seus gastos em %s subiram %d%% em relação à semana anterior.",
			top.Category, top.ChangePercent),
		Icon:  "alert-triangle",
		Color: "#ef4444",
	}
}

func recommendationInsight(projected core.Money) Insight {
	switch {
	case projected > InvestableThreshold:
		suggested := projected / 5 // 20% of the projected surplus
		return Insight{
			Type:  InsightTip,
			Title: "Sobra projetada",
			Message: fmt.Sprintf("Sua projeção de fim de mês é %s. Considere investir %s (20%%) dessa sobra.",
				projected, suggested),
			Icon:  "piggy-bank",
			Color: "#06b6d4",
		}
	case projected < 0:
		return Insight{
			Type:  InsightAlert,
			Title: "Saldo projetado negativo",
			Message: fmt.Sprintf("No ritmo atual você terminará o mês com %s. Reveja os gastos variáveis.",
				projected),
			Icon:  "trending-down",
			Color: "#ef4444",
		}
	default:
		return Insight{
			Type:    InsightTip,
			Title:   "Mês equilibrado",
			Message: "Sua projeção de fim de mês está próxima de zero. Acompanhe os próximos vencimentos para não sair do azul.",
			Icon:    "scale",
			Color:   "#f59e0b",
		}
	}
}
