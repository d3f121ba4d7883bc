package projection

import (
	"fluxo/internal/core"
)

// BurnRatePoint is one calendar day of the running burn-rate curve. Income
// and Expense are cumulative up to and including that day.
type BurnRatePoint struct {
	Day     int        `json:"day"`
	Income  core.Money `json:"income"`
	Expense core.Money `json:"expense"`
}

// BurnRateChartData produces one point per day of the month with cumulative
// income and expense totals. Days without movement repeat the previous
// cumulative value, so both series are monotonically non-decreasing.
//
// Single pass: bucket each transaction into its day of month, then scan the
// days accumulating.
func BurnRateChartData(txs []core.Transaction, month core.Month) []BurnRatePoint {
	days := month.Days()
	incomeByDay := make([]core.Money, days+1)
	expenseByDay := make([]core.Money, days+1)

	for _, t := range txs {
		if !month.Contains(t.Date) {
			continue
		}
		switch t.Type {
		case core.Income:
			incomeByDay[t.Date.Day()] += t.Amount
		case core.Expense:
			expenseByDay[t.Date.Day()] += t.Amount
		}
	}

	points := make([]BurnRatePoint, days)
	var income, expense core.Money
	for d := 1; d <= days; d++ {
		income += incomeByDay[d]
		expense += expenseByDay[d]
		points[d-1] = BurnRatePoint{Day: d, Income: income, Expense: expense}
	}
	return points
}
