// Package projection is the pure calculation engine behind the dashboard:
// balances, month-end projections, burn-rate series, upcoming commitments,
// spending anomalies and rule-based insights. Every function operates only
// on the slices passed in and keeps all date comparisons at day
// granularity, so the package stays side-effect free and unit-testable.
package projection

import (
	"fluxo/internal/core"
)

// CurrentBalance sums signed amounts over the given transactions: income
// adds, expense subtracts. No date filtering happens here; callers restrict
// the slice to the period they care about.
func CurrentBalance(txs []core.Transaction) core.Money {
	var balance core.Money
	for _, t := range txs {
		balance += t.Signed()
	}
	return balance
}

// Projection breaks a month-end forecast into its three terms. Projected is
// always CurrentBalance - UpcomingBills - ProjectedVariable.
type Projection struct {
	CurrentBalance    core.Money
	UpcomingBills     core.Money
	ProjectedVariable core.Money
	Projected         core.Money
}

// MonthEndProjection forecasts the balance at the end of month. The caller
// is expected to have restricted txs to that month already.
//
// The model is conservative: bills still due this month count as known
// fixed outflows, and variable spending for the remaining days is
// extrapolated from the trailing min(15, day-of-month) days instead of
// being assumed zero.
func MonthEndProjection(txs []core.Transaction, bills []core.Bill, month core.Month, today core.Date) Projection {
	p := Projection{CurrentBalance: CurrentBalance(txs)}

	daysInMonth := month.Days()
	if today.Day() >= daysInMonth {
		// Nothing left to extrapolate on the month's last day.
		p.Projected = p.CurrentBalance
		return p
	}

	for _, b := range bills {
		if b.Amount <= 0 || b.DueDay <= today.Day() {
			continue
		}
		if _, paid := PaidTransaction(b, txs, month); paid {
			continue
		}
		p.UpcomingBills += b.Amount
	}

	window := today.Day()
	if window > 15 {
		window = 15
	}
	avgDaily := DailyBurnRate(txs, window, today)
	remaining := daysInMonth - today.Day()
	p.ProjectedVariable = avgDaily * core.Money(remaining)

	p.Projected = p.CurrentBalance - p.UpcomingBills - p.ProjectedVariable
	return p
}

// DailyBurnRate averages expense totals over the trailing window of
// calendar days ending today, inclusive. Non-positive windows yield 0.
func DailyBurnRate(txs []core.Transaction, days int, today core.Date) core.Money {
	if days <= 0 {
		return 0
	}
	from := today.AddDays(-(days - 1))
	var total core.Money
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		if t.Date.Before(from) || t.Date.After(today) {
			continue
		}
		total += t.Amount
	}
	return total / core.Money(days)
}
