package projection

import (
	"fluxo/internal/core"
)

// CommittedSpending measures exposure, not cash flow, for one month: every
// non-installment expense counts its amount, and every installment purchase
// opened in the month counts its remaining unpaid balance. A purchase
// started now commits its whole future obligation to this month instead of
// spreading it out.
func CommittedSpending(txs []core.Transaction, month core.Month) core.Money {
	var total core.Money
	for _, t := range txs {
		if t.Type != core.Expense || !month.Contains(t.Date) {
			continue
		}
		if t.Installment == nil {
			total += t.Amount
			continue
		}
		if t.Installment.Current == 1 {
			if rest := t.Installment.TotalAmount - t.Amount; rest > 0 {
				total += rest
			}
		}
	}
	return total
}

// PayslipCommitment compares a month's committed spending against the net
// salary of the matching payslip.
type PayslipCommitment struct {
	Month     core.Month `json:"month"`
	Net       core.Money `json:"net"`
	Committed core.Money `json:"committed"`
	// Rate is committed/net in [0..]; 0 when the net salary is zero.
	Rate float64 `json:"rate"`
}

// CommitmentAgainstPayslip buckets the month's transactions with the same
// day-granularity rules as the projection functions and relates the result
// to the payslip's net total.
func CommitmentAgainstPayslip(p core.Payslip, txs []core.Transaction) PayslipCommitment {
	out := PayslipCommitment{
		Month:     p.Month,
		Net:       p.NetTotal(),
		Committed: CommittedSpending(txs, p.Month),
	}
	if out.Net > 0 {
		out.Rate = float64(out.Committed) / float64(out.Net)
	}
	return out
}
