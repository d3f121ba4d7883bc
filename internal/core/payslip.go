package core

// PayslipItem is one line of a pay statement, either a payment or a
// deduction depending on the list it sits in.
type PayslipItem struct {
	Description string
	Value       Money
}

// Payslip is a snapshot of one month's pay statement. The totals are
// derived from the item lists rather than stored.
type Payslip struct {
	ID         string
	Month      Month
	Payments   []PayslipItem
	Deductions []PayslipItem
}

// GrossTotal sums all payment lines.
func (p Payslip) GrossTotal() Money {
	var total Money
	for _, it := range p.Payments {
		total += it.Value
	}
	return total
}

// DeductionsTotal sums all deduction lines.
func (p Payslip) DeductionsTotal() Money {
	var total Money
	for _, it := range p.Deductions {
		total += it.Value
	}
	return total
}

// NetTotal is gross minus deductions.
func (p Payslip) NetTotal() Money {
	return p.GrossTotal() - p.DeductionsTotal()
}
