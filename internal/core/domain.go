package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Pix    PaymentMethod = "pix"
	Debit  PaymentMethod = "debit"
	Credit PaymentMethod = "credit"
	Cash   PaymentMethod = "cash"
	Other  PaymentMethod = "other"
)

const (
	Monthly Frequency = "monthly"
)

type (
	TransactionType string
	PaymentMethod   string
	Frequency       string

	// InstallmentDetails marks a transaction as one installment of a
	// multi-installment purchase. All rows of the purchase share PurchaseID.
	InstallmentDetails struct {
		PurchaseID  string
		Current     int // 1-based index within the purchase
		Total       int
		TotalAmount Money // full purchase price, stored at creation time
	}

	// Transaction is a single movement of money. Amount is always positive;
	// the direction is carried by Type.
	Transaction struct {
		ID            string
		Description   string
		Amount        Money
		Type          TransactionType
		Date          Date
		Category      string
		Subcategory   string
		PaymentMethod PaymentMethod
		Installment   *InstallmentDetails
	}

	// BillPayment is an explicit link between a bill occurrence (one month)
	// and the transaction that settled it.
	BillPayment struct {
		Month         Month
		TransactionID string
	}

	// Bill is a recurring reminder of a due day, not itself a transaction.
	// Whether it was paid in a given month is resolved through Payments
	// first, with textual matching as a fallback for unlinked data.
	Bill struct {
		ID                     string
		Description            string
		DueDay                 int // 1-31
		IsAutoDebit            bool
		Amount                 Money // zero when unknown
		Category               string
		Subcategory            string
		RecurringTransactionID string
		Payments               []BillPayment
	}

	// RecurringTransaction is a template for automatically-debited recurring
	// expenses, materialized into real transactions by the recurring worker.
	RecurringTransaction struct {
		ID           string
		Description  string
		Amount       Money
		Type         TransactionType
		Category     string
		Subcategory  string
		Frequency    Frequency
		StartDate    Date
		NextDueDate  Date
		LinkedBillID string
	}

	FinancialGoal struct {
		ID            string
		Name          string
		TargetAmount  Money
		CurrentAmount Money
		Deadline      Date
	}

	Budget struct {
		ID       string
		Category string
		Amount   Money
		Period   string // "monthly"
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDueDay      = errors.New("due day must be between 1 and 31")
	ErrInvalidInstallment = errors.New("invalid installment details")
	ErrEmptyDescription   = errors.New("empty description")
	ErrUnknownType        = errors.New("unknown transaction type")
)

// Signed returns the amount with the sign implied by the transaction type:
// positive for income, negative for expense.
func (t Transaction) Signed() Money {
	if t.Type == Expense {
		return -t.Amount
	}
	return t.Amount
}

// IsFirstInstallment reports whether this row opens an installment purchase.
func (t Transaction) IsFirstInstallment() bool {
	return t.Installment != nil && t.Installment.Current == 1
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	if t.Type != Income && t.Type != Expense {
		return ErrUnknownType
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if t.Installment != nil {
		return t.Installment.Validate()
	}
	return nil
}

func (d InstallmentDetails) Validate() error {
	if d.PurchaseID == "" {
		return fmt.Errorf("%w: missing purchase id", ErrInvalidInstallment)
	}
	if d.Total < 1 {
		return fmt.Errorf("%w: total %d", ErrInvalidInstallment, d.Total)
	}
	if d.Current < 1 || d.Current > d.Total {
		return fmt.Errorf("%w: current %d of %d", ErrInvalidInstallment, d.Current, d.Total)
	}
	if d.TotalAmount <= 0 {
		return fmt.Errorf("%w: non-positive total amount", ErrInvalidInstallment)
	}
	return nil
}

func (b Bill) Validate() error {
	if strings.TrimSpace(b.Description) == "" {
		return ErrEmptyDescription
	}
	if b.DueDay < 1 || b.DueDay > 31 {
		return ErrInvalidDueDay
	}
	if b.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// PaidBy returns the transaction id explicitly linked to this bill for the
// given month, if any.
func (b Bill) PaidBy(month Month) (string, bool) {
	for _, p := range b.Payments {
		if p.Month == month {
			return p.TransactionID, true
		}
	}
	return "", false
}

// DueDateIn returns the bill's due date within the given month, clamping
// due days 29-31 to the last day of shorter months.
func (b Bill) DueDateIn(month Month) Date {
	day := b.DueDay
	if last := month.Days(); day > last {
		day = last
	}
	return NewDate(month.Year, month.Month, day)
}

func (rt RecurringTransaction) Validate() error {
	if strings.TrimSpace(rt.Description) == "" {
		return ErrEmptyDescription
	}
	if rt.Amount <= 0 {
		return ErrInvalidAmount
	}
	if rt.Frequency != Monthly {
		return fmt.Errorf("unsupported frequency: %s", rt.Frequency)
	}
	if err := rt.StartDate.Validate(); err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	return nil
}

// Progress returns goal completion as a fraction in [0, 1]. A zero target
// counts as complete to keep callers out of division by zero.
func (g FinancialGoal) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 1
	}
	p := float64(g.CurrentAmount) / float64(g.TargetAmount)
	if p > 1 {
		return 1
	}
	return p
}

// Remaining returns how much is still missing to reach the goal, never
// negative.
func (g FinancialGoal) Remaining() Money {
	if g.CurrentAmount >= g.TargetAmount {
		return 0
	}
	return g.TargetAmount - g.CurrentAmount
}
