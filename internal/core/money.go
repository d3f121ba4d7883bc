// Package core holds the domain types shared by every other package:
// money in integer cents, day-granularity dates, transactions with their
// installment sub-structure, bills, recurring templates, goals, budgets,
// payslips and the category registry.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in cents (centavos). Calculations stay in integer
// cents to avoid floating-point drift; Reais is for display only.
type Money int64

// Reais returns the value in reais as a float64, for display purposes.
func (m Money) Reais() float64 {
	return float64(m) / 100.0
}

// String formats the amount as "R$ 1234.56" (negative amounts keep the sign).
func (m Money) String() string {
	sign := ""
	v := m
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%sR$ %d.%02d", sign, v/100, v%100)
}

// ParseMoney converts a decimal string to cents with half-up rounding on the
// third decimal place. Both dot and comma decimal separators are accepted.
// Only strictly positive amounts are valid.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	// Brazilian inputs use comma as the decimal separator and dot for
	// thousands; treat whichever separator appears last as decimal.
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	if lastComma > lastDot {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return 0, ErrInvalidAmount
	}

	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return Money(cents), nil
}

// SplitInstallments divides a total into n parts that sum exactly back to
// the total: every part gets total/n and the remainder cents land on the
// first installment.
func SplitInstallments(total Money, n int) []Money {
	if n < 1 {
		return nil
	}
	base := total / Money(n)
	parts := make([]Money, n)
	for i := range parts {
		parts[i] = base
	}
	parts[0] += total - base*Money(n)
	return parts
}
