// Package ledger defines the canonical transaction produced by an import.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sign labels shown next to each movement.
const (
	SignInflow  = "Entrada"
	SignOutflow = "Saída"
)

// YearMonthLayout formats the month bucket of a transaction ("2024-03").
const YearMonthLayout = "2006-01"

// Transaction is one normalized statement movement. Positive amounts are
// credits (money in), negative amounts are debits (money out).
type Transaction struct {
	Date         time.Time
	Description  string
	Amount       decimal.Decimal
	Day          int
	YearMonth    string
	Category     string
	SignLabel    string
	Counterparty string
}

// IsInflow reports whether money came in. Zero amounts are neither.
func (t Transaction) IsInflow() bool {
	return t.Amount.IsPositive()
}

// IsOutflow reports whether money went out. Zero amounts are neither.
func (t Transaction) IsOutflow() bool {
	return t.Amount.IsNegative()
}

// SignLabelFor labels an amount. Zero is labelled as an outflow, matching
// how statements print non-credit lines.
func SignLabelFor(amount decimal.Decimal) string {
	if amount.IsPositive() {
		return SignInflow
	}
	return SignOutflow
}

// Ledger is an ordered list of transactions in source order.
type Ledger []Transaction

// Amounts returns the amounts in order.
func (l Ledger) Amounts() []decimal.Decimal {
	out := make([]decimal.Decimal, len(l))
	for i, t := range l {
		out[i] = t.Amount
	}
	return out
}
