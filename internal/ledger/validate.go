// Package ledger holds the pure balance computations shared by posting, reports
// and the API: line validation, transaction aggregation and account balances.
//
// Everything here is a function of its inputs and safe for concurrent use.
package ledger

import (
	"github.com/cleared-dev/erpledger/internal/model"
	"github.com/cleared-dev/erpledger/internal/money"
)

// Result is the outcome of validating a set of lines.
type Result struct {
	TotalDebit  money.Amount `json:"totalDebit"`
	TotalCredit money.Amount `json:"totalCredit"`
	Difference  money.Amount `json:"difference"` // |debit - credit|
	IsBalanced  bool         `json:"isBalanced"`
}

// Totals sums the debit and credit sides of lines.
func Totals(lines []model.LedgerLine) (debit, credit money.Amount) {
	for _, l := range lines {
		debit += l.Debit
		credit += l.Credit
	}
	return debit, credit
}

// Validate checks that the debit total equals the credit total.
// An empty line list trivially balances.
func Validate(lines []model.LedgerLine) Result {
	debit, credit := Totals(lines)
	diff := (debit - credit).Abs()
	return Result{
		TotalDebit:  debit,
		TotalCredit: credit,
		Difference:  diff,
		IsBalanced:  diff.WithinTolerance(),
	}
}
