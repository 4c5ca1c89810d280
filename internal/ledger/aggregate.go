package ledger

import (
	"time"

	"github.com/cleared-dev/erpledger/internal/model"
	"github.com/cleared-dev/erpledger/internal/money"
)

// TransactionTotals summarizes one transaction.
type TransactionTotals struct {
	ID              string              `json:"id,omitempty"`
	LedgerNumber    string              `json:"ledgerNumber"`
	TransactionDate time.Time           `json:"transactionDate"`
	ReferenceType   model.ReferenceType `json:"referenceType"`
	Description     string              `json:"description,omitempty"`
	Lines           []model.LedgerLine  `json:"lines"`
	TotalDebit      money.Amount        `json:"totalDebit"`
	TotalCredit     money.Amount        `json:"totalCredit"`
	Difference      money.Amount        `json:"difference"`
	IsBalanced      bool                `json:"isBalanced"`
}

// Aggregation is the general-ledger view over a list of transactions.
type Aggregation struct {
	Groups           []TransactionTotals `json:"groups"`
	GrandTotalDebit  money.Amount        `json:"grandTotalDebit"`
	GrandTotalCredit money.Amount        `json:"grandTotalCredit"`
	BalancedCount    int                 `json:"balancedCount"`
}

// Aggregate totals each transaction and the whole set. Groups keep the
// caller's order.
func Aggregate(txs []model.LedgerTransaction) Aggregation {
	agg := Aggregation{Groups: make([]TransactionTotals, 0, len(txs))}
	for _, tx := range txs {
		r := Validate(tx.Lines)
		agg.Groups = append(agg.Groups, TransactionTotals{
			ID:              tx.ID,
			LedgerNumber:    tx.LedgerNumber,
			TransactionDate: tx.TransactionDate,
			ReferenceType:   tx.ReferenceType,
			Description:     tx.Description,
			Lines:           append([]model.LedgerLine(nil), tx.Lines...),
			TotalDebit:      r.TotalDebit,
			TotalCredit:     r.TotalCredit,
			Difference:      r.Difference,
			IsBalanced:      r.IsBalanced,
		})
		agg.GrandTotalDebit += r.TotalDebit
		agg.GrandTotalCredit += r.TotalCredit
		if r.IsBalanced {
			agg.BalancedCount++
		}
	}
	return agg
}

// UnbalancedCount returns the number of groups that do not balance.
func (a Aggregation) UnbalancedCount() int {
	return len(a.Groups) - a.BalancedCount
}
