package ledger

import (
	"github.com/cleared-dev/erpledger/internal/model"
	"github.com/cleared-dev/erpledger/internal/money"
)

// Balances returns the natural-sign balance of every chart account over txs,
// in chart order. Accounts without activity appear with zero. Lines against
// accounts missing from the chart are collected at the end as unclassified.
func Balances(txs []model.LedgerTransaction, chart []model.Account) []model.AccountBalance {
	debits := make(map[int]money.Amount)
	credits := make(map[int]money.Amount)
	seen := make(map[int]bool, len(chart))
	for _, a := range chart {
		seen[a.ID] = true
	}

	var orphans []int
	for _, tx := range txs {
		for _, l := range tx.Lines {
			if !seen[l.AccountID] {
				seen[l.AccountID] = true
				orphans = append(orphans, l.AccountID)
			}
			debits[l.AccountID] += l.Debit
			credits[l.AccountID] += l.Credit
		}
	}

	out := make([]model.AccountBalance, 0, len(chart)+len(orphans))
	for _, a := range chart {
		out = append(out, model.AccountBalance{
			AccountID:      a.ID,
			Code:           a.Code,
			Name:           a.Name,
			Type:           a.Type,
			Classification: a.Classification,
			Amount:         NaturalAmount(a.Type, debits[a.ID], credits[a.ID]),
		})
	}
	for _, id := range orphans {
		out = append(out, model.AccountBalance{
			AccountID:      id,
			Classification: model.ClassUnclassified,
			Amount:         debits[id] - credits[id],
		})
	}
	return out
}

// TrialBalanceRow is one account line of a trial balance.
type TrialBalanceRow struct {
	AccountID int               `json:"accountId"`
	Code      string            `json:"code"`
	Name      string            `json:"name"`
	Type      model.AccountType `json:"type"`
	Debit     money.Amount      `json:"debit"`
	Credit    money.Amount      `json:"credit"`
}

// TrialBalance lists each account's net balance on its debit or credit column.
type TrialBalance struct {
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  money.Amount      `json:"totalDebit"`
	TotalCredit money.Amount      `json:"totalCredit"`
	Difference  money.Amount      `json:"difference"`
	IsBalanced  bool              `json:"isBalanced"`
}

// BuildTrialBalance computes a trial balance over txs. Accounts with a zero
// net balance are omitted.
func BuildTrialBalance(txs []model.LedgerTransaction, chart []model.Account) TrialBalance {
	tb := TrialBalance{Rows: []TrialBalanceRow{}}
	for _, b := range Balances(txs, chart) {
		// Convert back to debit-minus-credit so the column is type independent.
		net := b.Amount
		if b.Type != "" && !b.Type.DebitNormal() {
			net = -net
		}
		if net.IsZero() {
			continue
		}
		row := TrialBalanceRow{AccountID: b.AccountID, Code: b.Code, Name: b.Name, Type: b.Type}
		if net > 0 {
			row.Debit = net
		} else {
			row.Credit = -net
		}
		tb.Rows = append(tb.Rows, row)
		tb.TotalDebit += row.Debit
		tb.TotalCredit += row.Credit
	}
	tb.Difference = (tb.TotalDebit - tb.TotalCredit).Abs()
	tb.IsBalanced = tb.Difference.WithinTolerance()
	return tb
}
