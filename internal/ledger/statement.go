package ledger

import (
	"time"

	"github.com/cleared-dev/erpledger/internal/model"
	"github.com/cleared-dev/erpledger/internal/money"
)

// StatementRow is one line of an account statement with its running balance.
type StatementRow struct {
	LedgerNumber    string       `json:"ledgerNumber"`
	TransactionDate time.Time    `json:"transactionDate"`
	Description     string       `json:"description,omitempty"`
	Reference       string       `json:"reference,omitempty"`
	Debit           money.Amount `json:"debit"`
	Credit          money.Amount `json:"credit"`
	Balance         money.Amount `json:"balance"`
}

// AccountStatement is the running-balance ledger of a single account.
type AccountStatement struct {
	AccountID      int            `json:"accountId"`
	Code           string         `json:"code"`
	Name           string         `json:"name"`
	OpeningBalance money.Amount   `json:"openingBalance"`
	TotalDebit     money.Amount   `json:"totalDebit"`
	TotalCredit    money.Amount   `json:"totalCredit"`
	ClosingBalance money.Amount   `json:"closingBalance"`
	Rows           []StatementRow `json:"rows"`
}

// NaturalAmount returns the signed effect of a debit/credit pair on an account
// of type t: debit-normal accounts grow with debits, the rest with credits.
func NaturalAmount(t model.AccountType, debit, credit money.Amount) money.Amount {
	if t.DebitNormal() {
		return debit - credit
	}
	return credit - debit
}

// Statement walks txs in the given order and computes a running balance for
// account, starting from opening.
func Statement(txs []model.LedgerTransaction, account model.Account, opening money.Amount) AccountStatement {
	st := AccountStatement{
		AccountID:      account.ID,
		Code:           account.Code,
		Name:           account.Name,
		OpeningBalance: opening,
		Rows:           []StatementRow{},
	}
	balance := opening
	for _, tx := range txs {
		for _, l := range tx.Lines {
			if l.AccountID != account.ID {
				continue
			}
			balance += NaturalAmount(account.Type, l.Debit, l.Credit)
			st.TotalDebit += l.Debit
			st.TotalCredit += l.Credit

			desc := l.Description
			if desc == "" {
				desc = tx.Description
			}
			st.Rows = append(st.Rows, StatementRow{
				LedgerNumber:    tx.LedgerNumber,
				TransactionDate: tx.TransactionDate,
				Description:     desc,
				Reference:       l.Reference,
				Debit:           l.Debit,
				Credit:          l.Credit,
				Balance:         balance,
			})
		}
	}
	st.ClosingBalance = balance
	return st
}
