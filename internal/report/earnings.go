package report

import (
	"time"

	"github.com/cleared-dev/erpledger/internal/model"
	"github.com/cleared-dev/erpledger/internal/money"
)

// FiscalYearStart returns the start of the fiscal year containing asOf, for a
// fiscal year that begins on the given month and day.
func FiscalYearStart(asOf time.Time, month time.Month, day int) time.Time {
	start := time.Date(asOf.Year(), month, day, 0, 0, 0, 0, asOf.Location())
	if asOf.Before(start) {
		start = start.AddDate(-1, 0, 0)
	}
	return start
}

// NetIncome returns revenue minus expense over natural-sign balances.
// Balance-sheet accounts are ignored.
func NetIncome(balances []model.AccountBalance) money.Amount {
	var net money.Amount
	for _, b := range balances {
		switch b.Type {
		case model.AccountTypeRevenue:
			net += b.Amount
		case model.AccountTypeExpense:
			net -= b.Amount
		}
	}
	return net
}

// BalanceSheetAccounts filters balances down to asset, liability, equity and
// unknown-type accounts.
func BalanceSheetAccounts(balances []model.AccountBalance) []model.AccountBalance {
	out := make([]model.AccountBalance, 0, len(balances))
	for _, b := range balances {
		if b.Type == model.AccountTypeRevenue || b.Type == model.AccountTypeExpense {
			continue
		}
		out = append(out, b)
	}
	return out
}
