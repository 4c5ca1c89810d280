package model

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// DebitNormal reports whether the account type increases on the debit side.
func (t AccountType) DebitNormal() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

// Classification places a balance-sheet account into a report section.
type Classification string

const (
	ClassCurrentAsset      Classification = "current_asset"
	ClassFixedAsset        Classification = "fixed_asset"
	ClassCurrentLiability  Classification = "current_liability"
	ClassLongTermLiability Classification = "long_term_liability"
	ClassEquity            Classification = "equity"
	ClassUnclassified      Classification = "unclassified"
)

// Classifications lists every known classification in report order.
var Classifications = []Classification{
	ClassCurrentAsset,
	ClassFixedAsset,
	ClassCurrentLiability,
	ClassLongTermLiability,
	ClassEquity,
	ClassUnclassified,
}

// Known reports whether c is one of the declared classifications.
func (c Classification) Known() bool {
	for _, k := range Classifications {
		if c == k {
			return true
		}
	}
	return false
}

// Normalize maps missing or unknown values to ClassUnclassified.
func (c Classification) Normalize() Classification {
	if !c.Known() {
		return ClassUnclassified
	}
	return c
}

// Account represents a row in chart-of-accounts.csv.
type Account struct {
	ID             int
	Code           string
	Name           string
	Type           AccountType
	Classification Classification // empty for revenue/expense accounts
	ParentID       int            // 0 = top-level
	Description    string
}

// OnBalanceSheet reports whether the account appears on the balance sheet.
func (a Account) OnBalanceSheet() bool {
	switch a.Type {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity:
		return true
	}
	return false
}
