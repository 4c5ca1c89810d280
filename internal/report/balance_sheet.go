// Package report builds hierarchical financial statements from classified
// account balances.
package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/cleared-dev/erpledger/internal/model"
	"github.com/cleared-dev/erpledger/internal/money"
)

// ErrUnclassifiedAccount is returned under PolicyReject when an account has
// no usable classification.
var ErrUnclassifiedAccount = errors.New("account has no balance sheet classification")

// UnclassifiedPolicy decides what happens to accounts lacking a classification.
type UnclassifiedPolicy string

const (
	// PolicyBucket routes them to the visible Unclassified section.
	PolicyBucket UnclassifiedPolicy = "bucket"
	// PolicyReject fails the report.
	PolicyReject UnclassifiedPolicy = "reject"
)

// ParsePolicy accepts "bucket", "reject" or "" (bucket).
func ParsePolicy(s string) (UnclassifiedPolicy, error) {
	switch UnclassifiedPolicy(s) {
	case "", PolicyBucket:
		return PolicyBucket, nil
	case PolicyReject:
		return PolicyReject, nil
	}
	return "", fmt.Errorf("unknown unclassified policy %q", s)
}

// SectionAccount is one account line inside a report section.
type SectionAccount struct {
	ID     int          `json:"id"`
	Code   string       `json:"code"`
	Name   string       `json:"name"`
	Amount money.Amount `json:"amount"`
}

// AccountSection is a list of accounts and their total.
type AccountSection struct {
	Accounts []SectionAccount `json:"accounts"`
	Total    money.Amount     `json:"total"`
}

func (s *AccountSection) add(b model.AccountBalance) {
	s.Accounts = append(s.Accounts, SectionAccount{ID: b.AccountID, Code: b.Code, Name: b.Name, Amount: b.Amount})
	s.Total += b.Amount
}

func newSection() AccountSection {
	return AccountSection{Accounts: []SectionAccount{}}
}

// Assets groups current and fixed assets.
type Assets struct {
	CurrentAssets AccountSection `json:"currentAssets"`
	FixedAssets   AccountSection `json:"fixedAssets"`
	Total         money.Amount   `json:"total"`
}

// Liabilities groups current and long-term liabilities.
type Liabilities struct {
	CurrentLiabilities  AccountSection `json:"currentLiabilities"`
	LongTermLiabilities AccountSection `json:"longTermLiabilities"`
	Total               money.Amount   `json:"total"`
}

// Equity holds equity accounts plus the earnings lines computed upstream.
type Equity struct {
	Accounts            AccountSection `json:"accounts"`
	RetainedEarnings    money.Amount   `json:"retainedEarnings"`
	CurrentYearEarnings money.Amount   `json:"currentYearEarnings"`
	TotalEquity         money.Amount   `json:"totalEquity"`
}

// Checks carries the balance sheet equation result.
type Checks struct {
	IsBalanced      bool         `json:"isBalanced"`
	Difference      money.Amount `json:"difference"` // assets - (liabilities + equity)
	HasUnclassified bool         `json:"hasUnclassified"`
}

// BalanceSheetSnapshot is a point-in-time balance sheet. It is never stored.
type BalanceSheetSnapshot struct {
	AsOf                      time.Time      `json:"asOf"`
	Assets                    Assets         `json:"assets"`
	Liabilities               Liabilities    `json:"liabilities"`
	Equity                    Equity         `json:"equity"`
	Unclassified              AccountSection `json:"unclassified"`
	TotalLiabilitiesAndEquity money.Amount   `json:"totalLiabilitiesAndEquity"`
	Checks                    Checks         `json:"checks"`
}

// Options supplies the inputs that are not account balances.
type Options struct {
	RetainedEarnings    money.Amount
	CurrentYearEarnings money.Amount
	Unclassified        UnclassifiedPolicy
}

// BuildBalanceSheet partitions balances by classification, keeping the
// caller's order within each section, and computes totals and the
// assets = liabilities + equity check. Unclassified accounts are never
// dropped: they land in the Unclassified section or fail the report,
// depending on opts.Unclassified.
func BuildBalanceSheet(balances []model.AccountBalance, asOf time.Time, opts Options) (BalanceSheetSnapshot, error) {
	snap := BalanceSheetSnapshot{
		AsOf: asOf,
		Assets: Assets{
			CurrentAssets: newSection(),
			FixedAssets:   newSection(),
		},
		Liabilities: Liabilities{
			CurrentLiabilities:  newSection(),
			LongTermLiabilities: newSection(),
		},
		Equity:       Equity{Accounts: newSection()},
		Unclassified: newSection(),
	}

	for _, b := range balances {
		switch b.Classification.Normalize() {
		case model.ClassCurrentAsset:
			snap.Assets.CurrentAssets.add(b)
		case model.ClassFixedAsset:
			snap.Assets.FixedAssets.add(b)
		case model.ClassCurrentLiability:
			snap.Liabilities.CurrentLiabilities.add(b)
		case model.ClassLongTermLiability:
			snap.Liabilities.LongTermLiabilities.add(b)
		case model.ClassEquity:
			snap.Equity.Accounts.add(b)
		default:
			if opts.Unclassified == PolicyReject {
				return BalanceSheetSnapshot{}, fmt.Errorf("%w: %d %s %q", ErrUnclassifiedAccount, b.AccountID, b.Code, b.Name)
			}
			snap.Unclassified.add(b)
		}
	}

	snap.Assets.Total = snap.Assets.CurrentAssets.Total + snap.Assets.FixedAssets.Total
	snap.Liabilities.Total = snap.Liabilities.CurrentLiabilities.Total + snap.Liabilities.LongTermLiabilities.Total

	snap.Equity.RetainedEarnings = opts.RetainedEarnings
	snap.Equity.CurrentYearEarnings = opts.CurrentYearEarnings
	snap.Equity.TotalEquity = snap.Equity.Accounts.Total + opts.RetainedEarnings + opts.CurrentYearEarnings

	snap.TotalLiabilitiesAndEquity = snap.Liabilities.Total + snap.Equity.TotalEquity
	snap.Checks.Difference = snap.Assets.Total - snap.TotalLiabilitiesAndEquity
	snap.Checks.IsBalanced = snap.Checks.Difference.WithinTolerance()
	snap.Checks.HasUnclassified = len(snap.Unclassified.Accounts) > 0

	return snap, nil
}
