package ledger

import (
	"fmt"

	"github.com/cleared-dev/erpledger/internal/model"
)

// IssueKind names a data-quality rule broken by a line.
type IssueKind string

const (
	IssueNegativeAmount IssueKind = "negative_amount"
	IssueBothSides      IssueKind = "both_sides"
	IssueNoAmount       IssueKind = "no_amount"
	IssueUnknownAccount IssueKind = "unknown_account"
)

// Issue describes a single rule violation on one line. Issues are warnings:
// nothing is corrected, the caller decides whether to block.
type Issue struct {
	Line        int       `json:"line"` // 1-based
	Kind        IssueKind `json:"kind"`
	Description string    `json:"description"`
}

func (i Issue) Error() string {
	return fmt.Sprintf("line %d [%s]: %s", i.Line, i.Kind, i.Description)
}

// AccountChecker tests whether an account ID exists in the chart of accounts.
type AccountChecker interface {
	Exists(id int) bool
}

// CheckLines reports line-level problems. A nil accounts checker skips the
// account reference rule.
func CheckLines(lines []model.LedgerLine, accounts AccountChecker) []Issue {
	var issues []Issue
	for i, l := range lines {
		n := i + 1

		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			issues = append(issues, Issue{
				Line:        n,
				Kind:        IssueNegativeAmount,
				Description: fmt.Sprintf("debit %s / credit %s must not be negative", l.Debit, l.Credit),
			})
		}

		hasDebit := !l.Debit.IsZero()
		hasCredit := !l.Credit.IsZero()
		switch {
		case hasDebit && hasCredit:
			issues = append(issues, Issue{
				Line:        n,
				Kind:        IssueBothSides,
				Description: "line carries both a debit and a credit",
			})
		case !hasDebit && !hasCredit:
			issues = append(issues, Issue{
				Line:        n,
				Kind:        IssueNoAmount,
				Description: "line carries neither a debit nor a credit",
			})
		}

		if accounts != nil && !accounts.Exists(l.AccountID) {
			issues = append(issues, Issue{
				Line:        n,
				Kind:        IssueUnknownAccount,
				Description: fmt.Sprintf("unknown account %d", l.AccountID),
			})
		}
	}
	return issues
}

// HasKind reports whether any issue is of kind k.
func HasKind(issues []Issue, k IssueKind) bool {
	for _, i := range issues {
		if i.Kind == k {
			return true
		}
	}
	return false
}
