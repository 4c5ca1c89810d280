package journal

import (
	"fmt"

	"github.com/cleared-dev/erpledger/internal/id"
	"github.com/cleared-dev/erpledger/internal/ledger"
	"github.com/cleared-dev/erpledger/internal/model"
)

// Rule identifies a book integrity rule.
type Rule string

const (
	RuleBalanced       Rule = "balanced"
	RuleLineQuality    Rule = "line_quality"
	RuleDateInMonth    Rule = "date_in_month"
	RuleLedgerNumber   Rule = "ledger_number"
	RuleUniqueNumber   Rule = "unique_number"
	RuleKnownReference Rule = "reference_type"
	RuleOneOpening     Rule = "single_opening_balance"
)

// ValidationError describes a single rule violation in a month journal.
type ValidationError struct {
	Rule         Rule
	LedgerNumber string
	Description  string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s [%s]: %s", e.Rule, e.LedgerNumber, e.Description)
}

// VerifyMonth checks the transactions of one journal file. Drafts may be
// unbalanced; posted transactions may not.
func VerifyMonth(txs []model.LedgerTransaction, accounts ledger.AccountChecker, year, month int) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool)

	for _, tx := range txs {
		n := tx.LedgerNumber

		if seen[n] {
			errs = append(errs, ValidationError{Rule: RuleUniqueNumber, LedgerNumber: n, Description: "ledger number used more than once"})
		}
		seen[n] = true

		if tx.TransactionDate.Year() != year || int(tx.TransactionDate.Month()) != month {
			errs = append(errs, ValidationError{
				Rule:         RuleDateInMonth,
				LedgerNumber: n,
				Description:  fmt.Sprintf("date %s not in %04d-%02d", tx.TransactionDate.Format(dateFormat), year, month),
			})
		}

		if prefix, y, m, _, err := id.ParseLedgerNumber(n); err != nil {
			errs = append(errs, ValidationError{Rule: RuleLedgerNumber, LedgerNumber: n, Description: err.Error()})
		} else if prefix != tx.ReferenceType.NumberPrefix() || y != year || m != month {
			errs = append(errs, ValidationError{
				Rule:         RuleLedgerNumber,
				LedgerNumber: n,
				Description:  fmt.Sprintf("number does not match %s %04d-%02d", tx.ReferenceType, year, month),
			})
		}

		if !tx.ReferenceType.Valid() {
			errs = append(errs, ValidationError{Rule: RuleKnownReference, LedgerNumber: n, Description: fmt.Sprintf("unknown reference type %q", tx.ReferenceType)})
		}

		if r := ledger.Validate(tx.Lines); tx.Posted() && !r.IsBalanced {
			errs = append(errs, ValidationError{
				Rule:         RuleBalanced,
				LedgerNumber: n,
				Description:  fmt.Sprintf("debits (%s) != credits (%s)", r.TotalDebit, r.TotalCredit),
			})
		}

		for _, issue := range ledger.CheckLines(tx.Lines, accounts) {
			errs = append(errs, ValidationError{Rule: RuleLineQuality, LedgerNumber: n, Description: issue.Error()})
		}
	}
	return errs
}

// Verify runs VerifyMonth over every journal file in the book and checks that
// at most one posted opening balance exists across all months.
func (b *Book) Verify(accounts ledger.AccountChecker) ([]ValidationError, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	months, err := b.Months()
	if err != nil {
		return nil, err
	}
	var (
		errs    []ValidationError
		opening string
	)
	for _, ym := range months {
		txs, err := b.ReadMonth(ym[0], ym[1])
		if err != nil {
			return nil, err
		}
		errs = append(errs, VerifyMonth(txs, accounts, ym[0], ym[1])...)

		for _, tx := range txs {
			if tx.ReferenceType != model.RefOpeningBalance || !tx.Posted() {
				continue
			}
			if opening != "" {
				errs = append(errs, ValidationError{
					Rule:         RuleOneOpening,
					LedgerNumber: tx.LedgerNumber,
					Description:  "second posted opening balance, first is " + opening,
				})
				continue
			}
			opening = tx.LedgerNumber
		}
	}
	return errs, nil
}
