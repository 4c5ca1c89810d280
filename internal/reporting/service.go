// Package reporting loads posted transactions from a store and runs them
// through the ledger and report builders.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cleared-dev/erpledger/internal/ledger"
	"github.com/cleared-dev/erpledger/internal/model"
	"github.com/cleared-dev/erpledger/internal/report"
	"github.com/cleared-dev/erpledger/internal/storage"
)

var (
	// ErrUnknownAccount is returned for a statement of an account outside the chart.
	ErrUnknownAccount = errors.New("unknown account")
	// ErrInvalidRange is returned when from is after to.
	ErrInvalidRange = errors.New("invalid date range")
)

// Chart is the chart of accounts view reports need.
type Chart interface {
	All() []model.Account
	Get(id int) (model.Account, bool)
}

// Options configures a Service.
type Options struct {
	FiscalYearStartMonth time.Month // zero means January
	FiscalYearStartDay   int        // zero means 1
	Unclassified         report.UnclassifiedPolicy
	Logger               *zap.Logger
}

// Service builds reports over posted transactions.
type Service struct {
	store storage.LedgerStore
	chart Chart
	opts  Options
}

// New returns a reporting Service.
func New(store storage.LedgerStore, chart Chart, opts Options) *Service {
	if opts.FiscalYearStartMonth == 0 {
		opts.FiscalYearStartMonth = time.January
	}
	if opts.FiscalYearStartDay == 0 {
		opts.FiscalYearStartDay = 1
	}
	if opts.Unclassified == "" {
		opts.Unclassified = report.PolicyBucket
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{store: store, chart: chart, opts: opts}
}

// GeneralLedger aggregates posted transactions dated within [from, to].
// Zero bounds are open.
func (s *Service) GeneralLedger(ctx context.Context, from, to time.Time) (ledger.Aggregation, error) {
	if err := checkRange(from, to); err != nil {
		return ledger.Aggregation{}, err
	}
	txs, err := s.posted(ctx, from, to)
	if err != nil {
		return ledger.Aggregation{}, err
	}
	agg := ledger.Aggregate(txs)
	if n := agg.UnbalancedCount(); n > 0 {
		s.opts.Logger.Warn("general ledger contains unbalanced transactions", zap.Int("count", n))
	}
	return agg, nil
}

// BalanceSheet builds the snapshot as of asOf. Revenue and expense activity
// before the fiscal year containing asOf becomes retained earnings, activity
// inside it becomes current-year earnings.
func (s *Service) BalanceSheet(ctx context.Context, asOf time.Time) (report.BalanceSheetSnapshot, error) {
	asOf = storage.DateOnly(asOf)
	txs, err := s.posted(ctx, time.Time{}, asOf)
	if err != nil {
		return report.BalanceSheetSnapshot{}, err
	}

	chart := s.chart.All()
	fyStart := report.FiscalYearStart(asOf, s.opts.FiscalYearStartMonth, s.opts.FiscalYearStartDay)
	var prior, current []model.LedgerTransaction
	for _, tx := range txs {
		if storage.DateOnly(tx.TransactionDate).Before(fyStart) {
			prior = append(prior, tx)
		} else {
			current = append(current, tx)
		}
	}

	balances := report.BalanceSheetAccounts(ledger.Balances(txs, chart))
	snap, err := report.BuildBalanceSheet(balances, asOf, report.Options{
		RetainedEarnings:    report.NetIncome(ledger.Balances(prior, chart)),
		CurrentYearEarnings: report.NetIncome(ledger.Balances(current, chart)),
		Unclassified:        s.opts.Unclassified,
	})
	if err != nil {
		return report.BalanceSheetSnapshot{}, fmt.Errorf("building balance sheet as of %s: %w", asOf.Format(time.DateOnly), err)
	}

	if !snap.Checks.IsBalanced {
		s.opts.Logger.Warn("balance sheet does not balance",
			zap.Time("as_of", asOf),
			zap.Stringer("difference", snap.Checks.Difference))
	}
	if snap.Checks.HasUnclassified {
		s.opts.Logger.Warn("balance sheet has unclassified accounts",
			zap.Int("count", len(snap.Unclassified.Accounts)))
	}
	return snap, nil
}

// TrialBalance lists account balances from posted transactions up to asOf.
func (s *Service) TrialBalance(ctx context.Context, asOf time.Time) (ledger.TrialBalance, error) {
	txs, err := s.posted(ctx, time.Time{}, asOf)
	if err != nil {
		return ledger.TrialBalance{}, err
	}
	return ledger.BuildTrialBalance(txs, s.chart.All()), nil
}

// AccountStatement lists one account's activity within [from, to] with a
// running balance. The opening balance is all posted activity before from.
func (s *Service) AccountStatement(ctx context.Context, accountID int, from, to time.Time) (ledger.AccountStatement, error) {
	acct, ok := s.chart.Get(accountID)
	if !ok {
		return ledger.AccountStatement{}, fmt.Errorf("%w: %d", ErrUnknownAccount, accountID)
	}
	if err := checkRange(from, to); err != nil {
		return ledger.AccountStatement{}, err
	}

	var opening ledger.AccountStatement
	if !from.IsZero() {
		before, err := s.posted(ctx, time.Time{}, storage.DateOnly(from).AddDate(0, 0, -1))
		if err != nil {
			return ledger.AccountStatement{}, err
		}
		opening = ledger.Statement(before, acct, 0)
	}

	txs, err := s.posted(ctx, from, to)
	if err != nil {
		return ledger.AccountStatement{}, err
	}
	return ledger.Statement(txs, acct, opening.ClosingBalance), nil
}

func (s *Service) posted(ctx context.Context, from, to time.Time) ([]model.LedgerTransaction, error) {
	txs, err := s.store.ListTransactions(ctx, storage.Filter{From: from, To: to, Status: model.StatusPosted})
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	return txs, nil
}

func checkRange(from, to time.Time) error {
	if !from.IsZero() && !to.IsZero() && storage.DateOnly(from).After(storage.DateOnly(to)) {
		return fmt.Errorf("%w: from %s is after to %s", ErrInvalidRange, from.Format(time.DateOnly), to.Format(time.DateOnly))
	}
	return nil
}
