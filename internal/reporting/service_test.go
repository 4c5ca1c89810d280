package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/erpledger/internal/accounts"
	"github.com/cleared-dev/erpledger/internal/model"
	"github.com/cleared-dev/erpledger/internal/money"
	"github.com/cleared-dev/erpledger/internal/report"
	"github.com/cleared-dev/erpledger/internal/storage"
	"github.com/cleared-dev/erpledger/internal/storage/memory"
	"github.com/cleared-dev/erpledger/internal/storage/storagetest"
)

var asOf = storagetest.Date(2025, 3, 31)

func amt(s string) money.Amount {
	return money.MustParse(s)
}

// seed posts a small book spanning two fiscal years (calendar year start).
func seed(t *testing.T) storage.LedgerStore {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	draft := storagetest.Transaction("JV-2025-02-003", storagetest.Date(2025, 2, 15), 1101, 4101, "999.00")
	draft.Status = model.StatusDraft

	for _, tx := range []model.LedgerTransaction{
		storagetest.Transaction("OB-2024-06-001", storagetest.Date(2024, 6, 1), 1102, 3101, "10000.00"),
		storagetest.Transaction("JV-2024-09-001", storagetest.Date(2024, 9, 1), 1102, 4101, "3000.00"),
		storagetest.Transaction("JV-2025-02-001", storagetest.Date(2025, 2, 1), 6102, 1102, "500.00"),
		storagetest.Transaction("JV-2025-02-002", storagetest.Date(2025, 2, 10), 1201, 2101, "2000.00"),
		draft,
		storagetest.Transaction("JV-2025-04-001", storagetest.Date(2025, 4, 1), 1102, 4101, "700.00"),
	} {
		require.NoError(t, store.SaveTransaction(ctx, tx))
	}
	return store
}

func newService(t *testing.T, opts Options) *Service {
	chart := accounts.NewService(accounts.DefaultChart("trading_company"))
	return New(seed(t), chart, opts)
}

func TestBalanceSheet(t *testing.T) {
	svc := newService(t, Options{})

	snap, err := svc.BalanceSheet(context.Background(), asOf)
	require.NoError(t, err)

	assert.Equal(t, amt("12500"), snap.Assets.CurrentAssets.Total)
	assert.Equal(t, amt("2000"), snap.Assets.FixedAssets.Total)
	assert.Equal(t, amt("14500"), snap.Assets.Total)
	assert.Equal(t, amt("2000"), snap.Liabilities.Total)
	assert.Equal(t, amt("10000"), snap.Equity.Accounts.Total)
	assert.Equal(t, amt("3000"), snap.Equity.RetainedEarnings)
	assert.Equal(t, amt("-500"), snap.Equity.CurrentYearEarnings)
	assert.Equal(t, amt("12500"), snap.Equity.TotalEquity)
	assert.Equal(t, amt("14500"), snap.TotalLiabilitiesAndEquity)
	assert.True(t, snap.Checks.IsBalanced)
	assert.False(t, snap.Checks.HasUnclassified)

	for _, a := range snap.Assets.CurrentAssets.Accounts {
		assert.NotEqual(t, 4101, a.ID, "revenue accounts stay off the balance sheet")
	}
}

func TestBalanceSheet_FiscalYearStart(t *testing.T) {
	svc := newService(t, Options{FiscalYearStartMonth: time.July, FiscalYearStartDay: 1})

	snap, err := svc.BalanceSheet(context.Background(), asOf)
	require.NoError(t, err)
	assert.Equal(t, money.Zero, snap.Equity.RetainedEarnings)
	assert.Equal(t, amt("2500"), snap.Equity.CurrentYearEarnings)
	assert.Equal(t, amt("12500"), snap.Equity.TotalEquity)
	assert.True(t, snap.Checks.IsBalanced)
}

func TestBalanceSheet_UnclassifiedAccount(t *testing.T) {
	store := seed(t)
	require.NoError(t, store.SaveTransaction(context.Background(),
		storagetest.Transaction("JV-2025-03-001", storagetest.Date(2025, 3, 1), 1102, 7777, "100.00")))
	chart := accounts.NewService(accounts.DefaultChart("trading_company"))

	snap, err := New(store, chart, Options{}).BalanceSheet(context.Background(), asOf)
	require.NoError(t, err)
	assert.True(t, snap.Checks.HasUnclassified)
	require.Len(t, snap.Unclassified.Accounts, 1)
	assert.Equal(t, 7777, snap.Unclassified.Accounts[0].ID)
	assert.Equal(t, amt("-100"), snap.Unclassified.Total)
	assert.False(t, snap.Checks.IsBalanced)
	assert.Equal(t, amt("100"), snap.Checks.Difference)

	_, err = New(store, chart, Options{Unclassified: report.PolicyReject}).BalanceSheet(context.Background(), asOf)
	assert.ErrorIs(t, err, report.ErrUnclassifiedAccount)
}

func TestGeneralLedger(t *testing.T) {
	svc := newService(t, Options{})

	agg, err := svc.GeneralLedger(context.Background(), storagetest.Date(2025, 1, 1), asOf)
	require.NoError(t, err)
	require.Len(t, agg.Groups, 2)
	assert.Equal(t, "JV-2025-02-001", agg.Groups[0].LedgerNumber)
	assert.Equal(t, "JV-2025-02-002", agg.Groups[1].LedgerNumber)
	assert.Equal(t, amt("2500"), agg.GrandTotalDebit)
	assert.Equal(t, agg.GrandTotalDebit, agg.GrandTotalCredit)
	assert.Equal(t, 2, agg.BalancedCount)
}

func TestGeneralLedger_OpenRange(t *testing.T) {
	svc := newService(t, Options{})

	agg, err := svc.GeneralLedger(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, agg.Groups, 5, "every posted transaction, drafts excluded")
}

func TestGeneralLedger_InvalidRange(t *testing.T) {
	svc := newService(t, Options{})
	_, err := svc.GeneralLedger(context.Background(), asOf, storagetest.Date(2025, 1, 1))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestTrialBalance(t *testing.T) {
	svc := newService(t, Options{})

	tb, err := svc.TrialBalance(context.Background(), asOf)
	require.NoError(t, err)
	assert.True(t, tb.IsBalanced)
	assert.Equal(t, amt("15000"), tb.TotalDebit)

	rows := map[int]money.Amount{}
	for _, r := range tb.Rows {
		rows[r.AccountID] = r.Debit - r.Credit
	}
	assert.Equal(t, amt("12500"), rows[1102])
	assert.Equal(t, amt("-3000"), rows[4101])
	assert.Equal(t, amt("500"), rows[6102])
}

func TestAccountStatement(t *testing.T) {
	svc := newService(t, Options{})

	st, err := svc.AccountStatement(context.Background(), 1102, storagetest.Date(2025, 1, 1), asOf)
	require.NoError(t, err)
	assert.Equal(t, amt("13000"), st.OpeningBalance)
	require.Len(t, st.Rows, 1)
	assert.Equal(t, "JV-2025-02-001", st.Rows[0].LedgerNumber)
	assert.Equal(t, amt("500"), st.Rows[0].Credit)
	assert.Equal(t, amt("12500"), st.Rows[0].Balance)
	assert.Equal(t, amt("12500"), st.ClosingBalance)
}

func TestAccountStatement_NoFrom(t *testing.T) {
	svc := newService(t, Options{})

	st, err := svc.AccountStatement(context.Background(), 1102, time.Time{}, asOf)
	require.NoError(t, err)
	assert.Equal(t, money.Zero, st.OpeningBalance)
	assert.Len(t, st.Rows, 3)
	assert.Equal(t, amt("12500"), st.ClosingBalance)
}

func TestAccountStatement_UnknownAccount(t *testing.T) {
	svc := newService(t, Options{})
	_, err := svc.AccountStatement(context.Background(), 7777, time.Time{}, asOf)
	assert.ErrorIs(t, err, ErrUnknownAccount)
}
