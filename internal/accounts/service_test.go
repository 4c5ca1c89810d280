package accounts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/erpledger/internal/model"
)

func TestNewService(t *testing.T) {
	chart := DefaultChart("trading_company")
	svc := NewService(chart)

	assert.Len(t, svc.All(), len(chart))
}

func TestGetExists(t *testing.T) {
	svc := NewService(DefaultChart("trading_company"))

	acct, ok := svc.Get(1102)
	assert.True(t, ok)
	assert.Equal(t, "Bank", acct.Name)

	_, ok = svc.Get(9999)
	assert.False(t, ok)

	assert.True(t, svc.Exists(1102))
	assert.False(t, svc.Exists(9999))

	acct, ok = svc.GetByCode("2-2201")
	assert.True(t, ok)
	assert.Equal(t, 2201, acct.ID)
}

func TestCheck(t *testing.T) {
	require.NoError(t, Check(DefaultChart("trading_company")))
	require.NoError(t, Check(DefaultChart("service_company")))
}

func TestCheck_Problems(t *testing.T) {
	chart := []model.Account{
		{ID: 1101, Code: "1-1101", Name: "Cash", Type: model.AccountTypeAsset},
		{ID: 1101, Code: "1-1102", Name: "Bank", Type: model.AccountTypeAsset},
		{ID: 2101, Code: "1-1101", Name: "Payables", Type: model.AccountTypeLiability},
		{ID: 1209, Name: "Accum. Depreciation", Type: model.AccountTypeAsset, ParentID: 1201},
		{ID: 4102, Name: "Returns", Type: model.AccountTypeRevenue, ParentID: 2101},
	}

	err := Check(chart)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidChart)
	msg := err.Error()
	assert.Contains(t, msg, "duplicate account_id 1101")
	assert.Contains(t, msg, `code "1-1101"`)
	assert.Contains(t, msg, "unknown parent 1201")
	assert.Contains(t, msg, "account 4102 (revenue) under parent 2101 (liability)")
}

func TestLoad_RejectsInvalidChart(t *testing.T) {
	dir := t.TempDir()
	svc := NewService([]model.Account{
		{ID: 1101, Name: "Cash", Type: model.AccountTypeAsset},
		{ID: 1101, Name: "Bank", Type: model.AccountTypeAsset},
	})
	require.NoError(t, svc.Save(dir))

	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrInvalidChart)
}

func TestLoadFromTestdata(t *testing.T) {
	dir := t.TempDir()
	acctDir := filepath.Join(dir, "accounts")
	require.NoError(t, os.MkdirAll(acctDir, 0o755))

	src, err := os.ReadFile("../../testdata/chart-of-accounts.csv")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ChartPath), src, 0o644))

	svc, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, svc.All(), 12)
	assert.True(t, svc.Exists(1101))
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveRoundTrip(t *testing.T) {
	chart := DefaultChart("service_company")
	svc := NewService(chart)

	dir := t.TempDir()
	require.NoError(t, svc.Save(dir))

	_, err := os.Stat(filepath.Join(dir, ChartPath))
	require.NoError(t, err)

	svc2, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, svc2.All(), len(chart))

	for _, orig := range chart {
		got, ok := svc2.Get(orig.ID)
		require.True(t, ok, "account %d should exist", orig.ID)
		assert.Equal(t, orig, got)
	}
}
