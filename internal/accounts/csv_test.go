package accounts

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/erpledger/internal/model"
)

func TestRoundTrip(t *testing.T) {
	accounts := []model.Account{
		{ID: 1101, Code: "1-1101", Name: "Cash on Hand", Type: model.AccountTypeAsset, Classification: model.ClassCurrentAsset, Description: "Petty cash"},
		{ID: 6102, Code: "6-6102", Name: "Rent", Type: model.AccountTypeExpense},
	}

	var buf bytes.Buffer
	err := WriteAccounts(&buf, accounts)
	require.NoError(t, err)

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, accounts, got)
}

func TestParentID(t *testing.T) {
	accounts := []model.Account{
		{ID: 1201, Name: "Equipment", Type: model.AccountTypeAsset},
		{ID: 1209, Name: "Accumulated Depreciation", Type: model.AccountTypeAsset, ParentID: 1201},
	}

	var buf bytes.Buffer
	err := WriteAccounts(&buf, accounts)
	require.NoError(t, err)

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 0, got[0].ParentID)
	assert.Equal(t, 1201, got[1].ParentID)
}

func TestUnmarshalAccount_UnknownType(t *testing.T) {
	_, err := UnmarshalAccount([]string{"1", "c", "n", "income", "", "", ""})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account_type")
}

func TestReadAccounts_RowNumberInError(t *testing.T) {
	in := strings.Join(Header, ",") + "\n" +
		"1101,1-1101,Cash,asset,current_asset,,\n" +
		"abc,1-1102,Bank,asset,current_asset,,\n"
	_, err := ReadAccounts(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
}

func TestReadAccounts_ColumnsByName(t *testing.T) {
	in := "account_type,account_name,account_id,classification\n" +
		"Asset,Cash,1101,current_asset\n" +
		"expense,Rent,6102,\n"
	got, err := ReadAccounts(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, model.Account{ID: 1101, Name: "Cash", Type: model.AccountTypeAsset, Classification: model.ClassCurrentAsset}, got[0])
	assert.Equal(t, model.AccountTypeExpense, got[1].Type)
	assert.Empty(t, got[1].Code)
}

func TestReadAccounts_MissingColumn(t *testing.T) {
	_, err := ReadAccounts(strings.NewReader("account_id,account_name\n1101,Cash\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account_type")
}

func TestReadAccounts_Empty(t *testing.T) {
	got, err := ReadAccounts(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDefaultChart(t *testing.T) {
	chart := DefaultChart("trading_company")
	require.NotEmpty(t, chart)

	ids := make(map[int]bool)
	for _, acct := range chart {
		ids[acct.ID] = true
	}
	assert.True(t, ids[1101], "expected Cash on Hand (1101)")
	assert.True(t, ids[1104], "expected Inventory (1104)")
	assert.True(t, ids[3901], "expected Opening Balance Equity (3901)")

	for _, acct := range chart {
		assert.NotEmpty(t, acct.Name, "account %d missing name", acct.ID)
		assert.NotEmpty(t, acct.Code, "account %d missing code", acct.ID)
		if acct.OnBalanceSheet() {
			assert.True(t, acct.Classification.Known(), "account %d missing classification", acct.ID)
		}
	}
}

func TestDefaultChart_UnknownEntityType(t *testing.T) {
	// Unknown entity types fall back to the trading company chart.
	assert.Equal(t, DefaultChart("trading_company"), DefaultChart("unknown_type"))
	assert.NotEqual(t, DefaultChart("trading_company"), DefaultChart("service_company"))
}

func TestReadTestdata(t *testing.T) {
	f, err := os.Open("../../testdata/chart-of-accounts.csv")
	require.NoError(t, err)
	defer f.Close()

	accounts, err := ReadAccounts(f)
	require.NoError(t, err)
	require.Len(t, accounts, 12)

	classes := make(map[model.Classification]bool)
	for _, acct := range accounts {
		classes[acct.Classification] = true
	}
	assert.True(t, classes[model.ClassCurrentAsset])
	assert.True(t, classes[model.ClassFixedAsset])
	assert.True(t, classes[model.ClassCurrentLiability])
	assert.True(t, classes[model.ClassLongTermLiability])
	assert.True(t, classes[model.ClassEquity])
}

func TestDefaultChartRoundTrip(t *testing.T) {
	chart := DefaultChart("trading_company")

	var buf bytes.Buffer
	err := WriteAccounts(&buf, chart)
	require.NoError(t, err)

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	assert.Equal(t, chart, got)
}
