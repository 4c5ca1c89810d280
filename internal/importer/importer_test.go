package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/erpledger/internal/accounts"
	"github.com/cleared-dev/erpledger/internal/ledger"
	"github.com/cleared-dev/erpledger/internal/money"
)

func chart() *accounts.Service {
	return accounts.NewService(accounts.DefaultChart("trading_company"))
}

func TestLinesParser_Parse(t *testing.T) {
	f, err := os.Open("../../testdata/lines.csv")
	require.NoError(t, err)
	defer f.Close()

	lines, err := (&LinesParser{}).Parse(f)
	require.NoError(t, err)
	require.Len(t, lines, 3)

	assert.Equal(t, 6102, lines[0].AccountID)
	assert.Equal(t, money.MustParse("2500"), lines[0].Debit)
	assert.Equal(t, money.Zero, lines[0].Credit)
	assert.Equal(t, "Office rent March", lines[0].Description)
	assert.Equal(t, "INV-2025-031", lines[0].Reference)
	assert.Equal(t, money.MustParse("2750"), lines[2].Credit)

	assert.True(t, ledger.Validate(lines).IsBalanced)
}

func TestLinesParser_BadAmount(t *testing.T) {
	in := strings.Join(LinesHeader, ",") + "\n" +
		"6102,100.00,,,\n" +
		"1102,,abc,,\n"
	_, err := (&LinesParser{}).Parse(strings.NewReader(in))
	require.Error(t, err)
	assert.ErrorIs(t, err, money.ErrInvalidAmount)
	assert.Contains(t, err.Error(), "row 3")
	assert.Contains(t, err.Error(), "credit")
}

func TestLinesParser_BadAccount(t *testing.T) {
	in := strings.Join(LinesHeader, ",") + "\ncash,100,,,\n"
	_, err := (&LinesParser{}).Parse(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account_id")
}

func TestLinesParser_WrongHeader(t *testing.T) {
	in := "account_code,debit,credit,description,reference\n1-1101,1,,,\n"
	_, err := (&LinesParser{}).Parse(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected header")
}

func TestLinesParser_Empty(t *testing.T) {
	lines, err := (&LinesParser{}).Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestOpeningBalanceParser_Parse(t *testing.T) {
	f, err := os.Open("../../testdata/opening-balance.csv")
	require.NoError(t, err)
	defer f.Close()

	lines, err := (&OpeningBalanceParser{Chart: chart()}).Parse(f)
	require.NoError(t, err)
	require.Len(t, lines, 8)
	assert.Equal(t, 1101, lines[0].AccountID)
	assert.Equal(t, 1209, lines[4].AccountID)
	assert.Equal(t, money.MustParse("12000000"), lines[4].Credit)

	r := ledger.Validate(lines)
	assert.True(t, r.IsBalanced)
	assert.Equal(t, money.MustParse("202000000"), r.TotalDebit)
}

func TestOpeningBalanceParser_AccountIDFallback(t *testing.T) {
	in := strings.Join(OpeningBalanceHeader, ",") + "\n1102,10,,\n3901,,10,\n"
	lines, err := (&OpeningBalanceParser{Chart: chart()}).Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 1102, lines[0].AccountID)
	assert.Equal(t, 3901, lines[1].AccountID)
}

func TestOpeningBalanceParser_UnknownCode(t *testing.T) {
	in := strings.Join(OpeningBalanceHeader, ",") + "\n9-9999,10,,\n"
	_, err := (&OpeningBalanceParser{Chart: chart()}).Parse(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown account code "9-9999"`)
	assert.Contains(t, err.Error(), "row 2")
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get("nonexistent"))
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.Register(&LinesParser{})
	assert.NotNil(t, r.Get("LINES"))
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(&LinesParser{})
	assert.Panics(t, func() { r.Register(&LinesParser{}) })
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry(chart())
	assert.Equal(t, []string{"lines", "opening-balance"}, r.Formats())
}

func TestParseFile(t *testing.T) {
	r := DefaultRegistry(chart())

	lines, err := r.ParseFile("lines", "../../testdata/lines.csv")
	require.NoError(t, err)
	assert.Len(t, lines, 3)

	_, err = r.ParseFile("chase", "../../testdata/lines.csv")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = r.ParseFile("lines", "../../testdata/missing.csv")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestInImportDir(t *testing.T) {
	root := t.TempDir()
	assert.True(t, InImportDir(root, filepath.Join(root, "import", "march.csv")))
	assert.False(t, InImportDir(root, filepath.Join(root, "import", "processed", "march.csv")))
	assert.False(t, InImportDir(root, filepath.Join(root, "march.csv")))
}

func TestMarkProcessed(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "import"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "import", "march.csv"), []byte("data"), 0o644))

	require.NoError(t, MarkProcessed(root, "march.csv"))

	_, err := os.Stat(filepath.Join(root, "import", "march.csv"))
	assert.True(t, os.IsNotExist(err))
	data, err := os.ReadFile(filepath.Join(root, "import", "processed", "march.csv"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
}
