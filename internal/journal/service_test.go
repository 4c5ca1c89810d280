package journal

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/erpledger/internal/storage"
	"github.com/cleared-dev/erpledger/internal/storage/storagetest"
)

func TestBook(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.LedgerStore {
		return NewBook(t.TempDir())
	})
}

func TestBook_MonthFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	book := NewBook(dir)

	require.NoError(t, book.SaveTransaction(ctx, storagetest.Transaction("JV-2025-01-001", date(2025, 1, 15), 6102, 1102, "10.00")))
	require.NoError(t, book.SaveTransaction(ctx, storagetest.Transaction("JV-2025-12-001", date(2025, 12, 25), 6102, 1102, "25.00")))

	info, err := os.Stat(filepath.Join(dir, "2025", "12"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	months, err := book.Months()
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{2025, 1}, {2025, 12}}, months)

	jan, err := book.ReadMonth(2025, 1)
	require.NoError(t, err)
	require.Len(t, jan, 1)
	assert.Equal(t, "JV-2025-01-001", jan[0].LedgerNumber)
}

func TestBook_HeaderWrittenOnce(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	book := NewBook(dir)

	require.NoError(t, book.SaveTransaction(ctx, storagetest.Transaction("JV-2025-01-001", date(2025, 1, 10), 6102, 1102, "10.00")))
	require.NoError(t, book.SaveTransaction(ctx, storagetest.Transaction("JV-2025-01-002", date(2025, 1, 11), 6102, 1102, "20.00")))

	data, err := os.ReadFile(filepath.Join(dir, "2025", "01", "journal.csv"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "ledger_number,"))
}

func TestReadMonth_NonExistent(t *testing.T) {
	book := NewBook(t.TempDir())
	txs, err := book.ReadMonth(2025, 6)
	require.NoError(t, err)
	assert.Empty(t, txs)
}
