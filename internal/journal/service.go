// Package journal stores ledger transactions as monthly CSV files under a
// book root: <root>/YYYY/MM/journal.csv.
package journal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/cleared-dev/erpledger/internal/id"
	"github.com/cleared-dev/erpledger/internal/model"
	"github.com/cleared-dev/erpledger/internal/storage"
)

// Book is a storage.LedgerStore over monthly journal.csv files.
type Book struct {
	root string
	mu   sync.Mutex
}

// NewBook creates a Book rooted at root.
func NewBook(root string) *Book {
	return &Book{root: root}
}

// Root returns the book directory.
func (b *Book) Root() string {
	return b.root
}

// SaveTransaction appends tx to the journal of its month, creating the file
// (and header) if needed.
func (b *Book) SaveTransaction(ctx context.Context, tx model.LedgerTransaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	existing, err := b.readAll()
	if err != nil {
		return err
	}
	for _, e := range existing {
		if e.LedgerNumber == tx.LedgerNumber {
			return fmt.Errorf("%w: %s", storage.ErrDuplicateLedgerNumber, tx.LedgerNumber)
		}
	}

	journalPath := b.monthPath(tx.TransactionDate.Year(), int(tx.TransactionDate.Month()))
	if err := os.MkdirAll(filepath.Dir(journalPath), 0o755); err != nil {
		return fmt.Errorf("creating journal dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(journalPath); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(journalPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	if err := AppendTransactions(f, []model.LedgerTransaction{tx}); err != nil {
		return fmt.Errorf("appending %s: %w", tx.LedgerNumber, err)
	}
	return nil
}

// ListTransactions reads every month file and returns the matching transactions.
func (b *Book) ListTransactions(ctx context.Context, f storage.Filter) ([]model.LedgerTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	all, err := b.readAll()
	if err != nil {
		return nil, err
	}
	var out []model.LedgerTransaction
	for _, tx := range all {
		if f.Match(tx) {
			out = append(out, tx)
		}
	}
	storage.SortTransactions(out)
	return out, nil
}

// NextSequence returns the next available sequence number for prefix in a month.
func (b *Book) NextSequence(ctx context.Context, prefix string, year, month int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	all, err := b.readAll()
	if err != nil {
		return 0, err
	}

	maxSeq := 0
	for _, tx := range all {
		p, y, m, seq, err := id.ParseLedgerNumber(tx.LedgerNumber)
		if err != nil || p != prefix || y != year || m != month {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq + 1, nil
}

// Close is a no-op; files are opened per call.
func (b *Book) Close() error {
	return nil
}

// ReadMonth reads all transactions for a given year/month.
func (b *Book) ReadMonth(year, month int) ([]model.LedgerTransaction, error) {
	return readFile(b.monthPath(year, month))
}

// Months returns the year/month pairs that have a journal file, oldest first.
func (b *Book) Months() ([][2]int, error) {
	paths, err := filepath.Glob(filepath.Join(b.root, "[0-9][0-9][0-9][0-9]", "[0-9][0-9]", "journal.csv"))
	if err != nil {
		return nil, fmt.Errorf("listing journals: %w", err)
	}
	months := make([][2]int, 0, len(paths))
	for _, p := range paths {
		monthDir := filepath.Dir(p)
		year, yerr := strconv.Atoi(filepath.Base(filepath.Dir(monthDir)))
		month, merr := strconv.Atoi(filepath.Base(monthDir))
		if yerr != nil || merr != nil {
			continue
		}
		months = append(months, [2]int{year, month})
	}
	return months, nil
}

func (b *Book) readAll() ([]model.LedgerTransaction, error) {
	months, err := b.Months()
	if err != nil {
		return nil, err
	}
	var all []model.LedgerTransaction
	for _, ym := range months {
		txs, err := b.ReadMonth(ym[0], ym[1])
		if err != nil {
			return nil, err
		}
		all = append(all, txs...)
	}
	return all, nil
}

func readFile(path string) ([]model.LedgerTransaction, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	defer f.Close()

	txs, err := ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("reading journal %s: %w", path, err)
	}
	return txs, nil
}

func (b *Book) monthPath(year, month int) string {
	return filepath.Join(b.root, fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month), "journal.csv")
}

var _ storage.LedgerStore = (*Book)(nil)
