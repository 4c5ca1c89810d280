// Package storage defines the ledger persistence contract. Implementations
// live in subpackages: memory, sqlite, postgres and the CSV book in journal.
package storage

import (
	"cmp"
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/cleared-dev/erpledger/internal/id"
	"github.com/cleared-dev/erpledger/internal/model"
)

var (
	// ErrDuplicateLedgerNumber is returned when a ledger number is already taken.
	ErrDuplicateLedgerNumber = errors.New("ledger number already exists")
	// ErrDuplicateOpeningBalance is returned by stores that enforce a single
	// posted opening balance when a second one is saved.
	ErrDuplicateOpeningBalance = errors.New("posted opening balance already exists")
)

// Filter narrows ListTransactions. Zero values mean "no bound".
type Filter struct {
	From          time.Time // inclusive
	To            time.Time // inclusive
	Status        model.EntryStatus
	ReferenceType model.ReferenceType
}

// Match reports whether tx passes the filter.
func (f Filter) Match(tx model.LedgerTransaction) bool {
	d := DateOnly(tx.TransactionDate)
	if !f.From.IsZero() && d.Before(DateOnly(f.From)) {
		return false
	}
	if !f.To.IsZero() && d.After(DateOnly(f.To)) {
		return false
	}
	if f.Status != "" && tx.Status != f.Status {
		return false
	}
	if f.ReferenceType != "" && tx.ReferenceType != f.ReferenceType {
		return false
	}
	return true
}

// LedgerStore persists ledger transactions.
type LedgerStore interface {
	SaveTransaction(ctx context.Context, tx model.LedgerTransaction) error
	// ListTransactions returns matching transactions ordered by date, then ledger number.
	ListTransactions(ctx context.Context, f Filter) ([]model.LedgerTransaction, error)
	// NextSequence returns the next free sequence for prefix within year/month.
	NextSequence(ctx context.Context, prefix string, year, month int) (int, error)
	Close() error
}

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SortTransactions orders txs by date, then ledger number.
func SortTransactions(txs []model.LedgerTransaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		di, dj := DateOnly(txs[i].TransactionDate), DateOnly(txs[j].TransactionDate)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return CompareLedgerNumbers(txs[i].LedgerNumber, txs[j].LedgerNumber) < 0
	})
}

// CompareLedgerNumbers orders ledger numbers by prefix, period and numeric
// sequence, so "JV-2025-01-999" sorts before "JV-2025-01-1000". Numbers that
// do not parse compare as plain strings.
func CompareLedgerNumbers(a, b string) int {
	pa, ya, ma, sa, errA := id.ParseLedgerNumber(a)
	pb, yb, mb, sb, errB := id.ParseLedgerNumber(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	if c := strings.Compare(pa, pb); c != 0 {
		return c
	}
	if c := cmp.Compare(ya, yb); c != 0 {
		return c
	}
	if c := cmp.Compare(ma, mb); c != 0 {
		return c
	}
	return cmp.Compare(sa, sb)
}
