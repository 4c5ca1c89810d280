package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/cleared-dev/erpledger/internal/id"
	"github.com/cleared-dev/erpledger/internal/model"
	"github.com/cleared-dev/erpledger/internal/storage"
)

// Store is an in-memory storage.LedgerStore, safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	txs      []model.LedgerTransaction
	byNumber map[string]struct{}
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{byNumber: make(map[string]struct{})}
}

// SaveTransaction stores a copy of tx.
func (s *Store) SaveTransaction(ctx context.Context, tx model.LedgerTransaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byNumber[tx.LedgerNumber]; exists {
		return fmt.Errorf("%w: %s", storage.ErrDuplicateLedgerNumber, tx.LedgerNumber)
	}
	s.byNumber[tx.LedgerNumber] = struct{}{}
	s.txs = append(s.txs, clone(tx))
	return nil
}

// ListTransactions returns copies of the matching transactions.
func (s *Store) ListTransactions(ctx context.Context, f storage.Filter) ([]model.LedgerTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.LedgerTransaction
	for _, tx := range s.txs {
		if f.Match(tx) {
			out = append(out, clone(tx))
		}
	}
	storage.SortTransactions(out)
	return out, nil
}

// NextSequence scans stored ledger numbers for the highest matching sequence.
func (s *Store) NextSequence(ctx context.Context, prefix string, year, month int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	maxSeq := 0
	for number := range s.byNumber {
		p, y, m, seq, err := id.ParseLedgerNumber(number)
		if err != nil || p != prefix || y != year || m != month {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq + 1, nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

func clone(tx model.LedgerTransaction) model.LedgerTransaction {
	lines := make([]model.LedgerLine, len(tx.Lines))
	copy(lines, tx.Lines)
	tx.Lines = lines
	return tx
}

var _ storage.LedgerStore = (*Store)(nil)
