// Package events announces ledger changes to downstream consumers.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/cleared-dev/erpledger/internal/id"
	"github.com/cleared-dev/erpledger/internal/ledger"
	"github.com/cleared-dev/erpledger/internal/model"
	"github.com/cleared-dev/erpledger/internal/money"
)

// TypeLedgerPosted is the event type of LedgerPosted.
const TypeLedgerPosted = "ledger.posted"

// LedgerPosted is emitted after a transaction is saved, draft or posted.
type LedgerPosted struct {
	EventID       string              `json:"eventId"`
	Type          string              `json:"type"`
	OccurredAt    time.Time           `json:"occurredAt"`
	TransactionID string              `json:"transactionId"`
	LedgerNumber  string              `json:"ledgerNumber"`
	ReferenceType model.ReferenceType `json:"referenceType"`
	Status        model.EntryStatus   `json:"status"`
	TotalDebit    money.Amount        `json:"totalDebit"`
	TotalCredit   money.Amount        `json:"totalCredit"`
	IsBalanced    bool                `json:"isBalanced"`
}

// NewLedgerPosted builds the event for a saved transaction.
func NewLedgerPosted(tx model.LedgerTransaction, now time.Time) LedgerPosted {
	r := ledger.Validate(tx.Lines)
	return LedgerPosted{
		EventID:       id.NewEventID(now),
		Type:          TypeLedgerPosted,
		OccurredAt:    now.UTC(),
		TransactionID: tx.ID,
		LedgerNumber:  tx.LedgerNumber,
		ReferenceType: tx.ReferenceType,
		Status:        tx.Status,
		TotalDebit:    r.TotalDebit,
		TotalCredit:   r.TotalCredit,
		IsBalanced:    r.IsBalanced,
	}
}

// Publisher delivers ledger events.
type Publisher interface {
	PublishLedgerPosted(ctx context.Context, e LedgerPosted) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) PublishLedgerPosted(context.Context, LedgerPosted) error { return nil }
func (Nop) Close() error                                            { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []LedgerPosted
	// Err, when set, is returned by every publish.
	Err error
}

func (r *Recorder) PublishLedgerPosted(_ context.Context, e LedgerPosted) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []LedgerPosted {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]LedgerPosted(nil), r.events...)
}

var (
	_ Publisher = Nop{}
	_ Publisher = (*Recorder)(nil)
)
