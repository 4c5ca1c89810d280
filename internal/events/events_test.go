package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/erpledger/internal/model"
	"github.com/cleared-dev/erpledger/internal/money"
	"github.com/cleared-dev/erpledger/internal/storage/storagetest"
)

func TestNewLedgerPosted(t *testing.T) {
	tx := storagetest.Transaction("JV-2025-01-001", storagetest.Date(2025, 1, 15), 1101, 4101, "250.00")
	tx.Status = model.StatusDraft
	tx.Lines[1].Credit = money.MustParse("200.00")
	now := time.Date(2025, 1, 15, 9, 30, 0, 0, time.FixedZone("X", 3600))

	e := NewLedgerPosted(tx, now)
	assert.NotEmpty(t, e.EventID)
	assert.Equal(t, TypeLedgerPosted, e.Type)
	assert.Equal(t, time.UTC, e.OccurredAt.Location())
	assert.Equal(t, tx.ID, e.TransactionID)
	assert.Equal(t, model.StatusDraft, e.Status)
	assert.Equal(t, money.MustParse("250.00"), e.TotalDebit)
	assert.Equal(t, money.MustParse("200.00"), e.TotalCredit)
	assert.False(t, e.IsBalanced)
}

func TestRecorder(t *testing.T) {
	var r Recorder
	tx := storagetest.Transaction("JV-2025-01-001", storagetest.Date(2025, 1, 15), 1101, 4101, "1.00")
	require.NoError(t, r.PublishLedgerPosted(context.Background(), NewLedgerPosted(tx, time.Now())))
	require.Len(t, r.Events(), 1)

	r.Err = errors.New("down")
	assert.Error(t, r.PublishLedgerPosted(context.Background(), NewLedgerPosted(tx, time.Now())))
	assert.Len(t, r.Events(), 1)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.PublishLedgerPosted(context.Background(), LedgerPosted{}))
	assert.NoError(t, p.Close())
}
