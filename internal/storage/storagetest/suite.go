// Package storagetest holds the behavior every storage.LedgerStore must share.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/erpledger/internal/model"
	"github.com/cleared-dev/erpledger/internal/money"
	"github.com/cleared-dev/erpledger/internal/storage"
)

// Date returns midnight UTC for y-m-d.
func Date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

// Transaction builds a two-line transaction moving amount from credit to debit account.
func Transaction(number string, date time.Time, debitAcct, creditAcct int, amount string) model.LedgerTransaction {
	a := money.MustParse(amount)
	return model.LedgerTransaction{
		ID:              "tx-" + number,
		LedgerNumber:    number,
		TransactionDate: date,
		ReferenceType:   model.RefJournal,
		Status:          model.StatusPosted,
		Description:     "entry " + number,
		Lines: []model.LedgerLine{
			{AccountID: debitAcct, Debit: a, Description: "debit side", Reference: "INV-1"},
			{AccountID: creditAcct, Credit: a},
		},
	}
}

// OpeningBalance builds an opening balance transaction with the given status.
func OpeningBalance(number string, date time.Time, status model.EntryStatus) model.LedgerTransaction {
	tx := Transaction(number, date, 1101, 3901, "100")
	tx.ReferenceType = model.RefOpeningBalance
	tx.Status = status
	return tx
}

// Run exercises a fresh store returned by newStore.
func Run(t *testing.T, newStore func(t *testing.T) storage.LedgerStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("SaveAndList", func(t *testing.T) {
		s := newStore(t)
		want := Transaction("JV-2025-01-001", Date(2025, 1, 15), 1101, 4101, "1250.75")
		require.NoError(t, s.SaveTransaction(ctx, want))

		got, err := s.ListTransactions(ctx, storage.Filter{})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, want.ID, got[0].ID)
		assert.Equal(t, want.LedgerNumber, got[0].LedgerNumber)
		assert.True(t, want.TransactionDate.Equal(got[0].TransactionDate))
		assert.Equal(t, want.ReferenceType, got[0].ReferenceType)
		assert.Equal(t, want.Status, got[0].Status)
		assert.Equal(t, want.Description, got[0].Description)
		assert.Equal(t, want.Lines, got[0].Lines)
	})

	t.Run("DuplicateLedgerNumber", func(t *testing.T) {
		s := newStore(t)
		tx := Transaction("JV-2025-01-001", Date(2025, 1, 15), 1101, 4101, "10")
		require.NoError(t, s.SaveTransaction(ctx, tx))
		tx.ID = "tx-other"
		err := s.SaveTransaction(ctx, tx)
		require.Error(t, err)
		assert.ErrorIs(t, err, storage.ErrDuplicateLedgerNumber)
	})

	t.Run("SequenceAboveNineHundredNinetyNine", func(t *testing.T) {
		s := newStore(t)
		day := Date(2025, 1, 31)
		require.NoError(t, s.SaveTransaction(ctx, Transaction("JV-2025-01-1000", day, 1101, 4101, "2")))
		require.NoError(t, s.SaveTransaction(ctx, Transaction("JV-2025-01-999", day, 1101, 4101, "1")))

		got, err := s.ListTransactions(ctx, storage.Filter{})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "JV-2025-01-999", got[0].LedgerNumber)
		assert.Equal(t, "JV-2025-01-1000", got[1].LedgerNumber)

		next, err := s.NextSequence(ctx, "JV", 2025, 1)
		require.NoError(t, err)
		assert.Equal(t, 1001, next)
	})

	t.Run("OrderAndFilter", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SaveTransaction(ctx, Transaction("JV-2025-02-001", Date(2025, 2, 1), 1101, 4101, "3")))
		require.NoError(t, s.SaveTransaction(ctx, Transaction("JV-2025-01-002", Date(2025, 1, 20), 1101, 4101, "2")))
		require.NoError(t, s.SaveTransaction(ctx, Transaction("JV-2025-01-001", Date(2025, 1, 20), 1101, 4101, "1")))
		draft := Transaction("JV-2025-03-001", Date(2025, 3, 1), 1101, 4101, "4")
		draft.Status = model.StatusDraft
		require.NoError(t, s.SaveTransaction(ctx, draft))

		all, err := s.ListTransactions(ctx, storage.Filter{})
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, "JV-2025-01-001", all[0].LedgerNumber)
		assert.Equal(t, "JV-2025-01-002", all[1].LedgerNumber)
		assert.Equal(t, "JV-2025-02-001", all[2].LedgerNumber)

		jan, err := s.ListTransactions(ctx, storage.Filter{From: Date(2025, 1, 1), To: Date(2025, 1, 31)})
		require.NoError(t, err)
		assert.Len(t, jan, 2)

		posted, err := s.ListTransactions(ctx, storage.Filter{Status: model.StatusPosted})
		require.NoError(t, err)
		assert.Len(t, posted, 3)

		upTo, err := s.ListTransactions(ctx, storage.Filter{To: Date(2025, 2, 1)})
		require.NoError(t, err)
		assert.Len(t, upTo, 3, "To is inclusive")
	})

	t.Run("NextSequence", func(t *testing.T) {
		s := newStore(t)
		seq, err := s.NextSequence(ctx, "JV", 2025, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, seq)

		require.NoError(t, s.SaveTransaction(ctx, Transaction("JV-2025-01-001", Date(2025, 1, 2), 1101, 4101, "1")))
		require.NoError(t, s.SaveTransaction(ctx, Transaction("JV-2025-01-007", Date(2025, 1, 3), 1101, 4101, "1")))
		require.NoError(t, s.SaveTransaction(ctx, Transaction("OB-2025-01-001", Date(2025, 1, 1), 1101, 3901, "1")))

		seq, err = s.NextSequence(ctx, "JV", 2025, 1)
		require.NoError(t, err)
		assert.Equal(t, 8, seq)

		seq, err = s.NextSequence(ctx, "OB", 2025, 1)
		require.NoError(t, err)
		assert.Equal(t, 2, seq)

		seq, err = s.NextSequence(ctx, "JV", 2025, 2)
		require.NoError(t, err)
		assert.Equal(t, 1, seq)
	})
}
