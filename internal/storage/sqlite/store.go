// Package sqlite is a storage.LedgerStore backed by a SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/cleared-dev/erpledger/internal/id"
	"github.com/cleared-dev/erpledger/internal/model"
	"github.com/cleared-dev/erpledger/internal/money"
	"github.com/cleared-dev/erpledger/internal/storage"
)

const dateFormat = "2006-01-02"

// Store persists transactions in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies Schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	// A single connection serializes writers and keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Store{db: db}, nil
}

// SaveTransaction inserts the header and lines in one database transaction.
func (s *Store) SaveTransaction(ctx context.Context, tx model.LedgerTransaction) (err error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = dbTx.Rollback()
		}
	}()

	_, err = dbTx.ExecContext(ctx, `
		INSERT INTO ledger_transactions
		(id, ledger_number, transaction_date, reference_type, status, description)
		VALUES (?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.LedgerNumber, tx.TransactionDate.Format(dateFormat),
		string(tx.ReferenceType), string(tx.Status), tx.Description,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			if strings.Contains(sqliteErr.Error(), "ledger_transactions.reference_type") {
				return fmt.Errorf("%w: %s", storage.ErrDuplicateOpeningBalance, tx.LedgerNumber)
			}
			return fmt.Errorf("%w: %s", storage.ErrDuplicateLedgerNumber, tx.LedgerNumber)
		}
		return fmt.Errorf("inserting transaction %s: %w", tx.LedgerNumber, err)
	}

	for i, l := range tx.Lines {
		_, err = dbTx.ExecContext(ctx, `
			INSERT INTO ledger_lines
			(transaction_id, line_no, account_id, debit, credit, description, reference)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			tx.ID, i+1, l.AccountID, l.Debit.Minor(), l.Credit.Minor(), l.Description, l.Reference,
		)
		if err != nil {
			return fmt.Errorf("inserting line %d of %s: %w", i+1, tx.LedgerNumber, err)
		}
	}

	if err = dbTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListTransactions loads matching transactions with their lines.
func (s *Store) ListTransactions(ctx context.Context, f storage.Filter) ([]model.LedgerTransaction, error) {
	var where []string
	var args []any
	if !f.From.IsZero() {
		where = append(where, "t.transaction_date >= ?")
		args = append(args, f.From.Format(dateFormat))
	}
	if !f.To.IsZero() {
		where = append(where, "t.transaction_date <= ?")
		args = append(args, f.To.Format(dateFormat))
	}
	if f.Status != "" {
		where = append(where, "t.status = ?")
		args = append(args, string(f.Status))
	}
	if f.ReferenceType != "" {
		where = append(where, "t.reference_type = ?")
		args = append(args, string(f.ReferenceType))
	}

	query := `
		SELECT t.id, t.ledger_number, t.transaction_date, t.reference_type, t.status, t.description,
		       l.account_id, l.debit, l.credit, l.description, l.reference
		FROM ledger_transactions t
		LEFT JOIN ledger_lines l ON l.transaction_id = t.id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY t.transaction_date, t.ledger_number, l.line_no"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	c := storage.NewCollector()
	for rows.Next() {
		var (
			tx                       model.LedgerTransaction
			date, refType, status    string
			accountID, debit, credit sql.NullInt64
			lineDesc, lineRef        sql.NullString
		)
		if err := rows.Scan(&tx.ID, &tx.LedgerNumber, &date, &refType, &status, &tx.Description,
			&accountID, &debit, &credit, &lineDesc, &lineRef); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		tx.TransactionDate, err = time.Parse(dateFormat, date)
		if err != nil {
			return nil, fmt.Errorf("parsing date %q of %s: %w", date, tx.LedgerNumber, err)
		}
		tx.ReferenceType = model.ReferenceType(refType)
		tx.Status = model.EntryStatus(status)

		var line *model.LedgerLine
		if accountID.Valid {
			line = &model.LedgerLine{
				AccountID:   int(accountID.Int64),
				Debit:       money.FromMinor(debit.Int64),
				Credit:      money.FromMinor(credit.Int64),
				Description: lineDesc.String,
				Reference:   lineRef.String,
			}
		}
		c.Add(tx, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}
	// ledger_number sorts as text in SQL; re-sort on the numeric sequence.
	txs := c.Transactions()
	storage.SortTransactions(txs)
	return txs, nil
}

// NextSequence returns one past the highest sequence used for prefix/year/month.
func (s *Store) NextSequence(ctx context.Context, prefix string, year, month int) (int, error) {
	pattern := fmt.Sprintf("%s-%04d-%02d-%%", prefix, year, month)
	rows, err := s.db.QueryContext(ctx, `SELECT ledger_number FROM ledger_transactions WHERE ledger_number LIKE ?`, pattern)
	if err != nil {
		return 0, fmt.Errorf("querying ledger numbers: %w", err)
	}
	defer rows.Close()

	maxSeq := 0
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return 0, fmt.Errorf("scanning ledger number: %w", err)
		}
		_, _, _, seq, err := id.ParseLedgerNumber(number)
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterating ledger numbers: %w", err)
	}
	return maxSeq + 1, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ storage.LedgerStore = (*Store)(nil)
