// Package postgres is a storage.LedgerStore backed by PostgreSQL via lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/cleared-dev/erpledger/internal/id"
	"github.com/cleared-dev/erpledger/internal/model"
	"github.com/cleared-dev/erpledger/internal/money"
	"github.com/cleared-dev/erpledger/internal/storage"
)

const uniqueViolation = pq.ErrorCode("23505")

// openingBalanceIndex is the partial unique index declared in Schema.
const openingBalanceIndex = "idx_ledger_transactions_one_opening_balance"

// Store persists transactions in PostgreSQL.
type Store struct {
	db *sql.DB
}

// Open connects to dsn, verifies the connection and applies Schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an existing connection pool. The schema must already exist.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// SaveTransaction inserts the header and lines in one database transaction.
func (p *Store) SaveTransaction(ctx context.Context, tx model.LedgerTransaction) (err error) {
	dbTx, err := p.db.BeginTx(ctx, nil)
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
		VALUES ($1, $2, $3, $4, $5, $6)`,
		tx.ID, tx.LedgerNumber, storage.DateOnly(tx.TransactionDate),
		string(tx.ReferenceType), string(tx.Status), tx.Description,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			if pqErr.Constraint == openingBalanceIndex {
				return fmt.Errorf("%w: %s", storage.ErrDuplicateOpeningBalance, tx.LedgerNumber)
			}
			return fmt.Errorf("%w: %s", storage.ErrDuplicateLedgerNumber, tx.LedgerNumber)
		}
		return fmt.Errorf("inserting transaction %s: %w", tx.LedgerNumber, err)
	}

	stmt, err := dbTx.PrepareContext(ctx, `
		INSERT INTO ledger_lines
		(transaction_id, line_no, account_id, debit, credit, description, reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`)
	if err != nil {
		return fmt.Errorf("preparing line insert: %w", err)
	}
	defer stmt.Close()

	for i, l := range tx.Lines {
		if _, err = stmt.ExecContext(ctx, tx.ID, i+1, l.AccountID, l.Debit.Minor(), l.Credit.Minor(), l.Description, l.Reference); err != nil {
			return fmt.Errorf("inserting line %d of %s: %w", i+1, tx.LedgerNumber, err)
		}
	}

	if err = dbTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListTransactions loads matching transactions with their lines.
func (p *Store) ListTransactions(ctx context.Context, f storage.Filter) ([]model.LedgerTransaction, error) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if !f.From.IsZero() {
		where = append(where, "t.transaction_date >= "+arg(storage.DateOnly(f.From)))
	}
	if !f.To.IsZero() {
		where = append(where, "t.transaction_date <= "+arg(storage.DateOnly(f.To)))
	}
	if f.Status != "" {
		where = append(where, "t.status = "+arg(string(f.Status)))
	}
	if f.ReferenceType != "" {
		where = append(where, "t.reference_type = "+arg(string(f.ReferenceType)))
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

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	c := storage.NewCollector()
	for rows.Next() {
		var (
			tx                       model.LedgerTransaction
			date                     time.Time
			refType, status          string
			accountID, debit, credit sql.NullInt64
			lineDesc, lineRef        sql.NullString
		)
		if err := rows.Scan(&tx.ID, &tx.LedgerNumber, &date, &refType, &status, &tx.Description,
			&accountID, &debit, &credit, &lineDesc, &lineRef); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		tx.TransactionDate = storage.DateOnly(date)
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
func (p *Store) NextSequence(ctx context.Context, prefix string, year, month int) (int, error) {
	pattern := fmt.Sprintf("%s-%04d-%02d-%%", prefix, year, month)
	rows, err := p.db.QueryContext(ctx, `SELECT ledger_number FROM ledger_transactions WHERE ledger_number LIKE $1`, pattern)
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
		if _, _, _, seq, err := id.ParseLedgerNumber(number); err == nil && seq > maxSeq {
			maxSeq = seq
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterating ledger numbers: %w", err)
	}
	return maxSeq + 1, nil
}

// Close closes the connection pool.
func (p *Store) Close() error {
	return p.db.Close()
}

var _ storage.LedgerStore = (*Store)(nil)
