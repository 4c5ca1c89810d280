package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cleared-dev/erpledger/internal/model"
	"github.com/cleared-dev/erpledger/internal/money"
)

// Header is the CSV header for journal.csv.
const Header = "ledger_number,transaction_id,date,reference_type,status,tx_description,line_no,account_id,debit,credit,description,reference"

const (
	numFields  = 12
	dateFormat = "2006-01-02"
	colNumber  = 0
	colTxID    = 1
	colDate    = 2
	colRefType = 3
	colStatus  = 4
	colTxDesc  = 5
	colLineNo  = 6
	colAcctID  = 7
	colDebit   = 8
	colCredit  = 9
	colDesc    = 10
	colRef     = 11
)

// ReadTransactions reads all transactions from a journal.csv reader. Rows of
// one transaction are contiguous; a row with an empty account_id carries a
// transaction without lines.
func ReadTransactions(r io.Reader) ([]model.LedgerTransaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var txs []model.LedgerTransaction
	for i, rec := range records[1:] {
		tx, line, err := UnmarshalRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if n := len(txs); n == 0 || txs[n-1].ID != tx.ID {
			tx.Lines = []model.LedgerLine{}
			txs = append(txs, tx)
		}
		if line != nil {
			last := &txs[len(txs)-1]
			last.Lines = append(last.Lines, *line)
		}
	}
	return txs, nil
}

// WriteTransactions writes transactions to a journal.csv writer (including header).
func WriteTransactions(w io.Writer, txs []model.LedgerTransaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := writeRows(cw, txs); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// AppendTransactions appends transactions to an existing journal.csv writer (no header).
func AppendTransactions(w io.Writer, txs []model.LedgerTransaction) error {
	cw := csv.NewWriter(w)
	if err := writeRows(cw, txs); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func writeRows(cw *csv.Writer, txs []model.LedgerTransaction) error {
	for _, tx := range txs {
		for _, row := range MarshalTransaction(tx) {
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("writing %s: %w", tx.LedgerNumber, err)
			}
		}
	}
	return nil
}

// MarshalTransaction converts a transaction to its CSV rows, one per line.
func MarshalTransaction(tx model.LedgerTransaction) [][]string {
	header := func() []string {
		row := make([]string, numFields)
		row[colNumber] = tx.LedgerNumber
		row[colTxID] = tx.ID
		row[colDate] = tx.TransactionDate.Format(dateFormat)
		row[colRefType] = string(tx.ReferenceType)
		row[colStatus] = string(tx.Status)
		row[colTxDesc] = tx.Description
		return row
	}

	if len(tx.Lines) == 0 {
		return [][]string{header()}
	}

	rows := make([][]string, 0, len(tx.Lines))
	for i, l := range tx.Lines {
		row := header()
		row[colLineNo] = strconv.Itoa(i + 1)
		row[colAcctID] = strconv.Itoa(l.AccountID)
		if !l.Debit.IsZero() {
			row[colDebit] = l.Debit.String()
		}
		if !l.Credit.IsZero() {
			row[colCredit] = l.Credit.String()
		}
		row[colDesc] = l.Description
		row[colRef] = l.Reference
		rows = append(rows, row)
	}
	return rows
}

// UnmarshalRow converts a CSV row to its transaction header and, if present, its line.
func UnmarshalRow(record []string) (model.LedgerTransaction, *model.LedgerLine, error) {
	if len(record) != numFields {
		return model.LedgerTransaction{}, nil, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return model.LedgerTransaction{}, nil, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	tx := model.LedgerTransaction{
		ID:              record[colTxID],
		LedgerNumber:    record[colNumber],
		TransactionDate: date,
		ReferenceType:   model.ReferenceType(record[colRefType]),
		Status:          model.EntryStatus(record[colStatus]),
		Description:     record[colTxDesc],
	}
	if tx.ID == "" {
		tx.ID = tx.LedgerNumber
	}

	if record[colAcctID] == "" {
		return tx, nil, nil
	}

	accountID, err := strconv.Atoi(record[colAcctID])
	if err != nil {
		return model.LedgerTransaction{}, nil, fmt.Errorf("parsing account_id %q: %w", record[colAcctID], err)
	}

	debit, err := money.Parse(record[colDebit])
	if err != nil {
		return model.LedgerTransaction{}, nil, fmt.Errorf("parsing debit: %w", err)
	}

	credit, err := money.Parse(record[colCredit])
	if err != nil {
		return model.LedgerTransaction{}, nil, fmt.Errorf("parsing credit: %w", err)
	}

	return tx, &model.LedgerLine{
		AccountID:   accountID,
		Debit:       debit,
		Credit:      credit,
		Description: record[colDesc],
		Reference:   record[colRef],
	}, nil
}
