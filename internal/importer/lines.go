package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cleared-dev/erpledger/internal/model"
	"github.com/cleared-dev/erpledger/internal/money"
)

// LinesHeader is the header of the "lines" format.
var LinesHeader = []string{"account_id", "debit", "credit", "description", "reference"}

// OpeningBalanceHeader is the header of the "opening-balance" format.
var OpeningBalanceHeader = []string{"account_code", "debit", "credit", "description"}

// LinesParser reads account_id,debit,credit,description,reference rows.
type LinesParser struct{}

// Format returns the parser name.
func (p *LinesParser) Format() string { return "lines" }

// Parse reads ledger lines. Empty debit or credit cells mean zero.
func (p *LinesParser) Parse(r io.Reader) ([]model.LedgerLine, error) {
	return readRows(r, LinesHeader, func(rec []string) (model.LedgerLine, error) {
		accountID, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			return model.LedgerLine{}, fmt.Errorf("parsing account_id %q: %w", rec[0], err)
		}
		l, err := amounts(rec[1], rec[2])
		if err != nil {
			return model.LedgerLine{}, err
		}
		l.AccountID = accountID
		l.Description = rec[3]
		l.Reference = rec[4]
		return l, nil
	})
}

// CodeResolver looks accounts up by code or ID.
type CodeResolver interface {
	GetByCode(code string) (model.Account, bool)
	Get(id int) (model.Account, bool)
}

// OpeningBalanceParser reads account_code,debit,credit,description rows and
// resolves each code through the chart. A bare account ID is accepted too.
type OpeningBalanceParser struct {
	Chart CodeResolver
}

// Format returns the parser name.
func (p *OpeningBalanceParser) Format() string { return "opening-balance" }

// Parse reads opening balance lines.
func (p *OpeningBalanceParser) Parse(r io.Reader) ([]model.LedgerLine, error) {
	return readRows(r, OpeningBalanceHeader, func(rec []string) (model.LedgerLine, error) {
		acct, err := p.resolve(strings.TrimSpace(rec[0]))
		if err != nil {
			return model.LedgerLine{}, err
		}
		l, err := amounts(rec[1], rec[2])
		if err != nil {
			return model.LedgerLine{}, err
		}
		l.AccountID = acct.ID
		l.Description = rec[3]
		return l, nil
	})
}

func (p *OpeningBalanceParser) resolve(code string) (model.Account, error) {
	if p.Chart == nil {
		return model.Account{}, fmt.Errorf("no chart of accounts to resolve %q", code)
	}
	if acct, ok := p.Chart.GetByCode(code); ok {
		return acct, nil
	}
	if n, err := strconv.Atoi(code); err == nil {
		if acct, ok := p.Chart.Get(n); ok {
			return acct, nil
		}
	}
	return model.Account{}, fmt.Errorf("unknown account code %q", code)
}

func amounts(debit, credit string) (model.LedgerLine, error) {
	d, err := money.Parse(debit)
	if err != nil {
		return model.LedgerLine{}, fmt.Errorf("debit: %w", err)
	}
	c, err := money.Parse(credit)
	if err != nil {
		return model.LedgerLine{}, fmt.Errorf("credit: %w", err)
	}
	return model.LedgerLine{Debit: d, Credit: c}, nil
}

func readRows(r io.Reader, header []string, parse func([]string) (model.LedgerLine, error)) ([]model.LedgerLine, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	for i, col := range header {
		if !strings.EqualFold(strings.TrimSpace(records[0][i]), col) {
			return nil, fmt.Errorf("unexpected header %q, want %q", strings.Join(records[0], ","), strings.Join(header, ","))
		}
	}

	lines := make([]model.LedgerLine, 0, len(records)-1)
	for i, rec := range records[1:] {
		l, err := parse(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		lines = append(lines, l)
	}
	return lines, nil
}
