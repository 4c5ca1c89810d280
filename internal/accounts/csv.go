package accounts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cleared-dev/erpledger/internal/model"
)

// Header is the column order written to chart-of-accounts.csv. Readers match
// columns by name, so hand-edited charts may reorder or omit optional ones.
var Header = []string{"account_id", "code", "account_name", "account_type", "classification", "parent_id", "description"}

var requiredColumns = []string{"account_id", "account_name", "account_type"}

// columns maps a header name to its index in the row.
type columns map[string]int

func indexHeader(header []string) (columns, error) {
	cols := make(columns, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := cols[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		cols[name] = i
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing column(s) %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func (c columns) get(record []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// ReadAccounts reads chart-of-accounts.csv.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}
	cols, err := indexHeader(header)
	if err != nil {
		return nil, fmt.Errorf("accounts CSV header: %w", err)
	}
	cr.FieldsPerRecord = len(header)

	var accounts []model.Account
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		acct, err := cols.account(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes chart-of-accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a row in Header order.
func MarshalAccount(acct model.Account) []string {
	parent := ""
	if acct.ParentID != 0 {
		parent = strconv.Itoa(acct.ParentID)
	}
	return []string{
		strconv.Itoa(acct.ID),
		acct.Code,
		acct.Name,
		string(acct.Type),
		string(acct.Classification),
		parent,
		acct.Description,
	}
}

// UnmarshalAccount converts a row in Header order to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != len(Header) {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", len(Header), len(record))
	}
	cols, _ := indexHeader(Header)
	return cols.account(record)
}

func (c columns) account(record []string) (model.Account, error) {
	rawID := c.get(record, "account_id")
	id, err := strconv.Atoi(rawID)
	if err != nil || id <= 0 {
		return model.Account{}, fmt.Errorf("account_id must be a positive integer, got %q", rawID)
	}

	acctType := model.AccountType(strings.ToLower(c.get(record, "account_type")))
	switch acctType {
	case model.AccountTypeAsset, model.AccountTypeLiability, model.AccountTypeEquity,
		model.AccountTypeRevenue, model.AccountTypeExpense:
	default:
		return model.Account{}, fmt.Errorf("unknown account_type %q", c.get(record, "account_type"))
	}

	name := c.get(record, "account_name")
	if name == "" {
		return model.Account{}, fmt.Errorf("account %d has no account_name", id)
	}

	var parentID int
	if raw := c.get(record, "parent_id"); raw != "" {
		parentID, err = strconv.Atoi(raw)
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing parent_id %q: %w", raw, err)
		}
	}

	return model.Account{
		ID:             id,
		Code:           c.get(record, "code"),
		Name:           name,
		Type:           acctType,
		Classification: model.Classification(strings.ToLower(c.get(record, "classification"))),
		ParentID:       parentID,
		Description:    c.get(record, "description"),
	}, nil
}
