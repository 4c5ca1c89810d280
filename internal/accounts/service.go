// Package accounts loads and indexes the chart of accounts of a ledger book.
package accounts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cleared-dev/erpledger/internal/model"
)

// ChartPath is the chart of accounts location relative to a book root.
var ChartPath = filepath.Join("accounts", "chart-of-accounts.csv")

// ErrInvalidChart wraps every chart integrity failure.
var ErrInvalidChart = errors.New("invalid chart of accounts")

// Service provides in-memory lookup over the chart of accounts.
type Service struct {
	accounts []model.Account
	byID     map[int]model.Account
	byCode   map[string]model.Account
}

// NewService indexes accounts. Later duplicates shadow earlier ones; use
// Check to reject such charts.
func NewService(accounts []model.Account) *Service {
	s := &Service{
		accounts: accounts,
		byID:     make(map[int]model.Account, len(accounts)),
		byCode:   make(map[string]model.Account, len(accounts)),
	}
	for _, a := range accounts {
		s.byID[a.ID] = a
		if a.Code != "" {
			s.byCode[a.Code] = a
		}
	}
	return s
}

// Load reads and checks accounts/chart-of-accounts.csv under root.
func Load(root string) (*Service, error) {
	f, err := os.Open(filepath.Join(root, ChartPath))
	if err != nil {
		return nil, fmt.Errorf("opening chart of accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading chart of accounts: %w", err)
	}
	if err := Check(accts); err != nil {
		return nil, err
	}
	return NewService(accts), nil
}

// Check reports duplicate IDs or codes and parents that are missing or of a
// different account type. All problems are joined into one error.
func Check(accts []model.Account) error {
	ids := make(map[int]model.Account, len(accts))
	codes := make(map[string]int, len(accts))
	var errs []error
	for _, a := range accts {
		if _, dup := ids[a.ID]; dup {
			errs = append(errs, fmt.Errorf("%w: duplicate account_id %d", ErrInvalidChart, a.ID))
		}
		ids[a.ID] = a
		if a.Code == "" {
			continue
		}
		if other, dup := codes[a.Code]; dup {
			errs = append(errs, fmt.Errorf("%w: code %q used by %d and %d", ErrInvalidChart, a.Code, other, a.ID))
		}
		codes[a.Code] = a.ID
	}
	for _, a := range accts {
		if a.ParentID == 0 {
			continue
		}
		parent, ok := ids[a.ParentID]
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("%w: account %d has unknown parent %d", ErrInvalidChart, a.ID, a.ParentID))
		case parent.ID == a.ID:
			errs = append(errs, fmt.Errorf("%w: account %d is its own parent", ErrInvalidChart, a.ID))
		case parent.Type != a.Type:
			errs = append(errs, fmt.Errorf("%w: account %d (%s) under parent %d (%s)", ErrInvalidChart, a.ID, a.Type, parent.ID, parent.Type))
		}
	}
	return errors.Join(errs...)
}

// All returns all accounts in chart order.
func (s *Service) All() []model.Account {
	return s.accounts
}

// Get returns an account by ID.
func (s *Service) Get(id int) (model.Account, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// GetByCode returns an account by its display code.
func (s *Service) GetByCode(code string) (model.Account, bool) {
	a, ok := s.byCode[code]
	return a, ok
}

// Exists reports whether an account ID exists.
func (s *Service) Exists(id int) bool {
	_, ok := s.byID[id]
	return ok
}

// Save writes the chart of accounts to accounts/chart-of-accounts.csv.
func (s *Service) Save(root string) error {
	if err := os.MkdirAll(filepath.Join(root, "accounts"), 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	f, err := os.Create(filepath.Join(root, ChartPath))
	if err != nil {
		return fmt.Errorf("creating chart of accounts file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, s.accounts); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}
	return f.Close()
}
