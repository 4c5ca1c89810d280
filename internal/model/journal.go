package model

import (
	"time"

	"github.com/cleared-dev/erpledger/internal/money"
)

// EntryStatus represents the lifecycle state of a ledger transaction.
type EntryStatus string

const (
	StatusDraft  EntryStatus = "draft"
	StatusPosted EntryStatus = "posted"
)

// ReferenceType identifies the document that produced a ledger transaction.
type ReferenceType string

const (
	RefJournal        ReferenceType = "journal"
	RefOpeningBalance ReferenceType = "opening_balance"
	RefAdjustment     ReferenceType = "adjustment"
	RefClosing        ReferenceType = "closing"
)

// NumberPrefix returns the ledger number prefix for the reference type.
func (r ReferenceType) NumberPrefix() string {
	switch r {
	case RefOpeningBalance:
		return "OB"
	case RefAdjustment:
		return "AJ"
	case RefClosing:
		return "CL"
	default:
		return "JV"
	}
}

// Valid reports whether r is a known reference type.
func (r ReferenceType) Valid() bool {
	switch r {
	case RefJournal, RefOpeningBalance, RefAdjustment, RefClosing:
		return true
	}
	return false
}

// LedgerLine is one debit or credit against a single account.
type LedgerLine struct {
	AccountID   int          `json:"accountId"`
	Debit       money.Amount `json:"debit"`
	Credit      money.Amount `json:"credit"`
	Description string       `json:"description,omitempty"`
	Reference   string       `json:"reference,omitempty"`
}

// LedgerTransaction is a journal entry: an ordered set of lines that should balance.
type LedgerTransaction struct {
	ID              string        `json:"id"`
	LedgerNumber    string        `json:"ledgerNumber"`
	TransactionDate time.Time     `json:"transactionDate"`
	ReferenceType   ReferenceType `json:"referenceType"`
	Status          EntryStatus   `json:"status"`
	Description     string        `json:"description,omitempty"`
	Lines           []LedgerLine  `json:"lines"`
}

// Posted reports whether the transaction counts toward reports.
func (t LedgerTransaction) Posted() bool {
	return t.Status == StatusPosted
}

// AccountBalance is a classified, natural-sign balance fed to report builders.
type AccountBalance struct {
	AccountID      int            `json:"accountId"`
	Code           string         `json:"code"`
	Name           string         `json:"name"`
	Type           AccountType    `json:"type"`
	Classification Classification `json:"classification"`
	Amount         money.Amount   `json:"amount"`
}
