// Package id formats ledger numbers and generates record identifiers.
package id

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var (
	eventMu      sync.Mutex
	eventEntropy = ulid.Monotonic(rand.Reader, 0)
)

// FormatLedgerNumber returns a ledger number like "JV-2025-01-001".
func FormatLedgerNumber(prefix string, year, month, seq int) string {
	return fmt.Sprintf("%s-%04d-%02d-%03d", prefix, year, month, seq)
}

// ParseLedgerNumber parses "JV-2025-01-001" into prefix, year, month, seq.
func ParseLedgerNumber(number string) (prefix string, year, month, seq int, err error) {
	parts := strings.Split(number, "-")
	if len(parts) != 4 || parts[0] == "" {
		return "", 0, 0, 0, fmt.Errorf("invalid ledger number format: %q", number)
	}
	prefix = parts[0]

	year, err = strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, 0, fmt.Errorf("invalid year in ledger number %q: %w", number, err)
	}

	month, err = strconv.Atoi(parts[2])
	if err != nil || month < 1 || month > 12 {
		return "", 0, 0, 0, fmt.Errorf("invalid month in ledger number %q", number)
	}

	seq, err = strconv.Atoi(parts[3])
	if err != nil {
		return "", 0, 0, 0, fmt.Errorf("invalid sequence in ledger number %q: %w", number, err)
	}

	return prefix, year, month, seq, nil
}

// NewTransactionID returns a random transaction identifier.
func NewTransactionID() string {
	return uuid.NewString()
}

// NewEventID returns a ULID. IDs from one process sort by creation time,
// including several generated within the same millisecond.
func NewEventID(now time.Time) string {
	eventMu.Lock()
	defer eventMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), eventEntropy).String()
}
