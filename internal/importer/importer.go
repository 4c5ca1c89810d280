// Package importer reads ledger lines from CSV files.
package importer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cleared-dev/erpledger/internal/model"
)

// ErrUnknownFormat is returned by Registry.Parse for an unregistered format.
var ErrUnknownFormat = errors.New("unknown import format")

// Parser converts a CSV file into ledger lines.
type Parser interface {
	Parse(r io.Reader) ([]model.LedgerLine, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// Formats lists the registered formats in sorted order.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.parsers))
	for k := range r.parsers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ParseFile opens path and parses it with the parser registered for format.
func (r *Registry) ParseFile(format, path string) ([]model.LedgerLine, error) {
	p := r.Get(format)
	if p == nil {
		return nil, fmt.Errorf("%w %q (have %s)", ErrUnknownFormat, format, strings.Join(r.Formats(), ", "))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	lines, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return lines, nil
}

// DefaultRegistry returns a registry with all built-in parsers. chart
// resolves account codes for the opening-balance format.
func DefaultRegistry(chart CodeResolver) *Registry {
	r := NewRegistry()
	r.Register(&LinesParser{})
	r.Register(&OpeningBalanceParser{Chart: chart})
	return r
}

// importDir is the subdirectory for files waiting to be posted.
const importDir = "import"

// processedDir is the subdirectory for posted files.
const processedDir = "import/processed"

// InImportDir reports whether path is a file directly inside <repoRoot>/import/.
func InImportDir(repoRoot, path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	root, err := filepath.Abs(filepath.Join(repoRoot, importDir))
	if err != nil {
		return false
	}
	return filepath.Dir(abs) == root
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(repoRoot, fileName string) error {
	src := filepath.Join(repoRoot, importDir, fileName)
	dstDir := filepath.Join(repoRoot, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
