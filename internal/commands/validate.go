package commands

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/erpledger/internal/accounts"
	"github.com/cleared-dev/erpledger/internal/importer"
	"github.com/cleared-dev/erpledger/internal/ledger"
)

// errCheckFailed makes the process exit non-zero after the report is printed.
var errCheckFailed = errors.New("check failed")

type validateOutput struct {
	ledger.Result
	Issues []ledger.Issue `json:"issues"`
}

func newValidateCommand(repo *string) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check that a line file balances and references known accounts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(*repo)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			chart, err := accounts.Load(root)
			if err != nil {
				return err
			}

			lines, err := importer.DefaultRegistry(chart).ParseFile(format, args[0])
			if err != nil {
				return err
			}

			out := validateOutput{Result: ledger.Validate(lines), Issues: ledger.CheckLines(lines, chart)}
			if out.Issues == nil {
				out.Issues = []ledger.Issue{}
			}
			if err := printJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if !out.IsBalanced || len(out.Issues) > 0 {
				return fmt.Errorf("%w: balanced=%t, %d issue(s)", errCheckFailed, out.IsBalanced, len(out.Issues))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "lines", "input format (lines or opening-balance)")

	return cmd
}
