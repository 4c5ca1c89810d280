package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/erpledger/internal/buildinfo"
)

const dateLayout = "2006-01-02"

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var repo string

	rootCmd := &cobra.Command{
		Use:     "erpledger",
		Short:   "Double-entry ledger with balance sheet reporting",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&repo, "repo", ".", "ledger book directory")

	rootCmd.AddCommand(
		newInitCommand(),
		newValidateCommand(&repo),
		newPostCommand(&repo),
		newOpeningBalanceCommand(&repo),
		newReportCommand(&repo),
		newVerifyCommand(&repo),
		newServeCommand(&repo),
	)

	return rootCmd
}

func parseDate(flag, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s must be formatted YYYY-MM-DD, got %q", flag, value)
	}
	return t, nil
}

// parseOptionalDate treats an empty value as no bound.
func parseOptionalDate(flag, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return parseDate(flag, value)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
