package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newReportCommand(repo *string) *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Print ledger reports as JSON",
	}

	reportCmd.AddCommand(
		newBalanceSheetCommand(repo),
		newGeneralLedgerCommand(repo),
		newTrialBalanceCommand(repo),
		newStatementCommand(repo),
	)
	return reportCmd
}

func newBalanceSheetCommand(repo *string) *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "balance-sheet",
		Short: "Balance sheet as of a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := parseDate("as-of", asOf)
			if err != nil {
				return err
			}
			b, err := openBook(cmd.Context(), *repo)
			if err != nil {
				return err
			}
			defer b.Close()

			snap, err := b.reporting.BalanceSheet(cmd.Context(), d)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), snap)
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", time.Now().Format(dateLayout), "report date, YYYY-MM-DD")
	return cmd
}

func newTrialBalanceCommand(repo *string) *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "trial-balance",
		Short: "Trial balance as of a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := parseDate("as-of", asOf)
			if err != nil {
				return err
			}
			b, err := openBook(cmd.Context(), *repo)
			if err != nil {
				return err
			}
			defer b.Close()

			tb, err := b.reporting.TrialBalance(cmd.Context(), d)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tb)
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", time.Now().Format(dateLayout), "report date, YYYY-MM-DD")
	return cmd
}

func newGeneralLedgerCommand(repo *string) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "general-ledger",
		Short: "Per-transaction totals for a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := parseOptionalDate("from", from)
			if err != nil {
				return err
			}
			t, err := parseOptionalDate("to", to)
			if err != nil {
				return err
			}
			b, err := openBook(cmd.Context(), *repo)
			if err != nil {
				return err
			}
			defer b.Close()

			agg, err := b.reporting.GeneralLedger(cmd.Context(), f, t)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), agg)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first date, YYYY-MM-DD (default: no bound)")
	cmd.Flags().StringVar(&to, "to", "", "last date, YYYY-MM-DD (default: no bound)")
	return cmd
}

func newStatementCommand(repo *string) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "statement <account-id>",
		Short: "Running-balance statement for one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("account id must be an integer, got %q", args[0])
			}
			f, err := parseOptionalDate("from", from)
			if err != nil {
				return err
			}
			t, err := parseOptionalDate("to", to)
			if err != nil {
				return err
			}
			b, err := openBook(cmd.Context(), *repo)
			if err != nil {
				return err
			}
			defer b.Close()

			st, err := b.reporting.AccountStatement(cmd.Context(), accountID, f, t)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), st)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first date, YYYY-MM-DD (default: no bound)")
	cmd.Flags().StringVar(&to, "to", "", "last date, YYYY-MM-DD (default: no bound)")
	return cmd
}
