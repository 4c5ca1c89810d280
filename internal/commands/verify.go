package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/erpledger/internal/journal"
)

func newVerifyCommand(repo *string) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check every journal file of a CSV book for integrity errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := openBook(cmd.Context(), *repo)
			if err != nil {
				return err
			}
			defer b.Close()

			jb, ok := b.store.(*journal.Book)
			if !ok {
				return fmt.Errorf("verify needs the csv storage driver, book uses %q", b.cfg.Storage.Driver)
			}

			errs, err := jb.Verify(b.chart)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range errs {
				fmt.Fprintln(out, e.Error())
			}
			if len(errs) > 0 {
				return fmt.Errorf("%w: %d integrity error(s)", errCheckFailed, len(errs))
			}
			fmt.Fprintln(out, "ok")
			return nil
		},
	}
}
