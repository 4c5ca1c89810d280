package commands

import (
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cleared-dev/erpledger/internal/importer"
	"github.com/cleared-dev/erpledger/internal/ledger"
	"github.com/cleared-dev/erpledger/internal/model"
	"github.com/cleared-dev/erpledger/internal/posting"
)

type postOutput struct {
	Transaction model.LedgerTransaction `json:"transaction"`
	Result      ledger.Result           `json:"result"`
}

func newPostCommand(repo *string) *cobra.Command {
	var (
		date        string
		refType     string
		description string
		format      string
		draft       bool
	)

	cmd := &cobra.Command{
		Use:   "post <file>",
		Short: "Post the lines in a file as one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDate("date", date)
			if err != nil {
				return err
			}
			b, err := openBook(cmd.Context(), *repo)
			if err != nil {
				return err
			}
			defer b.Close()

			lines, err := b.importers.ParseFile(format, args[0])
			if err != nil {
				return err
			}

			tx, result, err := b.posting.Post(cmd.Context(), posting.Request{
				Date:          d,
				ReferenceType: model.ReferenceType(refType),
				Description:   description,
				Lines:         lines,
				Draft:         draft,
				Actor:         "cli",
			})
			return finishPost(cmd, b, args[0], tx, result, err)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "transaction date, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("date")
	cmd.Flags().StringVar(&refType, "type", string(model.RefJournal), "reference type (journal, adjustment, closing)")
	cmd.Flags().StringVar(&description, "description", "", "transaction description")
	cmd.Flags().StringVar(&format, "format", "lines", "input format")
	cmd.Flags().BoolVar(&draft, "draft", false, "save as draft; drafts may be unbalanced")

	return cmd
}

func newOpeningBalanceCommand(repo *string) *cobra.Command {
	var (
		date  string
		draft bool
	)

	cmd := &cobra.Command{
		Use:   "opening-balance <file>",
		Short: "Post the book's opening balance from an account_code,debit,credit file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDate("date", date)
			if err != nil {
				return err
			}
			b, err := openBook(cmd.Context(), *repo)
			if err != nil {
				return err
			}
			defer b.Close()

			lines, err := b.importers.ParseFile("opening-balance", args[0])
			if err != nil {
				return err
			}

			tx, result, err := b.posting.OpeningBalance(cmd.Context(), d, lines, draft, "cli")
			return finishPost(cmd, b, args[0], tx, result, err)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "opening balance date, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("date")
	cmd.Flags().BoolVar(&draft, "draft", false, "save as draft")

	return cmd
}

// finishPost prints the outcome and moves a file posted from import/ to
// import/processed/.
func finishPost(cmd *cobra.Command, b *book, file string, tx model.LedgerTransaction, result ledger.Result, err error) error {
	if errors.Is(err, posting.ErrUnbalanced) {
		_ = printJSON(cmd.OutOrStdout(), result)
		return err
	}
	if err != nil {
		return err
	}

	if importer.InImportDir(b.root, file) {
		if err := importer.MarkProcessed(b.root, filepath.Base(file)); err != nil {
			b.logger.Warn("could not move posted file", zap.String("file", file), zap.Error(err))
		}
	}
	return printJSON(cmd.OutOrStdout(), postOutput{Transaction: tx, Result: result})
}
