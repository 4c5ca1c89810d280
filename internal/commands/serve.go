package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cleared-dev/erpledger/internal/api"
)

func newServeCommand(repo *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ledger HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := openBook(cmd.Context(), *repo)
			if err != nil {
				return err
			}
			defer b.Close()

			if addr == "" {
				addr = b.cfg.Server.Addr
			}
			b.logger.Info("serving ledger book",
				zap.String("root", b.root),
				zap.String("storage", b.cfg.Storage.Driver),
				zap.Bool("events", b.cfg.Events.Enabled))

			srv := api.New(b.posting, b.reporting, b.logger.Named("api"))
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from config)")
	return cmd
}
