package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/cleared-dev/erpledger/internal/accounts"
	"github.com/cleared-dev/erpledger/internal/auditlog"
	"github.com/cleared-dev/erpledger/internal/config"
	"github.com/cleared-dev/erpledger/internal/events"
	"github.com/cleared-dev/erpledger/internal/events/kafka"
	"github.com/cleared-dev/erpledger/internal/gitops"
	"github.com/cleared-dev/erpledger/internal/importer"
	"github.com/cleared-dev/erpledger/internal/journal"
	"github.com/cleared-dev/erpledger/internal/logging"
	"github.com/cleared-dev/erpledger/internal/posting"
	"github.com/cleared-dev/erpledger/internal/report"
	"github.com/cleared-dev/erpledger/internal/reporting"
	"github.com/cleared-dev/erpledger/internal/storage"
	"github.com/cleared-dev/erpledger/internal/storage/memory"
	"github.com/cleared-dev/erpledger/internal/storage/postgres"
	"github.com/cleared-dev/erpledger/internal/storage/sqlite"
)

// defaultSQLiteFile is used when storage.dsn is empty for the sqlite driver.
const defaultSQLiteFile = "ledger.db"

// book is everything a command needs to work on one ledger directory.
type book struct {
	root      string
	cfg       *config.Config
	logger    *zap.Logger
	chart     *accounts.Service
	store     storage.LedgerStore
	publisher events.Publisher
	posting   *posting.Service
	reporting *reporting.Service
	importers *importer.Registry
}

// openBook loads config and chart from root and opens the configured store.
func openBook(ctx context.Context, root string) (*book, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := config.LoadDir(root)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	chart, err := accounts.Load(root)
	if err != nil {
		return nil, err
	}
	store, err := openStore(ctx, cfg.Storage, root)
	if err != nil {
		return nil, err
	}
	policy, err := report.ParsePolicy(cfg.Report.UnclassifiedPolicy)
	if err != nil {
		return nil, errors.Join(err, store.Close())
	}
	month, day, err := cfg.Fiscal.Start()
	if err != nil {
		return nil, errors.Join(err, store.Close())
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.Events.Enabled {
		publisher = kafka.NewPublisher(cfg.Events.Brokers, cfg.Events.Topic)
	}

	// Only the CSV book lives in the working tree, so only it is committed.
	gitDir := ""
	if cfg.Storage.Driver == config.DriverCSV && cfg.Git.AutoCommit {
		gitDir = root
	}

	b := &book{
		root:      root,
		cfg:       cfg,
		logger:    logger,
		chart:     chart,
		store:     store,
		publisher: publisher,
		importers: importer.DefaultRegistry(chart),
	}
	b.posting = posting.New(store, chart, posting.Options{
		Audit:     auditlog.New(root),
		Publisher: publisher,
		GitDir:    gitDir,
		GitAuthor: gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail},
		Logger:    logger.Named("posting"),
		Now:       time.Now,
	})
	b.reporting = reporting.New(store, chart, reporting.Options{
		FiscalYearStartMonth: month,
		FiscalYearStartDay:   day,
		Unclassified:         policy,
		Logger:               logger.Named("reporting"),
	})
	return b, nil
}

func (b *book) Close() error {
	_ = b.logger.Sync()
	return errors.Join(b.publisher.Close(), b.store.Close())
}

func openStore(ctx context.Context, sc config.StorageConfig, root string) (storage.LedgerStore, error) {
	switch sc.Driver {
	case config.DriverCSV:
		dir := root
		if sc.DSN != "" {
			dir = inRoot(root, sc.DSN)
		}
		return journal.NewBook(dir), nil
	case config.DriverSQLite:
		path := defaultSQLiteFile
		if sc.DSN != "" {
			path = sc.DSN
		}
		s, err := sqlite.Open(inRoot(root, path))
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverPostgres:
		s, err := postgres.Open(ctx, sc.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverMemory:
		return memory.NewStore(), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", sc.Driver)
}

func inRoot(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
