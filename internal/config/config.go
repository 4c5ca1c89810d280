// Package config loads erpledger.yaml plus environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the config file at the root of a book.
const FileName = "erpledger.yaml"

// Storage drivers.
const (
	DriverCSV      = "csv"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Environment variables that override the file.
const (
	EnvStorageDriver = "ERPLEDGER_STORAGE_DRIVER"
	EnvStorageDSN    = "ERPLEDGER_STORAGE_DSN"
	EnvServerAddr    = "ERPLEDGER_SERVER_ADDR"
	EnvKafkaBrokers  = "ERPLEDGER_KAFKA_BROKERS"
	EnvLogLevel      = "ERPLEDGER_LOG_LEVEL"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config represents the top-level erpledger.yaml configuration.
type Config struct {
	Business BusinessConfig `yaml:"business"`
	Fiscal   FiscalConfig   `yaml:"fiscal"`
	Storage  StorageConfig  `yaml:"storage"`
	Server   ServerConfig   `yaml:"server"`
	Events   EventsConfig   `yaml:"events"`
	Report   ReportConfig   `yaml:"report"`
	Git      GitConfig      `yaml:"git"`
	Log      LogConfig      `yaml:"log"`
}

// BusinessConfig identifies the business entity.
type BusinessConfig struct {
	Name       string `yaml:"name"`
	EntityType string `yaml:"entity_type"`
	Currency   string `yaml:"currency,omitempty"`
}

// FiscalConfig defines the fiscal year boundaries.
type FiscalConfig struct {
	YearStart string `yaml:"year_start"` // "MM-DD" format, e.g. "01-01"
}

// StorageConfig selects the ledger store. For csv the DSN is the book
// directory, for sqlite a file path, for postgres a connection string.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// EventsConfig configures ledger.posted publishing to Kafka.
type EventsConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers,omitempty"`
	Topic   string   `yaml:"topic"`
}

// ReportConfig controls report building.
type ReportConfig struct {
	UnclassifiedPolicy string `yaml:"unclassified_policy"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// Load reads an erpledger.yaml file from disk. Missing fields keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("", "")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadDir loads <dir>/.env (if present) into the process environment, then
// <dir>/erpledger.yaml, applies environment overrides and validates the result.
func LoadDir(dir string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	cfg, err := Load(filepath.Join(dir, FileName))
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new book.
func Default(businessName, entityType string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name:       businessName,
			EntityType: entityType,
		},
		Fiscal: FiscalConfig{
			YearStart: "01-01",
		},
		Storage: StorageConfig{
			Driver: DriverCSV,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Events: EventsConfig{
			Topic: "ledger.posted",
		},
		Report: ReportConfig{
			UnclassifiedPolicy: "bucket",
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "erpledger",
			AuthorEmail: "ledger@erpledger.local",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// ApplyEnv overrides file values with any ERPLEDGER_* variables lookup finds.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvStorageDriver); ok && v != "" {
		c.Storage.Driver = v
	}
	if v, ok := lookup(EnvStorageDSN); ok && v != "" {
		c.Storage.DSN = v
	}
	if v, ok := lookup(EnvServerAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvKafkaBrokers); ok && v != "" {
		c.Events.Brokers = nil
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				c.Events.Brokers = append(c.Events.Brokers, b)
			}
		}
		c.Events.Enabled = len(c.Events.Brokers) > 0
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
}

// Validate checks the fields other packages rely on.
func (c *Config) Validate() error {
	if _, _, err := c.Fiscal.Start(); err != nil {
		return err
	}
	switch c.Storage.Driver {
	case DriverCSV, DriverSQLite, DriverMemory:
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("%w: storage.dsn is required for postgres", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, c.Storage.Driver)
	}
	if c.Events.Enabled && len(c.Events.Brokers) == 0 {
		return fmt.Errorf("%w: events enabled without brokers", ErrInvalidConfig)
	}
	switch c.Report.UnclassifiedPolicy {
	case "", "bucket", "reject":
	default:
		return fmt.Errorf("%w: unknown unclassified_policy %q", ErrInvalidConfig, c.Report.UnclassifiedPolicy)
	}
	return nil
}

// Start returns the month and day the fiscal year begins on.
func (f FiscalConfig) Start() (time.Month, int, error) {
	s := f.YearStart
	if s == "" {
		s = "01-01"
	}
	// 2000 is a leap year, so 02-29 parses.
	t, err := time.Parse("2006-01-02", "2000-"+s)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: fiscal.year_start %q must be MM-DD", ErrInvalidConfig, f.YearStart)
	}
	return t.Month(), t.Day(), nil
}
