package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	BackendJSONL  = "jsonl"
	BackendSQLite = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	LedgerFile string    `yaml:"ledger_file"` // used by the jsonl backend
	Backend    string    `yaml:"backend"`     // jsonl or sqlite
	Database   string    `yaml:"database"`    // used by the sqlite backend
	Currency   string    `yaml:"currency"`    // ISO code used to format amounts
	Log        LogConfig `yaml:"log"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`     // rotating log file, none if empty
	MaxSize    int    `yaml:"max_size"` // megabytes
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"` // days
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		LedgerFile: "ledger.jsonl",
		Backend:    BackendJSONL,
		Database:   "ledger.db",
		Currency:   "USD",
		Log: LogConfig{
			Level:      "warn",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     30,
		},
	}
}

// LoadConfig reads the configuration: defaults, then the YAML file at path
// if it exists, then the PLG_* environment variables. A .env file in the
// current directory is loaded into the environment first.
func LoadConfig(path string) (Config, error) {
	// .env is optional
	_ = godotenv.Load()
	return loadConfig(path, os.LookupEnv)
}

func loadConfig(path string, lookupEnv func(string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("cannot read config %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("cannot parse config %q: %w", path, err)
			}
		}
	}

	for name, field := range map[string]*string{
		"PLG_LEDGER_FILE": &cfg.LedgerFile,
		"PLG_BACKEND":     &cfg.Backend,
		"PLG_DATABASE":    &cfg.Database,
		"PLG_CURRENCY":    &cfg.Currency,
		"PLG_LOG_LEVEL":   &cfg.Log.Level,
		"PLG_LOG_FILE":    &cfg.Log.File,
	} {
		if v, ok := lookupEnv(name); ok && v != "" {
			*field = v
		}
	}
	cfg.Backend = strings.ToLower(cfg.Backend)
	cfg.Currency = strings.ToUpper(cfg.Currency)
	return cfg, nil
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	switch {
	case c.Backend != BackendJSONL && c.Backend != BackendSQLite:
		return fmt.Errorf("unknown backend %q, want %q or %q", c.Backend, BackendJSONL, BackendSQLite)
	case c.Backend == BackendJSONL && c.LedgerFile == "":
		return errors.New("missing ledger file")
	case c.Backend == BackendSQLite && c.Database == "":
		return errors.New("missing database")
	case len(c.Currency) != 3:
		return fmt.Errorf("invalid currency code %q", c.Currency)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	return nil
}
