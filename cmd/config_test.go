package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"), env(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_Layers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend: SQLite
database: /var/lib/plg/ledger.db
currency: eur
log:
  level: info
  max_size: 50
`), 0o644))

	cfg, err := loadConfig(path, env(map[string]string{
		"PLG_DATABASE":  "/tmp/other.db",
		"PLG_LOG_LEVEL": "",
	}))
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, "/tmp/other.db", cfg.Database, "environment overrides the file")
	assert.Equal(t, "EUR", cfg.Currency)
	assert.Equal(t, "info", cfg.Log.Level, "empty variables are ignored")
	assert.Equal(t, 50, cfg.Log.MaxSize)
	assert.Equal(t, 3, cfg.Log.MaxBackups, "defaults fill the missing keys")
	assert.Equal(t, "ledger.jsonl", cfg.LedgerFile)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: [jsonl"), 0o644))
	_, err := loadConfig(path, env(nil))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := map[string]func(*Config){
		"backend":  func(c *Config) { c.Backend = "csv" },
		"ledger":   func(c *Config) { c.LedgerFile = "" },
		"database": func(c *Config) { c.Backend, c.Database = BackendSQLite, "" },
		"currency": func(c *Config) { c.Currency = "dollar" },
		"level":    func(c *Config) { c.Log.Level = "loud" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
