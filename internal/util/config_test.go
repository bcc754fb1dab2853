package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_LoadConfig(t *testing.T) {
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
		require.NoError(t, err)
		require.Equal(t, 3009, cfg.Server.Port)
		require.Equal(t, 4, cfg.Server.PoolSize)
		require.Equal(t, "coingecko", cfg.PriceSource.Provider)
		require.Equal(t, "usd", cfg.PriceSource.QuoteCurrency)
		require.Equal(t, "@every 1h", cfg.ReserveRefreshCron)
		require.NoError(t, cfg.Validate())
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		content := `
server:
  port: 8080
  pool_size: 8
price_source:
  provider: binance
recorder:
  sqlite_path: /tmp/runs.db
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		require.Equal(t, 8080, cfg.Server.Port)
		require.Equal(t, 8, cfg.Server.PoolSize)
		require.Equal(t, "binance", cfg.PriceSource.Provider)
		require.Equal(t, "/tmp/runs.db", cfg.Recorder.SQLitePath)
	})

	t.Run("environment beats the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8080\n"), 0o644))
		t.Setenv("LEVSIM_PORT", "9999")
		t.Setenv("LEVSIM_PRICE_PROVIDER", "yahoo")

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		require.Equal(t, 9999, cfg.Server.Port)
		require.Equal(t, "yahoo", cfg.PriceSource.Provider)
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

		_, err := LoadConfig(path)
		require.Error(t, err)
	})

	t.Run("validate rejects unknown providers", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
		require.NoError(t, err)
		cfg.PriceSource.Provider = "kraken"
		require.Error(t, cfg.Validate())
	})
}
