package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DriverBadger, cfg.Storage.Driver)
	assert.Equal(t, "data/badger", cfg.Storage.BadgerPath)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9000
  env: prod
  log_level: warn
storage:
  driver: sqlite
  sqlite_path: /tmp/blog.db
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Run("file values", func(t *testing.T) {
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, "prod", cfg.Server.Env)
		assert.Equal(t, "warn", cfg.Server.LogLevel)
		assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
		assert.Equal(t, "/tmp/blog.db", cfg.Storage.SQLitePath)
		// Untouched keys keep their defaults.
		assert.Equal(t, 10, cfg.Server.ShutdownTimeout)
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("PORT", "9100")
		t.Setenv("STORAGE_DRIVER", "postgres")
		t.Setenv("DATABASE_URL", "postgres://blog@localhost/blog")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 9100, cfg.Server.Port)
		assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
		assert.Equal(t, "postgres://blog@localhost/blog", cfg.Storage.DatabaseURL)
	})
}

func TestLoadInvalid(t *testing.T) {
	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0644))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "mongo")
		_, err := Load("")
		assert.ErrorContains(t, err, "unknown storage driver")
	})

	t.Run("postgres without url", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "postgres")
		_, err := Load("")
		assert.ErrorContains(t, err, "database_url")
	})
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(ServerConfig{Env: "prod", LogLevel: "warn"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	_, err = NewLogger(ServerConfig{Env: "dev", LogLevel: "loud"})
	assert.Error(t, err)
}
