package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SQLITE_PATH", "")
	t.Setenv("LOG_ENCODING", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "gridstock.db", cfg.Database.Path)
	assert.Equal(t, 12*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 6, cfg.Warehouse.Rows)
	assert.Equal(t, 15, cfg.Warehouse.Columns)
	assert.Equal(t, "json", cfg.Log.Encoding)
	assert.True(t, cfg.Reports.AutoArchive)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("APP_ADDR", "127.0.0.1:9000")
	t.Setenv("SESSION_TTL_HOURS", "2")
	t.Setenv("WAREHOUSE_ROWS", "10")
	t.Setenv("AUTO_ARCHIVE", "false")
	t.Setenv("LOG_ENCODING", "")
	t.Setenv("SQLITE_BUSY_TIMEOUT_MS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 2*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 10, cfg.Warehouse.Rows)
	assert.False(t, cfg.Reports.AutoArchive)
	assert.Equal(t, "console", cfg.Log.Encoding)
	assert.Equal(t, 5*time.Second, cfg.Database.BusyTimeout)
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Setenv("SESSION_TTL_HOURS", "0")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("SESSION_TTL_HOURS", "12")
	t.Setenv("WAREHOUSE_COLUMNS", "0")
	_, err = Load()
	assert.Error(t, err)
}
