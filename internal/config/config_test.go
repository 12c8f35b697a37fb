package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
app:
  env: dev
telegram:
  token: abc
  admin_chat_id: -100123
postgres:
  dsn: postgres://kiosk@localhost/kiosk
stock:
  low_threshold: 3
`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dev", c.App.Env)
	assert.Equal(t, int64(-100123), c.Telegram.AdminChatID)
	assert.Equal(t, 30, c.Telegram.Timeout)
	assert.Equal(t, ":8080", c.HTTP.Addr)
	assert.Equal(t, int64(3), c.Stock.LowThreshold)
	assert.Equal(t, DriverPostgres, c.Storage.Driver)
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "postgres:\n  dsn: postgres://file\n")
	t.Setenv("APP_POSTGRES_DSN", "postgres://env")
	t.Setenv("APP_HTTP_ADDR", ":9999")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://env", c.Postgres.DSN)
	assert.Equal(t, ":9999", c.HTTP.Addr)
}

func TestValidate(t *testing.T) {
	t.Setenv("APP_STORAGE_DRIVER", "memory")
	_, err := Load("")
	require.NoError(t, err)

	t.Setenv("APP_STORAGE_DRIVER", "postgres")
	_, err = Load("")
	assert.ErrorContains(t, err, "postgres.dsn")

	t.Setenv("APP_STORAGE_DRIVER", "sqlite")
	_, err = Load("")
	assert.ErrorContains(t, err, "unknown storage driver")
}
