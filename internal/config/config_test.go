package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const sample = `
app:
  env: dev
  timezone: UTC
telegram:
  token: abc
  owner_id: 77
  poll_timeout: 20s
database:
  driver: sqlite
  dsn: data/bot.db
dialog:
  store: memory
  ttl: 30m
feedback:
  daily_limit: 5
`

func TestLoad(t *testing.T) {
	c, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "dev", c.App.Env)
	assert.Equal(t, "abc", c.Telegram.Token)
	assert.Equal(t, int64(77), c.Telegram.OwnerID)
	assert.Equal(t, 20*time.Second, c.Telegram.PollTimeout)
	assert.Equal(t, 60*time.Second, c.Telegram.RequestTimeout)
	assert.Equal(t, 4, c.Telegram.Workers)
	assert.Equal(t, "sqlite", c.Database.Driver)
	assert.Equal(t, 30*time.Minute, c.Dialog.TTL)
	assert.Equal(t, 5, c.Feedback.DailyLimit)
	assert.Equal(t, "04:00", c.Feedback.ResetAt)
	assert.Equal(t, ":8080", c.HTTP.Addr)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("APP_TELEGRAM_TOKEN", "from-env")
	t.Setenv("APP_FEEDBACK_DAILY_LIMIT", "9")

	c, err := Load(writeConfig(t, sample))
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.Telegram.Token)
	assert.Equal(t, 9, c.Feedback.DailyLimit)
}

func TestLoadValidation(t *testing.T) {
	_, err := Load(writeConfig(t, `
database:
  driver: sqlite
  dsn: x.db
dialog:
  store: postgres
feedback:
  reset_at: "25:00"
`))
	require.Error(t, err)
	assert.ErrorContains(t, err, "telegram.token is required")
	assert.ErrorContains(t, err, "dialog.store postgres needs database.driver postgres")
	assert.ErrorContains(t, err, "feedback.reset_at")
}

func TestDialogStoreFollowsDriver(t *testing.T) {
	c, err := Load(writeConfig(t, `
telegram:
  token: abc
database:
  driver: sqlite
  dsn: data/bot.db
`))
	require.NoError(t, err)
	assert.Equal(t, "memory", c.Dialog.Store)

	c, err = Load(writeConfig(t, `
telegram:
  token: abc
database:
  dsn: postgres://localhost/absence
`))
	require.NoError(t, err)
	assert.Equal(t, "postgres", c.Dialog.Store)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
