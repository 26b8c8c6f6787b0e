package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadConfig_Defaults(t *testing.T) {
	chdir(t, t.TempDir()) // no .env
	t.Setenv("DB_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("TRACKER_TIMEZONE", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Empty(t, cfg.DBURL)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "UTC", cfg.Location.String())
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfig_Timezone(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("TRACKER_TIMEZONE", "Asia/Tokyo")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", cfg.Location.String())

	t.Setenv("TRACKER_TIMEZONE", "Mars/Olympus_Mons")
	_, err = loadConfig()
	assert.ErrorContains(t, err, "invalid TRACKER_TIMEZONE")
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		l, err := newLogger(level)
		require.NoError(t, err, level)
		assert.NotNil(t, l)
	}
	_, err := newLogger("chatty")
	assert.Error(t, err)
}
