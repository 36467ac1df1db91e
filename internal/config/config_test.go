package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8501, cfg.Server.Port)
	assert.Equal(t, "", cfg.Dataset.SeedFile)
	assert.Equal(t, int64(32<<20), cfg.Dataset.UploadMaxBytes)
	assert.Equal(t, "dashboard_session", cfg.Session.CookieName)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "localhost:8501", cfg.Address())
}

func TestLoad_Env(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DATASET_FILE", "sales.xlsx")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("DEMO_SEED", "42")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "sales.xlsx", cfg.Dataset.SeedFile)
	assert.Equal(t, 15*time.Minute, cfg.Session.TTL)
	assert.Equal(t, uint64(42), cfg.Demo.Seed)
	assert.Equal(t, "text", cfg.Logger.Format)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"port out of range", "SERVER_PORT", "70000"},
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"bad log format", "LOG_FORMAT", "xml"},
		{"negative upload limit", "UPLOAD_MAX_BYTES", "-1"},
		{"negative ttl", "SESSION_TTL", "-1m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
