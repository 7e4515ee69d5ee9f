package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gwi.com/tutorgen/internal/store"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"GOOGLE_API_KEY", "GOOGLE_MODEL_NAME", "DATABASE_DRIVER", "DATABASE_URL", "HTTP_PORT", "LOG_LEVEL", "LOG_MODE", "SYSTEM_PROMPT_PATH", "HTTP_WRITE_TIMEOUT_SECONDS"} {
		t.Setenv(k, "") // restores the original value on cleanup
		require.NoError(t, os.Unsetenv(k))
	}

	cfg := Load()
	assert.Equal(t, "gemini-1.5-flash", cfg.ModelName)
	assert.Equal(t, store.DriverSQLite, cfg.DatabaseDriver)
	assert.Equal(t, "tutorials.db", cfg.DatabaseURL)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "prompts/system-tutorial.md", cfg.SystemPromptPath)
	assert.Equal(t, 120, cfg.WriteTimeoutSecs)

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_API_KEY")
	require.NoError(t, cfg.ValidateStorage())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "secret")
	t.Setenv("GOOGLE_MODEL_NAME", "gemini-2.0-flash")
	t.Setenv("DATABASE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/tutorials")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HTTP_WRITE_TIMEOUT_SECONDS", "45")

	cfg := Load()
	assert.Equal(t, "secret", cfg.GoogleAPIKey)
	assert.Equal(t, "gemini-2.0-flash", cfg.ModelName)
	assert.Equal(t, store.DriverPostgres, cfg.DatabaseDriver)
	assert.Equal(t, "postgres://localhost/tutorials", cfg.DatabaseURL)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, 45, cfg.WriteTimeoutSecs)
	require.NoError(t, cfg.Validate())
}

func TestGetEnvAsIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("HTTP_WRITE_TIMEOUT_SECONDS", "soon")
	assert.Equal(t, 120, getEnvAsInt("HTTP_WRITE_TIMEOUT_SECONDS", 120))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"ok sqlite", Config{GoogleAPIKey: "k", DatabaseDriver: store.DriverSQLite}, ""},
		{"ok postgres", Config{GoogleAPIKey: "k", DatabaseDriver: store.DriverPostgres}, ""},
		{"missing key", Config{DatabaseDriver: store.DriverSQLite}, "GOOGLE_API_KEY"},
		{"bad driver", Config{GoogleAPIKey: "k", DatabaseDriver: "mysql"}, "DATABASE_DRIVER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateStorageIgnoresAPIKey(t *testing.T) {
	require.NoError(t, (&Config{DatabaseDriver: store.DriverPostgres}).ValidateStorage())

	err := (&Config{DatabaseDriver: "mysql"}).ValidateStorage()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_DRIVER")
}
