package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"gwi.com/tutorgen/internal/store"
)

type Config struct {
	GoogleAPIKey      string
	ModelName         string
	DatabaseDriver    string
	DatabaseURL       string
	HTTPPort          string
	LogLevel          string
	LogMode           string
	SystemPromptPath  string
	WriteTimeoutSecs  int
	EnvFileWasMissing bool
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	missing := godotenv.Load() != nil // Load .env file if it exists

	return &Config{
		GoogleAPIKey:      getEnv("GOOGLE_API_KEY", ""),
		ModelName:         getEnv("GOOGLE_MODEL_NAME", "gemini-1.5-flash"),
		DatabaseDriver:    strings.ToLower(getEnv("DATABASE_DRIVER", store.DriverSQLite)),
		DatabaseURL:       getEnv("DATABASE_URL", "tutorials.db"),
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		LogLevel:          strings.ToUpper(getEnv("LOG_LEVEL", "INFO")),
		LogMode:           getEnv("LOG_MODE", "dev"),
		SystemPromptPath:  getEnv("SYSTEM_PROMPT_PATH", "prompts/system-tutorial.md"),
		WriteTimeoutSecs:  getEnvAsInt("HTTP_WRITE_TIMEOUT_SECONDS", 120),
		EnvFileWasMissing: missing,
	}
}

// Validate reports configuration that prevents the model client from being built.
func (c *Config) Validate() error {
	if c.GoogleAPIKey == "" {
		return errors.New("GOOGLE_API_KEY environment variable is required")
	}
	return c.ValidateStorage()
}

// ValidateStorage checks only the database settings. Commands that never call
// the model use it in place of Validate.
func (c *Config) ValidateStorage() error {
	switch c.DatabaseDriver {
	case store.DriverSQLite, store.DriverPostgres:
	default:
		return errors.New("DATABASE_DRIVER must be one of sqlite3, postgres")
	}
	return nil
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
