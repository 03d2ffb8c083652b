package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/vocabflash/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Addr:          ":8080",
		DBPath:        "test.db",
		LogLevel:      "INFO",
		LogColors:     true,
		SessionSize:   20,
		CardsPageSize: 5,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_EmptyAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Addr = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ADDR cannot be empty")
}

func TestValidate_EmptyDBPath(t *testing.T) {
	cfg := validConfig()
	cfg.DBPath = "  "

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PATH cannot be empty")
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.LogLevel = "LOUD"

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}

func TestValidate_InvalidSessionSize(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{name: "size too low", size: 0},
		{name: "size too high", size: 101},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.SessionSize = tt.size

			err := cfg.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "SESSION_SIZE")
		})
	}
}

func TestValidate_InvalidPageSize(t *testing.T) {
	cfg := validConfig()
	cfg.CardsPageSize = 0

	assert.Error(t, cfg.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ADDR", "DB_PATH", "LOG_LEVEL", "LOG_COLORS", "SESSION_SIZE", "CARDS_PAGE_SIZE"} {
		t.Setenv(key, "")
	}

	cfg := config.Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "file:vocabflash.db", cfg.DBPath)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.True(t, cfg.LogColors)
	assert.Equal(t, 20, cfg.SessionSize)
	assert.Equal(t, 5, cfg.CardsPageSize)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("SESSION_SIZE", "10")
	t.Setenv("LOG_COLORS", "false")
	t.Setenv("CARDS_PAGE_SIZE", "not-a-number")

	cfg := config.Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 10, cfg.SessionSize)
	assert.False(t, cfg.LogColors)
	assert.Equal(t, 5, cfg.CardsPageSize, "invalid numbers fall back to the default")
}

func TestLoad_FromEnvFile(t *testing.T) {
	// godotenv never overrides variables that exist, even empty ones.
	for _, key := range []string{"DB_PATH", "LOG_LEVEL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DB_PATH=file:from-env-file.db\nLOG_LEVEL=DEBUG\n"), 0o600))

	cfg := config.Load(path)

	assert.Equal(t, "file:from-env-file.db", cfg.DBPath)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}
