package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/vytor/vocabflash/internal/logger"
)

type Config struct {
	Addr          string
	DBPath        string
	LogLevel      string
	LogColors     bool
	SessionSize   int
	CardsPageSize int
}

// Load reads configuration from .env files (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
// With no files given, ./.env is tried.
func Load(files ...string) Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load(files...)

	return Config{
		Addr:          envOr("ADDR", ":8080"),
		DBPath:        envOr("DB_PATH", "file:vocabflash.db"),
		LogLevel:      envOr("LOG_LEVEL", "INFO"),
		LogColors:     envBoolOr("LOG_COLORS", true),
		SessionSize:   envIntOr("SESSION_SIZE", 20),
		CardsPageSize: envIntOr("CARDS_PAGE_SIZE", 5),
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("ADDR cannot be empty")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if !logger.ValidLevel(c.LogLevel) {
		return fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR, got %q", c.LogLevel)
	}
	if c.SessionSize < 1 || c.SessionSize > 100 {
		return fmt.Errorf("SESSION_SIZE must be between 1 and 100, got %d", c.SessionSize)
	}
	if c.CardsPageSize < 1 {
		return fmt.Errorf("CARDS_PAGE_SIZE must be positive, got %d", c.CardsPageSize)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %t", key, v, def)
	}
	return def
}
