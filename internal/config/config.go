package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Log      LogConfig
	Confirm  ConfirmConfig
	Analysis AnalysisConfig
	Backup   BackupConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string
	Development bool
}

// ConfirmConfig controls the pending record confirmation scheduler.
type ConfirmConfig struct {
	Enabled  bool
	Schedule string
}

// AnalysisConfig holds valuation settings.
type AnalysisConfig struct {
	// RecentWindowDays is the number of trading days covered by recent profit.
	RecentWindowDays int
}

// BackupConfig holds the fernet key used for encrypted backups.
type BackupConfig struct {
	Key string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	logDevelopment, err := getEnvBool("LOG_DEVELOPMENT", false)
	if err != nil {
		return nil, err
	}

	confirmEnabled, err := getEnvBool("CONFIRM_ENABLED", true)
	if err != nil {
		return nil, err
	}

	recentWindow, err := getEnvInt("RECENT_WINDOW_DAYS", 7)
	if err != nil {
		return nil, err
	}
	if recentWindow < 1 {
		return nil, fmt.Errorf("RECENT_WINDOW_DAYS must be at least 1, got %d", recentWindow)
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/fund_ledger.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")),
		},
		Log: LogConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: logDevelopment,
		},
		Confirm: ConfirmConfig{
			Enabled:  confirmEnabled,
			Schedule: getEnv("CONFIRM_SCHEDULE", "@every 30m"),
		},
		Analysis: AnalysisConfig{
			RecentWindowDays: recentWindow,
		},
		Backup: BackupConfig{
			Key: os.Getenv("BACKUP_KEY"),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
