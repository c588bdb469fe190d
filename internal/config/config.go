package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultPasswordSalt applies when PASSWORD_SALT is unset
const DefaultPasswordSalt = "default_salt"

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Database configuration
	DBType            string // mysql, mariadb, postgres, sqlite, sqlite-pure, sqlserver
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int
	DBLogLevel        string

	// Password hashing
	PasswordSalt string

	// Pagination
	DefaultPageLimit int
	MaxPageLimit     int

	// Authorizer configuration, optional
	AuthzURL      string
	AuthzClientID string
}

// Load loads configuration from an optional env file and the environment.
// ENV_FILE names the env file, defaulting to .env; a missing file is not an error.
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	} else {
		log.Printf("Loaded environment from %s", envFile)
	}

	cfg := &Config{
		Port:              getEnv("PORT", "3000"),
		DBType:            strings.ToLower(getEnv("DB_TYPE", "sqlite-pure")),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "3306"),
		DBDatabase:        getEnv("DB_DATABASE", ""),
		DBUser:            getEnv("DB_USER", ""),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBConnectionLimit: getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		DBLogLevel:        strings.ToLower(getEnv("DB_LOG_LEVEL", "warn")),
		PasswordSalt:      getEnv("PASSWORD_SALT", DefaultPasswordSalt),
		DefaultPageLimit:  getEnvAsInt("DEFAULT_PAGE_LIMIT", 100),
		MaxPageLimit:      getEnvAsInt("MAX_PAGE_LIMIT", 100),
		AuthzURL:          getEnv("AUTHZ_URL", ""),
		AuthzClientID:     getEnv("AUTHZ_CLIENT_ID", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required fields and cross-field constraints
func (cfg *Config) Validate() error {
	if cfg.DBDatabase == "" {
		return fmt.Errorf("DB_DATABASE is required")
	}
	if !cfg.IsSQLite() && cfg.DBUser == "" {
		return fmt.Errorf("DB_USER is required for DB_TYPE %s", cfg.DBType)
	}
	if (cfg.AuthzURL == "") != (cfg.AuthzClientID == "") {
		return fmt.Errorf("AUTHZ_URL and AUTHZ_CLIENT_ID must be set together")
	}
	if cfg.DBConnectionLimit < 1 {
		return fmt.Errorf("DB_CONNECTION_LIMIT must be positive")
	}
	if cfg.DefaultPageLimit < 1 || cfg.MaxPageLimit < cfg.DefaultPageLimit {
		return fmt.Errorf("DEFAULT_PAGE_LIMIT must be positive and not exceed MAX_PAGE_LIMIT")
	}
	return nil
}

// IsSQLite reports whether the configured database is a sqlite file
func (cfg *Config) IsSQLite() bool {
	return cfg.DBType == "sqlite" || cfg.DBType == "sqlite-pure"
}

// AuthzEnabled reports whether an authorizer guards the admin routes
func (cfg *Config) AuthzEnabled() bool {
	return cfg.AuthzURL != ""
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
