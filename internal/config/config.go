package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	// PolicySanitize filters stored article HTML before rendering.
	PolicySanitize = "sanitize"
	// PolicyTrusted renders stored article HTML as is.
	PolicyTrusted = "trusted"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port            string        `json:"port"`
	Env             string        `json:"env"`
	Version         string        `json:"version"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	HTTPTimeout     time.Duration `json:"http_timeout"`

	// Database
	DBDriver       string `json:"db_driver"`
	DatabaseURL    string `json:"-"`
	SQLitePath     string `json:"sqlite_path"`
	DBMaxOpenConns int    `json:"db_max_open_conns"`

	// Redis configuration (import markers)
	RedisURL    string        `json:"redis_url"`
	RedisPrefix string        `json:"redis_prefix"`
	CacheTTL    time.Duration `json:"cache_ttl"`

	// CloudFlare R2 Configuration
	R2Endpoint   string `json:"r2_endpoint"`
	R2AccessKey  string `json:"-"`
	R2SecretKey  string `json:"-"`
	R2Bucket     string `json:"r2_bucket"`
	R2AccountID  string `json:"r2_account_id"`
	R2PublicURL  string `json:"r2_public_url"`
	MaxImageSize int64  `json:"max_image_size"`

	// Site
	SiteURL        string `json:"site_url"`
	SiteName       string `json:"site_name"`
	ContentPolicy  string `json:"content_policy"`
	PublicPageSize int    `json:"public_page_size"`

	// Logging
	LogLevel  string `json:"log_level"`
	LogFile   string `json:"log_file"`
	LogPretty bool   `json:"log_pretty"`
}

// Load loads configuration from the environment (and .env when present) and
// exits the process when it is invalid.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

// FromEnv reads configuration from environment variables without validating it.
func FromEnv() *Config {
	env := getEnv("APP_ENV", "development")
	return &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		Version:         getEnv("APP_VERSION", "dev"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),

		DBDriver:       strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		SQLitePath:     getEnv("SQLITE_PATH", "./data/newsdesk.db"),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),

		RedisURL:    getEnv("REDIS_URL", ""),
		RedisPrefix: getEnv("REDIS_PREFIX", "newsdesk:import:"),
		CacheTTL:    getEnvAsDuration("CACHE_TTL", 720*time.Hour), // 30 days

		R2Endpoint:   getEnv("R2_ENDPOINT", ""),
		R2AccessKey:  getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey:  getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:     getEnv("R2_BUCKET", ""),
		R2AccountID:  getEnv("CLOUDFLARE_ACCOUNT_ID", ""),
		R2PublicURL:  strings.TrimRight(getEnv("R2_PUBLIC_URL", ""), "/"),
		MaxImageSize: getEnvAsInt64("MAX_IMAGE_SIZE", 5<<20), // 5MB

		SiteURL:        strings.TrimRight(getEnv("SITE_URL", "http://localhost:8080"), "/"),
		SiteName:       getEnv("SITE_NAME", "Newsdesk"),
		ContentPolicy:  strings.ToLower(getEnv("CONTENT_POLICY", PolicySanitize)),
		PublicPageSize: getEnvAsInt("PUBLIC_PAGE_SIZE", 0),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFile:   getEnv("LOG_FILE", ""),
		LogPretty: getEnvAsBool("LOG_PRETTY", env == "development"),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []error

	switch c.DBDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when DB_DRIVER=postgres"))
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required when DB_DRIVER=sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver))
	}

	switch c.ContentPolicy {
	case PolicySanitize, PolicyTrusted:
	default:
		errs = append(errs, fmt.Errorf("unknown CONTENT_POLICY %q", c.ContentPolicy))
	}

	if c.PublicPageSize < 0 {
		errs = append(errs, errors.New("PUBLIC_PAGE_SIZE must not be negative"))
	}
	if c.MaxImageSize <= 0 {
		errs = append(errs, errors.New("MAX_IMAGE_SIZE must be positive"))
	}
	if c.R2Bucket != "" && c.R2PublicURL == "" {
		errs = append(errs, errors.New("R2_PUBLIC_URL is required when R2_BUCKET is set"))
	}

	return errors.Join(errs...)
}

// ImagesEnabled reports whether an object storage bucket is configured.
func (c *Config) ImagesEnabled() bool {
	return c.R2Bucket != ""
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsInt64(name string, defaultVal int64) int64 {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %t", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}
