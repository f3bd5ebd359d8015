package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// LLM provider
	OpenAI OpenAIConfig

	// Council run defaults
	Council CouncilConfig

	// Report archive (optional; disabled when DATABASE_URL is empty)
	Database DatabaseConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// OpenAIConfig holds OpenAI-compatible provider configuration
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // empty = provider default
	OrgID   string

	// Request pacing and per-call limits
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// CouncilConfig holds service-level defaults for council runs
type CouncilConfig struct {
	DefaultModel    string
	AllowedModels   []string
	DefaultMode     string // fast, deep
	DefaultLanguage string // auto, en, ko
	MaxDeckBytes    int

	// Archive retention window for the cleanup job
	ReportRetention time.Duration
}

// DatabaseConfig holds PostgreSQL configuration for the report archive
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8099"),
		Env:  getEnv("ENV", "development"),

		OpenAI: OpenAIConfig{
			APIKey:            getEnv("OPENAI_API_KEY", ""),
			BaseURL:           getEnv("OPENAI_BASE_URL", ""),
			OrgID:             getEnv("OPENAI_ORG_ID", ""),
			Timeout:           getEnvAsDuration("OPENAI_TIMEOUT", "120s"),
			RequestsPerSecond: getEnvAsFloat("OPENAI_REQUESTS_PER_SECOND", 2.0),
			Burst:             getEnvAsInt("OPENAI_BURST", 4),
		},

		Council: CouncilConfig{
			DefaultModel:    getEnv("COUNCIL_DEFAULT_MODEL", "gpt-4.1-mini"),
			AllowedModels:   getEnvAsSlice("ALLOWED_MODELS", []string{"gpt-4.1-mini", "gpt-4.1"}),
			DefaultMode:     getEnv("COUNCIL_DEFAULT_MODE", "fast"),
			DefaultLanguage: getEnv("COUNCIL_DEFAULT_LANGUAGE", "auto"),
			MaxDeckBytes:    getEnvAsInt("COUNCIL_MAX_DECK_BYTES", 4_500_000),
			ReportRetention: getEnvAsDuration("COUNCIL_REPORT_RETENTION", "2160h"), // 90 days
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// ArchiveEnabled reports whether the report archive is configured
func (c *Config) ArchiveEnabled() bool {
	return c.Database.URL != ""
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Council.DefaultMode {
	case "fast", "deep":
	default:
		return fmt.Errorf("COUNCIL_DEFAULT_MODE must be one of: fast, deep")
	}

	switch c.Council.DefaultLanguage {
	case "auto", "en", "ko":
	default:
		return fmt.Errorf("COUNCIL_DEFAULT_LANGUAGE must be one of: auto, en, ko")
	}

	if c.OpenAI.Timeout <= 0 {
		return fmt.Errorf("OPENAI_TIMEOUT must be positive")
	}

	if len(c.Council.AllowedModels) == 0 {
		return fmt.Errorf("ALLOWED_MODELS must not be empty")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env",         // Current directory
		"backend/.env", // From project root
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
			filepath.Join(exeDir, "..", "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}

	if len(values) == 0 {
		return defaultValue
	}

	return values
}
