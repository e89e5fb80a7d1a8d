package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Files    FileConfig
	Provider ProviderConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds daemon-related configuration
type ServerConfig struct {
	HealthAddr string
	WatchRoots []string
	Workers    int
}

// FileConfig holds upload validation limits
type FileConfig struct {
	MaxFileSize int64 // bytes
	MaxPDFPages int
	MinWidth    int
	MinHeight   int
}

// ProviderConfig holds extraction-provider configuration
type ProviderConfig struct {
	APIKey       string
	Model        string
	Temperature  float32
	Timeout      time.Duration
	MaxRetries   int
	RetryBase    time.Duration
	RetryJitter  time.Duration
	UploadPoll   time.Duration
	UploadExpiry time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			HealthAddr: getEnv("HEALTH_ADDR", ":8080"),
			WatchRoots: splitList(getEnv("WATCH_ROOTS", "")),
			Workers:    getEnvAsInt("WORKERS", 4),
		},
		Files: FileConfig{
			MaxFileSize: int64(getEnvAsInt("MAX_FILE_SIZE_MB", 5)) * 1024 * 1024,
			MaxPDFPages: getEnvAsInt("MAX_PDF_PAGES", 10),
			MinWidth:    getEnvAsInt("MIN_IMAGE_WIDTH", 200),
			MinHeight:   getEnvAsInt("MIN_IMAGE_HEIGHT", 200),
		},
		Provider: ProviderConfig{
			APIKey:       getEnv("GEMINI_API_KEY", ""),
			Model:        getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			Temperature:  getEnvAsFloat32("GEMINI_TEMPERATURE", 0.0),
			Timeout:      getEnvAsDuration("GEMINI_TIMEOUT", 60*time.Second),
			MaxRetries:   getEnvAsInt("EXTRACT_MAX_RETRIES", 2),
			RetryBase:    getEnvAsDuration("EXTRACT_RETRY_BASE_DELAY", 1*time.Second),
			RetryJitter:  getEnvAsDuration("EXTRACT_RETRY_JITTER", 1*time.Second),
			UploadPoll:   getEnvAsDuration("GEMINI_UPLOAD_POLL", 500*time.Millisecond),
			UploadExpiry: getEnvAsDuration("GEMINI_UPLOAD_EXPIRY", 30*time.Second),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Provider.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "GEMINI_API_KEY is required", ErrInvalidInput)
	}
	if c.Files.MaxFileSize <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_FILE_SIZE_MB must be positive", ErrInvalidInput)
	}
	if c.Provider.MaxRetries < 0 {
		return NewAppError("CONFIG_ERROR", "EXTRACT_MAX_RETRIES must not be negative", ErrInvalidInput)
	}
	return nil
}
