package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pasecure/idverify/constants"
)

// Config holds all application configuration
type Config struct {
	Database    DatabaseConfig
	Server      ServerConfig
	Storage     StorageConfig
	Recognition RecognitionConfig
	Model       ModelConfig
	Upload      UploadConfig
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

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr          string
	RateLimit     int
	RateWindow    time.Duration
	PollInterval  time.Duration
	ShutdownGrace time.Duration
}

// StorageConfig holds object store configuration
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// RecognitionConfig holds the external text-recognition service configuration
type RecognitionConfig struct {
	URL     string
	Timeout time.Duration
}

// ModelConfig holds the image-model scoring endpoint configuration
type ModelConfig struct {
	ScoringURL string
	Timeout    time.Duration
}

// UploadConfig holds upload validation settings; overridable from the
// settings table at startup.
type UploadConfig struct {
	MaxFileSize      int64
	AllowedFileTypes []string
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
			Addr:          getEnv("HTTP_ADDR", ":8080"),
			RateLimit:     getEnvAsInt("RATE_LIMIT", 100),
			RateWindow:    getEnvAsDuration("RATE_WINDOW", time.Minute),
			PollInterval:  getEnvAsDuration("POLL_INTERVAL", 10*time.Second),
			ShutdownGrace: getEnvAsDuration("SHUTDOWN_GRACE", 10*time.Second),
		},
		Storage: StorageConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "id-uploads"),
			UseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
		},
		Recognition: RecognitionConfig{
			URL:     getEnv("OCR_SERVICE_URL", ""),
			Timeout: getEnvAsDuration("OCR_SERVICE_TIMEOUT", 30*time.Second),
		},
		Model: ModelConfig{
			ScoringURL: getEnv("MODEL_SCORING_URL", ""),
			Timeout:    getEnvAsDuration("MODEL_TIMEOUT", 15*time.Second),
		},
		Upload: UploadConfig{
			MaxFileSize:      getEnvAsInt64("MAX_FILE_SIZE", constants.DefaultMaxFileSize),
			AllowedFileTypes: getEnvAsList("ALLOWED_FILE_TYPES", constants.DefaultAllowedFileTypes),
		},
	}
}

// Validate checks that everything the pipeline cannot run without is present.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrConfiguration)
	}
	if c.Storage.Endpoint == "" {
		return NewAppError("CONFIG_ERROR", "MINIO_ENDPOINT is required", ErrConfiguration)
	}
	if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
		return NewAppError("CONFIG_ERROR", "MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required", ErrConfiguration)
	}
	if c.Recognition.URL == "" {
		return NewAppError("CONFIG_ERROR", "OCR_SERVICE_URL is required", ErrConfiguration)
	}
	return nil
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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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

func getEnvAsList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
