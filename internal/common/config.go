package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	LLM      LLMConfig
	Pipeline PipelineConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path        string
	DialTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr       string
	MaxUploadBytes int64
	TempDir        string
}

// LLMConfig holds model-related configuration
type LLMConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// PipelineConfig holds pipeline tuning knobs
type PipelineConfig struct {
	MaxPromptChars int
	Workers        int
	QueueSize      int
	RunTimeout     time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        getEnv("DB_PATH", "./propdoc.db"),
			DialTimeout: getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			HTTPAddr:       getEnv("HTTP_ADDR", ":5000"),
			MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_MB", 25)) << 20,
			TempDir:        getEnv("UPLOAD_TMP_DIR", os.TempDir()),
		},
		LLM: LLMConfig{
			BaseURL:     getEnv("XAI_BASE_URL", "https://api.x.ai/v1"),
			APIKey:      getEnv("XAI_API_KEY", ""),
			Model:       getEnv("XAI_MODEL", "grok-2-1212"),
			Temperature: getEnvAsFloat32("XAI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("XAI_TIMEOUT", 90*time.Second),
		},
		Pipeline: PipelineConfig{
			MaxPromptChars: getEnvAsInt("MAX_PROMPT_CHARS", 400_000),
			Workers:        getEnvAsInt("PIPELINE_WORKERS", 4),
			QueueSize:      getEnvAsInt("PIPELINE_QUEUE_SIZE", 256),
			RunTimeout:     getEnvAsDuration("PIPELINE_RUN_TIMEOUT", 3*time.Minute),
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

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return NewAppError("CONFIG_ERROR", "DB_PATH is required", ErrInvalidInput)
	}
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "XAI_API_KEY is required", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Pipeline.MaxPromptChars <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_PROMPT_CHARS must be positive", ErrInvalidInput)
	}
	return nil
}
