package common

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Render   RenderConfig
	LLM      LLMConfig
	NetSheet NetSheetConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path string
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr      string
	MaxUploadSize int64
}

// RenderConfig holds page-rendering configuration
type RenderConfig struct {
	Pdftoppm string
	DPI      int
	MaxPages int
	WorkDir  string
}

// LLMConfig holds vision-model configuration
type LLMConfig struct {
	Model         string
	FallbackModel string
	APIKey        string
	Temperature   float32
	PageTimeout   time.Duration
}

// NetSheetConfig holds fallbacks used when the listing lookup misses.
type NetSheetConfig struct {
	ListingsCSV        string
	DefaultAnnualTaxes float64
}

// LoadConfig loads configuration from environment variables.
// A .env file in the working directory is honored when present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./netsheet.db"),
		},
		Server: ServerConfig{
			HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
			MaxUploadSize: getEnvAsInt64("MAX_UPLOAD_BYTES", 25<<20),
		},
		Render: RenderConfig{
			Pdftoppm: getEnv("PDFTOPPM", "pdftoppm"),
			DPI:      getEnvAsInt("RENDER_DPI", 200),
			MaxPages: getEnvAsInt("RENDER_MAX_PAGES", 12),
			WorkDir:  getEnv("RENDER_WORK_DIR", ""),
		},
		LLM: LLMConfig{
			Model:         getEnv("OPENAI_MODEL", "gpt-4o"),
			FallbackModel: getEnv("OPENAI_FALLBACK_MODEL", "gpt-4o-mini"),
			APIKey:        getEnv("OPENAI_API_KEY", ""),
			Temperature:   getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			PageTimeout:   getEnvAsDuration("OPENAI_PAGE_TIMEOUT", 60*time.Second),
		},
		NetSheet: NetSheetConfig{
			ListingsCSV:        getEnv("LISTINGS_CSV", "./listings.csv"),
			DefaultAnnualTaxes: getEnvAsFloat64("DEFAULT_ANNUAL_TAXES", 2000),
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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
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

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
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
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Render.DPI <= 0 {
		return NewAppError("CONFIG_ERROR", "RENDER_DPI must be positive", ErrInvalidInput)
	}
	return nil
}
