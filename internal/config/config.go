// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"time"
)

// TrackerConfig holds the caps and timing knobs for a tracking run.
type TrackerConfig struct {
	MaxPrompts          int
	MaxCompetitors      int
	MaxAttempts         int
	RetryBackoffBase    time.Duration
	RunTimeout          time.Duration
	PlatformConcurrency int
	PlatformRateLimit   float64 // requests per second, per platform
	ExtractionTimeout   time.Duration
	PricePerEvent       float64
}

// BrightDataConfig holds settings for the dataset trigger/poll flow used by
// the interactive-session platform adapter.
type BrightDataConfig struct {
	APIKey    string
	DatasetID string
	BaseURL   string
}

type Config struct {
	Port              string
	Environment       string
	InngestEventKey   string
	InngestSigningKey string
	OpenAIAPIKey      string
	AnthropicAPIKey   string
	PerplexityAPIKey  string
	PerplexityBaseURL string
	DatabaseURL       string
	OpenAIModel       string
	AnthropicModel    string
	PerplexityModel   string
	ExtractionModel   string
	BrightData        BrightDataConfig
	Tracker           TrackerConfig
}

func Load() *Config {
	return &Config{
		Port:              getEnv("PORT", "8000"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		InngestEventKey:   os.Getenv("INNGEST_EVENT_KEY"),
		InngestSigningKey: os.Getenv("INNGEST_SIGNING_KEY"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		PerplexityAPIKey:  os.Getenv("PERPLEXITY_API_KEY"),
		PerplexityBaseURL: getEnv("PERPLEXITY_BASE_URL", "https://api.perplexity.ai"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4.1"),
		AnthropicModel:    getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		PerplexityModel:   getEnv("PERPLEXITY_MODEL", "sonar"),
		ExtractionModel:   getEnv("EXTRACTION_MODEL", "gpt-4.1-mini"),
		BrightData: BrightDataConfig{
			APIKey:    os.Getenv("BRIGHTDATA_API_KEY"),
			DatasetID: getEnv("BRIGHTDATA_DATASET_ID", "gd_gemini_chat"),
			BaseURL:   getEnv("BRIGHTDATA_BASE_URL", "https://api.brightdata.com/datasets/v3"),
		},
		Tracker: TrackerConfig{
			MaxPrompts:          getEnvInt("TRACKER_MAX_PROMPTS", 15),
			MaxCompetitors:      getEnvInt("TRACKER_MAX_COMPETITORS", 10),
			MaxAttempts:         getEnvInt("TRACKER_MAX_ATTEMPTS", 3),
			RetryBackoffBase:    getEnvDuration("TRACKER_RETRY_BACKOFF_BASE", time.Second),
			RunTimeout:          getEnvDuration("TRACKER_RUN_TIMEOUT", 15*time.Minute),
			PlatformConcurrency: getEnvInt("TRACKER_PLATFORM_CONCURRENCY", 5),
			PlatformRateLimit:   getEnvFloat("TRACKER_PLATFORM_RATE_LIMIT", 2.0),
			ExtractionTimeout:   getEnvDuration("TRACKER_EXTRACTION_TIMEOUT", 45*time.Second),
			PricePerEvent:       getEnvFloat("TRACKER_PRICE_PER_EVENT", 0.02),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
