// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	AlphaAPIKey        string // Alpha Vantage API key for market data
	GeminiAPIKey       string // Gemini API key for KPI insights
	DefaultSymbol      string // Ticker used when a request supplies no symbol
	ForecastServiceURL string // Forecaster microservice base URL
	LogLevel           string
	Port               int
	DevMode            bool
}

// Load reads configuration from environment variables.
// A .env file in the working directory is honored if present.
// Configuration is read once at startup and treated as immutable afterwards.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AlphaAPIKey:        getEnv("ALPHA_API_KEY", ""),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		DefaultSymbol:      getEnv("SYMBOL", "AAPL"),
		ForecastServiceURL: getEnv("FORECAST_SERVICE_URL", "http://localhost:9000"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Port:               getEnvAsInt("GO_PORT", 8000),
		DevMode:            getEnvAsBool("DEV_MODE", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DefaultSymbol == "" {
		return fmt.Errorf("default symbol must not be empty")
	}

	// API keys are optional at startup: endpoints that need a missing key
	// surface the provider error at request time instead.

	return nil
}

// Helper functions
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
