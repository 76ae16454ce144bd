// Package twelvedata provides a market-data client for the Twelve Data API.
package twelvedata

import (
	"os"
	"time"
)

const defaultBaseURL = "https://api.twelvedata.com"

// Config holds configuration for the Twelve Data API client.
type Config struct {
	TwelveDataAPIKey string        // API key for authentication
	BaseURL          string        // Base URL for the API (e.g., "https://api.twelvedata.com")
	Timeout          time.Duration // HTTP request timeout
	Timezone         string        // Timezone the API reports datetimes in; bars are converted to UTC
}

// LoadConfig loads Twelve Data configuration from environment variables.
func LoadConfig() Config {
	baseURL := os.Getenv("TWELVE_DATA_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return Config{
		TwelveDataAPIKey: os.Getenv("TWELVE_DATA_API_KEY"),
		BaseURL:          baseURL,
		Timeout:          10 * time.Second,
		Timezone:         "UTC",
	}
}
