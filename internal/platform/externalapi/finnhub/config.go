// Package finnhub provides a company-news client for the Finnhub API.
package finnhub

import (
	"os"
	"time"
)

const defaultBaseURL = "https://finnhub.io/api/v1"

// Config holds configuration for the Finnhub API client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	MaxNews int
}

// LoadConfig loads Finnhub configuration from environment variables.
func LoadConfig() Config {
	baseURL := os.Getenv("FINNHUB_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return Config{
		APIKey:  os.Getenv("FINNHUB_API_KEY"),
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
		MaxNews: 15,
	}
}
