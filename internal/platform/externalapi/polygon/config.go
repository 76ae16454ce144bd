// Package polygon provides market-data, news and reference clients for the Polygon.io REST API.
package polygon

import (
	"os"
	"strconv"
	"time"
)

const (
	defaultBaseURL = "https://api.polygon.io"
	// defaultRequestsPerMinute は無料プランの上限です。
	defaultRequestsPerMinute = 5
)

// Config holds configuration for the Polygon API client.
type Config struct {
	APIKey            string        // API key for authentication
	BaseURL           string        // Base URL for the API (e.g., "https://api.polygon.io")
	Timeout           time.Duration // HTTP request timeout
	RequestsPerMinute int           // Client-side rate limit; 0 disables it
	MaxNews           int           // Articles requested per news call
}

// LoadConfig loads Polygon configuration from environment variables.
func LoadConfig() Config {
	baseURL := os.Getenv("POLYGON_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	rpm := defaultRequestsPerMinute
	if v, err := strconv.Atoi(os.Getenv("POLYGON_REQUESTS_PER_MINUTE")); err == nil && v >= 0 {
		rpm = v
	}
	return Config{
		APIKey:            os.Getenv("POLYGON_API_KEY"),
		BaseURL:           baseURL,
		Timeout:           10 * time.Second,
		RequestsPerMinute: rpm,
		MaxNews:           10,
	}
}
