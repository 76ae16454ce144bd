// Package di provides dependency injection factories for creating application components.
package di

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"signal_backend/internal/app/config"
	"signal_backend/internal/feature/analysis/usecase"
	"signal_backend/internal/platform/externalapi/finnhub"
	"signal_backend/internal/platform/externalapi/polygon"
	"signal_backend/internal/platform/externalapi/twelvedata"
	infrahttp "signal_backend/internal/platform/http"
	"signal_backend/internal/shared/ratelimiter"
)

// NewPolygonClient creates a rate-limited Polygon client shared by bars, news and reference lookups.
func NewPolygonClient() *polygon.Client {
	cfg := polygon.LoadConfig()
	httpClient := infrahttp.NewHTTPClient(infrahttp.ClientOptions{Timeout: cfg.Timeout})
	limiter := ratelimiter.NewRateLimiter(cfg.RequestsPerMinute, time.Minute)
	return polygon.NewClient(cfg, httpClient, limiter)
}

// PolygonCallsPerAnalysis returns the worst-case number of Polygon requests one analysis makes:
// a remote ticker check, one aggregate fetch per interval setting and one news call.
func PolygonCallsPerAnalysis(cfg *config.Config) int {
	calls := 1
	if cfg.Market.Provider == config.ProviderPolygon {
		calls += len(cfg.Engine.IntervalSettings)
	}
	if slices.Contains(cfg.News.Providers, config.ProviderPolygon) {
		calls++
	}
	return calls
}

// warnPolygonBudget logs when a single analysis can exceed the per-minute Polygon limit.
// Requests over the limit block in the rate limiter until the next window.
func warnPolygonBudget(cfg *config.Config, requestsPerMinute int) bool {
	calls := PolygonCallsPerAnalysis(cfg)
	if requestsPerMinute <= 0 || calls <= requestsPerMinute {
		return false
	}
	slog.Warn("Polygon rate limit is below the calls of one analysis; requests will wait for the next window",
		"requests_per_minute", requestsPerMinute,
		"calls_per_analysis", calls,
	)
	return true
}

// NewMarket creates the MarketRepository selected by market.provider.
func NewMarket(cfg *config.Config, pc *polygon.Client) (usecase.MarketRepository, error) {
	switch cfg.Market.Provider {
	case config.ProviderPolygon:
		return polygon.NewMarket(pc), nil
	case config.ProviderTwelveData:
		tcfg := twelvedata.LoadConfig()
		httpClient := infrahttp.NewHTTPClient(infrahttp.ClientOptions{Timeout: tcfg.Timeout})
		return twelvedata.NewTwelveDataMarket(tcfg, httpClient), nil
	default:
		return nil, fmt.Errorf("unknown market provider %q", cfg.Market.Provider)
	}
}

// NewNewsProviders creates the news providers listed in news.providers, in order.
func NewNewsProviders(cfg *config.Config, pc *polygon.Client) ([]usecase.NewsProvider, error) {
	providers := make([]usecase.NewsProvider, 0, len(cfg.News.Providers))
	for _, name := range cfg.News.Providers {
		switch name {
		case config.ProviderPolygon:
			providers = append(providers, polygon.NewNews(pc))
		case config.ProviderFinnhub:
			fcfg := finnhub.LoadConfig()
			httpClient := infrahttp.NewHTTPClient(infrahttp.ClientOptions{Timeout: fcfg.Timeout})
			providers = append(providers, finnhub.NewNews(fcfg, httpClient))
		default:
			return nil, fmt.Errorf("unknown news provider %q", name)
		}
	}
	return providers, nil
}
