package di

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"signal_backend/internal/app/config"
	"signal_backend/internal/feature/analysis/adapters/gemini"
	"signal_backend/internal/feature/analysis/adapters/lazymodel"
	"signal_backend/internal/feature/analysis/usecase"
	"signal_backend/internal/platform/cache"
	"signal_backend/internal/platform/externalapi/huggingface"
	"signal_backend/internal/platform/externalapi/tfserving"
	infrahttp "signal_backend/internal/platform/http"
)

// NewClassifier creates the pattern classifier selected by models.classifier.
// The underlying client is built on the first request; TF Serving is pinged so that
// an unloaded model fails the build and is retried on the next request.
func NewClassifier(cfg *config.Config) (*lazymodel.Classifier, error) {
	switch cfg.Models.Classifier {
	case config.ProviderTFServing:
		return lazymodel.NewClassifier(config.ProviderTFServing, func(ctx context.Context) (usecase.PatternClassifier, error) {
			tcfg := tfserving.LoadConfig()
			c := tfserving.NewPatternClassifier(tcfg, infrahttp.NewHTTPClient(infrahttp.ClientOptions{Timeout: tcfg.Timeout}))
			if err := c.Ping(ctx); err != nil {
				return nil, err
			}
			return c, nil
		}), nil
	case config.ProviderGemini:
		return lazymodel.NewClassifier(config.ProviderGemini, func(ctx context.Context) (usecase.PatternClassifier, error) {
			return gemini.NewPatternClassifier(ctx, gemini.LoadConfig())
		}), nil
	default:
		return nil, fmt.Errorf("unknown classifier %q", cfg.Models.Classifier)
	}
}

// NewSentimentScorer creates the scorer selected by models.sentiment, wrapped in the Redis score cache.
// A nil rdb disables caching.
func NewSentimentScorer(cfg *config.Config, rdb *redis.Client) (usecase.SentimentScorer, error) {
	var inner *lazymodel.Scorer
	switch cfg.Models.Sentiment {
	case config.ProviderHuggingFace:
		inner = lazymodel.NewScorer(config.ProviderHuggingFace, func(context.Context) (usecase.SentimentScorer, error) {
			hcfg := huggingface.LoadConfig()
			if hcfg.Token == "" {
				return nil, fmt.Errorf("HF_API_TOKEN is not set")
			}
			return huggingface.NewSentimentScorer(hcfg, infrahttp.NewHTTPClient(infrahttp.ClientOptions{Timeout: hcfg.Timeout})), nil
		})
	case config.ProviderGemini:
		inner = lazymodel.NewScorer(config.ProviderGemini, func(ctx context.Context) (usecase.SentimentScorer, error) {
			return gemini.NewSentimentScorer(ctx, gemini.LoadConfig())
		})
	default:
		return nil, fmt.Errorf("unknown sentiment model %q", cfg.Models.Sentiment)
	}
	// スコアはモデルごとに異なるため名前空間を分ける
	return cache.NewCachingSentimentScorer(rdb, cfg.Cache.SentimentTTL, inner, "sentiment:"+cfg.Models.Sentiment), nil
}
