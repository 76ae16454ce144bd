// Package cache provides Redis-backed decorators for the analysis collaborators.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"signal_backend/internal/feature/analysis/usecase"
)

// CachingSentimentScorer decorates a SentimentScorer with a per-text Redis cache.
// Scores are deterministic for a given text, so only texts missing from the cache
// are sent to the inner scorer, in a single batch.
type CachingSentimentScorer struct {
	inner     usecase.SentimentScorer
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.SentimentScorer = (*CachingSentimentScorer)(nil)

// NewCachingSentimentScorer decorates a SentimentScorer with Redis caching.
// If ttl is 0, it defaults to 24 hours. If namespace is empty, it uses "sentiment".
func NewCachingSentimentScorer(rdb *redis.Client, ttl time.Duration, inner usecase.SentimentScorer, namespace string) *CachingSentimentScorer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if namespace == "" {
		namespace = "sentiment"
	}
	return &CachingSentimentScorer{inner: inner, rdb: rdb, ttl: ttl, namespace: namespace}
}

// ScoreBatch returns cached scores where available and scores the rest with the inner scorer.
func (c *CachingSentimentScorer) ScoreBatch(ctx context.Context, texts []string) ([]float64, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil || len(texts) == 0 {
		return c.inner.ScoreBatch(ctx, texts)
	}

	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = c.cacheKey(t)
	}

	out := make([]float64, len(texts))
	var missIdx []int

	// 1) Check cache
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		slog.Warn("sentiment cache read failed", "error", err)
		vals = make([]any, len(keys))
	}
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			missIdx = append(missIdx, i)
			continue
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			// Delete corrupted cache entry
			_ = c.rdb.Del(ctx, keys[i]).Err()
			missIdx = append(missIdx, i)
			continue
		}
		out[i] = f
	}
	if len(missIdx) == 0 {
		return out, nil
	}

	// 2) Fallback to the model for misses only
	missTexts := make([]string, len(missIdx))
	for j, i := range missIdx {
		missTexts[j] = texts[i]
	}
	scores, err := c.inner.ScoreBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(scores) != len(missTexts) {
		return nil, fmt.Errorf("sentiment scorer returned %d scores for %d texts", len(scores), len(missTexts))
	}

	// 3) Store in cache (best effort)
	for j, i := range missIdx {
		out[i] = scores[j]
		_ = c.rdb.Set(ctx, keys[i], strconv.FormatFloat(scores[j], 'g', -1, 64), c.ttl).Err()
	}
	return out, nil
}

// cacheKey hashes the text so keys stay short and free of separators.
func (c *CachingSentimentScorer) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%s:%s", c.namespace, hex.EncodeToString(sum[:]))
}
