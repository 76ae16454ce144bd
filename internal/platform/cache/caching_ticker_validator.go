package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"signal_backend/internal/feature/analysis/usecase"
)

const (
	existsValue  = "1"
	missingValue = "0"
	// defaultNegativeTTL は存在しない銘柄の結果を保持する期間です。新規上場に追従できるよう短くしています。
	defaultNegativeTTL = 10 * time.Minute
)

// CachingTickerValidator decorates a TickerValidator with Redis caching.
// Positive answers live until ttlFunc says so (by default the next catalog refresh);
// negative answers expire after a short fixed TTL.
type CachingTickerValidator struct {
	inner       usecase.TickerValidator
	rdb         *redis.Client
	ttlFunc     func() time.Duration
	negativeTTL time.Duration
	namespace   string
}

var _ usecase.TickerValidator = (*CachingTickerValidator)(nil)

// NewCachingTickerValidator decorates a TickerValidator with Redis caching.
// If ttlFunc is nil, positive entries live for 24 hours. If namespace is empty, it uses "ticker".
func NewCachingTickerValidator(rdb *redis.Client, ttlFunc func() time.Duration, inner usecase.TickerValidator, namespace string) *CachingTickerValidator {
	if ttlFunc == nil {
		ttlFunc = func() time.Duration { return 24 * time.Hour }
	}
	if namespace == "" {
		namespace = "ticker"
	}
	return &CachingTickerValidator{
		inner:       inner,
		rdb:         rdb,
		ttlFunc:     ttlFunc,
		negativeTTL: defaultNegativeTTL,
		namespace:   namespace,
	}
}

// Exists checks the cache first, then falls back to the inner validator.
func (c *CachingTickerValidator) Exists(ctx context.Context, ticker string) (bool, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.Exists(ctx, ticker)
	}

	key := c.cacheKey(ticker)

	// 1) Check cache
	if v, err := c.rdb.Get(ctx, key).Result(); err == nil {
		switch v {
		case existsValue:
			return true, nil
		case missingValue:
			return false, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to the inner validator
	ok, err := c.inner.Exists(ctx, ticker)
	if err != nil {
		return false, err
	}

	// 3) Store in cache (best effort)
	if ok {
		_ = c.rdb.Set(ctx, key, existsValue, c.ttlFunc()).Err()
	} else {
		_ = c.rdb.Set(ctx, key, missingValue, c.negativeTTL).Err()
	}
	return ok, nil
}

// cacheKey generates a cache key for a ticker.
func (c *CachingTickerValidator) cacheKey(ticker string) string {
	return fmt.Sprintf("%s:exists:%s", c.namespace, safe(strings.ToUpper(ticker)))
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
