package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"signal_backend/internal/app/config"
	analysisusecase "signal_backend/internal/feature/analysis/usecase"
	symbollistadapters "signal_backend/internal/feature/symbollist/adapters"
	symbollistusecase "signal_backend/internal/feature/symbollist/usecase"
	"signal_backend/internal/platform/cache"
	"signal_backend/internal/platform/calendar"
	"signal_backend/internal/platform/externalapi/polygon"
)

// SymbolUsecaseがTickerValidatorを実装していることをコンパイル時に検証します。
var _ analysisusecase.TickerValidator = (*symbollistusecase.SymbolUsecase)(nil)

// NewSymbolUsecase creates the catalog usecase backed by gorm, synced from and falling back to Polygon.
func NewSymbolUsecase(db *gorm.DB, pc *polygon.Client) *symbollistusecase.SymbolUsecase {
	tickers := polygon.NewTickers(pc)
	return symbollistusecase.NewSymbolUsecase(symbollistadapters.NewSymbolRepository(db), tickers, tickers)
}

// NewTickerValidator wraps the catalog in the Redis existence cache.
// Positive answers expire at the configured refresh hour in the exchange's local time,
// after the nightly catalog sync.
func NewTickerValidator(cfg *config.Config, rdb *redis.Client, symbols *symbollistusecase.SymbolUsecase, exchanges *calendar.Exchanges) analysisusecase.TickerValidator {
	loc := exchanges.MICLocation(calendar.DefaultMIC)
	ttl := func() time.Duration { return cache.TimeUntilNext(time.Now(), cfg.Cache.RefreshHour, loc) }
	return cache.NewCachingTickerValidator(rdb, ttl, symbols, "ticker")
}
