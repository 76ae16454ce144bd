package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"signal_backend/internal/app/config"
	"signal_backend/internal/feature/analysis/adapters/chart"
	analysisusecase "signal_backend/internal/feature/analysis/usecase"
	"signal_backend/internal/feature/symbollist/domain/entity"
	symbollistusecase "signal_backend/internal/feature/symbollist/usecase"
	"signal_backend/internal/platform/calendar"
	"signal_backend/internal/platform/db"
	"signal_backend/internal/platform/externalapi/polygon"
	"signal_backend/internal/platform/http/handler"
	infraredis "signal_backend/internal/platform/redis"
)

// Container holds the wired application graph.
type Container struct {
	Config    *config.Config
	DB        *gorm.DB
	Redis     *redis.Client // nil when caching is disabled or Redis is unreachable
	Exchanges *calendar.Exchanges
	Symbols   *symbollistusecase.SymbolUsecase
	Analysis  *analysisusecase.AnalysisUsecase
	Health    *handler.HealthHandler
}

// OpenCatalogDB connects the ticker catalog database.
func OpenCatalogDB() (*gorm.DB, error) {
	gdb, err := db.OpenDB(db.LoadConfigFromEnv(), &entity.Symbol{})
	if err != nil {
		return nil, fmt.Errorf("open catalog database: %w", err)
	}
	return gdb, nil
}

// OpenRedis connects Redis when REDIS_HOST is set.
// Redis is optional: a failed connection is logged and nil is returned so the service runs without cache.
func OpenRedis(ctx context.Context) *redis.Client {
	rcfg := infraredis.LoadConfig()
	if !rcfg.Enabled() {
		slog.Info("REDIS_HOST not set; running without cache")
		return nil
	}
	rdb, err := infraredis.NewRedisClient(ctx, rcfg)
	if err != nil {
		slog.Warn("Redis unavailable; running without cache", "error", err)
		return nil
	}
	return rdb
}

// Build wires every component from cfg.
func Build(ctx context.Context, cfg *config.Config) (*Container, error) {
	gdb, err := OpenCatalogDB()
	if err != nil {
		return nil, err
	}
	rdb := OpenRedis(ctx)

	if err := os.MkdirAll(cfg.Engine.TempRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create chart temp root: %w", err)
	}

	pc := NewPolygonClient()
	warnPolygonBudget(cfg, polygon.LoadConfig().RequestsPerMinute)
	exchanges := calendar.NewExchanges()
	symbols := NewSymbolUsecase(gdb, pc)

	market, err := NewMarket(cfg, pc)
	if err != nil {
		return nil, err
	}
	news, err := NewNewsProviders(cfg, pc)
	if err != nil {
		return nil, err
	}
	classifier, err := NewClassifier(cfg)
	if err != nil {
		return nil, err
	}
	scorer, err := NewSentimentScorer(cfg, rdb)
	if err != nil {
		return nil, err
	}

	scanner := analysisusecase.NewPatternScanner(chart.NewPNGRenderer(), classifier, cfg.Engine.TempRoot, cfg.Engine.ConfidenceThreshold)
	search := analysisusecase.NewTimeframeSearch(market, scanner, analysisusecase.SearchConfig{
		Settings:     cfg.Engine.IntervalSettings,
		ATRPeriod:    cfg.Engine.ATRPeriod,
		MinFetchSpan: cfg.Engine.MinFetchSpan,
		DataDelay:    cfg.Engine.DataDelay,
	})
	analysis := analysisusecase.NewAnalysisUsecase(
		NewTickerValidator(cfg, rdb, symbols, exchanges),
		search,
		analysisusecase.NewSentimentFuser(scorer, news...),
		analysisusecase.NewSignalComposer(),
		exchanges,
	)

	health := handler.NewHealthHandler(0)
	health.Register("database", func(ctx context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	if rdb != nil {
		health.Register("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	return &Container{
		Config:    cfg,
		DB:        gdb,
		Redis:     rdb,
		Exchanges: exchanges,
		Symbols:   symbols,
		Analysis:  analysis,
		Health:    health,
	}, nil
}

// Close releases the Redis and database connections.
func (c *Container) Close() error {
	var errs []error
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close database: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}
