package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"signal_backend/internal/app/config"
	"signal_backend/internal/app/di"
	"signal_backend/internal/app/router"
	"signal_backend/internal/feature/analysis/transport/handler"
	symbollisthandler "signal_backend/internal/feature/symbollist/transport/handler"
	"signal_backend/internal/platform/calendar"
	"signal_backend/internal/platform/scheduler"
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}
	slog.SetDefault(newLogger())

	cfg, err := config.Load(config.PathFromEnv())
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := di.Build(ctx, cfg)
	if err != nil {
		slog.Error("failed to build application", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			slog.Error("failed to close resources", "error", err)
		}
	}()

	// 銘柄カタログの定期同期
	sched := scheduler.New(ctx, app.Exchanges.MICLocation(calendar.DefaultMIC), cfg.Schedule.JobTimeout)
	if err := sched.Register("symbol-sync", cfg.Schedule.SymbolSyncCron, func(ctx context.Context) error {
		_, err := app.Symbols.SyncCatalog(ctx)
		return err
	}); err != nil {
		slog.Error("failed to register scheduled task", "error", err)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	r := router.NewRouter(cfg.Server.CORSOrigins,
		handler.NewAnalysisHandler(app.Analysis, cfg.RiskParams()),
		symbollisthandler.NewSymbolHandler(app.Symbols),
		app.Health,
	)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}

// newLogger は LOG_FORMAT（json / text）と LOG_LEVEL から slog のロガーを作ります。
func newLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(os.Getenv("LOG_LEVEL"))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
