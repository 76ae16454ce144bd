package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"signal_backend/internal/app/di"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}

	db, err := di.OpenCatalogDB()
	if err != nil {
		slog.Error("failed to open catalog database", "error", err)
		os.Exit(1)
	}
	uc := di.NewSymbolUsecase(db, di.NewPolygonClient())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	n, err := uc.SyncCatalog(ctx)
	if err != nil {
		slog.Error("catalog sync failed", "error", err)
		os.Exit(1)
	}
	slog.Info("ingest ok", "symbols", n)
}
