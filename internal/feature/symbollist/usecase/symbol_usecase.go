// Package usecase implements the business logic for the ticker catalog.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"signal_backend/internal/feature/symbollist/domain/entity"
)

// SymbolRepository abstracts the persistence layer for the ticker catalog.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type SymbolRepository interface {
	ListActive(ctx context.Context) ([]entity.Symbol, error)
	ListActiveCodes(ctx context.Context) ([]string, error)
	UpsertBatch(ctx context.Context, symbols []entity.Symbol) error
	Deactivate(ctx context.Context, codes []string) error
	Exists(ctx context.Context, code string) (bool, error)
}

// SymbolSource lists the tickers known to the market-data provider.
type SymbolSource interface {
	ListSymbols(ctx context.Context) ([]entity.Symbol, error)
}

// RemoteValidator checks a single ticker against the market-data provider.
type RemoteValidator interface {
	Exists(ctx context.Context, ticker string) (bool, error)
}

// SymbolUsecase provides business logic for catalog operations.
type SymbolUsecase struct {
	repo   SymbolRepository
	source SymbolSource
	remote RemoteValidator
}

// NewSymbolUsecase creates a new SymbolUsecase.
// source and remote may be nil; sync then fails and Exists answers from the catalog only.
func NewSymbolUsecase(r SymbolRepository, source SymbolSource, remote RemoteValidator) *SymbolUsecase {
	return &SymbolUsecase{repo: r, source: source, remote: remote}
}

// ListActiveSymbols returns all active symbols from the repository.
func (u *SymbolUsecase) ListActiveSymbols(ctx context.Context) ([]entity.Symbol, error) {
	return u.repo.ListActive(ctx)
}

// Exists reports whether ticker is tradable.
// A catalog hit answers immediately; a miss falls through to the remote provider
// because the catalog only mirrors the provider's default market.
func (u *SymbolUsecase) Exists(ctx context.Context, ticker string) (bool, error) {
	code := strings.ToUpper(strings.TrimSpace(ticker))
	if code == "" {
		return false, nil
	}

	ok, err := u.repo.Exists(ctx, code)
	if err != nil {
		slog.Warn("catalog lookup failed, asking remote", "ticker", code, "error", err)
	} else if ok {
		return true, nil
	}

	if u.remote == nil {
		return false, err
	}
	return u.remote.Exists(ctx, code)
}

// SyncCatalog replaces the catalog contents with the provider's current list.
// Symbols that disappeared from the provider are deactivated, not deleted.
// It returns the number of symbols upserted.
func (u *SymbolUsecase) SyncCatalog(ctx context.Context) (int, error) {
	if u.source == nil {
		return 0, fmt.Errorf("catalog sync: no symbol source configured")
	}

	symbols, err := u.source.ListSymbols(ctx)
	if err != nil {
		return 0, fmt.Errorf("catalog sync: list symbols: %w", err)
	}
	if len(symbols) == 0 {
		// 空の一覧で全銘柄を無効化しないようにする
		return 0, fmt.Errorf("catalog sync: provider returned no symbols")
	}

	seen := make(map[string]struct{}, len(symbols))
	for i := range symbols {
		symbols[i].Code = strings.ToUpper(symbols[i].Code)
		symbols[i].IsActive = true
		seen[symbols[i].Code] = struct{}{}
	}

	current, err := u.repo.ListActiveCodes(ctx)
	if err != nil {
		return 0, fmt.Errorf("catalog sync: list current codes: %w", err)
	}
	if err := u.repo.UpsertBatch(ctx, symbols); err != nil {
		return 0, fmt.Errorf("catalog sync: upsert: %w", err)
	}

	var stale []string
	for _, code := range current {
		if _, ok := seen[code]; !ok {
			stale = append(stale, code)
		}
	}
	if len(stale) > 0 {
		if err := u.repo.Deactivate(ctx, stale); err != nil {
			return 0, fmt.Errorf("catalog sync: deactivate: %w", err)
		}
	}

	slog.Info("catalog synced", "upserted", len(symbols), "deactivated", len(stale))
	return len(symbols), nil
}
