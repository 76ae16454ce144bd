package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"signal_backend/internal/feature/analysis/domain"
	"signal_backend/internal/feature/analysis/domain/entity"
)

const (
	// DefaultMinFetchSpan は取得期間の下限です。週末や祝日を跨いでも直近のバーが取れる長さにしています。
	DefaultMinFetchSpan = 96 * time.Hour
	// fetchPaddingBars は ATR のウォームアップに加えて余分に取得するバー数です。
	fetchPaddingBars = 10
)

// DefaultIntervalSettings は探索する (時間足, ルックバック) の既定の順序です。
var DefaultIntervalSettings = []entity.IntervalSetting{
	{IntervalMinutes: 1, LookbackBars: 30},
	{IntervalMinutes: 1, LookbackBars: 15},
	{IntervalMinutes: 1, LookbackBars: 60},
	{IntervalMinutes: 5, LookbackBars: 15},
	{IntervalMinutes: 5, LookbackBars: 30},
	{IntervalMinutes: 15, LookbackBars: 15},
}

// WindowScanner は価格ウィンドウからパターンシグナルを判定します。
type WindowScanner interface {
	Scan(ctx context.Context, window entity.PriceSeries) (entity.PatternResult, error)
}

// SearchConfig は複数時間足探索の設定です。
type SearchConfig struct {
	Settings     []entity.IntervalSetting
	ATRPeriod    int
	MinFetchSpan time.Duration
	DataDelay    time.Duration // now から差し引く遅延（市場が閉まっている時間帯の開発用）
}

// SearchOutcome は探索結果です。Window は Signal が 0 の場合、最後に有効だったウィンドウになります。
type SearchOutcome struct {
	Result  entity.PatternResult
	Setting entity.IntervalSetting
	Window  entity.PriceSeries
}

// TimeframeSearch は設定順に時間足を試し、最初に方向性のあるパターンが出た結果を採用します。
type TimeframeSearch struct {
	market  MarketRepository
	scanner WindowScanner
	cfg     SearchConfig
}

// NewTimeframeSearch はTimeframeSearchの新しいインスタンスを生成します。
func NewTimeframeSearch(market MarketRepository, scanner WindowScanner, cfg SearchConfig) *TimeframeSearch {
	if len(cfg.Settings) == 0 {
		cfg.Settings = DefaultIntervalSettings
	}
	if cfg.ATRPeriod <= 0 {
		cfg.ATRPeriod = DefaultATRPeriod
	}
	if cfg.MinFetchSpan <= 0 {
		cfg.MinFetchSpan = DefaultMinFetchSpan
	}
	return &TimeframeSearch{market: market, scanner: scanner, cfg: cfg}
}

// Search は ticker について各設定を順に評価します。
// どの設定でも有効なウィンドウが得られなかった場合は domain.ErrInsufficientData を返します。
func (ts *TimeframeSearch) Search(ctx context.Context, ticker string, now time.Time) (SearchOutcome, error) {
	var (
		last     *SearchOutcome
		failures []error
	)

	for _, setting := range ts.cfg.Settings {
		if err := ctx.Err(); err != nil {
			return SearchOutcome{}, err
		}

		window, err := ts.loadWindow(ctx, ticker, setting, now)
		if err != nil {
			slog.Info("timeframe skipped", "ticker", ticker, "setting", setting.String(), "error", err)
			failures = append(failures, fmt.Errorf("%s: %w", setting, err))
			continue
		}

		result, err := ts.scanner.Scan(ctx, window)
		if err != nil {
			// 分類器の失敗はシグナルなしとして扱い、次の設定へ進む
			slog.Warn("pattern scan failed", "ticker", ticker, "setting", setting.String(), "error", err)
			result = entity.NoPattern()
		}

		outcome := SearchOutcome{Result: result, Setting: setting, Window: window}
		if result.Signal != 0 {
			slog.Info("pattern found", "ticker", ticker, "setting", setting.String(), "pattern", result.Label, "confidence", result.Confidence)
			return outcome, nil
		}
		last = &outcome
	}

	if last == nil {
		return SearchOutcome{}, fmt.Errorf("%w: no usable timeframe for %s: %w", domain.ErrInsufficientData, ticker, errors.Join(failures...))
	}
	last.Result = entity.PatternResult{Signal: 0, Label: entity.NoPatternLabel, Confidence: last.Result.Confidence}
	return *last, nil
}

// loadWindow は1つの設定について価格を取得し、ATR 付きの直近 lookback 本を返します。
func (ts *TimeframeSearch) loadWindow(ctx context.Context, ticker string, setting entity.IntervalSetting, now time.Time) (entity.PriceSeries, error) {
	if setting.IntervalMinutes <= 0 || setting.LookbackBars <= 0 {
		return entity.PriceSeries{}, &domain.InsufficientDataError{Reason: fmt.Sprintf("invalid setting %s", setting)}
	}

	start, end := ts.fetchRange(setting, now)
	bars, err := ts.market.FetchBars(ctx, ticker, setting.Interval(), start, end)
	if err != nil {
		return entity.PriceSeries{}, fmt.Errorf("failed to fetch bars: %w", err)
	}

	series := entity.NewPriceSeries(ticker, setting.Interval(), bars)
	atr, err := CalculateATR(series.Bars, ts.cfg.ATRPeriod)
	if err != nil {
		return entity.PriceSeries{}, err
	}
	series.ATR = atr

	defined := series.DropUndefinedATR()
	if defined.Len() < setting.LookbackBars {
		return entity.PriceSeries{}, &domain.InsufficientDataError{
			Reason: fmt.Sprintf("need %d bars with ATR, got %d", setting.LookbackBars, defined.Len()),
		}
	}
	return defined.Tail(setting.LookbackBars), nil
}

// fetchRange は取得期間を計算します。終端は now - DataDelay です。
func (ts *TimeframeSearch) fetchRange(setting entity.IntervalSetting, now time.Time) (time.Time, time.Time) {
	end := now.Add(-ts.cfg.DataDelay)
	span := setting.Interval().Duration() * time.Duration(setting.LookbackBars+ts.cfg.ATRPeriod+fetchPaddingBars)
	if span < ts.cfg.MinFetchSpan {
		span = ts.cfg.MinFetchSpan
	}
	return end.Add(-span), end
}
