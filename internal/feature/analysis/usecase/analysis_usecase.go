package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"signal_backend/internal/feature/analysis/domain"
	"signal_backend/internal/feature/analysis/domain/entity"
)

// AnalysisUsecase は銘柄の存在確認、複数時間足のパターン探索、ニュースのセンチメント集計を行い、
// トレードシグナルを組み立てます。
type AnalysisUsecase struct {
	validator TickerValidator
	search    *TimeframeSearch
	fuser     *SentimentFuser
	composer  *SignalComposer
	locator   ExchangeLocator
	now       func() time.Time
}

// NewAnalysisUsecase はAnalysisUsecaseの新しいインスタンスを生成します。
func NewAnalysisUsecase(validator TickerValidator, search *TimeframeSearch, fuser *SentimentFuser, composer *SignalComposer, locator ExchangeLocator) *AnalysisUsecase {
	return &AnalysisUsecase{
		validator: validator,
		search:    search,
		fuser:     fuser,
		composer:  composer,
		locator:   locator,
		now:       time.Now,
	}
}

// Analyze は ticker のトレードシグナルを返します。
// 銘柄が存在しない場合は domain.ErrInvalidTicker、損切り水準が不正な場合は domain.ErrDegenerateRisk を返します。
func (uc *AnalysisUsecase) Analyze(ctx context.Context, ticker string, params RiskParams) (entity.TradeSignal, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return entity.TradeSignal{}, domain.ErrInvalidTicker
	}
	if err := params.Validate(); err != nil {
		return entity.TradeSignal{}, err
	}

	ok, err := uc.validator.Exists(ctx, ticker)
	if err != nil {
		return entity.TradeSignal{}, fmt.Errorf("failed to validate ticker %s: %w", ticker, err)
	}
	if !ok {
		return entity.TradeSignal{}, fmt.Errorf("%w: %s", domain.ErrInvalidTicker, ticker)
	}

	now := uc.now()
	outcome, err := uc.search.Search(ctx, ticker, now)
	if err != nil {
		return entity.TradeSignal{}, fmt.Errorf("pattern search failed for %s: %w", ticker, err)
	}

	var loc *time.Location
	marketOpen := false
	if uc.locator != nil {
		loc = uc.locator.Location(ticker)
		marketOpen = uc.locator.IsOpen(ticker, now)
	}
	sentiment, articles := uc.fuser.Fuse(ctx, ticker, PreMarketWindow(now, loc))

	price, _ := outcome.Window.LastClose()
	atr, ok := outcome.Window.LastATR()
	if !ok {
		atr = math.NaN()
	}
	setting := outcome.Setting

	signal, err := uc.composer.Compose(ComposeInput{
		PatternSignal: outcome.Result.Signal,
		PatternLabel:  outcome.Result.Label,
		Sentiment:     sentiment,
		Articles:      articles,
		ATR:           atr,
		Price:         price,
		Highs:         outcome.Window.Highs(),
		Lows:          outcome.Window.Lows(),
		Timeframe:     &setting,
		Params:        params,
	})
	if err != nil {
		return entity.TradeSignal{}, err
	}

	slog.Info("trade signal composed",
		"ticker", ticker,
		"direction", string(signal.Direction),
		"pattern", signal.PatternLabel,
		"timeframe", setting.String(),
		"sentiment", signal.SentimentScore,
		"articles", len(signal.Articles),
		"market_open", marketOpen,
	)
	return signal, nil
}
