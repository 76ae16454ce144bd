// Package usecase はトレードシグナル判定エンジンのビジネスロジックを実装します。
package usecase

import (
	"context"
	"time"

	"signal_backend/internal/feature/analysis/domain/entity"
)

// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。

// MarketRepository は指定期間の OHLCV バーを外部 API から取得します。
type MarketRepository interface {
	FetchBars(ctx context.Context, ticker string, interval entity.Interval, start, end time.Time) ([]entity.Bar, error)
}

// TickerValidator は銘柄コードがデータ提供元に存在するかを判定します。
type TickerValidator interface {
	Exists(ctx context.Context, ticker string) (bool, error)
}

// NewsProvider はニュース記事の取得元を表します。
type NewsProvider interface {
	// Name はログと記事の Source に使う提供元名です。
	Name() string
	// MaxArticles は1リクエストで取得する最大件数です。
	MaxArticles() int
	FetchArticles(ctx context.Context, ticker string, start, end time.Time, max int) ([]entity.RawArticle, error)
}

// SentimentScorer はテキスト群を入力順に [-1, 1] の極性スコアへ変換します。
type SentimentScorer interface {
	ScoreBatch(ctx context.Context, texts []string) ([]float64, error)
}

// PatternClassifier はチャート画像を7クラスの確率分布に分類します。
type PatternClassifier interface {
	Classify(ctx context.Context, img entity.ChartImage) ([]float64, error)
}

// ChartRenderer は終値の列を dir 配下の PNG に描画します。
type ChartRenderer interface {
	Render(dir string, closes []float64) (entity.ChartImage, error)
}

// ExchangeLocator は銘柄の上場取引所のタイムゾーンと取引時間を返します。
type ExchangeLocator interface {
	Location(ticker string) *time.Location
	IsOpen(ticker string, t time.Time) bool
}
