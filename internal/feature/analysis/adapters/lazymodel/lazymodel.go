// Package lazymodel はモデルクライアントを初回リクエスト時に構築する PatternClassifier / SentimentScorer を提供します。
package lazymodel

import (
	"context"
	"log/slog"
	"time"

	"signal_backend/internal/feature/analysis/domain"
	"signal_backend/internal/feature/analysis/domain/entity"
	"signal_backend/internal/feature/analysis/usecase"
	"signal_backend/internal/platform/lazy"
)

// Classifier は初回の Classify で内部の分類器を構築します。
type Classifier struct {
	name string
	h    *lazy.Handle[usecase.PatternClassifier]
}

// ClassifierがPatternClassifierを実装していることをコンパイル時に検証します。
var _ usecase.PatternClassifier = (*Classifier)(nil)

// NewClassifier はClassifierの新しいインスタンスを生成します。name はログとエラーに使われます。
func NewClassifier(name string, build func(ctx context.Context) (usecase.PatternClassifier, error)) *Classifier {
	return &Classifier{name: name, h: lazy.New(timed(name, build))}
}

// Classify は構築済みの分類器に委譲します。構築に失敗した場合は外部サービスエラーを返します。
func (c *Classifier) Classify(ctx context.Context, img entity.ChartImage) ([]float64, error) {
	m, err := c.h.Get(ctx)
	if err != nil {
		return nil, domain.NewExternalServiceError(c.name, err)
	}
	return m.Classify(ctx, img)
}

// Ready は分類器が構築済みかを返します。
func (c *Classifier) Ready() bool { return c.h.Ready() }

// Scorer は初回の ScoreBatch で内部のセンチメントモデルを構築します。
type Scorer struct {
	name string
	h    *lazy.Handle[usecase.SentimentScorer]
}

// ScorerがSentimentScorerを実装していることをコンパイル時に検証します。
var _ usecase.SentimentScorer = (*Scorer)(nil)

// NewScorer はScorerの新しいインスタンスを生成します。
func NewScorer(name string, build func(ctx context.Context) (usecase.SentimentScorer, error)) *Scorer {
	return &Scorer{name: name, h: lazy.New(timed(name, build))}
}

// ScoreBatch は構築済みのモデルに委譲します。
func (s *Scorer) ScoreBatch(ctx context.Context, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return []float64{}, nil
	}
	m, err := s.h.Get(ctx)
	if err != nil {
		return nil, domain.NewExternalServiceError(s.name, err)
	}
	return m.ScoreBatch(ctx, texts)
}

// Ready はモデルが構築済みかを返します。
func (s *Scorer) Ready() bool { return s.h.Ready() }

func timed[T any](name string, build func(ctx context.Context) (T, error)) func(ctx context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		started := time.Now()
		v, err := build(ctx)
		if err != nil {
			slog.Error("model initialization failed", "model", name, "error", err)
			return v, err
		}
		slog.Info("model initialized", "model", name, "elapsed", time.Since(started))
		return v, nil
	}
}
