package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"signal_backend/internal/feature/analysis/domain"
	"signal_backend/internal/feature/analysis/domain/entity"
)

// DefaultConfidenceThreshold はパターンを採用する最小確率です。
const DefaultConfidenceThreshold = 0.5

// PatternScanner は価格ウィンドウをチャート画像に描画し、分類器でパターンを判定します。
type PatternScanner struct {
	renderer   ChartRenderer
	classifier PatternClassifier
	tempRoot   string
	threshold  float64
}

// NewPatternScanner はPatternScannerの新しいインスタンスを生成します。
// tempRoot は描画用の一時ディレクトリを作る親ディレクトリで、空の場合は os.TempDir() を使います。
func NewPatternScanner(renderer ChartRenderer, classifier PatternClassifier, tempRoot string, threshold float64) *PatternScanner {
	if tempRoot == "" {
		tempRoot = os.TempDir()
	}
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	return &PatternScanner{renderer: renderer, classifier: classifier, tempRoot: tempRoot, threshold: threshold}
}

// Scan は window の終値チャートを分類し、パターンシグナルを返します。
//
// 描画できない場合は分類器を呼ばずに NoPattern を返します。
// 分類器の失敗や不正な出力は *domain.ExternalServiceError として返します。
// 一時ディレクトリはどの経路でも削除されます。
func (s *PatternScanner) Scan(ctx context.Context, window entity.PriceSeries) (entity.PatternResult, error) {
	if err := os.MkdirAll(s.tempRoot, 0o755); err != nil {
		return entity.NoPattern(), fmt.Errorf("failed to create temp root: %w", err)
	}
	dir, err := os.MkdirTemp(s.tempRoot, "chart-*")
	if err != nil {
		return entity.NoPattern(), fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			slog.Warn("failed to remove chart temp dir", "dir", dir, "error", rmErr)
		}
	}()

	img, err := s.renderer.Render(dir, window.Closes())
	if err != nil {
		slog.Debug("chart render skipped", "ticker", window.Ticker, "interval", window.Interval.String(), "error", err)
		return entity.NoPattern(), nil
	}

	probs, err := s.classifier.Classify(ctx, img)
	if err != nil {
		return entity.NoPattern(), domain.NewExternalServiceError("pattern classifier", err)
	}
	if len(probs) != entity.PatternClassCount {
		return entity.NoPattern(), domain.NewExternalServiceError("pattern classifier",
			fmt.Errorf("expected %d probabilities, got %d", entity.PatternClassCount, len(probs)))
	}

	return s.decide(probs), nil
}

// decide は確率分布から最尤クラスを選び、閾値とクラスの向きでシグナルに変換します。
func (s *PatternScanner) decide(probs []float64) entity.PatternResult {
	best := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}
	class := entity.PatternClass(best)
	confidence := probs[best]

	if !finite(confidence) {
		return entity.NoPattern()
	}
	if confidence < s.threshold {
		return entity.PatternResult{Signal: 0, Label: entity.NoPatternLabel, Confidence: confidence}
	}
	return entity.PatternResult{Signal: class.Bias(), Label: class.Label(), Confidence: confidence}
}
