package gemini

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	"google.golang.org/genai"

	"signal_backend/internal/feature/analysis/domain/entity"
	"signal_backend/internal/feature/analysis/usecase"
)

const classifierPrompt = `The image is a %dx%d close-price line chart with no axes.
Classify the chart pattern. Respond with only a JSON array of %d probabilities that sum to 1,
in this exact class order: %s.`

// PatternClassifier はGeminiのマルチモーダル入力でチャート画像を分類します。
type PatternClassifier struct {
	generate generateFunc
}

// PatternClassifierがusecase.PatternClassifierを実装していることをコンパイル時に検証します。
var _ usecase.PatternClassifier = (*PatternClassifier)(nil)

// NewPatternClassifier はPatternClassifierの新しいインスタンスを生成します。
func NewPatternClassifier(ctx context.Context, cfg Config) (*PatternClassifier, error) {
	gen, err := newGenerator(ctx, cfg.Model)
	if err != nil {
		return nil, err
	}
	return &PatternClassifier{generate: gen}, nil
}

// Classify は画像を読み込み、7クラスの確率分布を返します。
func (c *PatternClassifier) Classify(ctx context.Context, img entity.ChartImage) ([]float64, error) {
	data, err := os.ReadFile(img.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chart image: %w", err)
	}

	prompt := fmt.Sprintf(classifierPrompt, img.Width, img.Height, entity.PatternClassCount,
		strings.Join(entity.PatternClassNames[:], ", "))
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(data, "image/png"),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	text, err := c.generate(ctx, contents, deterministicJSON())
	if err != nil {
		return nil, err
	}
	probs, err := parseFloatArray(text)
	if err != nil {
		return nil, err
	}
	if len(probs) != entity.PatternClassCount {
		return nil, fmt.Errorf("expected %d probabilities, got %d", entity.PatternClassCount, len(probs))
	}
	return normalize(probs), nil
}

// normalize は負の値を0に切り詰め、合計が1になるように正規化します。
func normalize(probs []float64) []float64 {
	var sum float64
	for i, p := range probs {
		if math.IsNaN(p) || p < 0 {
			probs[i] = 0
		}
		sum += probs[i]
	}
	if sum == 0 {
		return probs
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
