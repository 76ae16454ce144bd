package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"google.golang.org/genai"

	"signal_backend/internal/feature/analysis/usecase"
)

const sentimentPrompt = `You are a financial news sentiment model.
For each text in the JSON array below, output its market sentiment polarity as a number in [-1, 1],
where -1 is strongly negative, 0 is neutral and 1 is strongly positive.
Respond with only a JSON array of numbers, one per input, in input order.

Texts:
%s`

// SentimentScorer はGeminiで記事本文をまとめて採点します。
type SentimentScorer struct {
	generate generateFunc
}

// SentimentScorerがusecase.SentimentScorerを実装していることをコンパイル時に検証します。
var _ usecase.SentimentScorer = (*SentimentScorer)(nil)

// NewSentimentScorer はSentimentScorerの新しいインスタンスを生成します。
func NewSentimentScorer(ctx context.Context, cfg Config) (*SentimentScorer, error) {
	gen, err := newGenerator(ctx, cfg.Model)
	if err != nil {
		return nil, err
	}
	return &SentimentScorer{generate: gen}, nil
}

// ScoreBatch は texts を1回のリクエストで採点し、入力順のスコアを返します。
func (s *SentimentScorer) ScoreBatch(ctx context.Context, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return []float64{}, nil
	}
	payload, err := json.Marshal(texts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode texts: %w", err)
	}

	text, err := s.generate(ctx, genai.Text(fmt.Sprintf(sentimentPrompt, payload)), deterministicJSON())
	if err != nil {
		return nil, err
	}
	scores, err := parseFloatArray(text)
	if err != nil {
		return nil, err
	}
	if len(scores) != len(texts) {
		return nil, fmt.Errorf("expected %d scores, got %d", len(texts), len(scores))
	}
	for i, v := range scores {
		scores[i] = math.Max(-1, math.Min(1, v))
	}
	return scores, nil
}
