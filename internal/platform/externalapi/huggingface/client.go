// Package huggingface は Hugging Face Inference API の金融センチメントモデルを呼び出すクライアントを提供します。
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"signal_backend/internal/feature/analysis/usecase"
)

const defaultSentimentURL = "https://api-inference.huggingface.co/models/yiyanghkust/finbert-tone"

// Config holds configuration for the Hugging Face inference client.
type Config struct {
	Token   string
	URL     string
	Timeout time.Duration
}

// LoadConfig loads Hugging Face configuration from environment variables.
func LoadConfig() Config {
	u := os.Getenv("HF_SENTIMENT_URL")
	if u == "" {
		u = defaultSentimentURL
	}
	return Config{
		Token:   os.Getenv("HF_API_TOKEN"),
		URL:     u,
		Timeout: 30 * time.Second,
	}
}

type inferenceRequest struct {
	Inputs     []string       `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Options    map[string]any `json:"options,omitempty"`
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// SentimentScorer は finbert-tone の分類確率から P(positive) - P(negative) を極性として返します。
type SentimentScorer struct {
	cfg    Config
	client *http.Client
}

// SentimentScorerがusecase.SentimentScorerを実装していることをコンパイル時に検証します。
var _ usecase.SentimentScorer = (*SentimentScorer)(nil)

// NewSentimentScorer は指定された設定とHTTPクライアントでSentimentScorerの新しいインスタンスを生成します。
func NewSentimentScorer(cfg Config, client *http.Client) *SentimentScorer {
	return &SentimentScorer{cfg: cfg, client: client}
}

// ScoreBatch は texts を1回のリクエストで分類します。
func (s *SentimentScorer) ScoreBatch(ctx context.Context, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return []float64{}, nil
	}
	payload, err := json.Marshal(inferenceRequest{
		Inputs:     texts,
		Parameters: map[string]any{"top_k": 3, "truncation": true},
		Options:    map[string]any{"wait_for_model": true},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}

	res, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("huggingface http %d", res.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("huggingface: decode response: %w", err)
	}
	batches, err := decodeBatches(raw, len(texts))
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(batches))
	for i, b := range batches {
		scores[i] = polarity(b)
	}
	return scores, nil
}

// decodeBatches はテキストごとのラベル確率を取り出します。
// 入力が1件の場合、API は入れ子にしない配列を返すことがあります。
func decodeBatches(raw json.RawMessage, n int) ([][]labelScore, error) {
	var nested [][]labelScore
	if err := json.Unmarshal(raw, &nested); err == nil {
		if len(nested) != n {
			return nil, fmt.Errorf("huggingface: expected %d results, got %d", n, len(nested))
		}
		return nested, nil
	}
	var flat []labelScore
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("huggingface: unexpected response shape: %w", err)
	}
	if n != 1 {
		return nil, fmt.Errorf("huggingface: expected %d results, got a single result", n)
	}
	return [][]labelScore{flat}, nil
}

func polarity(scores []labelScore) float64 {
	var pos, neg float64
	for _, s := range scores {
		switch strings.ToLower(s.Label) {
		case "positive":
			pos = s.Score
		case "negative":
			neg = s.Score
		}
	}
	return pos - neg
}
