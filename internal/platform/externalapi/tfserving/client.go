// Package tfserving は TensorFlow Serving の REST API でチャートパターン分類モデルを呼び出すクライアントを提供します。
package tfserving

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/png" // PNG デコーダの登録
	"log/slog"
	"net/http"
	"os"
	"time"

	"signal_backend/internal/feature/analysis/domain/entity"
	"signal_backend/internal/feature/analysis/usecase"
)

const (
	defaultBaseURL = "http://localhost:8501"
	defaultModel   = "pattern_classifier"
	inputSize      = 128
)

// Config holds configuration for the TensorFlow Serving client.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LoadConfig loads TensorFlow Serving configuration from environment variables.
func LoadConfig() Config {
	base := os.Getenv("TF_SERVING_URL")
	if base == "" {
		base = defaultBaseURL
	}
	model := os.Getenv("TF_SERVING_MODEL")
	if model == "" {
		model = defaultModel
	}
	return Config{BaseURL: base, Model: model, Timeout: 15 * time.Second}
}

type predictRequest struct {
	Instances [][][][3]float32 `json:"instances"`
}

type predictResponse struct {
	Predictions [][]float64 `json:"predictions"`
	Error       string      `json:"error,omitempty"`
}

// PatternClassifier は 128x128x3 の画像テンソルを送り、7クラスの確率を受け取ります。
type PatternClassifier struct {
	cfg    Config
	client *http.Client
}

// PatternClassifierがusecase.PatternClassifierを実装していることをコンパイル時に検証します。
var _ usecase.PatternClassifier = (*PatternClassifier)(nil)

// NewPatternClassifier は指定された設定とHTTPクライアントでPatternClassifierの新しいインスタンスを生成します。
func NewPatternClassifier(cfg Config, client *http.Client) *PatternClassifier {
	return &PatternClassifier{cfg: cfg, client: client}
}

// Ping はモデルの状態エンドポイントに問い合わせ、サーバが応答するかを確認します。
func (c *PatternClassifier) Ping(ctx context.Context) error {
	u := fmt.Sprintf("%s/v1/models/%s", c.cfg.BaseURL, c.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return fmt.Errorf("tfserving http %d", res.StatusCode)
	}
	return nil
}

// Classify は画像ファイルを読み込んで推論を要求します。
func (c *PatternClassifier) Classify(ctx context.Context, img entity.ChartImage) ([]float64, error) {
	tensor, err := loadTensor(img.Path)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(predictRequest{Instances: [][][][3]float32{tensor}})
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/v1/models/%s:predict", c.cfg.BaseURL, c.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("tfserving http %d", res.StatusCode)
	}
	var body predictResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("tfserving: decode response: %w", err)
	}
	if body.Error != "" {
		return nil, fmt.Errorf("tfserving: %s", body.Error)
	}
	if len(body.Predictions) != 1 {
		return nil, fmt.Errorf("tfserving: expected 1 prediction, got %d", len(body.Predictions))
	}
	return body.Predictions[0], nil
}

// loadTensor は PNG を読み込み、0〜255 の画素値のままの RGB テンソルに変換します。
// モデルは正規化なしの画素値で学習されています。
func loadTensor(path string) ([][][3]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open chart image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode chart image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() != inputSize || b.Dy() != inputSize {
		return nil, fmt.Errorf("chart image must be %dx%d, got %dx%d", inputSize, inputSize, b.Dx(), b.Dy())
	}

	tensor := make([][][3]float32, inputSize)
	for y := 0; y < inputSize; y++ {
		row := make([][3]float32, inputSize)
		for x := 0; x < inputSize; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			row[x] = [3]float32{float32(r >> 8), float32(g >> 8), float32(bl >> 8)}
		}
		tensor[y] = row
	}
	return tensor, nil
}
