// Package gemini はGoogle Gemini APIを使用したセンチメント採点とチャートパターン分類のクライアントを提供します。
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"
	// defaultSeed は同じ入力に同じ出力を返させるための固定シードです。
	defaultSeed int32 = 42
)

// generateFunc はプロンプトを送り、応答テキストを返す関数です。テストで差し替えます。
type generateFunc func(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error)

// Config はGeminiクライアントの設定です。
type Config struct {
	Model string
}

// LoadConfig は環境変数からGeminiの設定を読み込みます。
// 認証は genai.NewClient が GOOGLE_API_KEY または GOOGLE_GENAI_USE_VERTEXAI などから解決します。
func LoadConfig() Config {
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = DefaultModel
	}
	return Config{Model: model}
}

// newGenerator はADCまたはAPIキーでクライアントを作成し、generateFunc を返します。
func newGenerator(ctx context.Context, model string) (generateFunc, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return func(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, model, contents, cfg)
		if err != nil {
			return "", fmt.Errorf("gemini API request failed: %w", err)
		}
		return resp.Text(), nil
	}, nil
}

// deterministicJSON は温度0・固定シード・JSON応答の生成設定を返します。
func deterministicJSON() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		Seed:             genai.Ptr(defaultSeed),
		ResponseMIMEType: "application/json",
	}
}

// parseFloatArray はモデル応答から JSON の数値配列を取り出します。
// コードフェンスで囲まれた応答も受け付けます。
func parseFloatArray(text string) ([]float64, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	var out []float64
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("failed to parse model response as number array: %w", err)
	}
	return out, nil
}
