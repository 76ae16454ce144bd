package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"signal_backend/internal/feature/analysis/domain/entity"
)

var (
	ErrMarketAPI  = errors.New("market API error")
	ErrModel      = errors.New("model error")
	ErrNewsAPI    = errors.New("news API error")
	ErrValidation = errors.New("validation backend error")
)

// mockMarketRepository is a mock implementation of the MarketRepository interface.
type mockMarketRepository struct {
	mu             sync.Mutex
	FetchBarsFunc  func(ctx context.Context, ticker string, interval entity.Interval, start, end time.Time) ([]entity.Bar, error)
	FetchBarsCalls int
}

func (m *mockMarketRepository) FetchBars(ctx context.Context, ticker string, interval entity.Interval, start, end time.Time) ([]entity.Bar, error) {
	m.mu.Lock()
	m.FetchBarsCalls++
	m.mu.Unlock()
	if m.FetchBarsFunc != nil {
		return m.FetchBarsFunc(ctx, ticker, interval, start, end)
	}
	return nil, errors.New("FetchBarsFunc is not implemented")
}

// mockTickerValidator is a mock implementation of the TickerValidator interface.
type mockTickerValidator struct {
	ExistsFunc  func(ctx context.Context, ticker string) (bool, error)
	ExistsCalls int
}

func (m *mockTickerValidator) Exists(ctx context.Context, ticker string) (bool, error) {
	m.ExistsCalls++
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, ticker)
	}
	return true, nil
}

// mockNewsProvider is a mock implementation of the NewsProvider interface.
type mockNewsProvider struct {
	name               string
	max                int
	FetchArticlesFunc  func(ctx context.Context, ticker string, start, end time.Time, max int) ([]entity.RawArticle, error)
	FetchArticlesCalls int
}

func (m *mockNewsProvider) Name() string     { return m.name }
func (m *mockNewsProvider) MaxArticles() int { return m.max }

func (m *mockNewsProvider) FetchArticles(ctx context.Context, ticker string, start, end time.Time, max int) ([]entity.RawArticle, error) {
	m.FetchArticlesCalls++
	if m.FetchArticlesFunc != nil {
		return m.FetchArticlesFunc(ctx, ticker, start, end, max)
	}
	return nil, nil
}

// mockSentimentScorer is a mock implementation of the SentimentScorer interface.
type mockSentimentScorer struct {
	mu              sync.Mutex
	ScoreBatchFunc  func(ctx context.Context, texts []string) ([]float64, error)
	ScoreBatchCalls int
}

func (m *mockSentimentScorer) ScoreBatch(ctx context.Context, texts []string) ([]float64, error) {
	m.mu.Lock()
	m.ScoreBatchCalls++
	m.mu.Unlock()
	if m.ScoreBatchFunc != nil {
		return m.ScoreBatchFunc(ctx, texts)
	}
	return make([]float64, len(texts)), nil
}

// mockClassifier is a mock implementation of the PatternClassifier interface.
type mockClassifier struct {
	ClassifyFunc  func(ctx context.Context, img entity.ChartImage) ([]float64, error)
	ClassifyCalls int
	LastImage     entity.ChartImage
}

func (m *mockClassifier) Classify(ctx context.Context, img entity.ChartImage) ([]float64, error) {
	m.ClassifyCalls++
	m.LastImage = img
	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, img)
	}
	return noiseProbs(), nil
}

// mockRenderer writes a placeholder file so tests can observe temp-dir cleanup.
type mockRenderer struct {
	RenderErr   error
	RenderCalls int
	Dirs        []string
}

func (m *mockRenderer) Render(dir string, closes []float64) (entity.ChartImage, error) {
	m.RenderCalls++
	m.Dirs = append(m.Dirs, dir)
	if m.RenderErr != nil {
		return entity.ChartImage{}, m.RenderErr
	}
	path := filepath.Join(dir, "chart.png")
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		return entity.ChartImage{}, err
	}
	return entity.ChartImage{Path: path, Width: 128, Height: 128}, nil
}

// fixedLocator always returns the same location.
type fixedLocator struct{ loc *time.Location }

func (f fixedLocator) Location(string) *time.Location { return f.loc }
func (f fixedLocator) IsOpen(string, time.Time) bool   { return true }

// probsFor returns a distribution with p on class c and the rest spread evenly.
func probsFor(c entity.PatternClass, p float64) []float64 {
	out := make([]float64, entity.PatternClassCount)
	rest := (1 - p) / float64(entity.PatternClassCount-1)
	for i := range out {
		out[i] = rest
	}
	out[c] = p
	return out
}

func noiseProbs() []float64 { return probsFor(entity.Noise, 0.9) }
