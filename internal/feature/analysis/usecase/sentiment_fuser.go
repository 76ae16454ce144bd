package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"signal_backend/internal/feature/analysis/domain"
	"signal_backend/internal/feature/analysis/domain/entity"
)

// SentimentFuser は複数のニュース提供元の記事を採点し、記事数で重み付けした平均スコアを返します。
type SentimentFuser struct {
	providers []NewsProvider
	scorer    SentimentScorer
}

// NewSentimentFuser はSentimentFuserの新しいインスタンスを生成します。
func NewSentimentFuser(scorer SentimentScorer, providers ...NewsProvider) *SentimentFuser {
	return &SentimentFuser{providers: providers, scorer: scorer}
}

// providerResult は提供元1つ分の集計結果です。
type providerResult struct {
	mean     float64
	articles []entity.Article
}

// Fuse は window 内の ticker の記事を集計し、[-1, 1] のスコアと公開日時の降順の記事一覧を返します。
//
// 提供元ごとの失敗はログに出して無視し、その提供元は重み 0 として扱います。
// 記事が1件もなければスコアは 0 です。
func (f *SentimentFuser) Fuse(ctx context.Context, ticker string, window NewsWindow) (float64, []entity.Article) {
	results := make([]providerResult, len(f.providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range f.providers {
		g.Go(func() error {
			res, err := f.collect(gctx, p, ticker, window)
			if err != nil {
				slog.Warn("news provider failed", "provider", p.Name(), "ticker", ticker, "error", err)
				return nil
			}
			results[i] = res
			return nil
		})
	}
	// 各 goroutine はエラーを返さない
	_ = g.Wait()

	var (
		weighted float64
		total    int
		articles []entity.Article
	)
	for _, r := range results {
		n := len(r.articles)
		if n == 0 {
			continue
		}
		weighted += r.mean * float64(n)
		total += n
		articles = append(articles, r.articles...)
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
	if articles == nil {
		articles = []entity.Article{}
	}
	if total == 0 {
		return 0, articles
	}
	return weighted / float64(total), articles
}

// collect は1つの提供元から記事を取得し、本文のある記事だけをまとめて採点します。
func (f *SentimentFuser) collect(ctx context.Context, p NewsProvider, ticker string, window NewsWindow) (providerResult, error) {
	raw, err := p.FetchArticles(ctx, ticker, window.Start, window.End, p.MaxArticles())
	if err != nil {
		return providerResult{}, domain.NewExternalServiceError(p.Name(), err)
	}

	kept := make([]entity.RawArticle, 0, len(raw))
	texts := make([]string, 0, len(raw))
	for _, a := range raw {
		desc := strings.TrimSpace(a.Description)
		if desc == "" {
			continue
		}
		kept = append(kept, a)
		texts = append(texts, desc)
	}
	if len(kept) == 0 {
		return providerResult{}, nil
	}

	scores, err := f.scorer.ScoreBatch(ctx, texts)
	if err != nil {
		return providerResult{}, domain.NewExternalServiceError("sentiment scorer", err)
	}
	if len(scores) != len(texts) {
		return providerResult{}, domain.NewExternalServiceError("sentiment scorer",
			fmt.Errorf("expected %d scores, got %d", len(texts), len(scores)))
	}

	var sum float64
	articles := make([]entity.Article, len(kept))
	for i, a := range kept {
		s := scores[i]
		if math.IsNaN(s) || s < -1 || s > 1 {
			return providerResult{}, domain.NewExternalServiceError("sentiment scorer",
				fmt.Errorf("score %v out of range at index %d", s, i))
		}
		sum += s
		articles[i] = entity.Article{
			URL:            a.URL,
			Title:          a.Title,
			Description:    a.Description,
			Author:         a.Author,
			ImageURL:       a.ImageURL,
			PublishedAt:    a.PublishedAt.UTC(),
			Publisher:      a.Publisher,
			SentimentScore: s,
			Source:         p.Name(),
		}
	}
	return providerResult{mean: sum / float64(len(articles)), articles: articles}, nil
}
