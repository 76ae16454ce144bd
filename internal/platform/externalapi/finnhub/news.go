package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"signal_backend/internal/feature/analysis/domain/entity"
	"signal_backend/internal/feature/analysis/usecase"
	"signal_backend/internal/platform/externalapi/finnhub/dto"
)

// NewsSource は Source に記録される提供元名です。
const NewsSource = "finnhub"

// News はFinnhubのcompany-news APIを使うNewsProvider実装です。
type News struct {
	cfg    Config
	client *http.Client
}

// NewsがNewsProviderを実装していることをコンパイル時に検証します。
var _ usecase.NewsProvider = (*News)(nil)

// NewNews は指定された設定とHTTPクライアントでNewsの新しいインスタンスを生成します。
func NewNews(cfg Config, client *http.Client) *News {
	if cfg.MaxNews <= 0 {
		cfg.MaxNews = 15
	}
	return &News{cfg: cfg, client: client}
}

// Name は提供元名を返します。
func (n *News) Name() string { return NewsSource }

// MaxArticles は1リクエストで取得する最大件数を返します。
func (n *News) MaxArticles() int { return n.cfg.MaxNews }

// FetchArticles は ticker の記事を取得し、[start, end] に公開された新しい順の max 件を返します。
// API は日付単位でしか絞り込めないため、時刻での絞り込みはここで行います。
func (n *News) FetchArticles(ctx context.Context, ticker string, start, end time.Time, max int) ([]entity.RawArticle, error) {
	q := url.Values{}
	q.Set("symbol", ticker)
	q.Set("from", start.UTC().Format("2006-01-02"))
	q.Set("to", end.UTC().Format("2006-01-02"))
	q.Set("token", n.cfg.APIKey)
	u := fmt.Sprintf("%s/company-news?%s", n.cfg.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	res, err := n.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("finnhub http %d", res.StatusCode)
	}

	var body []dto.CompanyNews
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("finnhub: decode response: %w", err)
	}

	sort.SliceStable(body, func(i, j int) bool { return body[i].Datetime > body[j].Datetime })

	out := make([]entity.RawArticle, 0, max)
	for _, a := range body {
		if len(out) >= max {
			break
		}
		published := time.Unix(a.Datetime, 0).UTC()
		if published.Before(start) || published.After(end) {
			continue
		}
		out = append(out, entity.RawArticle{
			URL:         a.URL,
			Title:       a.Headline,
			Description: a.Summary,
			ImageURL:    a.Image,
			PublishedAt: published,
			Publisher:   a.Source,
		})
	}
	return out, nil
}
