package polygon

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"signal_backend/internal/feature/analysis/domain/entity"
	"signal_backend/internal/feature/analysis/usecase"
	"signal_backend/internal/platform/externalapi/polygon/dto"
)

// NewsSource は Source に記録される提供元名です。
const NewsSource = "polygon"

// News はPolygonのニュースAPIを使うNewsProvider実装です。
type News struct {
	c   *Client
	max int
}

// NewsがNewsProviderを実装していることをコンパイル時に検証します。
var _ usecase.NewsProvider = (*News)(nil)

// NewNews はNewsの新しいインスタンスを生成します。
func NewNews(c *Client) *News {
	max := c.cfg.MaxNews
	if max <= 0 {
		max = 10
	}
	return &News{c: c, max: max}
}

// Name は提供元名を返します。
func (n *News) Name() string { return NewsSource }

// MaxArticles は1リクエストで取得する最大件数を返します。
func (n *News) MaxArticles() int { return n.max }

// FetchArticles は [start, end] に公開された ticker の記事を新しい順に取得します。
func (n *News) FetchArticles(ctx context.Context, ticker string, start, end time.Time, max int) ([]entity.RawArticle, error) {
	q := url.Values{}
	q.Set("ticker", ticker)
	q.Set("published_utc.gte", start.UTC().Format(time.RFC3339))
	q.Set("published_utc.lte", end.UTC().Format(time.RFC3339))
	q.Set("order", "desc")
	q.Set("sort", "published_utc")
	q.Set("limit", strconv.Itoa(max))

	var body dto.NewsResponse
	if err := n.c.getJSON(ctx, n.c.endpoint("/v2/reference/news", q), &body); err != nil {
		return nil, err
	}
	if body.Status == "ERROR" {
		return nil, fmt.Errorf("polygon: news request failed")
	}

	out := make([]entity.RawArticle, 0, len(body.Results))
	for _, a := range body.Results {
		published, err := time.Parse(time.RFC3339, a.PublishedUTC)
		if err != nil {
			slog.Debug("skipping article with bad timestamp", "id", a.ID, "published_utc", a.PublishedUTC)
			continue
		}
		out = append(out, entity.RawArticle{
			URL:         a.ArticleURL,
			Title:       a.Title,
			Description: a.Description,
			Author:      a.Author,
			ImageURL:    a.ImageURL,
			PublishedAt: published.UTC(),
			Publisher:   a.Publisher.Name,
		})
	}
	return out, nil
}
