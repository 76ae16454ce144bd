package polygon

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"signal_backend/internal/feature/analysis/domain/entity"
	"signal_backend/internal/feature/analysis/usecase"
	"signal_backend/internal/platform/externalapi/polygon/dto"
)

// maxAggPages は next_url を辿る上限です。
const maxAggPages = 5

// Market はPolygonの集計バーを取得するMarketRepository実装です。
type Market struct {
	c *Client
}

// MarketがMarketRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MarketRepository = (*Market)(nil)

// NewMarket はMarketの新しいインスタンスを生成します。
func NewMarket(c *Client) *Market {
	return &Market{c: c}
}

// FetchBars は [start, end] の分足を取得します。
func (m *Market) FetchBars(ctx context.Context, ticker string, interval entity.Interval, start, end time.Time) ([]entity.Bar, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("polygon: invalid interval %s", interval)
	}
	q := url.Values{}
	q.Set("adjusted", "true")
	q.Set("sort", "asc")
	q.Set("limit", "50000")
	path := fmt.Sprintf("/v2/aggs/ticker/%s/range/%d/minute/%d/%d",
		url.PathEscape(ticker), int(interval), start.UnixMilli(), end.UnixMilli())

	next := m.c.endpoint(path, q)
	var bars []entity.Bar
	for page := 0; next != "" && page < maxAggPages; page++ {
		var body dto.AggsResponse
		if err := m.c.getJSON(ctx, next, &body); err != nil {
			return nil, err
		}
		if body.Status == "ERROR" {
			return nil, fmt.Errorf("polygon: %s", firstNonEmpty(body.Error, body.Message))
		}
		for _, a := range body.Results {
			bars = append(bars, entity.Bar{
				Time:   time.UnixMilli(a.T).UTC(),
				Open:   a.O,
				High:   a.H,
				Low:    a.L,
				Close:  a.C,
				Volume: a.V,
			})
		}
		next = body.NextURL
	}
	if bars == nil {
		bars = []entity.Bar{}
	}
	return bars, nil
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return "unknown error"
}
