package polygon

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"signal_backend/internal/feature/analysis/usecase"
	symbolentity "signal_backend/internal/feature/symbollist/domain/entity"
	"signal_backend/internal/platform/externalapi/polygon/dto"
)

// maxTickerPages は参照銘柄一覧のページ数の上限です（1ページ1000件）。
const maxTickerPages = 20

// Tickers はPolygonの参照データを使う銘柄の存在確認と一覧取得の実装です。
type Tickers struct {
	c *Client
}

// TickersがTickerValidatorを実装していることをコンパイル時に検証します。
var _ usecase.TickerValidator = (*Tickers)(nil)

// NewTickers はTickersの新しいインスタンスを生成します。
func NewTickers(c *Client) *Tickers {
	return &Tickers{c: c}
}

// Exists は ticker がPolygonの参照データに存在するかを返します。
func (t *Tickers) Exists(ctx context.Context, ticker string) (bool, error) {
	path := "/v3/reference/tickers/" + url.PathEscape(ticker)

	var body dto.TickerDetailsResponse
	err := t.c.getJSON(ctx, t.c.endpoint(path, nil), &body)
	if errors.Is(err, errNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return strings.EqualFold(body.Results.Ticker, ticker), nil
}

// ListSymbols は有効な米国株の銘柄一覧をページを辿って取得します。
func (t *Tickers) ListSymbols(ctx context.Context) ([]symbolentity.Symbol, error) {
	q := url.Values{}
	q.Set("market", "stocks")
	q.Set("active", "true")
	q.Set("order", "asc")
	q.Set("sort", "ticker")
	q.Set("limit", "1000")

	next := t.c.endpoint("/v3/reference/tickers", q)
	var out []symbolentity.Symbol
	for page := 0; next != ""; page++ {
		if page >= maxTickerPages {
			return nil, fmt.Errorf("polygon: ticker list exceeds %d pages", maxTickerPages)
		}
		var body dto.TickersResponse
		if err := t.c.getJSON(ctx, next, &body); err != nil {
			return nil, err
		}
		for _, r := range body.Results {
			out = append(out, symbolentity.Symbol{
				Code:     r.Ticker,
				Name:     r.Name,
				Market:   r.Market,
				Exchange: r.PrimaryExchange,
				Type:     r.Type,
				IsActive: r.Active,
				SortKey:  len(out),
			})
		}
		next = body.NextURL
	}
	return out, nil
}
