package polygon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"signal_backend/internal/shared/ratelimiter"
)

// errNotFound は Polygon が 404 を返したことを示します。
var errNotFound = errors.New("polygon: not found")

// Client はPolygon REST APIの共通クライアントです。市場データ、ニュース、銘柄情報の各リポジトリが共有します。
type Client struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.Limiter
}

// NewClient は指定された設定とHTTPクライアントでClientの新しいインスタンスを生成します。
// limiter が nil の場合は cfg.RequestsPerMinute から生成します。
func NewClient(cfg Config, client *http.Client, limiter ratelimiter.Limiter) *Client {
	if limiter == nil {
		limiter = ratelimiter.NewRateLimiter(cfg.RequestsPerMinute, time.Minute)
	}
	return &Client{cfg: cfg, client: client, limiter: limiter}
}

// endpoint はベースURLとパス、クエリからURLを組み立てます。
func (c *Client) endpoint(path string, q url.Values) string {
	if q == nil {
		q = url.Values{}
	}
	return fmt.Sprintf("%s%s?%s", c.cfg.BaseURL, path, q.Encode())
}

// withKey は next_url のような完全なURLに apiKey を付与します。
func (c *Client) withKey(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("polygon: parse next url: %w", err)
	}
	q := u.Query()
	q.Set("apiKey", c.cfg.APIKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// getJSON はレートリミットを守ってGETリクエストを送り、レスポンスを out にデコードします。
func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	u, err := c.withKey(rawURL)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if res.StatusCode >= 400 {
		return fmt.Errorf("polygon http %d", res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("polygon: decode response: %w", err)
	}
	return nil
}
