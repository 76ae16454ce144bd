package polygon

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingLimiter records Wait calls without blocking.
type countingLimiter struct {
	calls int
}

func (l *countingLimiter) Wait(ctx context.Context) error {
	l.calls++
	return ctx.Err()
}

func newTestClient(serverURL string, client *http.Client) (*Client, *countingLimiter) {
	l := &countingLimiter{}
	return NewClient(Config{APIKey: "test-key", BaseURL: serverURL, MaxNews: 10}, client, l), l
}

func TestMarket_FetchBars(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case fmt.Sprintf("/v2/aggs/ticker/AAPL/range/5/minute/%d/%d", start.UnixMilli(), end.UnixMilli()):
			assert.Equal(t, "asc", r.URL.Query().Get("sort"))
			_, _ = fmt.Fprintf(w, `{"ticker":"AAPL","status":"OK","resultsCount":1,
				"results":[{"t":%d,"o":180.1,"h":181,"l":179.5,"c":180.7,"v":12000}],
				"next_url":"http://%s/page2"}`, start.UnixMilli(), r.Host)
		case "/page2":
			_, _ = fmt.Fprintf(w, `{"ticker":"AAPL","status":"OK","resultsCount":1,
				"results":[{"t":%d,"o":180.7,"h":182,"l":180.2,"c":181.9,"v":15000}]}`, start.Add(5*time.Minute).UnixMilli())
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c, limiter := newTestClient(server.URL, server.Client())
	bars, err := NewMarket(c).FetchBars(context.Background(), "AAPL", 5, start, end)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, start, bars[0].Time)
	assert.Equal(t, 180.7, bars[0].Close)
	assert.Equal(t, 181.9, bars[1].Close)
	assert.Equal(t, 2, limiter.calls, "every page goes through the limiter")
}

func TestMarket_FetchBars_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "http error", status: http.StatusForbidden, wantErr: "polygon http 403"},
		{name: "api error", status: http.StatusOK, body: `{"status":"ERROR","error":"Unknown API Key"}`, wantErr: "Unknown API Key"},
		{name: "invalid json", status: http.StatusOK, body: `{bad`, wantErr: "decode response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c, _ := newTestClient(server.URL, server.Client())
			_, err := NewMarket(c).FetchBars(context.Background(), "AAPL", 1, time.Now().Add(-time.Hour), time.Now())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMarket_FetchBars_EmptyResults(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ticker":"AAPL","status":"OK","resultsCount":0}`))
	}))
	defer server.Close()

	c, _ := newTestClient(server.URL, server.Client())
	bars, err := NewMarket(c).FetchBars(context.Background(), "AAPL", 1, time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.NotNil(t, bars)
	assert.Empty(t, bars)
}

func TestNews_FetchArticles(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/v2/reference/news", r.URL.Path)
		assert.Equal(t, "AAPL", q.Get("ticker"))
		assert.Equal(t, "2024-03-01T09:00:00Z", q.Get("published_utc.gte"))
		assert.Equal(t, "2024-03-01T17:00:00Z", q.Get("published_utc.lte"))
		assert.Equal(t, "10", q.Get("limit"))
		_, _ = w.Write([]byte(`{"status":"OK","results":[
			{"id":"1","title":"Apple beats","author":"Jane","description":"Strong quarter","article_url":"https://news/1",
			 "image_url":"https://img/1","published_utc":"2024-03-01T12:00:00Z","publisher":{"name":"Benzinga"}},
			{"id":"2","title":"Bad stamp","published_utc":"yesterday"}
		]}`))
	}))
	defer server.Close()

	c, _ := newTestClient(server.URL, server.Client())
	news := NewNews(c)
	assert.Equal(t, "polygon", news.Name())
	assert.Equal(t, 10, news.MaxArticles())

	articles, err := news.FetchArticles(context.Background(), "AAPL", start, end, news.MaxArticles())
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "https://news/1", articles[0].URL)
	assert.Equal(t, "Benzinga", articles[0].Publisher)
	assert.Equal(t, "Strong quarter", articles[0].Description)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), articles[0].PublishedAt)
}

func TestTickers_Exists(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ticker  string
		status  int
		body    string
		want    bool
		wantErr bool
	}{
		{name: "known ticker", ticker: "AAPL", status: http.StatusOK, body: `{"status":"OK","results":{"ticker":"AAPL","name":"Apple Inc."}}`, want: true},
		{name: "unknown ticker", ticker: "ZZZZ", status: http.StatusNotFound, body: `{"status":"NOT_FOUND"}`, want: false},
		{name: "server error", ticker: "AAPL", status: http.StatusInternalServerError, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v3/reference/tickers/"+tt.ticker, r.URL.Path)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c, _ := newTestClient(server.URL, server.Client())
			got, err := NewTickers(c).Exists(context.Background(), tt.ticker)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTickers_ListSymbols(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		if strings.HasSuffix(r.URL.Path, "/v3/reference/tickers") && r.URL.Query().Get("cursor") == "" {
			assert.Equal(t, "stocks", r.URL.Query().Get("market"))
			_, _ = fmt.Fprintf(w, `{"status":"OK","count":1,
				"results":[{"ticker":"AAPL","name":"Apple Inc.","market":"stocks","primary_exchange":"XNAS","type":"CS","active":true}],
				"next_url":"http://%s/v3/reference/tickers?cursor=abc"}`, r.Host)
			return
		}
		_, _ = w.Write([]byte(`{"status":"OK","count":1,
			"results":[{"ticker":"IBM","name":"IBM","market":"stocks","primary_exchange":"XNYS","type":"CS","active":true}]}`))
	}))
	defer server.Close()

	c, limiter := newTestClient(server.URL, server.Client())
	symbols, err := NewTickers(c).ListSymbols(context.Background())
	require.NoError(t, err)
	require.Len(t, symbols, 2)
	assert.Equal(t, "AAPL", symbols[0].Code)
	assert.Equal(t, "XNAS", symbols[0].Exchange)
	assert.Equal(t, "IBM", symbols[1].Code)
	assert.Equal(t, 1, symbols[1].SortKey)
	assert.Equal(t, 2, limiter.calls)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("POLYGON_BASE_URL", "")
	t.Setenv("POLYGON_REQUESTS_PER_MINUTE", "")

	cfg := LoadConfig()
	assert.Equal(t, defaultBaseURL, cfg.BaseURL)
	assert.Equal(t, defaultRequestsPerMinute, cfg.RequestsPerMinute)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
}
