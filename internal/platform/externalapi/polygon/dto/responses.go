// Package dto defines data transfer objects for the Polygon.io API responses.
package dto

// AggsResponse represents the JSON response from the /v2/aggs endpoint.
type AggsResponse struct {
	Ticker       string `json:"ticker"`
	Status       string `json:"status"`
	ResultsCount int    `json:"resultsCount"`
	Error        string `json:"error,omitempty"`
	Message      string `json:"message,omitempty"`
	Results      []Agg  `json:"results"`
	NextURL      string `json:"next_url,omitempty"`
}

// Agg is one aggregate bar. T is the window start in Unix milliseconds.
type Agg struct {
	T int64   `json:"t"`
	O float64 `json:"o"`
	H float64 `json:"h"`
	L float64 `json:"l"`
	C float64 `json:"c"`
	V float64 `json:"v"`
}

// NewsResponse represents the JSON response from the /v2/reference/news endpoint.
type NewsResponse struct {
	Status  string        `json:"status"`
	Results []NewsArticle `json:"results"`
}

// NewsArticle is one news item.
type NewsArticle struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	Description  string `json:"description"`
	ArticleURL   string `json:"article_url"`
	ImageURL     string `json:"image_url"`
	PublishedUTC string `json:"published_utc"`
	Publisher    struct {
		Name string `json:"name"`
	} `json:"publisher"`
}

// TickerDetailsResponse represents the JSON response from /v3/reference/tickers/{ticker}.
type TickerDetailsResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Results Ticker `json:"results"`
}

// TickersResponse represents the JSON response from /v3/reference/tickers.
type TickersResponse struct {
	Status  string   `json:"status"`
	Count   int      `json:"count"`
	Results []Ticker `json:"results"`
	NextURL string   `json:"next_url,omitempty"`
}

// Ticker is a reference-data record.
type Ticker struct {
	Ticker          string `json:"ticker"`
	Name            string `json:"name"`
	Market          string `json:"market"`
	Locale          string `json:"locale"`
	PrimaryExchange string `json:"primary_exchange"`
	Type            string `json:"type"`
	Active          bool   `json:"active"`
	CurrencyName    string `json:"currency_name"`
}
