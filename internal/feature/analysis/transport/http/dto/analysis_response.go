// Package dto defines data transfer objects for the analysis HTTP API.
package dto

import (
	"encoding/json"
	"time"

	"signal_backend/internal/feature/analysis/domain/entity"
)

// NotAvailable is written in place of a level or label that was not computed.
const NotAvailable = "N/A"

// Level is a price level that serializes as "N/A" when absent.
type Level struct {
	Value *float64
}

// MarshalJSON writes the number, or the string "N/A" when Value is nil.
func (l Level) MarshalJSON() ([]byte, error) {
	if l.Value == nil {
		return json.Marshal(NotAvailable)
	}
	return json.Marshal(*l.Value)
}

// ArticleResponse is one scored news article.
type ArticleResponse struct {
	URL            string  `json:"url"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Author         string  `json:"author"`
	ImageURL       string  `json:"image_url"`
	PublishedAt    string  `json:"published_at"` // RFC 3339, UTC
	Publisher      string  `json:"publisher"`
	SentimentScore float64 `json:"sentiment_score"`
	Source         string  `json:"source"`
}

// TimeframeResponse identifies the bar interval and window that produced the pattern.
type TimeframeResponse struct {
	IntervalMinutes int `json:"interval_minutes"`
	LookbackBars    int `json:"lookback_bars"`
}

// AnalysisResponse is the body of GET /api/analysis/:ticker.
type AnalysisResponse struct {
	Signal         string             `json:"signal"`
	StopLoss       Level              `json:"stop_loss"`
	TakeProfit     Level              `json:"take_profit"`
	SentimentScore float64            `json:"sentiment_score"`
	Articles       []ArticleResponse  `json:"articles"`
	PapPattern     string             `json:"pap_pattern"`
	Timeframe      *TimeframeResponse `json:"timeframe"`
}

// ErrorResponse is the body of every non-2xx analysis response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FromSignal converts a TradeSignal into its wire representation.
func FromSignal(s entity.TradeSignal) AnalysisResponse {
	articles := make([]ArticleResponse, 0, len(s.Articles))
	for _, a := range s.Articles {
		articles = append(articles, ArticleResponse{
			URL:            a.URL,
			Title:          a.Title,
			Description:    a.Description,
			Author:         a.Author,
			ImageURL:       a.ImageURL,
			PublishedAt:    a.PublishedAt.UTC().Format(time.RFC3339),
			Publisher:      a.Publisher,
			SentimentScore: a.SentimentScore,
			Source:         a.Source,
		})
	}

	label := s.PatternLabel
	if label == "" {
		label = NotAvailable
	}

	var tf *TimeframeResponse
	if s.Timeframe != nil {
		tf = &TimeframeResponse{IntervalMinutes: s.Timeframe.IntervalMinutes, LookbackBars: s.Timeframe.LookbackBars}
	}

	return AnalysisResponse{
		Signal:         string(s.Direction),
		StopLoss:       Level{Value: s.StopLoss},
		TakeProfit:     Level{Value: s.TakeProfit},
		SentimentScore: s.SentimentScore,
		Articles:       articles,
		PapPattern:     label,
		Timeframe:      tf,
	}
}
