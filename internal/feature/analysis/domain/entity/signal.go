package entity

import "time"

// RawArticle is a news record as returned by a provider, before scoring.
type RawArticle struct {
	URL         string
	Title       string
	Description string
	Author      string
	ImageURL    string
	PublishedAt time.Time
	Publisher   string
}

// Article is a scored news article attached to a trade signal.
type Article struct {
	URL            string
	Title          string
	Description    string
	Author         string
	ImageURL       string
	PublishedAt    time.Time // UTC
	Publisher      string
	SentimentScore float64 // Polarity in [-1, 1]
	Source         string  // Provider that returned the article (e.g. "polygon")
}

// Direction is the recommended action.
type Direction string

const (
	DirectionLong     Direction = "long"
	DirectionShort    Direction = "short"
	DirectionNoAction Direction = "no action"
)

// TradeSignal is the immutable result of one analysis request.
// StopLoss and TakeProfit are nil when no levels were computed.
type TradeSignal struct {
	Direction      Direction
	StopLoss       *float64
	TakeProfit     *float64
	SentimentScore float64
	Articles       []Article
	PatternLabel   string
	Timeframe      *IntervalSetting // Setting whose window produced the pattern evidence
}
