// Package entity defines the domain models for the analysis feature.
package entity

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Bar represents one OHLCV tick for a ticker at a fixed interval.
type Bar struct {
	Time   time.Time // Start of the bar, UTC
	Open   float64   // Opening price
	High   float64   // Highest price during the bar
	Low    float64   // Lowest price during the bar
	Close  float64   // Closing price
	Volume float64   // Traded volume
}

// finite reports whether every numeric field of the bar is a usable number.
func (b Bar) finite() bool {
	for _, v := range [...]float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Interval is a bar width expressed in minutes.
type Interval int

// Duration returns the interval as a time.Duration.
func (i Interval) Duration() time.Duration {
	return time.Duration(i) * time.Minute
}

// String returns the short form used in logs and provider requests (e.g. "5m").
func (i Interval) String() string {
	return fmt.Sprintf("%dm", int(i))
}

// IntervalSetting is one (interval, lookback) unit of work for the timeframe search.
type IntervalSetting struct {
	IntervalMinutes int `yaml:"interval_minutes" json:"interval_minutes"`
	LookbackBars    int `yaml:"lookback_bars" json:"lookback_bars"`
}

// Interval returns the setting's bar width.
func (s IntervalSetting) Interval() Interval {
	return Interval(s.IntervalMinutes)
}

// String formats the setting as "1m/30".
func (s IntervalSetting) String() string {
	return fmt.Sprintf("%s/%d", s.Interval(), s.LookbackBars)
}

// PriceSeries is an ordered, cleaned run of bars for one (ticker, interval) pair.
// ATR is aligned to Bars; entries where ATR is not yet defined hold NaN.
type PriceSeries struct {
	Ticker   string
	Interval Interval
	Bars     []Bar
	ATR      []float64
}

// NewPriceSeries copies bars into a cleaned series: non-finite bars are dropped,
// the rest are sorted by time ascending and duplicate timestamps keep the last bar seen.
func NewPriceSeries(ticker string, interval Interval, bars []Bar) PriceSeries {
	clean := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if !b.finite() {
			continue
		}
		b.Time = b.Time.UTC()
		clean = append(clean, b)
	}
	sort.SliceStable(clean, func(i, j int) bool { return clean[i].Time.Before(clean[j].Time) })

	out := clean[:0]
	for _, b := range clean {
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return PriceSeries{Ticker: ticker, Interval: interval, Bars: out}
}

// Len returns the number of bars.
func (s PriceSeries) Len() int { return len(s.Bars) }

// Closes returns the close column.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Highs returns the high column.
func (s PriceSeries) Highs() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.High
	}
	return out
}

// Lows returns the low column.
func (s PriceSeries) Lows() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Low
	}
	return out
}

// Tail returns the last n bars (and their ATR values) as a new series.
// If n is larger than the series the whole series is returned.
func (s PriceSeries) Tail(n int) PriceSeries {
	if n < 0 {
		n = 0
	}
	start := len(s.Bars) - n
	if start < 0 {
		start = 0
	}
	out := PriceSeries{Ticker: s.Ticker, Interval: s.Interval, Bars: append([]Bar(nil), s.Bars[start:]...)}
	if len(s.ATR) == len(s.Bars) {
		out.ATR = append([]float64(nil), s.ATR[start:]...)
	}
	return out
}

// DropUndefinedATR returns the series without the leading bars whose ATR is NaN.
func (s PriceSeries) DropUndefinedATR() PriceSeries {
	if len(s.ATR) != len(s.Bars) {
		return PriceSeries{Ticker: s.Ticker, Interval: s.Interval}
	}
	first := len(s.ATR)
	for i, v := range s.ATR {
		if !math.IsNaN(v) {
			first = i
			break
		}
	}
	return s.Tail(len(s.Bars) - first)
}

// LastClose returns the most recent close.
func (s PriceSeries) LastClose() (float64, bool) {
	if len(s.Bars) == 0 {
		return math.NaN(), false
	}
	return s.Bars[len(s.Bars)-1].Close, true
}

// LastATR returns the most recent ATR value, reporting false when it is undefined.
func (s PriceSeries) LastATR() (float64, bool) {
	if len(s.ATR) == 0 {
		return math.NaN(), false
	}
	v := s.ATR[len(s.ATR)-1]
	return v, !math.IsNaN(v)
}
