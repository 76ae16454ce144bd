package dto

import (
	"encoding/json"
	"testing"
	"time"

	"signal_backend/internal/feature/analysis/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel_MarshalJSON(t *testing.T) {
	t.Parallel()

	v := 92.5
	tests := []struct {
		name  string
		level Level
		want  string
	}{
		{name: "absent", level: Level{}, want: `"N/A"`},
		{name: "present", level: Level{Value: &v}, want: `92.5`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b, err := json.Marshal(tt.level)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(b))
		})
	}
}

func TestFromSignal_NoAction(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(FromSignal(entity.TradeSignal{
		Direction:    entity.DirectionNoAction,
		PatternLabel: entity.NoPatternLabel,
	}))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"signal":"no action","stop_loss":"N/A","take_profit":"N/A",
		"sentiment_score":0,"articles":[],"pap_pattern":"N/A","timeframe":null
	}`, string(b))
}

func TestFromSignal_Long(t *testing.T) {
	t.Parallel()

	sl, tp := 92.0, 112.0
	jst := time.FixedZone("JST", 9*3600)
	resp := FromSignal(entity.TradeSignal{
		Direction:      entity.DirectionLong,
		StopLoss:       &sl,
		TakeProfit:     &tp,
		SentimentScore: 0.4,
		PatternLabel:   "Bullish Flag",
		Timeframe:      &entity.IntervalSetting{IntervalMinutes: 5, LookbackBars: 15},
		Articles: []entity.Article{{
			URL: "https://news/1", Title: "Beat", Description: "Strong quarter",
			PublishedAt: time.Date(2024, 3, 1, 21, 0, 0, 0, jst), Publisher: "Benzinga",
			SentimentScore: 0.4, Source: "polygon",
		}},
	})

	b, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"signal":"long","stop_loss":92,"take_profit":112,"sentiment_score":0.4,
		"articles":[{"url":"https://news/1","title":"Beat","description":"Strong quarter","author":"",
			"image_url":"","published_at":"2024-03-01T12:00:00Z","publisher":"Benzinga",
			"sentiment_score":0.4,"source":"polygon"}],
		"pap_pattern":"Bullish Flag",
		"timeframe":{"interval_minutes":5,"lookback_bars":15}
	}`, string(b))
}
