package huggingface

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentimentScorer_ScoreBatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		texts    []string
		status   int
		response string
		want     []float64
		wantErr  bool
	}{
		{
			name:   "nested results",
			texts:  []string{"beats", "misses"},
			status: http.StatusOK,
			response: `[
				[{"label":"Positive","score":0.9},{"label":"Neutral","score":0.08},{"label":"Negative","score":0.02}],
				[{"label":"Negative","score":0.7},{"label":"Neutral","score":0.2},{"label":"Positive","score":0.1}]
			]`,
			want: []float64{0.88, -0.6},
		},
		{
			name:     "single flat result",
			texts:    []string{"flat"},
			status:   http.StatusOK,
			response: `[{"label":"Neutral","score":0.9},{"label":"Positive","score":0.05},{"label":"Negative","score":0.05}]`,
			want:     []float64{0},
		},
		{
			name:     "count mismatch",
			texts:    []string{"a", "b"},
			status:   http.StatusOK,
			response: `[[{"label":"Positive","score":1}]]`,
			wantErr:  true,
		},
		{
			name:     "model loading",
			texts:    []string{"a"},
			status:   http.StatusServiceUnavailable,
			response: `{"error":"Model is currently loading"}`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "Bearer hf-token", r.Header.Get("Authorization"))
				var body inferenceRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, tt.texts, body.Inputs)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.response))
			}))
			defer server.Close()

			s := NewSentimentScorer(Config{Token: "hf-token", URL: server.URL}, server.Client())
			got, err := s.ScoreBatch(context.Background(), tt.texts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.True(t, math.Abs(got[i]-tt.want[i]) < 1e-9, "index %d: got %v want %v", i, got[i], tt.want[i])
			}
		})
	}
}

func TestSentimentScorer_EmptyInputSkipsRequest(t *testing.T) {
	t.Parallel()

	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	got, err := NewSentimentScorer(Config{URL: server.URL}, server.Client()).ScoreBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.False(t, called)
}
