package tfserving

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal_backend/internal/feature/analysis/domain/entity"
)

func writePNG(t *testing.T, size int) entity.ChartImage {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, color.White)
		}
	}
	img.Set(0, 0, color.Black)

	path := filepath.Join(t.TempDir(), "chart.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return entity.ChartImage{Path: path, Width: size, Height: size}
}

func TestPatternClassifier_Classify(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models/pattern_classifier:predict", r.URL.Path)
		var body predictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Instances, 1)
		require.Len(t, body.Instances[0], 128)
		assert.Equal(t, [3]float32{0, 0, 0}, body.Instances[0][0][0])
		assert.Equal(t, [3]float32{255, 255, 255}, body.Instances[0][0][1])
		_, _ = w.Write([]byte(`{"predictions":[[0.1,0.6,0.1,0.05,0.05,0.05,0.05]]}`))
	}))
	defer server.Close()

	c := NewPatternClassifier(Config{BaseURL: server.URL, Model: "pattern_classifier"}, server.Client())
	got, err := c.Classify(context.Background(), writePNG(t, 128))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.6, 0.1, 0.05, 0.05, 0.05, 0.05}, got)
}

func TestLoadTensor_RawPixelScale(t *testing.T) {
	t.Parallel()

	img := writePNG(t, 128)
	tensor, err := loadTensor(img.Path)
	require.NoError(t, err)
	require.Len(t, tensor, 128)
	assert.Equal(t, [3]float32{0, 0, 0}, tensor[0][0], "black pixel")
	assert.Equal(t, [3]float32{255, 255, 255}, tensor[127][127], "white pixel")
}

func TestPatternClassifier_Classify_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		size   int
		status int
		body   string
	}{
		{name: "wrong image size", size: 64, status: http.StatusOK, body: `{"predictions":[[1]]}`},
		{name: "server error", size: 128, status: http.StatusInternalServerError},
		{name: "model error", size: 128, status: http.StatusOK, body: `{"error":"Servable not found"}`},
		{name: "empty predictions", size: 128, status: http.StatusOK, body: `{"predictions":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewPatternClassifier(Config{BaseURL: server.URL, Model: "m"}, server.Client())
			_, err := c.Classify(context.Background(), writePNG(t, tt.size))
			assert.Error(t, err)
		})
	}
}

func TestPatternClassifier_Ping(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models/m", r.URL.Path)
		_, _ = w.Write([]byte(`{"model_version_status":[{"state":"AVAILABLE"}]}`))
	}))
	defer server.Close()

	c := NewPatternClassifier(Config{BaseURL: server.URL, Model: "m"}, server.Client())
	assert.NoError(t, c.Ping(context.Background()))
}
