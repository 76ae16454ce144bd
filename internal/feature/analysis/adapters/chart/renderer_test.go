package chart

import (
	"errors"
	"image/png"
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPNGRenderer_Render(t *testing.T) {
	testCases := []struct {
		name      string
		closes    []float64
		wantErr   error
		wantBlack bool
	}{
		{name: "rising series", closes: []float64{1, 2, 3, 4, 5}, wantBlack: true},
		{name: "flat series", closes: []float64{10, 10, 10}, wantBlack: true},
		{name: "single point", closes: []float64{42}, wantBlack: true},
		{name: "gaps are skipped", closes: []float64{1, math.NaN(), 3}, wantBlack: true},
		{name: "empty window", closes: nil, wantErr: ErrNothingToRender},
		{name: "all NaN", closes: []float64{math.NaN(), math.NaN()}, wantErr: ErrNothingToRender},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			img, err := NewPNGRenderer().Render(dir, tc.closes)
			if tc.wantErr != nil {
				assert.True(t, errors.Is(err, tc.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DefaultSize, img.Width)
			assert.Equal(t, DefaultSize, img.Height)

			f, err := os.Open(img.Path)
			require.NoError(t, err)
			defer f.Close()
			decoded, err := png.Decode(f)
			require.NoError(t, err)
			assert.Equal(t, DefaultSize, decoded.Bounds().Dx())

			var black, white int
			b := decoded.Bounds()
			for y := b.Min.Y; y < b.Max.Y; y++ {
				for x := b.Min.X; x < b.Max.X; x++ {
					r, g, bl, _ := decoded.At(x, y).RGBA()
					switch {
					case r == 0 && g == 0 && bl == 0:
						black++
					case r == 0xffff && g == 0xffff && bl == 0xffff:
						white++
					}
				}
			}
			assert.Equal(t, tc.wantBlack, black > 0)
			assert.Greater(t, white, black, "background should dominate")
		})
	}
}

func TestPNGRenderer_RisingLineGoesUp(t *testing.T) {
	r := NewPNGRenderer()
	pts := r.project([]float64{1, 2, 3})
	require.Len(t, pts, 3)
	assert.Greater(t, pts[0].Y, pts[2].Y, "higher closes are drawn nearer the top")
	assert.Less(t, pts[0].X, pts[2].X)
}
