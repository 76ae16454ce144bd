// Package chart は終値の折れ線チャートを PNG に描画します。
package chart

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"signal_backend/internal/feature/analysis/domain/entity"
	"signal_backend/internal/feature/analysis/usecase"
)

const (
	// DefaultSize は分類モデルの入力に合わせた画像の一辺のピクセル数です。
	DefaultSize = 128
	lineWidth   = 2
	margin      = 2
	fileName    = "chart.png"
)

// ErrNothingToRender は描画できる終値が1つもないことを示します。
var ErrNothingToRender = errors.New("no finite close to render")

// PNGRenderer は白背景に黒の折れ線だけを描く軸なしチャートを生成します。
type PNGRenderer struct {
	size int
}

var _ usecase.ChartRenderer = (*PNGRenderer)(nil)

// NewPNGRenderer はPNGRendererの新しいインスタンスを生成します。
func NewPNGRenderer() *PNGRenderer {
	return &PNGRenderer{size: DefaultSize}
}

// Render は closes を dir/chart.png に描画します。NaN の点は飛ばして前後を結びます。
func (r *PNGRenderer) Render(dir string, closes []float64) (entity.ChartImage, error) {
	pts := r.project(closes)
	if len(pts) == 0 {
		return entity.ChartImage{}, ErrNothingToRender
	}

	img := image.NewRGBA(image.Rect(0, 0, r.size, r.size))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	if len(pts) == 1 {
		stamp(img, pts[0].X, pts[0].Y)
	}
	for i := 1; i < len(pts); i++ {
		line(img, pts[i-1], pts[i])
	}

	path := filepath.Join(dir, fileName)
	f, err := os.Create(path)
	if err != nil {
		return entity.ChartImage{}, fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return entity.ChartImage{}, fmt.Errorf("failed to encode chart: %w", err)
	}
	return entity.ChartImage{Path: path, Width: r.size, Height: r.size}, nil
}

// project は有限の終値をピクセル座標に変換します。y 軸は上が高値です。
func (r *PNGRenderer) project(closes []float64) []image.Point {
	lo, hi := math.Inf(1), math.Inf(-1)
	idx := make([]int, 0, len(closes))
	for i, c := range closes {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			continue
		}
		idx = append(idx, i)
		lo = math.Min(lo, c)
		hi = math.Max(hi, c)
	}
	if len(idx) == 0 {
		return nil
	}

	span := float64(r.size - 1 - 2*margin)
	pts := make([]image.Point, 0, len(idx))
	for _, i := range idx {
		x := float64(r.size-1) / 2
		if len(closes) > 1 {
			x = float64(margin) + span*float64(i)/float64(len(closes)-1)
		}
		y := float64(r.size-1) / 2
		if hi > lo {
			y = float64(margin) + span*(hi-closes[i])/(hi-lo)
		}
		pts = append(pts, image.Pt(int(math.Round(x)), int(math.Round(y))))
	}
	return pts
}

// line は Bresenham のアルゴリズムで a から b まで線を引きます。
func line(img *image.RGBA, a, b image.Point) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy
	x, y := a.X, a.Y
	for {
		stamp(img, x, y)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

// stamp は線幅ぶんの正方形を塗ります。
func stamp(img *image.RGBA, x, y int) {
	for ox := 0; ox < lineWidth; ox++ {
		for oy := 0; oy < lineWidth; oy++ {
			p := image.Pt(x+ox, y+oy)
			if p.In(img.Bounds()) {
				img.Set(p.X, p.Y, color.Black)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
