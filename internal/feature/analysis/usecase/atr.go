package usecase

import (
	"fmt"
	"math"

	"signal_backend/internal/feature/analysis/domain"
	"signal_backend/internal/feature/analysis/domain/entity"
)

// DefaultATRPeriod は ATR の既定の平滑化期間です。
const DefaultATRPeriod = 14

// CalculateATR は bars の Average True Range を計算し、入力と同じ長さのスライスを返します。
//
// True Range は前日終値が必要なため先頭バーでは計算しません。
// 平滑化は α=1/period の指数移動平均（最初の TR を初期値とする）で、
// TR が period 個そろうまでの位置は NaN になります。
func CalculateATR(bars []entity.Bar, period int) ([]float64, error) {
	if period <= 0 {
		return nil, &domain.InsufficientDataError{Reason: fmt.Sprintf("ATR period must be positive, got %d", period)}
	}
	for i, b := range bars {
		if !finite(b.High) || !finite(b.Low) || !finite(b.Close) {
			return nil, &domain.InsufficientDataError{Reason: fmt.Sprintf("bar %d lacks high/low/close", i)}
		}
	}
	if len(bars) < period+1 {
		return nil, &domain.InsufficientDataError{Reason: fmt.Sprintf("need %d bars for ATR(%d), got %d", period+1, period, len(bars))}
	}

	out := make([]float64, len(bars))
	out[0] = math.NaN()

	alpha := 1.0 / float64(period)
	var atr float64
	for i := 1; i < len(bars); i++ {
		tr := trueRange(bars[i], bars[i-1].Close)
		if i == 1 {
			atr = tr
		} else {
			atr += alpha * (tr - atr)
		}
		// i 本目までに観測した TR は i 個
		if i < period {
			out[i] = math.NaN()
			continue
		}
		out[i] = atr
	}
	return out, nil
}

func trueRange(b entity.Bar, prevClose float64) float64 {
	return math.Max(b.High-b.Low, math.Max(math.Abs(b.High-prevClose), math.Abs(b.Low-prevClose)))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
