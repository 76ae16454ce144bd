package usecase

import (
	"fmt"
	"math"

	"signal_backend/internal/feature/analysis/domain"
	"signal_backend/internal/feature/analysis/domain/entity"
)

const (
	// DefaultATRStopMultiplier は損切り幅に使う ATR の倍率の既定値です。
	DefaultATRStopMultiplier = 1.5
	// DefaultRewardRiskRatio は利確幅をリスク幅の何倍にするかの既定値です。
	DefaultRewardRiskRatio = 1.5
)

// RiskParams はリスク水準の計算パラメータです。どちらも正の値である必要があります。
type RiskParams struct {
	ATRStopMultiplier float64
	RewardRiskRatio   float64
}

// DefaultRiskParams は既定のリスクパラメータを返します。
func DefaultRiskParams() RiskParams {
	return RiskParams{ATRStopMultiplier: DefaultATRStopMultiplier, RewardRiskRatio: DefaultRewardRiskRatio}
}

// Validate はパラメータが正の有限値であることを確認します。
func (p RiskParams) Validate() error {
	if !finite(p.ATRStopMultiplier) || p.ATRStopMultiplier <= 0 {
		return fmt.Errorf("atr stop multiplier must be positive, got %v", p.ATRStopMultiplier)
	}
	if !finite(p.RewardRiskRatio) || p.RewardRiskRatio <= 0 {
		return fmt.Errorf("reward/risk ratio must be positive, got %v", p.RewardRiskRatio)
	}
	return nil
}

// ComposeInput はシグナル合成に必要な証拠一式です。
type ComposeInput struct {
	PatternSignal int
	PatternLabel  string
	Sentiment     float64
	Articles      []entity.Article
	ATR           float64
	Price         float64
	Highs         []float64
	Lows          []float64
	Timeframe     *entity.IntervalSetting
	Params        RiskParams
}

// SignalComposer はパターンとセンチメントから売買方向と損切り・利確水準を決定します。
type SignalComposer struct{}

// NewSignalComposer はSignalComposerの新しいインスタンスを生成します。
func NewSignalComposer() *SignalComposer {
	return &SignalComposer{}
}

// Compose は入力から TradeSignal を組み立てます。
//
// パターンが ±1 ならそれを優先し、0 ならセンチメントの符号で方向を決めます。
// 損切りが価格の反対側に来る場合は domain.ErrDegenerateRisk を返します。
func (c *SignalComposer) Compose(in ComposeInput) (entity.TradeSignal, error) {
	if err := in.Params.Validate(); err != nil {
		return entity.TradeSignal{}, err
	}

	label := in.PatternLabel
	if label == "" {
		label = entity.NoPatternLabel
	}
	articles := in.Articles
	if articles == nil {
		articles = []entity.Article{}
	}
	signal := entity.TradeSignal{
		Direction:      entity.DirectionNoAction,
		SentimentScore: in.Sentiment,
		Articles:       articles,
		PatternLabel:   label,
		Timeframe:      in.Timeframe,
	}

	dir := direction(in.PatternSignal, in.Sentiment)
	if dir == 0 {
		return signal, nil
	}
	if !finite(in.ATR) || in.ATR <= 0 || !finite(in.Price) || in.Price <= 0 || len(in.Highs) == 0 || len(in.Lows) == 0 {
		return signal, nil
	}

	k, rr := in.Params.ATRStopMultiplier, in.Params.RewardRiskRatio
	var sl, tp, risk float64
	if dir > 0 {
		sl = minOf(in.Lows) - k*in.ATR
		risk = in.Price - sl
		tp = in.Price + rr*risk
	} else {
		sl = maxOf(in.Highs) + k*in.ATR
		risk = sl - in.Price
		tp = in.Price - rr*risk
	}
	if !finite(risk) || risk <= 0 {
		return entity.TradeSignal{}, fmt.Errorf("%w: price=%v stop=%v", domain.ErrDegenerateRisk, in.Price, sl)
	}

	if dir > 0 {
		signal.Direction = entity.DirectionLong
	} else {
		signal.Direction = entity.DirectionShort
	}
	signal.StopLoss = &sl
	signal.TakeProfit = &tp
	return signal, nil
}

func direction(pattern int, sentiment float64) int {
	switch {
	case pattern > 0:
		return 1
	case pattern < 0:
		return -1
	case sentiment > 0:
		return 1
	case sentiment < 0:
		return -1
	default:
		return 0
	}
}

func minOf(vs []float64) float64 {
	m := math.Inf(1)
	for _, v := range vs {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(vs []float64) float64 {
	m := math.Inf(-1)
	for _, v := range vs {
		if v > m {
			m = v
		}
	}
	return m
}
