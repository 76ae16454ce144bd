// Package handler はanalysisフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"signal_backend/internal/feature/analysis/domain"
	"signal_backend/internal/feature/analysis/domain/entity"
	"signal_backend/internal/feature/analysis/transport/http/dto"
	"signal_backend/internal/feature/analysis/usecase"
	"signal_backend/internal/platform/http/middleware"

	"github.com/gin-gonic/gin"
)

// AnalysisUsecase はトレードシグナル判定のユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type AnalysisUsecase interface {
	Analyze(ctx context.Context, ticker string, params usecase.RiskParams) (entity.TradeSignal, error)
}

// AnalysisHandler はトレードシグナルのHTTPリクエストを処理します。
type AnalysisHandler struct {
	uc       AnalysisUsecase
	defaults usecase.RiskParams
}

// NewAnalysisHandler はAnalysisHandlerの新しいインスタンスを生成します。
// defaults はクエリで指定されなかったリスクパラメータに使われます。
func NewAnalysisHandler(uc AnalysisUsecase, defaults usecase.RiskParams) *AnalysisHandler {
	return &AnalysisHandler{uc: uc, defaults: defaults}
}

// Analyze は銘柄のトレードシグナルをJSONで返します。
//
// エンドポイント例:
// GET /api/analysis/AAPL?rr_ratio=2&atr_sl_multiplier=1.5
//
// ステータス: 400 クエリ不正 / 404 銘柄なし / 422 損切り水準が価格の反対側 / 500 その他
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	ticker := c.Param("ticker")

	params, err := h.parseParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	signal, err := h.uc.Analyze(c.Request.Context(), ticker, params)
	if err != nil {
		status, msg := statusFor(err)
		slog.Log(c.Request.Context(), levelFor(status), "analysis failed",
			"request_id", middleware.GetRequestID(c),
			"ticker", ticker,
			"status", status,
			"error", err,
		)
		c.JSON(status, dto.ErrorResponse{Error: msg})
		return
	}

	c.JSON(http.StatusOK, dto.FromSignal(signal))
}

func (h *AnalysisHandler) parseParams(c *gin.Context) (usecase.RiskParams, error) {
	p := h.defaults
	if v, ok := c.GetQuery("rr_ratio"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return p, errors.New("rr_ratio must be a number")
		}
		p.RewardRiskRatio = f
	}
	if v, ok := c.GetQuery("atr_sl_multiplier"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return p, errors.New("atr_sl_multiplier must be a number")
		}
		p.ATRStopMultiplier = f
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// statusFor はドメインエラーをHTTPステータスとクライアント向けメッセージに変換します。
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidTicker):
		return http.StatusNotFound, "ticker not found"
	case errors.Is(err, domain.ErrDegenerateRisk):
		return http.StatusUnprocessableEntity, "stop-loss would sit on the wrong side of the price"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func levelFor(status int) slog.Level {
	if status >= http.StatusInternalServerError {
		return slog.LevelError
	}
	return slog.LevelInfo
}
