// Package handler はsymbollistフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"signal_backend/internal/feature/symbollist/domain/entity"
	"signal_backend/internal/feature/symbollist/transport/http/dto"

	"github.com/gin-gonic/gin"
)

// SymbolUsecase は銘柄カタログに関するユースケースのインターフェースです。
type SymbolUsecase interface {
	ListActiveSymbols(ctx context.Context) ([]entity.Symbol, error)
}

// SymbolHandler は銘柄カタログに関するHTTPリクエストを処理します。
type SymbolHandler struct {
	uc SymbolUsecase
}

// NewSymbolHandler は新しい SymbolHandler を作成します。
func NewSymbolHandler(uc SymbolUsecase) *SymbolHandler {
	return &SymbolHandler{uc: uc}
}

// List は有効な銘柄の一覧を返すAPIです。
// ?exchange=XNAS のように MIC を指定すると、その取引所の銘柄だけに絞り込みます。
func (h *SymbolHandler) List(c *gin.Context) {
	symbols, err := h.uc.ListActiveSymbols(c.Request.Context())
	if err != nil {
		slog.Error("failed to list symbols", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list symbols"})
		return
	}

	exchange := strings.ToUpper(c.Query("exchange"))
	out := make([]dto.SymbolItem, 0, len(symbols))
	for _, s := range symbols {
		if exchange != "" && !strings.EqualFold(s.Exchange, exchange) {
			continue
		}
		out = append(out, dto.SymbolItem{Code: s.Code, Name: s.Name, Exchange: s.Exchange})
	}
	c.JSON(http.StatusOK, out)
}
