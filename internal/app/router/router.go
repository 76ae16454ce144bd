// Package router はHTTPルーティングを定義します。
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	analysishandler "signal_backend/internal/feature/analysis/transport/handler"
	symbollisthandler "signal_backend/internal/feature/symbollist/transport/handler"
	"signal_backend/internal/platform/http/handler"
	"signal_backend/internal/platform/http/middleware"
)

// NewRouter は全エンドポイントを登録した gin エンジンを返します。
func NewRouter(corsOrigins []string, analysis *analysishandler.AnalysisHandler,
	symbol *symbollisthandler.SymbolHandler, health *handler.HealthHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())

	// Webフロントエンドからの呼び出しを許可
	r.Use(cors.New(cors.Config{
		AllowOrigins:  corsOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	// 導通確認用
	r.GET("/healthz", health.Health)
	r.HEAD("/healthz", health.Health)

	api := r.Group("/api")
	{
		api.GET("/analysis/:ticker", analysis.Analyze)
		api.GET("/symbols", symbol.List)
	}

	return r
}
