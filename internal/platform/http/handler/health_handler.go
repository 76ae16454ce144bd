// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// Check は依存先の疎通確認です。nil を返せば正常です。
type Check func(ctx context.Context) error

// HealthHandler は /healthz エンドポイントを処理します。
// 依存先（Redis キャッシュ・カタログDB など）はすべて任意のため、異常があっても 200 を返し
// status を "degraded" にします。
type HealthHandler struct {
	checks  map[string]Check
	timeout time.Duration
}

// NewHealthHandler はHealthHandlerの新しいインスタンスを生成します。
func NewHealthHandler(timeout time.Duration) *HealthHandler {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthHandler{checks: map[string]Check{}, timeout: timeout}
}

// Register は name の疎通確認を追加します。
func (h *HealthHandler) Register(name string, check Check) {
	h.checks[name] = check
}

// Health はサービスのヘルスチェックに応答します。HTTPメソッドに応じてレスポンスし、キャッシュを防止します。
func (h *HealthHandler) Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
		return
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "ok"
	deps := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			deps[name] = "unavailable"
			status = "degraded"
			continue
		}
		deps[name] = "ok"
	}

	c.JSON(http.StatusOK, gin.H{"status": status, "dependencies": deps})
}
