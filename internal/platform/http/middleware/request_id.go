// Package middleware はルーター共通の gin ミドルウェアを提供します。
package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader はリクエストIDを運ぶヘッダー名です。
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey は gin コンテキストに保存するキーです。
	RequestIDKey = "request_id"
	maxRequestIDLen = 128
)

// RequestID はクライアントから受け取ったリクエストIDを引き継ぎ、なければ UUID を採番します。
// IDはレスポンスヘッダーと gin コンテキストの両方に設定されます。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID は gin コンテキストからリクエストIDを取り出します。
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// AccessLog はリクエストごとに slog で1行のアクセスログを出力します。
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		}
		slog.Log(c.Request.Context(), level, "http request",
			"request_id", GetRequestID(c),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}
