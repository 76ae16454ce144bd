// Package http は外部API呼び出し用のHTTPクライアントとプラットフォーム共通のHTTP部品を提供します。
package http

import (
	"net"
	"net/http"
	"time"
)

// DefaultUserAgent は外部APIへ送る User-Agent です。
const DefaultUserAgent = "signal-backend/1.0"

// ClientOptions は NewHTTPClient の設定です。
type ClientOptions struct {
	// Timeout はリクエスト全体のタイムアウトです。
	Timeout time.Duration
	// MaxIdleConnsPerHost は1ホストあたりのアイドル接続数です。0 なら 10。
	MaxIdleConnsPerHost int
	// UserAgent が空なら DefaultUserAgent を使います。
	UserAgent string
}

// NewHTTPClient は外部API（市場データ・ニュース・推論サーバー）呼び出し用のHTTPクライアントを作成します。
//
// 注意:
//   - http.DefaultClientにはタイムアウトがないため、常にこのクライアントを使用すること
//   - 推論サーバーへの画像テンソル送信があるため、レスポンスヘッダー待ちは Timeout に任せる
func NewHTTPClient(opts ClientOptions) *http.Client {
	perHost := opts.MaxIdleConnsPerHost
	if perHost <= 0 {
		perHost = 10
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: perHost,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
		ForceAttemptHTTP2:   true,
	}
	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: &userAgentTransport{base: t, userAgent: ua},
	}
}

// userAgentTransport は User-Agent が未設定のリクエストに既定値を付与します。
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(r)
}
