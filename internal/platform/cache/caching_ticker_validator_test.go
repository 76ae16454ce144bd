package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTickerValidator はテスト用のTickerValidatorモック実装です。
type mockTickerValidator struct {
	existsFn func(ctx context.Context, ticker string) (bool, error)
	calls    int
}

// Exists はモックのExists関数を呼び出します。
func (m *mockTickerValidator) Exists(ctx context.Context, ticker string) (bool, error) {
	m.calls++
	if m.existsFn != nil {
		return m.existsFn(ctx, ticker)
	}
	return true, nil
}

func fixedTTL(d time.Duration) func() time.Duration {
	return func() time.Duration { return d }
}

// TestCachingTickerValidator_Exists はキャッシュのヒット・ミス・否定結果の扱いをテーブル駆動テストで検証します。
func TestCachingTickerValidator_Exists(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		ticker     string
		setup      func(mock redismock.ClientMock)
		innerOK    bool
		innerErr   error
		want       bool
		wantErr    bool
		wantInnerN int
	}{
		{
			name:   "cache hit positive",
			ticker: "aapl",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGet("ticker:exists:AAPL").SetVal("1")
			},
			want:       true,
			wantInnerN: 0,
		},
		{
			name:   "cache hit negative",
			ticker: "ZZZZ",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGet("ticker:exists:ZZZZ").SetVal("0")
			},
			want:       false,
			wantInnerN: 0,
		},
		{
			name:   "miss stores positive with long ttl",
			ticker: "MSFT",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGet("ticker:exists:MSFT").RedisNil()
				mock.ExpectSet("ticker:exists:MSFT", "1", 6*time.Hour).SetVal("OK")
			},
			innerOK:    true,
			want:       true,
			wantInnerN: 1,
		},
		{
			name:   "miss stores negative with short ttl",
			ticker: "ZZZZ",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGet("ticker:exists:ZZZZ").RedisNil()
				mock.ExpectSet("ticker:exists:ZZZZ", "0", defaultNegativeTTL).SetVal("OK")
			},
			innerOK:    false,
			want:       false,
			wantInnerN: 1,
		},
		{
			name:   "inner error is not cached",
			ticker: "AAPL",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGet("ticker:exists:AAPL").RedisNil()
			},
			innerErr:   errors.New("polygon http 500"),
			wantErr:    true,
			wantInnerN: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rdb, mock := redismock.NewClientMock()
			defer func() { _ = rdb.Close() }()
			tt.setup(mock)

			inner := &mockTickerValidator{
				existsFn: func(ctx context.Context, ticker string) (bool, error) {
					return tt.innerOK, tt.innerErr
				},
			}
			v := NewCachingTickerValidator(rdb, fixedTTL(6*time.Hour), inner, "")

			got, err := v.Exists(context.Background(), tt.ticker)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.Equal(t, tt.wantInnerN, inner.calls)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// TestCachingTickerValidator_NilRedis はRedisがnilの場合にキャッシュをバイパスすることを検証します。
func TestCachingTickerValidator_NilRedis(t *testing.T) {
	t.Parallel()

	inner := &mockTickerValidator{}
	v := NewCachingTickerValidator(nil, nil, inner, "")

	ok, err := v.Exists(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, inner.calls)
}
