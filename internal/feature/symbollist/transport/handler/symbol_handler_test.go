package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"signal_backend/internal/feature/symbollist/domain/entity"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// mockSymbolUsecase はSymbolUsecaseインターフェースのモック実装です。
type mockSymbolUsecase struct {
	ListActiveSymbolsFunc func(ctx context.Context) ([]entity.Symbol, error)
}

// ListActiveSymbols はモックのListActiveSymbols関数を呼び出します。
func (m *mockSymbolUsecase) ListActiveSymbols(ctx context.Context) ([]entity.Symbol, error) {
	if m.ListActiveSymbolsFunc != nil {
		return m.ListActiveSymbolsFunc(ctx)
	}
	return nil, nil
}

func catalog(context.Context) ([]entity.Symbol, error) {
	return []entity.Symbol{
		{ID: 1, Code: "AAPL", Name: "Apple Inc.", Market: "stocks", Exchange: "XNAS", IsActive: true, SortKey: 1},
		{ID: 2, Code: "IBM", Name: "IBM", Market: "stocks", Exchange: "XNYS", IsActive: true, SortKey: 2},
	}, nil
}

// TestSymbolHandler_List はListハンドラーの各種シナリオをテーブル駆動テストで検証します。
func TestSymbolHandler_List(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name               string
		query              string
		mockListActiveFunc func(ctx context.Context) ([]entity.Symbol, error)
		expectedStatus     int
		expectedBody       string
	}{
		{
			name:               "success: returns list of symbols",
			mockListActiveFunc: catalog,
			expectedStatus:     http.StatusOK,
			expectedBody:       `[{"code":"AAPL","name":"Apple Inc.","exchange":"XNAS"},{"code":"IBM","name":"IBM","exchange":"XNYS"}]`,
		},
		{
			name:               "success: filters by exchange",
			query:              "?exchange=xnys",
			mockListActiveFunc: catalog,
			expectedStatus:     http.StatusOK,
			expectedBody:       `[{"code":"IBM","name":"IBM","exchange":"XNYS"}]`,
		},
		{
			name: "success: returns empty list when usecase returns nil",
			mockListActiveFunc: func(ctx context.Context) ([]entity.Symbol, error) {
				return nil, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
		{
			name: "failure: usecase error is not leaked",
			mockListActiveFunc: func(ctx context.Context) ([]entity.Symbol, error) {
				return nil, errors.New("database connection failed")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"failed to list symbols"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := NewSymbolHandler(&mockSymbolUsecase{ListActiveSymbolsFunc: tt.mockListActiveFunc})

			router := gin.New()
			router.GET("/symbols", handler.List)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/symbols"+tt.query, nil)

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

// TestSymbolHandler_List_DTOConversion は内部フィールドがレスポンスに含まれないことを検証します。
func TestSymbolHandler_List_DTOConversion(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	handler := NewSymbolHandler(&mockSymbolUsecase{
		ListActiveSymbolsFunc: func(ctx context.Context) ([]entity.Symbol, error) {
			return []entity.Symbol{{ID: 999, Code: "TEST", Name: "Test Co", Market: "otc", Type: "WARRANT", IsActive: true, SortKey: 100}}, nil
		},
	})

	router := gin.New()
	router.GET("/symbols", handler.List)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/symbols", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"code":"TEST","name":"Test Co"}]`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "999")
	assert.NotContains(t, w.Body.String(), "WARRANT")
	assert.NotContains(t, w.Body.String(), "sort_key")
}
