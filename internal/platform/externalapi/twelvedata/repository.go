package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"signal_backend/internal/feature/analysis/domain/entity"
	"signal_backend/internal/feature/analysis/usecase"
	"signal_backend/internal/platform/externalapi/twelvedata/dto"
)

const (
	dateTimeLayout = "2006-01-02 15:04:05"
	dateLayout     = "2006-01-02"
	maxOutputSize  = 5000
)

// TwelveDataMarket はTwelve Data外部APIから分足を取得するMarketRepository実装です。
type TwelveDataMarket struct {
	cfg    Config
	client *http.Client
}

// TwelveDataMarketがMarketRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MarketRepository = (*TwelveDataMarket)(nil)

// NewTwelveDataMarket は指定された設定とHTTPクライアントでTwelveDataMarketの新しいインスタンスを生成します。
func NewTwelveDataMarket(cfg Config, client *http.Client) *TwelveDataMarket {
	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}
	return &TwelveDataMarket{cfg: cfg, client: client}
}

// intervalParam は分数を Twelve Data の interval 表記に変換します。
func intervalParam(i entity.Interval) (string, error) {
	switch i {
	case 1, 5, 15, 30, 45:
		return fmt.Sprintf("%dmin", int(i)), nil
	case 60, 120, 240:
		return fmt.Sprintf("%dh", int(i)/60), nil
	default:
		return "", fmt.Errorf("twelvedata: unsupported interval %s", i)
	}
}

// FetchBars はTwelve Data APIから [start, end] の時系列データを取得し、entity.Barのスライスとして返します。
func (t *TwelveDataMarket) FetchBars(ctx context.Context, ticker string, interval entity.Interval, start, end time.Time) ([]entity.Bar, error) {
	iv, err := intervalParam(interval)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(t.cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("twelvedata: load timezone %q: %w", t.cfg.Timezone, err)
	}

	q := url.Values{}
	// クエリパラメータを追加
	q.Set("symbol", ticker)
	q.Set("interval", iv)
	q.Set("start_date", start.In(loc).Format(dateTimeLayout))
	q.Set("end_date", end.In(loc).Format(dateTimeLayout))
	q.Set("timezone", t.cfg.Timezone)
	q.Set("order", "ASC")
	q.Set("outputsize", strconv.Itoa(maxOutputSize))
	q.Set("apikey", t.cfg.TwelveDataAPIKey)

	// URLを生成
	u := fmt.Sprintf("%s/time_series?%s", t.cfg.BaseURL, q.Encode())

	// リクエストオブジェクトを作成
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	// リクエストを実行
	res, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("twelvedata http %d", res.StatusCode)
	}

	// JSONレスポンスをDTOにデコード
	var body dto.TimeSeriesResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.Status == "error" {
		// 指定期間にデータがない場合もエラーとして返ってくるため、空の結果として扱う
		if strings.Contains(strings.ToLower(body.Message), "no data") {
			return []entity.Bar{}, nil
		}
		return nil, fmt.Errorf("twelvedata: %s", body.Message)
	}

	bars := make([]entity.Bar, 0, len(body.Values))
	for _, v := range body.Values {
		b, err := toBar(v, loc)
		if err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	return bars, nil
}

// toBar は文字列で表現された1本分の値をパースします。
func toBar(v dto.TimeSeriesValue, loc *time.Location) (entity.Bar, error) {
	// タイムスタンプをパース
	tm, err := time.ParseInLocation(dateTimeLayout, v.Datetime, loc)
	if err != nil {
		tm, err = time.ParseInLocation(dateLayout, v.Datetime, loc)
		if err != nil {
			return entity.Bar{}, fmt.Errorf("parse time %q: %w", v.Datetime, err)
		}
	}

	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"open", v.Open, new(float64)},
		{"high", v.High, new(float64)},
		{"low", v.Low, new(float64)},
		{"close", v.Close, new(float64)},
		{"volume", v.Volume, new(float64)},
	}
	for _, f := range fields {
		// 出来高は指数などで返ってこないことがある
		if f.name == "volume" && f.raw == "" {
			continue
		}
		n, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return entity.Bar{}, fmt.Errorf("parse %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = n
	}

	return entity.Bar{
		Time:   tm.UTC(),
		Open:   *fields[0].dst,
		High:   *fields[1].dst,
		Low:    *fields[2].dst,
		Close:  *fields[3].dst,
		Volume: *fields[4].dst,
	}, nil
}
