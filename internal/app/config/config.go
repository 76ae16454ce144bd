// Package config はエンジン設定（YAML + 環境変数）を読み込みます。
// 外部APIのキーやURLは各アダプターの LoadConfig が環境変数から読みます。
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"signal_backend/internal/feature/analysis/domain/entity"
	"signal_backend/internal/feature/analysis/usecase"
)

// Provider names accepted in the config file.
const (
	ProviderPolygon     = "polygon"
	ProviderTwelveData  = "twelvedata"
	ProviderFinnhub     = "finnhub"
	ProviderTFServing   = "tfserving"
	ProviderGemini      = "gemini"
	ProviderHuggingFace = "huggingface"
)

// DefaultPath is read when CONFIG_PATH is unset. A missing file is not an error.
const DefaultPath = "config.yaml"

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr        string   `yaml:"addr"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Engine struct {
		IntervalSettings    []entity.IntervalSetting `yaml:"interval_settings"`
		ATRPeriod           int                      `yaml:"atr_period"`
		ConfidenceThreshold float64                  `yaml:"confidence_threshold"`
		ATRStopMultiplier   float64                  `yaml:"atr_stop_multiplier"`
		RewardRiskRatio     float64                  `yaml:"reward_risk_ratio"`
		TempRoot            string                   `yaml:"temp_root"`
		DataDelay           time.Duration            `yaml:"data_delay"`
		MinFetchSpan        time.Duration            `yaml:"min_fetch_span"`
	} `yaml:"engine"`
	Market struct {
		Provider string `yaml:"provider"`
	} `yaml:"market"`
	News struct {
		Providers []string `yaml:"providers"`
	} `yaml:"news"`
	Models struct {
		Classifier string `yaml:"classifier"`
		Sentiment  string `yaml:"sentiment"`
	} `yaml:"models"`
	Cache struct {
		SentimentTTL time.Duration `yaml:"sentiment_ttl"`
		// RefreshHour は銘柄存在キャッシュを失効させる取引所現地時刻（時）です。
		RefreshHour int `yaml:"refresh_hour"`
	} `yaml:"cache"`
	Schedule struct {
		SymbolSyncCron string        `yaml:"symbol_sync_cron"`
		JobTimeout     time.Duration `yaml:"job_timeout"`
	} `yaml:"schedule"`
}

// PathFromEnv は CONFIG_PATH、未設定なら DefaultPath を返します。
func PathFromEnv() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads config from a YAML file, then applies environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("MARKET_PROVIDER"); v != "" {
		c.Market.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("NEWS_PROVIDERS"); v != "" {
		c.News.Providers = splitList(strings.ToLower(v))
	}
	if v := os.Getenv("CLASSIFIER_PROVIDER"); v != "" {
		c.Models.Classifier = strings.ToLower(v)
	}
	if v := os.Getenv("SENTIMENT_PROVIDER"); v != "" {
		c.Models.Sentiment = strings.ToLower(v)
	}
	if v := os.Getenv("CHART_TEMP_ROOT"); v != "" {
		c.Engine.TempRoot = v
	}
	if v := os.Getenv("SYMBOL_SYNC_CRON"); v != "" {
		c.Schedule.SymbolSyncCron = v
	}
	if v := os.Getenv("DATA_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("DATA_DELAY: %w", err)
		}
		c.Engine.DataDelay = d
	}
	if v := os.Getenv("RR_RATIO"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RR_RATIO: %w", err)
		}
		c.Engine.RewardRiskRatio = f
	}
	if v := os.Getenv("ATR_SL_MULTIPLIER"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("ATR_SL_MULTIPLIER: %w", err)
		}
		c.Engine.ATRStopMultiplier = f
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"http://localhost:3000"}
	}
	if len(c.Engine.IntervalSettings) == 0 {
		c.Engine.IntervalSettings = append([]entity.IntervalSetting(nil), usecase.DefaultIntervalSettings...)
	}
	if c.Engine.ATRPeriod == 0 {
		c.Engine.ATRPeriod = usecase.DefaultATRPeriod
	}
	if c.Engine.ConfidenceThreshold == 0 {
		c.Engine.ConfidenceThreshold = usecase.DefaultConfidenceThreshold
	}
	if c.Engine.ATRStopMultiplier == 0 {
		c.Engine.ATRStopMultiplier = usecase.DefaultATRStopMultiplier
	}
	if c.Engine.RewardRiskRatio == 0 {
		c.Engine.RewardRiskRatio = usecase.DefaultRewardRiskRatio
	}
	if c.Engine.TempRoot == "" {
		c.Engine.TempRoot = filepath.Join(os.TempDir(), "signal_backend")
	}
	if c.Engine.MinFetchSpan == 0 {
		c.Engine.MinFetchSpan = usecase.DefaultMinFetchSpan
	}
	if c.Market.Provider == "" {
		c.Market.Provider = ProviderPolygon
	}
	if len(c.News.Providers) == 0 {
		c.News.Providers = []string{ProviderPolygon}
	}
	if c.Models.Classifier == "" {
		c.Models.Classifier = ProviderTFServing
	}
	if c.Models.Sentiment == "" {
		c.Models.Sentiment = ProviderHuggingFace
	}
	if c.Cache.SentimentTTL == 0 {
		c.Cache.SentimentTTL = 24 * time.Hour
	}
	if c.Cache.RefreshHour == 0 {
		c.Cache.RefreshHour = 4
	}
	if c.Schedule.SymbolSyncCron == "" {
		// 平日 03:30（取引所現地時刻）
		c.Schedule.SymbolSyncCron = "0 30 3 * * 1-5"
	}
	if c.Schedule.JobTimeout == 0 {
		c.Schedule.JobTimeout = 5 * time.Minute
	}
}

// RiskParams returns the configured default risk parameters.
func (c *Config) RiskParams() usecase.RiskParams {
	return usecase.RiskParams{
		ATRStopMultiplier: c.Engine.ATRStopMultiplier,
		RewardRiskRatio:   c.Engine.RewardRiskRatio,
	}
}

// Validate checks that all values are usable.
func (c *Config) Validate() error {
	for i, s := range c.Engine.IntervalSettings {
		if s.IntervalMinutes <= 0 || s.LookbackBars <= 0 {
			return fmt.Errorf("engine.interval_settings[%d]: interval and lookback must be positive, got %s", i, s)
		}
	}
	if c.Engine.ATRPeriod <= 0 {
		return fmt.Errorf("engine.atr_period must be positive")
	}
	if t := c.Engine.ConfidenceThreshold; math.IsNaN(t) || t <= 0 || t > 1 {
		return fmt.Errorf("engine.confidence_threshold must be in (0, 1], got %v", t)
	}
	if err := c.RiskParams().Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if c.Engine.DataDelay < 0 {
		return fmt.Errorf("engine.data_delay must not be negative")
	}
	switch c.Market.Provider {
	case ProviderPolygon, ProviderTwelveData:
	default:
		return fmt.Errorf("market.provider %q is not supported", c.Market.Provider)
	}
	for _, p := range c.News.Providers {
		switch p {
		case ProviderPolygon, ProviderFinnhub:
		default:
			return fmt.Errorf("news.providers: %q is not supported", p)
		}
	}
	switch c.Models.Classifier {
	case ProviderTFServing, ProviderGemini:
	default:
		return fmt.Errorf("models.classifier %q is not supported", c.Models.Classifier)
	}
	switch c.Models.Sentiment {
	case ProviderHuggingFace, ProviderGemini:
	default:
		return fmt.Errorf("models.sentiment %q is not supported", c.Models.Sentiment)
	}
	if c.Cache.RefreshHour < 0 || c.Cache.RefreshHour > 23 {
		return fmt.Errorf("cache.refresh_hour must be within 0-23")
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
