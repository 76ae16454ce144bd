// Package calendar は銘柄コードから上場取引所の暦（タイムゾーン・取引時間）を引きます。
package calendar

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/scmhub/calendar"
)

// DefaultMIC は接尾辞のない銘柄に使う取引所コードです。
const DefaultMIC = "xnys"

// suffixMIC は Yahoo 形式の銘柄接尾辞から ISO 10383 MIC への対応です。
var suffixMIC = map[string]string{
	".L":  "xlon",
	".PA": "xpar",
	".DE": "xfra",
	".AS": "xams",
	".TO": "xtse",
	".T":  "xjpx",
	".HK": "xhkg",
	".AX": "xasx",
}

// Exchanges は MIC ごとの暦をキャッシュし、銘柄の取引所情報を返します。
type Exchanges struct {
	mu        sync.Mutex
	calendars map[string]*calendar.Calendar
	fallback  *time.Location
}

// NewExchanges はExchangesの新しいインスタンスを生成します。
func NewExchanges() *Exchanges {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		ny = time.UTC
	}
	return &Exchanges{calendars: map[string]*calendar.Calendar{}, fallback: ny}
}

// MIC は銘柄の接尾辞から取引所コードを推定します。
func MIC(ticker string) string {
	t := strings.ToUpper(ticker)
	for suffix, mic := range suffixMIC {
		if strings.HasSuffix(t, suffix) {
			return mic
		}
	}
	return DefaultMIC
}

// lookup は MIC の暦を返します。見つからない場合は NYSE、それもなければ nil です。
func (e *Exchanges) lookup(mic string) *calendar.Calendar {
	e.mu.Lock()
	defer e.mu.Unlock()

	if cal, ok := e.calendars[mic]; ok {
		return cal
	}
	cal := calendar.GetCalendar(mic)
	if cal == nil && mic != DefaultMIC {
		slog.Warn("unknown exchange calendar, falling back to NYSE", "mic", mic)
		cal = calendar.GetCalendar(DefaultMIC)
	}
	e.calendars[mic] = cal
	return cal
}

// Location は銘柄の取引所のタイムゾーンを返します。
func (e *Exchanges) Location(ticker string) *time.Location {
	cal := e.lookup(MIC(ticker))
	if cal == nil || cal.Loc == nil {
		return e.fallback
	}
	return cal.Loc
}

// MICLocation は取引所コード mic のタイムゾーンを返します。
func (e *Exchanges) MICLocation(mic string) *time.Location {
	cal := e.lookup(strings.ToLower(mic))
	if cal == nil || cal.Loc == nil {
		return e.fallback
	}
	return cal.Loc
}

// IsOpen は t に銘柄の取引所が開いているかを返します。
// 暦が読み込めない場合は平日 9:30-16:00（ニューヨーク時間）で判定します。
func (e *Exchanges) IsOpen(ticker string, t time.Time) bool {
	cal := e.lookup(MIC(ticker))
	if cal != nil {
		return cal.IsOpen(t)
	}
	local := t.In(e.fallback)
	if wd := local.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	minutes := local.Hour()*60 + local.Minute()
	return minutes >= 9*60+30 && minutes < 16*60
}

// IsBusinessDay は t が銘柄の取引所の営業日かを返します。
func (e *Exchanges) IsBusinessDay(ticker string, t time.Time) bool {
	cal := e.lookup(MIC(ticker))
	if cal == nil {
		wd := t.In(e.fallback).Weekday()
		return wd != time.Saturday && wd != time.Sunday
	}
	return cal.IsBusinessDay(t)
}
