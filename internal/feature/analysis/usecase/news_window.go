package usecase

import "time"

// preMarketOpenHour はプレマーケットの開始時刻（取引所現地時間）です。
const preMarketOpenHour = 4

// NewsWindow はセンチメント集計の対象となる記事の公開期間です。
type NewsWindow struct {
	Start time.Time
	End   time.Time
}

// PreMarketWindow は loc における当日 04:00 から now までの期間を返します。
// now が 04:00 より前の場合は前日の 04:00 を開始とします。
func PreMarketWindow(now time.Time, loc *time.Location) NewsWindow {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), preMarketOpenHour, 0, 0, 0, loc)
	if local.Before(start) {
		start = time.Date(local.Year(), local.Month(), local.Day()-1, preMarketOpenHour, 0, 0, 0, loc)
	}
	return NewsWindow{Start: start.UTC(), End: now.UTC()}
}
