package cache

import (
	"time"
)

// TimeUntilNext は loc における次の hour 時ちょうどまでの期間を返します。
// now がちょうど hour 時の場合は翌日の hour 時までの期間になります。
func TimeUntilNext(now time.Time, hour int, loc *time.Location) time.Duration {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)

	// 今日の hour 時を計算
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)

	// 既に過ぎている場合は翌日の hour 時を使用
	if !local.Before(next) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, 0, 0, 0, loc)
	}
	return next.Sub(now)
}
