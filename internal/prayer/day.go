package prayer

import "time"

// CalendarDay identifies one local calendar day ("2006-01-02").
// All day-sensitive components (ledger, cache keys, rollover detection)
// compare these values instead of re-deriving day boundaries themselves.
type CalendarDay string

const dayLayout = "2006-01-02"

func DayOf(t time.Time) CalendarDay {
	return CalendarDay(t.Format(dayLayout))
}

func (d CalendarDay) String() string { return string(d) }

// UntilMidnight returns how long the current calendar day remains valid.
// Used as the cache TTL for the day's time table.
func UntilMidnight(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
	return next.Sub(now)
}
