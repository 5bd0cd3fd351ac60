package prayer

import "time"

// ramadanMonth is month 9 of the Islamic calendar.
const ramadanMonth = 9

// ResolveRamadanDay returns the Ramadan day (1..30) to display for the
// given instant. A manual override wins; otherwise the day comes from a
// tabular Islamic calendar conversion, falling back to 1 outside
// Ramadan. Exact jurisprudence is delegated upstream, this only drives
// the daily reminder text.
func ResolveRamadanDay(useManual bool, manualDay int, now time.Time) int {
	if useManual {
		return clampDay(manualDay)
	}
	_, month, day := islamicDate(now)
	if month != ramadanMonth {
		return 1
	}
	return clampDay(day)
}

func clampDay(d int) int {
	if d < 1 {
		return 1
	}
	if d > 30 {
		return 30
	}
	return d
}

// islamicDate converts to the tabular (civil epoch) Islamic calendar.
func islamicDate(t time.Time) (year, month, day int) {
	jd := julianDayNumber(t)
	l := jd - 1948440 + 10632
	n := (l - 1) / 10631
	l = l - 10631*n + 354
	j := ((10985-l)/5316)*((50*l)/17719) + (l/5670)*((43*l)/15238)
	l = l - ((30-j)/15)*((17719*j)/50) - (j/16)*((15238*j)/43) + 29
	month = (24 * l) / 709
	day = l - (709*month)/24
	year = 30*n + j - 30
	return year, month, day
}

func julianDayNumber(t time.Time) int {
	y, m, d := t.Date()
	a := (14 - int(m)) / 12
	yy := y + 4800 - a
	mm := int(m) + 12*a - 3
	return d + (153*mm+2)/5 + 365*yy + yy/4 - yy/100 + yy/400 - 32045
}
