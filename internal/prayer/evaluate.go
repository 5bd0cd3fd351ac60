// Package prayer evaluates a day's time table against the clock.
//
// Evaluate is a pure function of (timings, now): it carries no state,
// performs no I/O and does no logging. Malformed entries are reported
// back to the caller, which decides how to surface them.
package prayer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teranga-labs/rappel/internal/model"
)

// AlertWindow is how long after its clock time a prayer stays "current".
// Prayers are always spaced further apart than this in practice, so at
// most one window is open at a time.
const AlertWindow = 5 * time.Minute

// Upcoming is a prayer positioned relative to "now".
type Upcoming struct {
	Name string
	At   time.Time
	Diff time.Duration // At - now; negative inside the window
}

type Evaluation struct {
	// Current is the prayer whose window is open, if any.
	Current *Upcoming
	// Next is the nearest future prayer. Nil while a window is open
	// and after the last prayer of the day has fully passed.
	Next      *Upcoming
	Countdown string
	// Skipped lists prayers whose time string could not be parsed.
	Skipped []string
}

// Evaluate determines the current and next prayer for the given instant.
// Prayers missing from the table are ignored; unparsable times are
// skipped and reported. When two windows would overlap (malformed
// table), the earliest-ordered prayer wins.
func Evaluate(timings map[string]string, now time.Time) Evaluation {
	var ev Evaluation
	var best *Upcoming

	for _, name := range model.PrayerOrder {
		raw, ok := timings[name]
		if !ok || raw == "" {
			continue
		}
		at, err := TimeOn(now, raw)
		if err != nil {
			ev.Skipped = append(ev.Skipped, name)
			continue
		}
		diff := at.Sub(now)
		if diff <= -AlertWindow {
			continue // fully passed
		}
		if best == nil || diff < best.Diff {
			best = &Upcoming{Name: name, At: at, Diff: diff}
		}
	}

	if best == nil {
		return ev
	}
	if best.Diff <= 0 {
		ev.Current = best
		return ev
	}
	ev.Next = best
	ev.Countdown = FormatCountdown(best.Diff)
	return ev
}

// NormalizeTime strips a trailing parenthetical annotation the provider
// sometimes appends, e.g. "04:12 (WAT)" -> "04:12".
func NormalizeTime(v string) string {
	if i := strings.Index(v, "("); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}

// TimeOn resolves an "HH:MM" string onto the calendar day of ref.
func TimeOn(ref time.Time, raw string) (time.Time, error) {
	hh, mm, ok := strings.Cut(NormalizeTime(raw), ":")
	if !ok {
		return time.Time{}, fmt.Errorf("malformed time %q", raw)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return time.Time{}, fmt.Errorf("malformed hour %q", raw)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return time.Time{}, fmt.Errorf("malformed minute %q", raw)
	}
	return time.Date(ref.Year(), ref.Month(), ref.Day(), h, m, 0, 0, ref.Location()), nil
}

// FormatCountdown renders a non-negative duration as "1h 2m 5s",
// "2m 5s" or "5s".
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		return ""
	}
	total := int(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
