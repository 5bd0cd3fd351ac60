package prayer

import (
	"testing"
	"time"
)

var dayTimings = map[string]string{
	"Fajr":    "05:00",
	"Dhuhr":   "13:00",
	"Asr":     "16:30",
	"Maghrib": "19:10",
	"Isha":    "20:30",
}

func at(t *testing.T, clock string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04:05", "2026-03-10 "+clock)
	if err != nil {
		t.Fatalf("bad clock %q: %v", clock, err)
	}
	return parsed
}

func TestEvaluate_InsideWindow(t *testing.T) {
	ev := Evaluate(dayTimings, at(t, "19:10:30"))
	if ev.Current == nil || ev.Current.Name != "Maghrib" {
		t.Fatalf("want Maghrib current, got %+v", ev.Current)
	}
	if ev.Next != nil {
		t.Fatalf("next should be nil while a window is open, got %+v", ev.Next)
	}
	if ev.Countdown != "" {
		t.Fatalf("countdown should be empty inside a window, got %q", ev.Countdown)
	}
}

func TestEvaluate_ExactPrayerTime(t *testing.T) {
	ev := Evaluate(dayTimings, at(t, "19:10:00"))
	if ev.Current == nil || ev.Current.Name != "Maghrib" {
		t.Fatalf("diff=0 must be current, got %+v", ev.Current)
	}
	if ev.Countdown != "" {
		t.Fatalf("countdown must be empty at diff=0, got %q", ev.Countdown)
	}
}

func TestEvaluate_WindowClosed(t *testing.T) {
	ev := Evaluate(dayTimings, at(t, "19:16:00"))
	if ev.Current != nil {
		t.Fatalf("window closed but current = %+v", ev.Current)
	}
	if ev.Next == nil || ev.Next.Name != "Isha" {
		t.Fatalf("want Isha next, got %+v", ev.Next)
	}
	if want := 74 * time.Minute; ev.Next.Diff != want {
		t.Fatalf("want diff %v, got %v", want, ev.Next.Diff)
	}
}

func TestEvaluate_WindowBoundaryExclusive(t *testing.T) {
	// exactly prayerTime+5m is outside the half-open window
	ev := Evaluate(dayTimings, at(t, "19:15:00"))
	if ev.Current != nil {
		t.Fatalf("t = prayerTime+window must not be current, got %+v", ev.Current)
	}
	if ev.Next == nil || ev.Next.Name != "Isha" {
		t.Fatalf("want Isha next, got %+v", ev.Next)
	}
}

func TestEvaluate_AfterLastPrayer(t *testing.T) {
	ev := Evaluate(dayTimings, at(t, "23:30:00"))
	if ev.Current != nil || ev.Next != nil {
		t.Fatalf("nothing should match late at night: %+v", ev)
	}
	if ev.Countdown != "" {
		t.Fatalf("countdown should be empty, got %q", ev.Countdown)
	}
}

func TestEvaluate_NextIsMinimumDiff(t *testing.T) {
	ev := Evaluate(dayTimings, at(t, "06:00:00"))
	if ev.Next == nil || ev.Next.Name != "Dhuhr" {
		t.Fatalf("want Dhuhr next at 06:00, got %+v", ev.Next)
	}
}

func TestEvaluate_MissingAndMalformedEntries(t *testing.T) {
	timings := map[string]string{
		"Fajr":    "--:--",
		"Maghrib": "19:10",
	}
	ev := Evaluate(timings, at(t, "06:00:00"))
	if ev.Next == nil || ev.Next.Name != "Maghrib" {
		t.Fatalf("malformed Fajr must be skipped, got %+v", ev.Next)
	}
	if len(ev.Skipped) != 1 || ev.Skipped[0] != "Fajr" {
		t.Fatalf("want Fajr reported as skipped, got %v", ev.Skipped)
	}
}

func TestEvaluate_OverlappingWindowsEarliestWins(t *testing.T) {
	timings := map[string]string{
		"Maghrib": "19:10",
		"Isha":    "19:12", // malformed spacing, both windows open at 19:13
	}
	ev := Evaluate(timings, at(t, "19:13:00"))
	if ev.Current == nil || ev.Current.Name != "Maghrib" {
		t.Fatalf("earliest-ordered prayer must win, got %+v", ev.Current)
	}
}

func TestEvaluate_AnnotatedTimeString(t *testing.T) {
	timings := map[string]string{"Fajr": "05:00 (WAT)"}
	ev := Evaluate(timings, at(t, "04:00:00"))
	if ev.Next == nil || ev.Next.Name != "Fajr" {
		t.Fatalf("annotation must be stripped, got %+v", ev.Next)
	}
}

func TestFormatCountdown(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{3725 * time.Second, "1h 2m 5s"},
		{65 * time.Second, "1m 5s"},
		{5 * time.Second, "5s"},
		{0, "0s"},
	}
	for _, c := range cases {
		if got := FormatCountdown(c.d); got != c.want {
			t.Errorf("FormatCountdown(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}

func TestNormalizeTime(t *testing.T) {
	if got := NormalizeTime("04:12 (some note)"); got != "04:12" {
		t.Fatalf("got %q", got)
	}
	if got := NormalizeTime("04:12"); got != "04:12" {
		t.Fatalf("got %q", got)
	}
}

func TestUntilMidnight(t *testing.T) {
	now := at(t, "23:00:00")
	if got := UntilMidnight(now); got != time.Hour {
		t.Fatalf("want 1h, got %v", got)
	}
}

func TestDayOf(t *testing.T) {
	if d := DayOf(at(t, "10:00:00")); d != CalendarDay("2026-03-10") {
		t.Fatalf("got %q", d)
	}
}

func TestResolveRamadanDay_ManualOverride(t *testing.T) {
	now := time.Now()
	if d := ResolveRamadanDay(true, 12, now); d != 12 {
		t.Fatalf("want 12, got %d", d)
	}
	if d := ResolveRamadanDay(true, 45, now); d != 30 {
		t.Fatalf("manual day must clamp to 30, got %d", d)
	}
	if d := ResolveRamadanDay(true, 0, now); d != 1 {
		t.Fatalf("manual day must clamp to 1, got %d", d)
	}
}

func TestResolveRamadanDay_OutsideRamadan(t *testing.T) {
	// 2026-01-01 falls in Rajab 1447
	day := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	if d := ResolveRamadanDay(false, 1, day); d != 1 {
		t.Fatalf("outside Ramadan must resolve to 1, got %d", d)
	}
}

func TestIslamicDate_KnownConversion(t *testing.T) {
	// Tabular calendar: 2026-02-18 is 1 Ramadan 1447.
	y, m, d := islamicDate(time.Date(2026, 2, 18, 12, 0, 0, 0, time.UTC))
	if y != 1447 || m != ramadanMonth || d != 1 {
		t.Fatalf("got %d-%d-%d, want 1447-9-1", y, m, d)
	}
}
