package model

// PrayerOrder is the fixed evaluation order for alertable prayers.
// Sunrise is display-only and never triggers an alert.
var PrayerOrder = []string{"Fajr", "Dhuhr", "Asr", "Maghrib", "Isha"}

// TimeTable holds one day of prayer timings for a city.
// Timings values are "HH:MM" strings, possibly with a trailing
// parenthetical annotation from the provider ("04:12 (WAT)").
// Immutable once fetched; replaced wholesale on day or city change.
type TimeTable struct {
	City    string            `json:"city"`
	Day     string            `json:"day"`  // calendar day, YYYY-MM-DD
	Date    string            `json:"date"` // human-readable date from the provider
	Method  int               `json:"method"`
	Timings map[string]string `json:"timings"`
}

type PermissionState string

const (
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
	PermissionDefault PermissionState = "default"
)
