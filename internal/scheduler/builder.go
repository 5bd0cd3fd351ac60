package scheduler

import (
	"time"

	"github.com/teranga-labs/rappel/internal/model"
	"github.com/teranga-labs/rappel/internal/prayer"
)

// Reminder lead times relative to the fast boundaries.
const (
	suhoorLead = 30 * time.Minute // before Fajr (end of suhoor)
	iftarLead  = 15 * time.Minute // before Maghrib (iftar)
)

// BuildSchedule computes the complete desired pending set for the
// worker: the caller always replaces, never merges. Entries already in
// the past are not produced.
func BuildSchedule(table model.TimeTable, prefs model.Preferences, now time.Time) []model.ScheduledNotification {
	entries := []model.ScheduledNotification{}
	if !prefs.NotificationsEnabled {
		return entries
	}

	if prefs.NotificationSettings.Suhoor {
		if at, ok := leadTime(table, "Fajr", suhoorLead, now); ok && at.After(now) {
			entries = append(entries, model.ScheduledNotification{
				Type:     model.SuhoorNotification,
				FireAtMs: at.UnixMilli(),
				Message:  "Il reste 30 minutes avant la fin du Suhoor !",
			})
		}
	}

	if prefs.NotificationSettings.Iftar {
		if at, ok := leadTime(table, "Maghrib", iftarLead, now); ok && at.After(now) {
			entries = append(entries, model.ScheduledNotification{
				Type:     model.IftarNotification,
				FireAtMs: at.UnixMilli(),
				Message:  "Il reste 15 minutes avant l'Iftar !",
			})
		}
	}

	return entries
}

func leadTime(table model.TimeTable, prayerName string, lead time.Duration, now time.Time) (time.Time, bool) {
	raw, ok := table.Timings[prayerName]
	if !ok || raw == "" {
		return time.Time{}, false
	}
	at, err := prayer.TimeOn(now, raw)
	if err != nil {
		return time.Time{}, false
	}
	return at.Add(-lead), true
}
