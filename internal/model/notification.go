package model

type NotificationType string

const (
	SuhoorNotification NotificationType = "SUHOOR_NOTIFICATION"
	IftarNotification  NotificationType = "IFTAR_NOTIFICATION"
	PrayerNotification NotificationType = "PRAYER_NOTIFICATION"
)

// ScheduledNotification is one pending delivery owned by the worker.
// The foreground always sends the complete desired set; the worker
// persists it and removes entries as they fire.
type ScheduledNotification struct {
	Type       NotificationType `json:"type"`
	FireAtMs   int64            `json:"fire_at_ms"` // epoch milliseconds
	Message    string           `json:"message"`
	PrayerName string           `json:"prayer_name,omitempty"`
}

// Notification is the payload delivered to a paired device.
type Notification struct {
	Title              string   `json:"title"`
	Body               string   `json:"body"`
	Tag                string   `json:"tag"`
	Actions            []string `json:"actions,omitempty"`
	RequireInteraction bool     `json:"require_interaction"`
}
