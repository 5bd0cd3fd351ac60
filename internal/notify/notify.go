// Package notify delivers platform notifications to paired devices.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/teranga-labs/rappel/internal/bus"
	"github.com/teranga-labs/rappel/internal/db"
	"github.com/teranga-labs/rappel/internal/model"
)

// Notifier sends one notification to every paired device that still
// has permission.
type Notifier interface {
	Send(ctx context.Context, n model.Notification) error
}

// DeviceNotifier publishes notification payloads on each device's MQTT
// topic. Permission is re-read from the store on every send; a device
// may have revoked it since the last delivery.
type DeviceNotifier struct {
	pub   bus.Publisher
	store db.Store
}

var _ Notifier = (*DeviceNotifier)(nil)

func NewDeviceNotifier(pub bus.Publisher, store db.Store) *DeviceNotifier {
	return &DeviceNotifier{pub: pub, store: store}
}

func (n *DeviceNotifier) Send(ctx context.Context, notification model.Notification) error {
	devices, err := n.store.ListPairedDevices()
	if err != nil {
		return fmt.Errorf("list paired devices: %w", err)
	}

	for _, d := range devices {
		if d.Permission != model.PermissionGranted {
			log.Debug().
				Int("device_id", d.ID).
				Str("permission", string(d.Permission)).
				Str("tag", notification.Tag).
				Msg("skipping device without notification permission")
			continue
		}
		if err := n.pub.Publish(bus.DeviceNotifyTopic(d.ID), notification); err != nil {
			// delivery failure degrades the feature, never the worker
			log.Warn().Err(err).Int("device_id", d.ID).Str("tag", notification.Tag).
				Msg("notification delivery failed")
		}
	}
	return nil
}

// Prebuilt notification contents. Text matches the companion app's
// French copy.

func Daily() model.Notification {
	return model.Notification{
		Title:              "Ramadan Rappel",
		Body:               "Pensez à faire vos rappels quotidiens du Ramadan.",
		Tag:                "ramadan-rappel-daily",
		RequireInteraction: true,
	}
}

func Suhoor() model.Notification {
	return model.Notification{
		Title:              "⏰ Suhoor",
		Body:               "Il reste 30 minutes avant la fin du Suhoor !",
		Tag:                "ramadan-suhoor",
		RequireInteraction: true,
	}
}

func Iftar() model.Notification {
	return model.Notification{
		Title:              "🌙 Iftar",
		Body:               "Il reste 15 minutes avant l'Iftar !",
		Tag:                "ramadan-iftar",
		RequireInteraction: true,
	}
}

func Prayer(prayerName string) model.Notification {
	return model.Notification{
		Title:              fmt.Sprintf("🕌 C'est l'heure de %s !", prayerName),
		Body:               "Il est temps d'accomplir votre prière.",
		Tag:                "prayer-" + strings.ToLower(prayerName),
		Actions:            []string{"open", "stop"},
		RequireInteraction: true,
	}
}

// ForEntry maps a scheduled entry to its notification content.
func ForEntry(e model.ScheduledNotification) model.Notification {
	switch e.Type {
	case model.SuhoorNotification:
		return Suhoor()
	case model.IftarNotification:
		return Iftar()
	case model.PrayerNotification:
		return Prayer(e.PrayerName)
	default:
		return model.Notification{Title: "Ramadan Rappel", Body: e.Message, Tag: "ramadan-notification"}
	}
}
