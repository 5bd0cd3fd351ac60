package notify

import (
	"context"
	"sync"
	"testing"

	"github.com/teranga-labs/rappel/internal/bus"
	"github.com/teranga-labs/rappel/internal/db"
	"github.com/teranga-labs/rappel/internal/model"
)

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (r *recordingPublisher) Publish(topic string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
	return nil
}

func pairedDevice(t *testing.T, store db.Store, permission model.PermissionState) model.Device {
	t.Helper()
	device, err := store.CreateDevice("tablet", "hash", "code-"+string(permission))
	if err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}
	if err := store.MarkDevicePaired(device.ID); err != nil {
		t.Fatalf("MarkDevicePaired: %v", err)
	}
	if err := store.SetDevicePermission(device.ID, permission); err != nil {
		t.Fatalf("SetDevicePermission: %v", err)
	}
	return device
}

func TestSend_SkipsDevicesWithoutPermission(t *testing.T) {
	store := db.NewMemoryStore()
	granted := pairedDevice(t, store, model.PermissionGranted)
	pairedDevice(t, store, model.PermissionDenied)
	pairedDevice(t, store, model.PermissionDefault)

	pub := &recordingPublisher{}
	n := NewDeviceNotifier(pub, store)

	if err := n.Send(context.Background(), Iftar()); err != nil {
		t.Fatalf("Send: %v", err)
	}

	pub.mu.Lock()
	topics := pub.topics
	pub.mu.Unlock()
	if len(topics) != 1 {
		t.Fatalf("published to %d topics, want 1", len(topics))
	}
	if topics[0] != bus.DeviceNotifyTopic(granted.ID) {
		t.Fatalf("published to %q, want the granted device's topic", topics[0])
	}
}

func TestSend_NoPairedDevices(t *testing.T) {
	pub := &recordingPublisher{}
	n := NewDeviceNotifier(pub, db.NewMemoryStore())

	if err := n.Send(context.Background(), Daily()); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(pub.topics) != 0 {
		t.Fatalf("published to %d topics, want 0", len(pub.topics))
	}
}

func TestForEntry(t *testing.T) {
	cases := []struct {
		entry   model.ScheduledNotification
		wantTag string
	}{
		{model.ScheduledNotification{Type: model.SuhoorNotification}, "ramadan-suhoor"},
		{model.ScheduledNotification{Type: model.IftarNotification}, "ramadan-iftar"},
		{model.ScheduledNotification{Type: model.PrayerNotification, PrayerName: "Fajr"}, "prayer-fajr"},
		{model.ScheduledNotification{Type: "UNKNOWN", Message: "m"}, "ramadan-notification"},
	}
	for _, tc := range cases {
		if got := ForEntry(tc.entry); got.Tag != tc.wantTag {
			t.Errorf("ForEntry(%s).Tag = %q, want %q", tc.entry.Type, got.Tag, tc.wantTag)
		}
	}
}

func TestPrayerNotificationActions(t *testing.T) {
	n := Prayer("Maghrib")
	if len(n.Actions) != 2 || n.Actions[1] != "stop" {
		t.Fatalf("actions = %v, want [open stop]", n.Actions)
	}
	if !n.RequireInteraction {
		t.Fatal("prayer notification should require interaction")
	}
}
