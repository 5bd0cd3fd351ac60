package coordinator

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/teranga-labs/rappel/internal/bus"
	"github.com/teranga-labs/rappel/internal/db"
	"github.com/teranga-labs/rappel/internal/model"
)

type fakeNotifier struct {
	mu   sync.Mutex
	sent []model.Notification
}

func (f *fakeNotifier) Send(ctx context.Context, n model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
	return nil
}

func (f *fakeNotifier) tags() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, n := range f.sent {
		out = append(out, n.Tag)
	}
	return out
}

type fakePublisher struct {
	mu        sync.Mutex
	published map[string][]any
}

func (f *fakePublisher) Publish(topic string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.published == nil {
		f.published = map[string][]any{}
	}
	f.published[topic] = append(f.published[topic], payload)
	return nil
}

func entryIn(d time.Duration, typ model.NotificationType) model.ScheduledNotification {
	return model.ScheduledNotification{
		Type:     typ,
		FireAtMs: time.Now().Add(d).UnixMilli(),
		Message:  "test",
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSchedule_FiresDueEntryAndRemovesIt(t *testing.T) {
	store := db.NewMemoryStore()
	notifier := &fakeNotifier{}
	c := New(store, notifier, &fakePublisher{})

	c.Schedule([]model.ScheduledNotification{entryIn(30*time.Millisecond, model.IftarNotification)})

	waitFor(t, func() bool { return len(notifier.tags()) == 1 })
	if notifier.tags()[0] != "ramadan-iftar" {
		t.Fatalf("delivered tag = %q, want ramadan-iftar", notifier.tags()[0])
	}

	waitFor(t, func() bool { return len(c.Pending()) == 0 })
	persisted, err := store.LoadSchedule()
	if err != nil {
		t.Fatalf("LoadSchedule: %v", err)
	}
	if len(persisted) != 0 {
		t.Fatalf("persisted schedule has %d entries after delivery, want 0", len(persisted))
	}
}

func TestSchedule_PastDueEntriesDiscarded(t *testing.T) {
	store := db.NewMemoryStore()
	notifier := &fakeNotifier{}
	c := New(store, notifier, &fakePublisher{})

	c.Schedule([]model.ScheduledNotification{entryIn(-time.Minute, model.SuhoorNotification)})

	if got := len(c.Pending()); got != 0 {
		t.Fatalf("pending = %d, want 0", got)
	}
	time.Sleep(50 * time.Millisecond)
	if got := len(notifier.tags()); got != 0 {
		t.Fatalf("delivered %d notifications for a past-due entry, want 0", got)
	}
}

func TestSchedule_ReplacementCancelsOldTimers(t *testing.T) {
	store := db.NewMemoryStore()
	notifier := &fakeNotifier{}
	c := New(store, notifier, &fakePublisher{})

	c.Schedule([]model.ScheduledNotification{entryIn(40*time.Millisecond, model.IftarNotification)})
	c.Schedule(nil)

	time.Sleep(100 * time.Millisecond)
	if got := len(notifier.tags()); got != 0 {
		t.Fatalf("cancelled entry still delivered %d notifications", got)
	}
	persisted, _ := store.LoadSchedule()
	if len(persisted) != 0 {
		t.Fatalf("persisted schedule has %d entries, want 0", len(persisted))
	}
}

func TestRun_RestoresPersistedSchedule(t *testing.T) {
	store := db.NewMemoryStore()
	future := entryIn(30*time.Millisecond, model.IftarNotification)
	past := entryIn(-time.Hour, model.SuhoorNotification)
	if err := store.SaveSchedule([]model.ScheduledNotification{past, future}); err != nil {
		t.Fatalf("SaveSchedule: %v", err)
	}

	notifier := &fakeNotifier{}
	c := New(store, notifier, &fakePublisher{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	waitFor(t, func() bool { return len(notifier.tags()) == 1 })
	if notifier.tags()[0] != "ramadan-iftar" {
		t.Fatalf("delivered tag = %q, want ramadan-iftar", notifier.tags()[0])
	}

	cancel()
	<-done
}

func TestFireNow_BypassesTimers(t *testing.T) {
	notifier := &fakeNotifier{}
	c := New(db.NewMemoryStore(), notifier, &fakePublisher{})

	c.FireNow(model.ScheduledNotification{Type: model.SuhoorNotification})

	tags := notifier.tags()
	if len(tags) != 1 || tags[0] != "ramadan-suhoor" {
		t.Fatalf("delivered tags = %v, want [ramadan-suhoor]", tags)
	}
	if len(c.Pending()) != 0 {
		t.Fatal("FireNow must not touch the pending set")
	}
}

func TestHandleCommand_ShowPrayer(t *testing.T) {
	notifier := &fakeNotifier{}
	c := New(db.NewMemoryStore(), notifier, &fakePublisher{})

	c.HandleCommand(bus.Command{Type: bus.CmdShowPrayer, PrayerName: "Maghrib"})

	tags := notifier.tags()
	if len(tags) != 1 || tags[0] != "prayer-maghrib" {
		t.Fatalf("delivered tags = %v, want [prayer-maghrib]", tags)
	}
}

func TestHandleCommand_SkipWaitAnnouncesVersion(t *testing.T) {
	pub := &fakePublisher{}
	c := New(db.NewMemoryStore(), &fakeNotifier{}, pub)

	c.HandleCommand(bus.Command{Type: bus.CmdSkipWait})

	pub.mu.Lock()
	events := pub.published[bus.TopicForeground]
	pub.mu.Unlock()
	if len(events) != 1 {
		t.Fatalf("published %d foreground events, want 1", len(events))
	}
	ev, ok := events[0].(bus.Event)
	if !ok || ev.Type != bus.EvtNewVersion {
		t.Fatalf("event = %#v, want NEW_VERSION_AVAILABLE", events[0])
	}
}

func TestOnSchedule_MalformedPayloadIgnored(t *testing.T) {
	store := db.NewMemoryStore()
	c := New(store, &fakeNotifier{}, &fakePublisher{})
	c.Schedule([]model.ScheduledNotification{entryIn(time.Hour, model.IftarNotification)})

	c.onSchedule([]byte("{not json"))

	if got := len(c.Pending()); got != 1 {
		t.Fatalf("pending = %d after malformed payload, want 1", got)
	}
}

func TestOnSchedule_ReplacesFromWire(t *testing.T) {
	store := db.NewMemoryStore()
	c := New(store, &fakeNotifier{}, &fakePublisher{})
	c.Schedule([]model.ScheduledNotification{entryIn(time.Hour, model.IftarNotification)})

	replacement := []model.ScheduledNotification{
		entryIn(2*time.Hour, model.SuhoorNotification),
		entryIn(3*time.Hour, model.IftarNotification),
	}
	body, err := json.Marshal(replacement)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	c.onSchedule(body)

	pending := c.Pending()
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}
	if pending[0].Type != model.SuhoorNotification {
		t.Fatalf("first pending type = %s, want %s", pending[0].Type, model.SuhoorNotification)
	}
}
