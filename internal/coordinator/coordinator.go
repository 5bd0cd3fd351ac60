// Package coordinator is the background delivery process. It holds the
// pending notification set (persisted, so a restart redelivers what is
// still due), arms one-shot timers for each entry, and answers commands
// from the foreground.
package coordinator

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/teranga-labs/rappel/internal/bus"
	"github.com/teranga-labs/rappel/internal/db"
	"github.com/teranga-labs/rappel/internal/model"
	"github.com/teranga-labs/rappel/internal/notify"
)

// DailyReminderHour is the local hour of the standing daily reminder.
const DailyReminderHour = 7

type Coordinator struct {
	store    db.Store
	notifier notify.Notifier
	pub      bus.Publisher
	now      func() time.Time

	mu      sync.Mutex
	ctx     context.Context
	entries []model.ScheduledNotification
	timers  []*time.Timer
	daily   *time.Timer
	gen     int
}

func New(store db.Store, notifier notify.Notifier, pub bus.Publisher) *Coordinator {
	return &Coordinator{
		store:    store,
		notifier: notifier,
		pub:      pub,
		now:      time.Now,
		ctx:      context.Background(),
	}
}

// Run restores the persisted schedule, arms the daily reminder, and
// blocks until ctx is cancelled. Entries whose time passed while the
// worker was down are dropped, not delivered late.
func (c *Coordinator) Run(ctx context.Context) {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()

	entries, err := c.store.LoadSchedule()
	if err != nil {
		log.Error().Err(err).Msg("failed to restore pending schedule")
		entries = nil
	}
	c.Schedule(entries)
	c.armDaily()

	log.Info().Int("pending", len(entries)).Msg("delivery coordinator running")
	<-ctx.Done()
	c.shutdown()
}

// Bind subscribes the coordinator to the foreground's topics.
func (c *Coordinator) Bind(sub bus.Subscriber) error {
	if err := sub.Subscribe(bus.TopicSchedule, c.onSchedule); err != nil {
		return err
	}
	return sub.Subscribe(bus.TopicWorkerCmd, c.onCommand)
}

func (c *Coordinator) onSchedule(payload []byte) {
	var entries []model.ScheduledNotification
	if err := json.Unmarshal(payload, &entries); err != nil {
		log.Warn().Err(err).Msg("discarding malformed schedule payload")
		return
	}
	c.Schedule(entries)
}

func (c *Coordinator) onCommand(payload []byte) {
	var cmd bus.Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		log.Warn().Err(err).Msg("discarding malformed command payload")
		return
	}
	c.HandleCommand(cmd)
}

// Schedule replaces the whole pending set. Entries already due are
// discarded; the survivors are persisted and armed. The generation
// counter invalidates timers from the replaced set that are already
// past their Stop.
func (c *Coordinator) Schedule(entries []model.ScheduledNotification) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, t := range c.timers {
		t.Stop()
	}
	c.timers = nil
	c.gen++
	gen := c.gen

	kept := make([]model.ScheduledNotification, 0, len(entries))
	for _, e := range entries {
		fireAt := time.UnixMilli(e.FireAtMs)
		if !fireAt.After(now) {
			log.Debug().Str("type", string(e.Type)).Time("fire_at", fireAt).
				Msg("dropping past-due entry")
			continue
		}
		kept = append(kept, e)
	}
	c.entries = kept
	c.persistLocked()

	for _, e := range kept {
		entry := e
		delay := time.UnixMilli(entry.FireAtMs).Sub(now)
		c.timers = append(c.timers, time.AfterFunc(delay, func() {
			c.fire(gen, entry)
		}))
	}
	log.Info().Int("armed", len(kept)).Int("dropped", len(entries)-len(kept)).
		Msg("schedule replaced")
}

// fire delivers one due entry and removes it from the persisted set.
func (c *Coordinator) fire(gen int, entry model.ScheduledNotification) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	remaining := c.entries[:0]
	for _, e := range c.entries {
		if e.Type == entry.Type && e.FireAtMs == entry.FireAtMs {
			continue
		}
		remaining = append(remaining, e)
	}
	c.entries = remaining
	c.persistLocked()
	ctx := c.ctx
	c.mu.Unlock()

	log.Info().Str("type", string(entry.Type)).Msg("delivering scheduled notification")
	if err := c.notifier.Send(ctx, notify.ForEntry(entry)); err != nil {
		log.Error().Err(err).Str("type", string(entry.Type)).Msg("notification delivery failed")
	}
}

// FireNow delivers an entry immediately, bypassing its timer. The
// pending set is untouched.
func (c *Coordinator) FireNow(entry model.ScheduledNotification) {
	c.mu.Lock()
	ctx := c.ctx
	c.mu.Unlock()

	if err := c.notifier.Send(ctx, notify.ForEntry(entry)); err != nil {
		log.Error().Err(err).Str("type", string(entry.Type)).Msg("immediate delivery failed")
	}
}

// HandleCommand reacts to a foreground command.
func (c *Coordinator) HandleCommand(cmd bus.Command) {
	c.mu.Lock()
	ctx := c.ctx
	c.mu.Unlock()

	switch cmd.Type {
	case bus.CmdShowPrayer:
		if err := c.notifier.Send(ctx, notify.Prayer(cmd.PrayerName)); err != nil {
			log.Error().Err(err).Str("prayer", cmd.PrayerName).Msg("prayer notification failed")
		}
	case bus.CmdShowDaily:
		if err := c.notifier.Send(ctx, notify.Daily()); err != nil {
			log.Error().Err(err).Msg("daily notification failed")
		}
	case bus.CmdSkipWait:
		if err := c.pub.Publish(bus.TopicForeground, bus.Event{Type: bus.EvtNewVersion}); err != nil {
			log.Warn().Err(err).Msg("failed to announce new version")
		}
	default:
		log.Warn().Str("type", cmd.Type).Msg("ignoring unknown command")
	}
}

// armDaily schedules the standing reminder for the next 07:00 local
// time and re-arms itself after each delivery. Whether the reminder is
// actually wanted is checked at fire time, not arm time.
func (c *Coordinator) armDaily() {
	now := c.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), DailyReminderHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}

	c.mu.Lock()
	if c.daily != nil {
		c.daily.Stop()
	}
	c.daily = time.AfterFunc(next.Sub(now), c.fireDaily)
	c.mu.Unlock()

	log.Debug().Time("at", next).Msg("daily reminder armed")
}

func (c *Coordinator) fireDaily() {
	c.mu.Lock()
	ctx := c.ctx
	c.mu.Unlock()
	if ctx.Err() != nil {
		return
	}

	prefs, err := c.store.LoadPreferences()
	if err != nil {
		log.Error().Err(err).Msg("failed to load preferences for daily reminder")
	} else if prefs.NotificationsEnabled && prefs.NotificationSettings.Daily {
		if err := c.notifier.Send(ctx, notify.Daily()); err != nil {
			log.Error().Err(err).Msg("daily notification failed")
		}
	}
	c.armDaily()
}

// Pending returns a copy of the undelivered set, oldest first.
func (c *Coordinator) Pending() []model.ScheduledNotification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.ScheduledNotification, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Coordinator) persistLocked() {
	if err := c.store.SaveSchedule(c.entries); err != nil {
		log.Error().Err(err).Msg("failed to persist pending schedule")
	}
}

func (c *Coordinator) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.timers {
		t.Stop()
	}
	c.timers = nil
	if c.daily != nil {
		c.daily.Stop()
		c.daily = nil
	}
	log.Info().Msg("delivery coordinator stopped")
}
