// Package ledger records which (prayer, day) alerts have already fired,
// so a window entered twice (remount, reload, tick races) acts once.
//
// The ledger is durable: every mark re-persists the full document. Two
// concurrent instances can still both decide "not yet triggered" and
// both act; writes are last-writer-wins and exactly-once across
// instances is explicitly not guaranteed.
package ledger

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/teranga-labs/rappel/internal/db"
	"github.com/teranga-labs/rappel/internal/model"
	"github.com/teranga-labs/rappel/internal/prayer"
)

type Ledger struct {
	mu    sync.Mutex
	store db.Store
	day   prayer.CalendarDay
	keys  map[string]bool
}

func New(store db.Store) *Ledger {
	return &Ledger{store: store, keys: map[string]bool{}}
}

func key(prayerName string, day prayer.CalendarDay) string {
	return prayerName + "-" + string(day)
}

// Load restores the persisted document. A schema-version mismatch or a
// document from another day wipes the old state instead of reusing it.
func (l *Ledger) Load(today prayer.CalendarDay) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.day = today
	l.keys = map[string]bool{}

	doc, err := l.store.LoadTriggerLedger()
	if err != nil || doc == nil {
		return
	}
	if doc.SchemaVersion != model.TriggerLedgerSchemaVersion {
		log.Info().
			Str("stored", doc.SchemaVersion).
			Str("expected", model.TriggerLedgerSchemaVersion).
			Msg("trigger ledger schema changed, discarding old document")
		l.persistLocked()
		return
	}
	if doc.Day != string(today) {
		// stale day: prune by starting fresh
		l.persistLocked()
		return
	}
	for _, k := range doc.TriggeredKeys {
		l.keys[k] = true
	}
}

func (l *Ledger) HasTriggered(prayerName string, day prayer.CalendarDay) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.keys[key(prayerName, day)]
}

// MarkTriggered records the trigger and persists immediately.
// Idempotent: marking an already-marked key changes nothing.
func (l *Ledger) MarkTriggered(prayerName string, day prayer.CalendarDay) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.markLocked(prayerName, day)
}

// TriggerOnce is the check-then-mark used inside a tick: it returns
// true exactly once per (prayer, day) for this instance, holding the
// lock across the check and the mark.
func (l *Ledger) TriggerOnce(prayerName string, day prayer.CalendarDay) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.keys[key(prayerName, day)] {
		return false
	}
	l.markLocked(prayerName, day)
	return true
}

// PruneOlderThan drops every entry not belonging to day. Called on load
// and at each day rollover.
func (l *Ledger) PruneOlderThan(day prayer.CalendarDay) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.day == day {
		return
	}
	l.day = day
	l.keys = map[string]bool{}
	l.persistLocked()
}

func (l *Ledger) markLocked(prayerName string, day prayer.CalendarDay) {
	k := key(prayerName, day)
	if l.keys[k] {
		return
	}
	l.keys[k] = true
	l.persistLocked()
}

// persistLocked writes the full snapshot; a failed write keeps the
// in-memory state authoritative for this instance.
func (l *Ledger) persistLocked() {
	doc := model.TriggerLedgerDoc{
		SchemaVersion: model.TriggerLedgerSchemaVersion,
		Day:           string(l.day),
		TriggeredKeys: make([]string, 0, len(l.keys)),
	}
	for k := range l.keys {
		doc.TriggeredKeys = append(doc.TriggeredKeys, k)
	}
	if err := l.store.SaveTriggerLedger(doc); err != nil {
		log.Error().Err(err).Msg("failed to persist trigger ledger")
	}
}
