package ledger

import (
	"testing"

	"github.com/teranga-labs/rappel/internal/db"
	"github.com/teranga-labs/rappel/internal/model"
	"github.com/teranga-labs/rappel/internal/prayer"
)

const (
	monday  = prayer.CalendarDay("2026-03-09")
	tuesday = prayer.CalendarDay("2026-03-10")
)

func TestTriggerOnce(t *testing.T) {
	l := New(db.NewMemoryStore())
	l.Load(monday)

	if !l.TriggerOnce("Maghrib", monday) {
		t.Fatal("first trigger must win")
	}
	if l.TriggerOnce("Maghrib", monday) {
		t.Fatal("second trigger for the same (prayer, day) must lose")
	}
	if !l.HasTriggered("Maghrib", monday) {
		t.Fatal("HasTriggered must be true after a trigger")
	}
	if l.HasTriggered("Isha", monday) {
		t.Fatal("other prayers are unaffected")
	}
}

func TestMarkTriggeredIdempotent(t *testing.T) {
	store := db.NewMemoryStore()
	l := New(store)
	l.Load(monday)

	l.MarkTriggered("Fajr", monday)
	l.MarkTriggered("Fajr", monday)

	doc, err := store.LoadTriggerLedger()
	if err != nil || doc == nil {
		t.Fatalf("ledger must persist: %v", err)
	}
	if len(doc.TriggeredKeys) != 1 {
		t.Fatalf("want one key, got %v", doc.TriggeredKeys)
	}
}

func TestSurvivesReload(t *testing.T) {
	store := db.NewMemoryStore()

	l := New(store)
	l.Load(monday)
	l.MarkTriggered("Maghrib", monday)

	// a fresh instance against the same store sees the mark
	reloaded := New(store)
	reloaded.Load(monday)
	if !reloaded.HasTriggered("Maghrib", monday) {
		t.Fatal("ledger must survive a reload")
	}
}

func TestDayRolloverPrunes(t *testing.T) {
	store := db.NewMemoryStore()
	l := New(store)
	l.Load(monday)
	l.MarkTriggered("Isha", monday)

	l.PruneOlderThan(tuesday)
	if l.HasTriggered("Isha", monday) {
		t.Fatal("previous day's entries must be gone after rollover")
	}
	if !l.TriggerOnce("Isha", tuesday) {
		t.Fatal("new day must trigger again")
	}

	// persisted document reflects the new day only
	doc, _ := store.LoadTriggerLedger()
	if doc.Day != string(tuesday) || len(doc.TriggeredKeys) != 1 {
		t.Fatalf("unexpected persisted doc: %+v", doc)
	}
}

func TestStaleDayDocumentIgnoredOnLoad(t *testing.T) {
	store := db.NewMemoryStore()
	_ = store.SaveTriggerLedger(model.TriggerLedgerDoc{
		SchemaVersion: model.TriggerLedgerSchemaVersion,
		Day:           string(monday),
		TriggeredKeys: []string{"Maghrib-" + string(monday)},
	})

	l := New(store)
	l.Load(tuesday)
	if l.HasTriggered("Maghrib", monday) {
		t.Fatal("a document from a past day must not block new triggers")
	}
}

func TestSchemaVersionMismatchWipes(t *testing.T) {
	store := db.NewMemoryStore()
	_ = store.SaveTriggerLedger(model.TriggerLedgerDoc{
		SchemaVersion: "v0",
		Day:           string(monday),
		TriggeredKeys: []string{"Maghrib-" + string(monday)},
	})

	l := New(store)
	l.Load(monday)
	if l.HasTriggered("Maghrib", monday) {
		t.Fatal("incompatible schema generations must be discarded")
	}

	doc, _ := store.LoadTriggerLedger()
	if doc.SchemaVersion != model.TriggerLedgerSchemaVersion {
		t.Fatalf("rewritten doc must carry the current version, got %q", doc.SchemaVersion)
	}
}
