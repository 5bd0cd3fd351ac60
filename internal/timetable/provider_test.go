package timetable

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/teranga-labs/rappel/internal/model"
	"github.com/teranga-labs/rappel/internal/prayer"
)

type fakeFetcher struct {
	mu    sync.Mutex
	calls int
	table model.TimeTable
	err   error
}

func (f *fakeFetcher) Fetch(ctx context.Context, city string, method int, day time.Time) (model.TimeTable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return model.TimeTable{}, f.err
	}
	t := f.table
	t.City = city
	t.Day = string(prayer.DayOf(day))
	return t, nil
}

type memCache struct {
	mu sync.Mutex
	m  map[string]model.TimeTable
}

func newMemCache() *memCache { return &memCache{m: map[string]model.TimeTable{}} }

func (c *memCache) Get(ctx context.Context, city string, day prayer.CalendarDay) (*model.TimeTable, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.m[city+"|"+string(day)]
	if !ok {
		return nil, false
	}
	return &t, true
}

func (c *memCache) Set(ctx context.Context, table model.TimeTable, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[table.City+"|"+table.Day] = table
}

func TestProvider_CacheFirst(t *testing.T) {
	fetcher := &fakeFetcher{table: model.TimeTable{Timings: map[string]string{"Fajr": "05:00"}}}
	cache := newMemCache()
	p := NewProvider(fetcher, cache, model.DefaultMethod)

	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	first, err := p.Timetable(context.Background(), "Dakar", now)
	if err != nil {
		t.Fatal(err)
	}
	if first.Timings["Fajr"] != "05:00" {
		t.Fatalf("unexpected table: %+v", first)
	}

	// second call the same day must come from the cache
	if _, err := p.Timetable(context.Background(), "Dakar", now); err != nil {
		t.Fatal(err)
	}
	if fetcher.calls != 1 {
		t.Fatalf("want 1 fetch, got %d", fetcher.calls)
	}

	// a new day invalidates the cached entry
	nextDay := now.Add(24 * time.Hour)
	if _, err := p.Timetable(context.Background(), "Dakar", nextDay); err != nil {
		t.Fatal(err)
	}
	if fetcher.calls != 2 {
		t.Fatalf("day change must refetch, got %d calls", fetcher.calls)
	}
}

func TestProvider_RefreshFallsBackToCache(t *testing.T) {
	fetcher := &fakeFetcher{table: model.TimeTable{Timings: map[string]string{"Fajr": "05:00"}}}
	cache := newMemCache()
	p := NewProvider(fetcher, cache, model.DefaultMethod)

	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	if _, err := p.Refresh(context.Background(), "Dakar", now); err != nil {
		t.Fatal(err)
	}

	fetcher.err = errors.New("upstream down")
	table, err := p.Refresh(context.Background(), "Dakar", now)
	if err != nil {
		t.Fatalf("cached table must stand in for a failed refresh: %v", err)
	}
	if table.Timings["Fajr"] != "05:00" {
		t.Fatalf("unexpected fallback table: %+v", table)
	}
}

func TestProvider_FetchErrorWithoutCache(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("upstream down")}
	p := NewProvider(fetcher, newMemCache(), model.DefaultMethod)

	_, err := p.Timetable(context.Background(), "Dakar", time.Now())
	if err == nil {
		t.Fatal("want retryable error when no cache exists")
	}
}

func TestProvider_DistinctCities(t *testing.T) {
	fetcher := &fakeFetcher{table: model.TimeTable{Timings: map[string]string{"Fajr": "05:00"}}}
	p := NewProvider(fetcher, newMemCache(), model.DefaultMethod)

	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	for _, city := range []string{"Dakar", "Touba"} {
		if _, err := p.Timetable(context.Background(), city, now); err != nil {
			t.Fatal(err)
		}
	}
	if fetcher.calls != 2 {
		t.Fatalf("each city has its own cache entry, got %d calls", fetcher.calls)
	}
}
