package timetable

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/teranga-labs/rappel/internal/model"
	"github.com/teranga-labs/rappel/internal/prayer"
	"github.com/teranga-labs/rappel/internal/redis"
)

// Fetcher fetches a day's table from the upstream source.
type Fetcher interface {
	Fetch(ctx context.Context, city string, method int, day time.Time) (model.TimeTable, error)
}

// Cache stores tables per (city, calendar day).
type Cache interface {
	Get(ctx context.Context, city string, day prayer.CalendarDay) (*model.TimeTable, bool)
	Set(ctx context.Context, table model.TimeTable, ttl time.Duration)
}

// Provider resolves the table for "today", cache-first. The tick loop
// keeps running against the last known table while a refresh is in
// flight; a failed refresh falls back to whatever the cache holds.
type Provider struct {
	fetcher Fetcher
	cache   Cache
	method  int
}

func NewProvider(fetcher Fetcher, cache Cache, method int) *Provider {
	if method == 0 {
		method = model.DefaultMethod
	}
	return &Provider{fetcher: fetcher, cache: cache, method: method}
}

// Timetable returns the table for the calendar day of now, consulting
// the cache before the network.
func (p *Provider) Timetable(ctx context.Context, city string, now time.Time) (model.TimeTable, error) {
	day := prayer.DayOf(now)
	if cached, ok := p.cache.Get(ctx, city, day); ok {
		return *cached, nil
	}
	return p.Refresh(ctx, city, now)
}

// Refresh always fetches. On success the cache is replaced; on failure
// a cached table for the same (city, day) stands in when present,
// otherwise the fetch error is surfaced as a retryable condition.
func (p *Provider) Refresh(ctx context.Context, city string, now time.Time) (model.TimeTable, error) {
	day := prayer.DayOf(now)
	table, err := p.fetcher.Fetch(ctx, city, p.method, now)
	if err != nil {
		if cached, ok := p.cache.Get(ctx, city, day); ok {
			log.Warn().Err(err).Str("city", city).Msg("timetable fetch failed, serving cached table")
			return *cached, nil
		}
		return model.TimeTable{}, err
	}
	p.cache.Set(ctx, table, prayer.UntilMidnight(now))
	return table, nil
}

// RedisCache adapts the shared Redis client to the Cache interface.
type RedisCache struct{}

func (RedisCache) Get(ctx context.Context, city string, day prayer.CalendarDay) (*model.TimeTable, bool) {
	return redis.GetTimetable(ctx, city, day)
}

func (RedisCache) Set(ctx context.Context, table model.TimeTable, ttl time.Duration) {
	redis.SetTimetable(ctx, table, ttl)
}
