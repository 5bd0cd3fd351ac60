// Package redis caches the day's time table per (city, calendar day).
// A cached table is valid only for its own calendar day; the TTL is set
// to whatever remains of that day.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/teranga-labs/rappel/internal/model"
	"github.com/teranga-labs/rappel/internal/prayer"
)

var Rdb *redis.Client

func InitRedis(redisAddress string, redisUsername string, redisPassword string) {
	Rdb = redis.NewClient(&redis.Options{
		Addr:     redisAddress,
		Username: redisUsername,
		Password: redisPassword,
		DB:       0,
	})
}

func timetableKey(city string, day prayer.CalendarDay) string {
	return fmt.Sprintf("timetable:%s:%s", strings.ToLower(city), day)
}

// SetTimetable stores a fetched table until the end of its calendar day.
func SetTimetable(ctx context.Context, table model.TimeTable, ttl time.Duration) {
	body, err := json.Marshal(table)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal timetable for cache")
		return
	}
	key := timetableKey(table.City, prayer.CalendarDay(table.Day))
	if err := Rdb.Set(ctx, key, body, ttl).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to cache timetable")
	}
}

// GetTimetable returns the cached table for (city, day), if any.
// A corrupt cache entry is dropped and reported as a miss.
func GetTimetable(ctx context.Context, city string, day prayer.CalendarDay) (*model.TimeTable, bool) {
	key := timetableKey(city, day)
	body, err := Rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("timetable cache read failed")
		return nil, false
	}
	var table model.TimeTable
	if err := json.Unmarshal(body, &table); err != nil {
		log.Error().Err(err).Str("key", key).Msg("corrupt timetable cache entry, dropping")
		Rdb.Del(ctx, key)
		return nil, false
	}
	return &table, true
}
