// Package scheduler runs the foreground loop: a one-second tick that
// evaluates the day's table, fires each prayer alert exactly once per
// day through the ledger, and keeps the worker's pending schedule in
// sync with the preferences and the current table.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/teranga-labs/rappel/internal/adhan"
	"github.com/teranga-labs/rappel/internal/bus"
	"github.com/teranga-labs/rappel/internal/db"
	"github.com/teranga-labs/rappel/internal/ledger"
	"github.com/teranga-labs/rappel/internal/model"
	"github.com/teranga-labs/rappel/internal/prayer"
)

// TimetableSource resolves the current day's table for a city.
type TimetableSource interface {
	Timetable(ctx context.Context, city string, now time.Time) (model.TimeTable, error)
	Refresh(ctx context.Context, city string, now time.Time) (model.TimeTable, error)
}

// Status is a snapshot of the evaluator output, served to clients.
type Status struct {
	City          string          `json:"city"`
	Day           string          `json:"day"`
	TableLoaded   bool            `json:"table_loaded"`
	FetchState    string          `json:"fetch_state"` // idle | loading | ready | error
	CurrentPrayer string          `json:"current_prayer,omitempty"`
	NextPrayer    string          `json:"next_prayer,omitempty"`
	NextPrayerAt  string          `json:"next_prayer_at,omitempty"`
	Countdown     string          `json:"countdown"`
	PlayerState   adhan.State     `json:"player_state"`
	AudioBlocked  bool            `json:"audio_unavailable"`
	SoundEnabled  bool            `json:"sound_enabled"`
	RamadanDay    int             `json:"ramadan_day"`
}

type Scheduler struct {
	source   TimetableSource
	ledger   *ledger.Ledger
	player   *adhan.Player
	pub      bus.Publisher
	store    db.Store
	interval time.Duration
	now      func() time.Time

	mu         sync.Mutex
	ctx        context.Context
	prefs      model.Preferences
	table      *model.TimeTable
	day        prayer.CalendarDay
	fetchState string
	lastEval   prayer.Evaluation
	warnedSkip bool
	refreshing bool
}

func New(
	source TimetableSource,
	lg *ledger.Ledger,
	player *adhan.Player,
	pub bus.Publisher,
	store db.Store,
	interval time.Duration,
) *Scheduler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Scheduler{
		source:     source,
		ledger:     lg,
		player:     player,
		pub:        pub,
		store:      store,
		interval:   interval,
		now:        time.Now,
		ctx:        context.Background(),
		fetchState: "idle",
	}
}

// Run starts the loop. It does an immediate bootstrap pass, then ticks
// until ctx is cancelled. Cancelling tears down the ticker and makes
// any in-flight refresh a no-op.
func (s *Scheduler) Run(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.bootstrap(ctx)

	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("scheduler stopped")
			return
		case <-t.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) bootstrap(ctx context.Context) {
	now := s.now()
	day := prayer.DayOf(now)

	prefs, err := s.store.LoadPreferences()
	if err != nil {
		log.Error().Err(err).Msg("failed to load preferences, using defaults")
		prefs = model.DefaultPreferences()
	}

	s.mu.Lock()
	s.prefs = prefs
	s.day = day
	s.mu.Unlock()

	s.ledger.Load(day)

	// cache-first: render against whatever is cached, then replace
	// once the network fetch resolves
	if table, err := s.source.Timetable(ctx, prefs.City, now); err == nil {
		s.setTable(table)
	}
	s.refreshAsync(ctx)
}

// tick runs the synchronous portion of one evaluation cycle. Ticks are
// strictly ordered; the check-then-mark against the ledger happens
// entirely inside this call.
func (s *Scheduler) tick(ctx context.Context) {
	now := s.now()
	day := prayer.DayOf(now)

	s.mu.Lock()
	if day != s.day {
		// day rollover: stale table and ledger entries are useless now
		s.day = day
		s.table = nil
		s.warnedSkip = false
		s.mu.Unlock()
		s.ledger.PruneOlderThan(day)
		s.refreshAsync(ctx)
		s.mu.Lock()
	}
	table := s.table
	s.mu.Unlock()

	if table == nil {
		return // fetch in flight, keep ticking
	}

	ev := prayer.Evaluate(table.Timings, now)

	s.mu.Lock()
	s.lastEval = ev
	if len(ev.Skipped) > 0 && !s.warnedSkip {
		s.warnedSkip = true
		log.Warn().Strs("prayers", ev.Skipped).Msg("skipping prayers with malformed times")
	}
	s.mu.Unlock()

	if ev.Current == nil {
		return
	}

	if !s.ledger.TriggerOnce(ev.Current.Name, day) {
		return
	}
	s.fireAlert(ctx, ev.Current.Name)
}

// fireAlert runs the once-per-(prayer, day) actions: audio in the
// foreground, notification through the worker. The audio path failing
// or being blocked never suppresses the notification.
func (s *Scheduler) fireAlert(ctx context.Context, prayerName string) {
	log.Info().Str("prayer", prayerName).Msg("prayer window entered")

	verify := func() bool {
		s.mu.Lock()
		table := s.table
		s.mu.Unlock()
		if table == nil {
			return false
		}
		ev := prayer.Evaluate(table.Timings, s.now())
		return ev.Current != nil && ev.Current.Name == prayerName
	}

	if err := s.player.Play(ctx, prayerName, verify); err != nil {
		if errors.Is(err, adhan.ErrBlocked) {
			log.Debug().Err(err).Str("prayer", prayerName).Msg("adhan blocked")
		} else {
			log.Warn().Err(err).Str("prayer", prayerName).Msg("adhan failed")
		}
	}

	cmd := bus.Command{Type: bus.CmdShowPrayer, PrayerName: prayerName}
	if err := s.pub.Publish(bus.TopicWorkerCmd, cmd); err != nil {
		log.Warn().Err(err).Str("prayer", prayerName).Msg("failed to request prayer notification")
	}
}

// refreshAsync fetches the table without blocking the tick loop and
// re-pushes the schedule when it lands. Late results after teardown
// are dropped via ctx.
func (s *Scheduler) refreshAsync(ctx context.Context) {
	s.mu.Lock()
	if s.refreshing {
		s.mu.Unlock()
		return
	}
	s.refreshing = true
	city := s.prefs.City
	s.fetchState = "loading"
	s.mu.Unlock()

	go func() {
		table, err := s.source.Refresh(ctx, city, s.now())

		s.mu.Lock()
		s.refreshing = false
		s.mu.Unlock()

		if ctx.Err() != nil {
			return // torn down while fetching
		}
		if err != nil {
			s.mu.Lock()
			s.fetchState = "error"
			s.mu.Unlock()
			log.Error().Err(err).Str("city", city).Msg("timetable refresh failed")
			return
		}
		s.setTable(table)
		s.PushSchedule()
	}()
}

func (s *Scheduler) setTable(table model.TimeTable) {
	s.mu.Lock()
	s.table = &table
	s.fetchState = "ready"
	s.warnedSkip = false
	s.mu.Unlock()
}

// ApplyPreferences swaps the active preferences (already persisted by
// the caller) and re-pushes the schedule. A city change drops the
// table and refetches.
func (s *Scheduler) ApplyPreferences(prefs model.Preferences) {
	s.mu.Lock()
	cityChanged := prefs.City != s.prefs.City
	s.prefs = prefs
	if cityChanged {
		s.table = nil
	}
	ctx := s.ctx
	s.mu.Unlock()

	if cityChanged {
		s.refreshAsync(ctx)
		return // schedule is pushed once the new table lands
	}
	s.PushSchedule()
}

// PushSchedule publishes the complete desired pending set, replacing
// whatever the worker holds.
func (s *Scheduler) PushSchedule() {
	s.mu.Lock()
	table := s.table
	prefs := s.prefs
	s.mu.Unlock()

	if table == nil {
		return
	}
	entries := BuildSchedule(*table, prefs, s.now())
	if err := s.pub.Publish(bus.TopicSchedule, entries); err != nil {
		log.Warn().Err(err).Msg("failed to push schedule to worker")
		return
	}
	log.Info().Int("entries", len(entries)).Msg("schedule pushed")
}

// Status reports the evaluator snapshot for the API and the websocket
// feed.
func (s *Scheduler) Status() Status {
	now := s.now()

	// player state is read before taking s.mu; Play's verify callback
	// acquires the locks in the opposite order
	playerState := s.player.State()
	unavailable := s.player.Unavailable()
	soundEnabled := s.player.SoundEnabled()

	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		City:         s.prefs.City,
		Day:          string(s.day),
		TableLoaded:  s.table != nil,
		FetchState:   s.fetchState,
		Countdown:    s.lastEval.Countdown,
		PlayerState:  playerState,
		AudioBlocked: unavailable,
		SoundEnabled: soundEnabled,
		RamadanDay:   prayer.ResolveRamadanDay(s.prefs.UseManualDay, s.prefs.ManualDay, now),
	}
	if s.lastEval.Current != nil {
		st.CurrentPrayer = s.lastEval.Current.Name
	}
	if s.lastEval.Next != nil {
		st.NextPrayer = s.lastEval.Next.Name
		st.NextPrayerAt = s.lastEval.Next.At.Format("15:04")
	}
	return st
}

// Timetable returns the active table, if one is loaded.
func (s *Scheduler) Timetable() (model.TimeTable, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.table == nil {
		return model.TimeTable{}, false
	}
	return *s.table, true
}

// Preferences returns the active preferences snapshot.
func (s *Scheduler) Preferences() model.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}
