// Package adhan owns foreground playback of the call-to-prayer cue.
//
// The player is a small state machine (Idle <-> Playing). Playback is
// best-effort: engine failures mark the player unavailable and are
// never fatal, and a ceiling timer guarantees playback stops even if
// the engine never signals completion.
package adhan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultCeiling bounds a single playback session.
const DefaultCeiling = 30 * time.Second

type State string

const (
	Idle    State = "idle"
	Playing State = "playing"
)

// ErrBlocked is wrapped by every precondition failure: sound disabled,
// engine still locked, or the prayer window already closed. Callers
// treat blocked plays as no-ops.
var ErrBlocked = errors.New("playback blocked")

// Engine starts and stops the audio cue on whatever actually makes
// sound (a paired device in production, a fake in tests).
type Engine interface {
	Start(ctx context.Context, asset string) error
	Stop() error
}

type Player struct {
	engine  Engine
	asset   string
	ceiling time.Duration

	mu            sync.Mutex
	state         State
	session       int
	playingPrayer string
	soundEnabled  bool
	unlocked      bool
	unavailable   bool
	stopTimer     *time.Timer
}

func NewPlayer(engine Engine, asset string, ceiling time.Duration) *Player {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	return &Player{
		engine:       engine,
		asset:        asset,
		ceiling:      ceiling,
		state:        Idle,
		soundEnabled: true,
	}
}

// Play starts the cue for prayerName. verify re-checks, at call time,
// that the prayer's window is still open; a stale invocation racing a
// closing window is blocked rather than played late. Calling Play while
// already playing cancels the prior session first, never layers two.
func (p *Player) Play(ctx context.Context, prayerName string, verify func() bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.soundEnabled {
		return fmt.Errorf("sound disabled: %w", ErrBlocked)
	}
	if !p.unlocked {
		return fmt.Errorf("audio engine not unlocked yet: %w", ErrBlocked)
	}
	if verify != nil && !verify() {
		return fmt.Errorf("window for %s no longer open: %w", prayerName, ErrBlocked)
	}

	p.stopLocked()

	if err := p.engine.Start(ctx, p.asset); err != nil {
		p.unavailable = true
		log.Warn().Err(err).Str("prayer", prayerName).Msg("adhan playback failed")
		return fmt.Errorf("start playback: %w", err)
	}

	p.unavailable = false
	p.state = Playing
	p.playingPrayer = prayerName
	p.session++
	session := p.session
	// the session guard keeps a late-firing timer from a superseded
	// playback from stopping the one that replaced it
	p.stopTimer = time.AfterFunc(p.ceiling, func() { p.stopSession(session) })
	log.Info().Str("prayer", prayerName).Dur("ceiling", p.ceiling).Msg("adhan playing")
	return nil
}

// Stop is safe from any state and idempotent. It cancels the pending
// auto-stop timer.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopSession(session int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session != session {
		return
	}
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.stopTimer != nil {
		p.stopTimer.Stop()
		p.stopTimer = nil
	}
	if p.state == Playing {
		if err := p.engine.Stop(); err != nil {
			log.Warn().Err(err).Msg("adhan stop failed")
		}
	}
	p.state = Idle
	p.playingPrayer = ""
}

// SetAsset swaps the audio file used by the next playback. A session
// already playing keeps its asset.
func (p *Player) SetAsset(asset string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.asset = asset
}

func (p *Player) Asset() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.asset
}

// Unlock marks the audio engine usable. Platforms gate audio behind a
// first user gesture; the client reports that gesture through the API.
func (p *Player) Unlock() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unlocked = true
}

func (p *Player) SetSoundEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !enabled && p.state == Playing {
		p.stopLocked()
	}
	p.soundEnabled = enabled
}

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Player) PlayingPrayer() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playingPrayer
}

func (p *Player) SoundEnabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.soundEnabled
}

func (p *Player) Unlocked() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unlocked
}

// Unavailable reports whether the last playback attempt failed; the UI
// surfaces this as a non-blocking status.
func (p *Player) Unavailable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unavailable
}
