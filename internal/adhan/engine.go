package adhan

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/teranga-labs/rappel/internal/bus"
	"github.com/teranga-labs/rappel/internal/db"
)

// mediaCommand is published on a device's media topic.
type mediaCommand struct {
	Action string `json:"action"` // "play" | "stop"
	Asset  string `json:"asset,omitempty"`
}

// DeviceEngine plays the cue by instructing every paired device over
// MQTT. It fails when no device is reachable, which the player surfaces
// as "unavailable".
type DeviceEngine struct {
	pub   bus.Publisher
	store db.Store
}

var _ Engine = (*DeviceEngine)(nil)

func NewDeviceEngine(pub bus.Publisher, store db.Store) *DeviceEngine {
	return &DeviceEngine{pub: pub, store: store}
}

func (e *DeviceEngine) Start(ctx context.Context, asset string) error {
	devices, err := e.store.ListPairedDevices()
	if err != nil {
		return fmt.Errorf("list paired devices: %w", err)
	}
	if len(devices) == 0 {
		return fmt.Errorf("no paired device to play on")
	}

	sent := 0
	for _, d := range devices {
		cmd := mediaCommand{Action: "play", Asset: asset}
		if err := e.pub.Publish(bus.DeviceMediaTopic(d.ID), cmd); err != nil {
			log.Warn().Err(err).Int("device_id", d.ID).Msg("failed to send play command")
			continue
		}
		sent++
	}
	if sent == 0 {
		return fmt.Errorf("could not reach any paired device")
	}
	return nil
}

func (e *DeviceEngine) Stop() error {
	devices, err := e.store.ListPairedDevices()
	if err != nil {
		return fmt.Errorf("list paired devices: %w", err)
	}
	var failed []string
	for _, d := range devices {
		if err := e.pub.Publish(bus.DeviceMediaTopic(d.ID), mediaCommand{Action: "stop"}); err != nil {
			failed = append(failed, fmt.Sprintf("device %d: %v", d.ID, err))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to send stop to some devices: %v", failed)
	}
	return nil
}
