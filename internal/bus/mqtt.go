// Package bus carries the foreground/worker message contract over MQTT.
// The two processes share no memory; everything crossing the boundary
// goes through these topics or the database.
package bus

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

const (
	// foreground -> worker
	TopicSchedule   = "rappel/worker/schedule"
	TopicWorkerCmd  = "rappel/worker/commands"
	// worker -> foreground
	TopicForeground = "rappel/foreground/events"
)

// Worker command types.
const (
	CmdShowDaily  = "SHOW_DAILY_NOTIFICATION"
	CmdShowPrayer = "SHOW_PRAYER_NOTIFICATION"
	CmdSkipWait   = "SKIP_WAIT"
)

// Foreground event types.
const (
	EvtNewVersion = "NEW_VERSION_AVAILABLE"
	EvtStopAdhan  = "STOP_ADHAN"
)

type Command struct {
	Type       string `json:"type"`
	PrayerName string `json:"prayer_name,omitempty"`
}

type Event struct {
	Type string `json:"type"`
}

// DeviceNotifyTopic is where a paired device receives notifications.
func DeviceNotifyTopic(deviceID int) string {
	return fmt.Sprintf("rappel/device/%d/notify", deviceID)
}

// DeviceMediaTopic carries adhan play/stop commands to a device.
func DeviceMediaTopic(deviceID int) string {
	return fmt.Sprintf("rappel/device/%d/media", deviceID)
}

// Publisher publishes a JSON payload to a topic.
type Publisher interface {
	Publish(topic string, payload any) error
}

// Subscriber delivers raw payloads for a topic.
type Subscriber interface {
	Subscribe(topic string, handler func(payload []byte)) error
}

// Conn wraps one MQTT client connection.
type Conn struct {
	client mqtt.Client
}

var _ Publisher = (*Conn)(nil)
var _ Subscriber = (*Conn)(nil)

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("connected to MQTT broker")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Warn().Err(err).Msg("MQTT connection lost")
}

// Connect dials the broker and blocks until the connection is up or
// refused.
func Connect(brokerURL, clientID string) (*Conn, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return &Conn{client: client}, nil
}

func (c *Conn) Publish(topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	token := c.client.Publish(topic, 1, false, body)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("publish to %s: %w", topic, token.Error())
	}
	return nil
}

func (c *Conn) Subscribe(topic string, handler func(payload []byte)) error {
	token := c.client.Subscribe(topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Payload())
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, token.Error())
	}
	return nil
}

func (c *Conn) Disconnect() {
	c.client.Disconnect(250)
}
