package sensor

import (
	"errors"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/trip-ledger/internal/ledger"
)

var ErrPublishTimeout = errors.New("mqtt publish timed out")

// Publisher sends a state value to the Home Assistant sensor.
type Publisher interface {
	Publish(state string) error
}

// MQTTOptions configures the broker connection.
type MQTTOptions struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	Timeout  time.Duration
}

// MQTTPublisher publishes retained sensor states over MQTT.
type MQTTPublisher struct {
	client  mqtt.Client
	topic   string
	timeout time.Duration
}

// NewMQTTPublisher connects to the broker.
func NewMQTTPublisher(o MQTTOptions) (*MQTTPublisher, error) {
	if o.Broker == "" {
		return nil, errors.New("mqtt broker is not configured")
	}
	if o.Timeout <= 0 {
		o.Timeout = 5 * time.Second
	}
	opts := mqtt.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetConnectTimeout(o.Timeout).
		SetAutoReconnect(true)
	if o.Username != "" {
		opts.SetUsername(o.Username)
		opts.SetPassword(o.Password)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(o.Timeout) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", o.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return &MQTTPublisher{client: client, topic: o.Topic, timeout: o.Timeout}, nil
}

// Publish sends state as a retained message so Home Assistant picks up the
// last value after a restart.
func (p *MQTTPublisher) Publish(state string) error {
	token := p.client.Publish(p.topic, 1, true, state)
	if !token.WaitTimeout(p.timeout) {
		return ErrPublishTimeout
	}
	return token.Error()
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}

// NoopPublisher drops every state. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(string) error { return nil }

// SuggestionText formats a suggested fill-up for the sensor state. An empty
// state clears the sensor.
func SuggestionText(s *ledger.Suggestion) string {
	if s == nil {
		return ""
	}
	return s.String()
}

// Pusher pushes sensor states in the background. Failures are logged and
// never reach the caller.
type Pusher struct {
	pub Publisher
	wg  sync.WaitGroup
}

// NewPusher creates a Pusher. A nil publisher disables pushing.
func NewPusher(pub Publisher) *Pusher {
	if pub == nil {
		pub = NoopPublisher{}
	}
	return &Pusher{pub: pub}
}

// PushSuggestion publishes the suggestion text for a vehicle.
func (p *Pusher) PushSuggestion(vehicleID string, s *ledger.Suggestion) {
	state := SuggestionText(s)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.pub.Publish(state); err != nil {
			log.WithFields(log.Fields{
				"vehicle_id": vehicleID,
				"state":      state,
			}).WithError(err).Warn("Home Assistant sensor push failed")
			return
		}
		log.WithField("vehicle_id", vehicleID).Debug("Home Assistant sensor updated")
	}()
}

// Wait blocks until all in-flight pushes finish.
func (p *Pusher) Wait() {
	p.wg.Wait()
}
