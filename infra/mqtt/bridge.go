// Package mqtt forwards engine events to an MQTT broker so dashboard clients
// can subscribe to live bid and alert activity.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/gridpool/autobid/core/events"
	corelogger "github.com/gridpool/autobid/core/logger"
	"github.com/gridpool/autobid/internal/eventbus"
)

// Config defines the connection parameters for the event bridge.
type Config struct {
	Enabled     bool   `json:"enabled"`
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	TopicPrefix string `json:"topic_prefix"`
	QoS         byte   `json:"qos"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "autobid-" + uuid.NewString()[:8]
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "autobid"
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Enabled && c.Broker == "" {
		return fmt.Errorf("mqtt: broker is required")
	}
	return nil
}

// Bridge subscribes to the event bus and republishes bid and alert events as
// JSON on per-kind topics.
type Bridge struct {
	cli    paho.Client
	prefix string
	qos    byte
	bus    eventbus.EventBus
	log    corelogger.Logger
}

// NewBridge connects to the broker and returns a running-ready bridge.
func NewBridge(cfg Config, bus eventbus.EventBus, log corelogger.Logger) (*Bridge, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if bus == nil {
		return nil, fmt.Errorf("mqtt: nil event bus")
	}
	if log == nil {
		log = corelogger.Nop{}
	}
	cfg.SetDefaults()

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)
	cli := paho.NewClient(opts)
	token := cli.Connect()
	if !token.WaitTimeout(10*time.Second) || token.Error() != nil {
		return nil, fmt.Errorf("mqtt: connect %s: %w", cfg.Broker, token.Error())
	}
	return &Bridge{cli: cli, prefix: cfg.TopicPrefix, qos: cfg.QoS, bus: bus, log: log}, nil
}

// Run republishes bus events until the context is canceled.
func (b *Bridge) Run(ctx context.Context) {
	sub := b.bus.Subscribe()
	defer b.bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			b.forward(ev)
		}
	}
}

func (b *Bridge) forward(ev eventbus.Event) {
	var topic string
	switch ev.(type) {
	case events.BidPlacedEvent, events.BidFailedEvent:
		topic = b.prefix + "/bids"
	case events.AlertFiredEvent:
		topic = b.prefix + "/alerts"
	case events.EngineStateEvent:
		topic = b.prefix + "/engine"
	default:
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		b.log.Errorf("mqtt marshal: %v", err)
		return
	}
	token := b.cli.Publish(topic, b.qos, false, payload)
	if !token.WaitTimeout(5*time.Second) || token.Error() != nil {
		b.log.Warnf("mqtt publish %s: %v", topic, token.Error())
	}
}

// Close disconnects from the broker.
func (b *Bridge) Close() {
	b.cli.Disconnect(250)
}
