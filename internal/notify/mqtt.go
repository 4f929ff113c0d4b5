package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/vantrack/server/internal/logging"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// MQTTPublisher publishes sighting events with QoS 1
type MQTTPublisher struct {
	client mqtt.Client
	topic  string
}

// MQTTConfig configures the broker connection
type MQTTConfig struct {
	BrokerURL string
	ClientID  string
	Topic     string
}

// ErrNotConnected is returned by PublishSighting while the broker is unreachable.
var ErrNotConnected = errors.New("mqtt broker not connected")

// NewMQTTPublisher connects to the broker once and fails if it is unreachable.
// After the first connection, reconnects are handled by the client.
func NewMQTTPublisher(cfg MQTTConfig, log logging.Logger) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Warn(context.Background(), "mqtt connection lost", "error", err)
		}).
		SetOnConnectHandler(func(mqtt.Client) {
			log.Info(context.Background(), "mqtt connected", "broker", cfg.BrokerURL)
		})

	client := mqtt.NewClient(opts)
	if err := connect(client, cfg.BrokerURL); err != nil {
		return nil, err
	}
	return newMQTTPublisher(client, cfg.Topic), nil
}

// connect waits for the first connection and disconnects the client when it
// does not come up, so no background connect attempt outlives the error.
func connect(client mqtt.Client, broker string) error {
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		client.Disconnect(0)
		return fmt.Errorf("mqtt connect to %s: timeout", broker)
	}
	if err := token.Error(); err != nil {
		client.Disconnect(0)
		return fmt.Errorf("mqtt connect to %s: %w", broker, err)
	}
	return nil
}

func newMQTTPublisher(client mqtt.Client, topic string) *MQTTPublisher {
	return &MQTTPublisher{client: client, topic: topic}
}

// PublishSighting sends the event as JSON to the configured topic. It fails
// fast with ErrNotConnected while the client is reconnecting.
func (p *MQTTPublisher) PublishSighting(ctx context.Context, event SightingEvent) error {
	if !p.client.IsConnectionOpen() {
		return ErrNotConnected
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal sighting event: %w", err)
	}

	token := p.client.Publish(p.topic, 1, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(publishTimeout):
		return fmt.Errorf("publish to %s: timeout", p.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}
	return nil
}

// Close disconnects after letting in-flight messages drain
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
