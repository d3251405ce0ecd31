// Package mqtt mirrors device state changes onto an MQTT broker. Each
// applied delta is published as the device's full state on a retained
// per-device topic.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/homelink/pkg/device"
)

const (
	connectTimeout    = 10 * time.Second
	publishTimeout    = 5 * time.Second
	disconnectQuiesce = 1500 // milliseconds
	maxQoS            = 2
)

// Config holds broker connection settings.
type Config struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	QoS         byte
}

// statePayload is published on a device state topic.
type statePayload struct {
	DeviceID  string       `json:"device_id"`
	State     device.State `json:"state"`
	Timestamp time.Time    `json:"timestamp"`
}

// Publisher forwards store state events to the broker.
type Publisher struct {
	client pahomqtt.Client
	topics Topics
	qos    byte
}

// Connect dials the broker and returns a publisher. The broker connection is
// retried in the background by paho after the first success.
func Connect(cfg Config) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, ErrNoBroker
	}
	if cfg.QoS > maxQoS {
		return nil, ErrInvalidQoS
	}

	server, err := url.Parse(cfg.Broker)
	if err != nil {
		return nil, fmt.Errorf("failed to parse broker url: %w", err)
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "homelink-" + uuid.NewString()[:8]
	}
	topics := Topics{Prefix: cfg.TopicPrefix}

	opts := pahomqtt.NewClientOptions()
	opts.Servers = []*url.URL{server}
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetWill(topics.Online(), "false", cfg.QoS, true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetOnConnectHandler(func(client pahomqtt.Client) {
		log.Info().Str("client_id", clientID).Str("broker", cfg.Broker).Msg("MQTT client connected")
		client.Publish(topics.Online(), cfg.QoS, true, "true")
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		log.Warn().Err(err).Str("client_id", clientID).Msg("MQTT connection lost")
	})

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return newPublisher(client, topics, cfg.QoS), nil
}

func newPublisher(client pahomqtt.Client, topics Topics, qos byte) *Publisher {
	return &Publisher{client: client, topics: topics, qos: qos}
}

// Publish sends the full state carried by ev to the device's state topic.
func (p *Publisher) Publish(ctx context.Context, ev device.StateEvent) error {
	payload, err := json.Marshal(statePayload{
		DeviceID:  ev.DeviceID,
		State:     ev.State,
		Timestamp: ev.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	topic := p.topics.State(ev.DeviceID)
	if err := awaitToken(ctx, p.client.Publish(topic, p.qos, true, payload)); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPublishFailed, topic, err)
	}
	return nil
}

// Run publishes every event from subscriber until ctx is done.
func (p *Publisher) Run(ctx context.Context, subscriber device.EventSubscriber) {
	events := subscriber.Subscribe()
	defer subscriber.Unsubscribe(events)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := p.Publish(ctx, ev); err != nil {
				log.Error().Err(err).Str("device", ev.DeviceID).Msg("Failed to publish state")
			}
		}
	}
}

// Close marks the service offline and disconnects.
func (p *Publisher) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if p.client.IsConnectionOpen() {
		_ = awaitToken(ctx, p.client.Publish(p.topics.Online(), p.qos, true, "false"))
	}
	p.client.Disconnect(disconnectQuiesce)
}

func awaitToken(ctx context.Context, token pahomqtt.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
