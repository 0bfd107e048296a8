package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"i4.energy/across/socketmodem/modem"
)

// publishTimeout bounds the wait for a publish acknowledgement.
const publishTimeout = 5 * time.Second

// Bridge connects the daemon to an MQTT broker. Requests published on the
// SMS topic go to the outbox; radio state changes and received SMS are
// published back.
type Bridge struct {
	cfg    MQTTConfig
	client mqtt.Client
	outbox interface {
		Enqueue(SMSRequest) (string, error)
	}
	logger *slog.Logger
}

// StateEvent is published on every radio state change.
type StateEvent struct {
	Radio string    `json:"radio"`
	From  string    `json:"from"`
	To    string    `json:"to"`
	Time  time.Time `json:"time"`
}

// InboxEvent is published for every SMS read from the radio.
type InboxEvent struct {
	From      string `json:"from"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// NewBridge builds the MQTT client. Nothing is sent until Connect.
func NewBridge(cfg MQTTConfig, outbox *Outbox, logger *slog.Logger) *Bridge {
	b := &Bridge{
		cfg:    cfg,
		outbox: outbox,
		logger: logger.With("component", "mqtt"),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetOrderMatters(false)
	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		b.logger.Warn("MQTT connection lost", "error", err)
	})
	// Subscriptions do not survive a reconnect, so they are made here.
	opts.SetOnConnectHandler(b.subscribe)
	b.client = mqtt.NewClient(opts)
	return b
}

// Connect connects to the broker.
func (b *Bridge) Connect() error {
	token := b.client.Connect()
	<-token.Done()
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect MQTT: %w", err)
	}
	return nil
}

func (b *Bridge) subscribe(c mqtt.Client) {
	b.logger.Info("MQTT connected, subscribing", "topic", b.cfg.Topic)
	token := c.Subscribe(b.cfg.Topic, 0, b.handleSMS)
	<-token.Done()
	if err := token.Error(); err != nil {
		b.logger.Error("MQTT subscribe failed", "topic", b.cfg.Topic, "error", err)
	}
}

func (b *Bridge) handleSMS(_ mqtt.Client, m mqtt.Message) {
	var req SMSRequest
	if err := json.Unmarshal(m.Payload(), &req); err != nil {
		b.logger.Warn("Invalid MQTT payload", "topic", m.Topic(), "error", err)
		return
	}
	id, err := b.outbox.Enqueue(req)
	if err != nil {
		b.logger.Warn("MQTT SMS rejected", "error", err)
		return
	}
	b.logger.Debug("MQTT SMS queued", "id", id)
}

// PublishState reports a state change of the named radio.
func (b *Bridge) PublishState(radio string, from, to modem.State) {
	b.publish(b.cfg.StatusTopic, true, StateEvent{
		Radio: radio,
		From:  from.String(),
		To:    to.String(),
		Time:  time.Now().UTC(),
	})
}

// ForwardInbox publishes every SMS received on inbox until ctx ends.
func (b *Bridge) ForwardInbox(ctx context.Context, inbox <-chan modem.SMS) {
	for {
		select {
		case <-ctx.Done():
			return
		case sms := <-inbox:
			b.publish(b.cfg.InboxTopic, false, InboxEvent{
				From:      sms.PhoneNumber,
				Message:   sms.Message,
				Timestamp: sms.Timestamp,
			})
		}
	}
}

func (b *Bridge) publish(topic string, retained bool, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		b.logger.Error("Failed to encode MQTT payload", "error", err)
		return
	}
	token := b.client.Publish(topic, 0, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		b.logger.Warn("MQTT publish timed out", "topic", topic)
		return
	}
	if err := token.Error(); err != nil {
		b.logger.Error("MQTT publish failed", "topic", topic, "error", err)
	}
}

// Close disconnects from the broker.
func (b *Bridge) Close() {
	if b.client.IsConnected() {
		b.client.Disconnect(500)
	}
}
