package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"printer_monitor/internal/models"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	mqttConnectTimeout = 10 * time.Second
	mqttPublishTimeout = 5 * time.Second
	mqttQoS            = 1 // at-least-once; events are rare and worth delivering
)

// mqttPublisher is the part of paho.Client the notifier uses.
type mqttPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

// MQTTNotifier publishes events to <prefix>/<printer>/heaters/<heater>/events.
type MQTTNotifier struct {
	client mqttPublisher
	prefix string
}

// NewMQTTNotifier connects to broker and returns a notifier using it.
func NewMQTTNotifier(broker, clientID, topicPrefix string) (*MQTTNotifier, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return nil, fmt.Errorf("mqtt connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return newMQTTNotifier(client, topicPrefix), nil
}

func newMQTTNotifier(client mqttPublisher, topicPrefix string) *MQTTNotifier {
	return &MQTTNotifier{client: client, prefix: strings.Trim(topicPrefix, "/")}
}

// Topic returns the topic an event for printer/heater is published to.
// topicLevel keeps a heater name inside one topic level and out of wildcards.
var topicLevel = strings.NewReplacer("/", "_", "+", "_", "#", "_")

func (m *MQTTNotifier) Topic(printerID int64, heater string) string {
	parts := []string{strconv.FormatInt(printerID, 10), "heaters", topicLevel.Replace(heater), "events"}
	if m.prefix != "" {
		parts = append([]string{m.prefix}, parts...)
	}
	return strings.Join(parts, "/")
}

func (m *MQTTNotifier) SendHeaterEvent(ctx context.Context, ev models.HeaterEvent) error {
	payload, err := FormatPayload(ev)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	token := m.client.Publish(m.Topic(ev.PrinterID, ev.Heater), mqttQoS, false, payload)

	wait := mqttPublishTimeout
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) < wait {
		wait = time.Until(dl)
	}
	if !token.WaitTimeout(wait) {
		return fmt.Errorf("mqtt publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish: %w", err)
	}
	return nil
}

// Close disconnects from the broker.
func (m *MQTTNotifier) Close() error {
	m.client.Disconnect(1000)
	return nil
}
