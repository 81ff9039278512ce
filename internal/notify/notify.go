// Package notify delivers heater events to external systems.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"printer_monitor/internal/models"

	"go.uber.org/multierr"
)

// Notifier sends one heater event. Implementations own retry and delivery.
type Notifier interface {
	SendHeaterEvent(ctx context.Context, ev models.HeaterEvent) error
}

// Func adapts a plain function to Notifier.
type Func func(ctx context.Context, ev models.HeaterEvent) error

func (f Func) SendHeaterEvent(ctx context.Context, ev models.HeaterEvent) error {
	return f(ctx, ev)
}

// Fanout sends every event to all notifiers, even if some fail.
type Fanout []Notifier

func (f Fanout) SendHeaterEvent(ctx context.Context, ev models.HeaterEvent) error {
	var err error
	for _, n := range f {
		err = multierr.Append(err, n.SendHeaterEvent(ctx, ev))
	}
	return err
}

// Payload is the wire format shared by the MQTT and Kafka notifiers.
type Payload struct {
	Heater HeaterPayload `json:"heater"`
}

// HeaterPayload contains the heater event details.
type HeaterPayload struct {
	EventID   string  `json:"event_id"`
	Timestamp string  `json:"timestamp"`
	PrinterID int64   `json:"printer_id"`
	Name      string  `json:"name"`
	Event     string  `json:"event"`
	Actual    float64 `json:"actual"`
	Target    float64 `json:"target"`
	Offset    float64 `json:"offset"`
}

// FormatPayload creates the JSON payload for a heater event.
func FormatPayload(ev models.HeaterEvent) ([]byte, error) {
	return json.Marshal(Payload{
		Heater: HeaterPayload{
			EventID:   ev.EventID,
			Timestamp: ev.OccurredAt.UTC().Format(time.RFC3339),
			PrinterID: ev.PrinterID,
			Name:      ev.Heater,
			Event:     ev.Kind,
			Actual:    ev.Actual,
			Target:    ev.Target,
			Offset:    ev.Offset,
		},
	})
}
