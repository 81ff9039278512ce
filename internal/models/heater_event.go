package models

import "time"

// Heater event kinds.
const (
	EventTargetReached = "target reached"
	EventCooledDown    = "cooled down"
)

// HeaterEvent is a notification fired when a tracker latches as reached.
type HeaterEvent struct {
	EventID    string    `json:"event_id"`
	PrinterID  int64     `json:"printer_id"`
	Heater     string    `json:"heater"`
	Kind       string    `json:"kind"` // "target reached" | "cooled down"
	Actual     float64   `json:"actual"`
	Target     float64   `json:"target"`
	Offset     float64   `json:"offset"`
	OccurredAt time.Time `json:"occurred_at"`
}
