package models

import "time"

// HeaterTracker is the persisted latch for one heater of one printer.
// A row exists only while the printer reports a target for the heater.
type HeaterTracker struct {
	ID        int64     `json:"id"`
	PrinterID int64     `json:"printer_id"`
	Name      string    `json:"name"`    // e.g. "tool0", "bed"
	Target    float64   `json:"target"`  // °C, last reported target
	Reached   bool      `json:"reached"` // latched since Target was last set
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
