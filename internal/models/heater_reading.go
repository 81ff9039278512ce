package models

// HeaterReading is one heater's values from a single telemetry poll.
type HeaterReading struct {
	Actual *float64 `json:"actual"`           // required
	Target *float64 `json:"target"`           // nil: heater is idle
	Offset float64  `json:"offset,omitempty"` // firmware temperature offset
}

// HasTarget reports whether the heater is being driven toward a target.
func (r HeaterReading) HasTarget() bool {
	return r.Target != nil
}

// Snapshot maps heater name to its reading for one printer poll.
type Snapshot map[string]HeaterReading

// Float returns a pointer to v, handy for building readings.
func Float(v float64) *float64 {
	return &v
}
