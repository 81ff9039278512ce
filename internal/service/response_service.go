package service

import "time"

// LogFilter selects heater events by printer, heater, kind and time range.
type LogFilter struct {
	PrinterID int64
	Heater    string
	Kind      string    // "" | "target reached" | "cooled down"
	From      time.Time // inclusive; zero means no lower bound
	To        time.Time // inclusive; zero means no upper bound
}
