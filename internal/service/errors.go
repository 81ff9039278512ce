package service

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"printer_monitor/internal/models"
)

// ErrValidation is matched by every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError rejects a snapshot entry before any tracker is touched.
type ValidationError struct {
	Heater string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Heater == "" {
		return fmt.Sprintf("invalid heater reading: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid heater reading %q: %s %s", e.Heater, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ValidateSnapshot checks every entry; target and offset are optional.
func ValidateSnapshot(snap models.Snapshot) error {
	for _, name := range sortedNames(snap) {
		r := snap[name]
		if name == "" {
			return &ValidationError{Field: "name", Reason: "is empty"}
		}
		if strings.ContainsAny(name, reservedNameChars) {
			return &ValidationError{Heater: name, Field: "name", Reason: "must not contain '/', '+', '#' or NUL"}
		}
		if r.Actual == nil {
			return &ValidationError{Heater: name, Field: "actual", Reason: "is required"}
		}
		if !finite(*r.Actual) {
			return &ValidationError{Heater: name, Field: "actual", Reason: "must be a finite number"}
		}
		if r.Target != nil && !finite(*r.Target) {
			return &ValidationError{Heater: name, Field: "target", Reason: "must be a finite number"}
		}
		if !finite(r.Offset) {
			return &ValidationError{Heater: name, Field: "offset", Reason: "must be a finite number"}
		}
	}
	return nil
}

// heater names become MQTT topic levels
const reservedNameChars = "/+#\x00"

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func sortedNames(snap models.Snapshot) []string {
	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
