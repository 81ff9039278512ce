package service

import (
	"math"

	"printer_monitor/internal/models"
)

const (
	DefaultReachDelta        = 2.0  // °C band around target counted as "at target"
	DefaultCooldownThreshold = 35.0 // °C at or below which a zero target counts as cooled
)

// Thresholds decides when a heater counts as having reached its target.
type Thresholds struct {
	ReachDelta        float64
	CooldownThreshold float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		ReachDelta:        DefaultReachDelta,
		CooldownThreshold: DefaultCooldownThreshold,
	}
}

// IsCooldownTarget reports whether target means "heater off, cool to ambient".
func IsCooldownTarget(target float64) bool {
	return target <= 0
}

// Reached evaluates one reading against target. The offset shifts the
// effective target the same way the firmware applies it.
func (th Thresholds) Reached(actual, target, offset float64) bool {
	if IsCooldownTarget(target) {
		return actual <= th.CooldownThreshold
	}
	return math.Abs(actual-(target+offset)) <= th.ReachDelta
}

// latch is the per-tracker two-state machine: notReached -> reached.
// Leaving reached only happens through reset, when the target changes.
type latch bool

const (
	notReached latch = false
	reached    latch = true
)

// observe feeds one reading into the latch and reports whether it just fired.
func (l latch) observe(th Thresholds, actual, target, offset float64) (latch, bool) {
	if l == reached {
		return reached, false
	}
	if th.Reached(actual, target, offset) {
		return reached, true
	}
	return notReached, false
}

// EventKind names the event fired when a tracker with this target latches.
func EventKind(target float64) string {
	if IsCooldownTarget(target) {
		return models.EventCooledDown
	}
	return models.EventTargetReached
}
