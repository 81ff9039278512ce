package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"printer_monitor/internal/models"
	"printer_monitor/internal/repository"
)

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

// ErrInvalidFilter is wrapped by every rejected LogFilter.
var ErrInvalidFilter = errors.New("invalid event filter")

var (
	errInvalidTimeRange = fmt.Errorf("%w: From must be <= To", ErrInvalidFilter)
	errInvalidKind      = fmt.Errorf("%w: kind must be \"target reached\" or \"cooled down\"", ErrInvalidFilter)
)

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeKind accepts "target reached", "TARGET_REACHED", "cooled-down" and so on.
func normalizeKind(s string) (string, error) {
	k := strings.ToLower(strings.TrimSpace(s))
	k = strings.NewReplacer("_", " ", "-", " ").Replace(k)
	switch k {
	case "", models.EventTargetReached, models.EventCooledDown:
		return k, nil
	default:
		return "", errInvalidKind
	}
}

func normalizeAndValidateFilter(f LogFilter) (repository.EventQuery, error) {
	from := toUTC(f.From)
	to := toUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return repository.EventQuery{}, errInvalidTimeRange
	}
	kind, err := normalizeKind(f.Kind)
	if err != nil {
		return repository.EventQuery{}, err
	}
	return repository.EventQuery{
		PrinterID: f.PrinterID,
		Heater:    strings.TrimSpace(f.Heater),
		Kind:      kind,
		From:      from,
		To:        to,
	}, nil
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.HeaterEvent, error) {
	q, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, q)
}
