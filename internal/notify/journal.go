package notify

import (
	"context"

	"printer_monitor/internal/models"
	"printer_monitor/internal/repository"
)

// JournalNotifier records events in the heater_events table.
type JournalNotifier struct {
	events repository.EventRepo
}

func NewJournalNotifier(events repository.EventRepo) *JournalNotifier {
	return &JournalNotifier{events: events}
}

func (j *JournalNotifier) SendHeaterEvent(ctx context.Context, ev models.HeaterEvent) error {
	return j.events.Append(ctx, ev)
}
