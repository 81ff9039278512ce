package service

import (
	"context"

	"printer_monitor/internal/models"
	"printer_monitor/internal/repository"
)

type MonitoringService struct {
	trackers repository.TrackerStore
}

func NewMonitoringService(trackers repository.TrackerStore) *MonitoringService {
	return &MonitoringService{trackers: trackers}
}

// ListTrackers returns the printer's trackers, never nil.
func (s *MonitoringService) ListTrackers(ctx context.Context, printerID int64) ([]models.HeaterTracker, error) {
	trackers, err := s.trackers.List(ctx, printerID)
	if err != nil {
		return nil, err
	}
	if trackers == nil {
		trackers = []models.HeaterTracker{}
	}
	for i := range trackers {
		trackers[i].CreatedAt = toUTC(trackers[i].CreatedAt)
		trackers[i].UpdatedAt = toUTC(trackers[i].UpdatedAt)
	}
	return trackers, nil
}
