package service

import (
	"context"
	"time"

	"printer_monitor/internal/logger"
	"printer_monitor/internal/models"
	"printer_monitor/internal/repository"
)

// Notifier delivers heater events. Implementations own their retry policy.
type Notifier interface {
	SendHeaterEvent(ctx context.Context, ev models.HeaterEvent) error
}

// Authorization mints and checks printer agent tokens.
type Authorization interface {
	IssueToken(printerID int64) (string, error)
	ParseToken(accessToken string) (int64, error)
	CheckAdminKey(key string) error
}

// HeaterTracker reconciles one telemetry poll into persisted trackers.
// Close drains pending notifications on shutdown.
type HeaterTracker interface {
	Update(ctx context.Context, printerID int64, snap models.Snapshot) error
	Close(ctx context.Context) error
}

// Monitoring exposes read-only tracker state.
type Monitoring interface {
	ListTrackers(ctx context.Context, printerID int64) ([]models.HeaterTracker, error)
}

// EventLog exposes the journal of fired heater events.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.HeaterEvent, error)
}

// Simulator feeds synthetic telemetry for demo printers until ctx is done.
type Simulator interface {
	Run(ctx context.Context, tick time.Duration)
}

type Service struct {
	HeaterTracker
	Monitoring
	EventLog
	Simulator
	Authorization
}

// Options carries the tunables NewService needs beyond the repositories.
type Options struct {
	Thresholds Thresholds
	Auth       AuthOptions
	Printers   []int64 // simulated printer ids
	Log        *logger.Logger
}

func NewService(repos *repository.Repository, notifier Notifier, opts Options) *Service {
	tracker := NewTrackerService(repos.Trackers, notifier, opts.Thresholds, opts.Log.Named("tracker"))
	return &Service{
		HeaterTracker: tracker,
		Monitoring:    NewMonitoringService(repos.Trackers),
		EventLog:      NewEventLogService(repos.Events),
		Simulator:     NewSimulatorService(tracker, opts.Printers, opts.Log.Named("simulator")),
		Authorization: NewAuthService(opts.Auth),
	}
}
