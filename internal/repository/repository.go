package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"printer_monitor/internal/models"
)

// ErrTrackerNotFound is returned when an update or delete matches no row.
var ErrTrackerNotFound = errors.New("heater tracker not found")

// TrackerStore is CRUD over heater trackers scoped by printer.
type TrackerStore interface {
	List(ctx context.Context, printerID int64) ([]models.HeaterTracker, error)
	Create(ctx context.Context, t *models.HeaterTracker) error
	Update(ctx context.Context, t models.HeaterTracker) error
	Delete(ctx context.Context, t models.HeaterTracker) error
}

// TrackerRepo is a TrackerStore that can also run a unit of work atomically.
// fn's store is bound to the transaction; returning an error rolls it back.
type TrackerRepo interface {
	TrackerStore
	WithinTx(ctx context.Context, fn func(TrackerStore) error) error
}

// EventQuery filters the heater event journal. Zero values mean "no filter".
type EventQuery struct {
	PrinterID int64
	Heater    string
	Kind      string
	From      time.Time // inclusive
	To        time.Time // inclusive
}

type EventRepo interface {
	Append(ctx context.Context, e models.HeaterEvent) error
	List(ctx context.Context, q EventQuery) ([]models.HeaterEvent, error)
}

type Repository struct {
	Trackers TrackerRepo
	Events   EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Trackers: NewTrackerSQLite(db),
		Events:   NewEventSQLite(db),
	}
}

// querier is the subset shared by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}
