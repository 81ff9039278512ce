package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"printer_monitor/internal/models"
)

const (
	selectTrackersSQL = `
		SELECT id, printer_id, name, target, reached, created_at, updated_at
		FROM heater_trackers WHERE printer_id=? ORDER BY name ASC
	`

	insertTrackerSQL = `
		INSERT INTO heater_trackers (printer_id, name, target, reached, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	updateTrackerSQL = `
		UPDATE heater_trackers SET target=?, reached=?, updated_at=? WHERE id=?
	`

	deleteTrackerSQL = `DELETE FROM heater_trackers WHERE id=?`
)

// TrackerSQLite stores heater trackers in the heater_trackers table.
type TrackerSQLite struct {
	db *sql.DB
	trackerStore
}

var _ TrackerRepo = (*TrackerSQLite)(nil)

func NewTrackerSQLite(db *sql.DB) *TrackerSQLite {
	return &TrackerSQLite{db: db, trackerStore: trackerStore{q: db}}
}

// WithinTx runs fn against a store bound to a single transaction.
func (r *TrackerSQLite) WithinTx(ctx context.Context, fn func(TrackerStore) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tracker transaction: %w", err)
	}
	if err := fn(&trackerStore{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tracker transaction: %w", err)
	}
	return nil
}

type trackerStore struct {
	q querier
}

func (s *trackerStore) List(ctx context.Context, printerID int64) ([]models.HeaterTracker, error) {
	rows, err := s.q.QueryContext(ctx, selectTrackersSQL, printerID)
	if err != nil {
		return nil, fmt.Errorf("select trackers for printer %d: %w", printerID, err)
	}
	defer rows.Close()

	var out []models.HeaterTracker
	for rows.Next() {
		var t models.HeaterTracker
		if err := rows.Scan(&t.ID, &t.PrinterID, &t.Name, &t.Target, &t.Reached, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan tracker: %w", err)
		}
		t.CreatedAt = t.CreatedAt.UTC()
		t.UpdatedAt = t.UpdatedAt.UTC()
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts t and fills in its ID and timestamps.
func (s *trackerStore) Create(ctx context.Context, t *models.HeaterTracker) error {
	now := time.Now().UTC()
	res, err := s.q.ExecContext(ctx, insertTrackerSQL, t.PrinterID, t.Name, t.Target, t.Reached, now, now)
	if err != nil {
		return fmt.Errorf("insert tracker %q: %w", t.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id for tracker %q: %w", t.Name, err)
	}
	t.ID = id
	t.CreatedAt = now
	t.UpdatedAt = now
	return nil
}

func (s *trackerStore) Update(ctx context.Context, t models.HeaterTracker) error {
	res, err := s.q.ExecContext(ctx, updateTrackerSQL, t.Target, t.Reached, time.Now().UTC(), t.ID)
	if err != nil {
		return fmt.Errorf("update tracker %q: %w", t.Name, err)
	}
	return expectOneRow(res, t)
}

func (s *trackerStore) Delete(ctx context.Context, t models.HeaterTracker) error {
	res, err := s.q.ExecContext(ctx, deleteTrackerSQL, t.ID)
	if err != nil {
		return fmt.Errorf("delete tracker %q: %w", t.Name, err)
	}
	return expectOneRow(res, t)
}

func expectOneRow(res sql.Result, t models.HeaterTracker) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for tracker %q: %w", t.Name, err)
	}
	if n == 0 {
		return fmt.Errorf("tracker %q (id=%d): %w", t.Name, t.ID, ErrTrackerNotFound)
	}
	return nil
}
