package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"printer_monitor/internal/models"

	"github.com/google/uuid"
)

// EventSQLite is the append-only journal of fired heater events.
type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

const insertEventSQL = `
		INSERT INTO heater_events (id, printer_id, heater, kind, actual, target, offset_c, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

const selectEventsSQL = `SELECT id, printer_id, heater, kind, actual, target, offset_c, occurred_at FROM heater_events`

// Append inserts e. Missing EventID or OccurredAt are filled in.
func (r *EventSQLite) Append(ctx context.Context, e models.HeaterEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}

	_, err := r.db.ExecContext(ctx, insertEventSQL,
		e.EventID,
		e.PrinterID,
		e.Heater,
		strings.TrimSpace(e.Kind),
		e.Actual,
		e.Target,
		e.Offset,
		e.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert heater event %s: %w", e.EventID, err)
	}
	return nil
}

// List returns events matching q, oldest first.
func (r *EventSQLite) List(ctx context.Context, q EventQuery) ([]models.HeaterEvent, error) {
	var (
		conds []string
		args  []any
	)

	if q.PrinterID != 0 {
		conds = append(conds, "printer_id = ?")
		args = append(args, q.PrinterID)
	}
	if h := strings.TrimSpace(q.Heater); h != "" {
		conds = append(conds, "heater = ?")
		args = append(args, h)
	}
	if k := strings.TrimSpace(q.Kind); k != "" {
		conds = append(conds, "kind = ?")
		args = append(args, k)
	}
	if !q.From.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, q.From.UTC())
	}
	if !q.To.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, q.To.UTC())
	}

	query := selectEventsSQL
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.HeaterEvent, 0, 16)
	for rows.Next() {
		var ev models.HeaterEvent
		if err := rows.Scan(&ev.EventID, &ev.PrinterID, &ev.Heater, &ev.Kind, &ev.Actual, &ev.Target, &ev.Offset, &ev.OccurredAt); err != nil {
			return nil, err
		}
		ev.OccurredAt = ev.OccurredAt.UTC()
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
