package repository

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"printer_monitor/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

var eventCols = []string{"id", "printer_id", "heater", "kind", "actual", "target", "offset_c", "occurred_at"}

func ctx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return c
}

func TestAppend_Success_WithDefaults(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewEventSQLite(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO heater_events")).
		WithArgs(sqlmock.AnyArg(), 4, "bed", models.EventTargetReached, 59.5, 60.0, 0.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Append(ctx(t), models.HeaterEvent{
		PrinterID: 4,
		Heater:    "bed",
		Kind:      " target reached ",
		Actual:    59.5,
		Target:    60,
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestAppend_DBError(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewEventSQLite(db)
	mock.ExpectExec("INSERT INTO heater_events").WillReturnError(errors.New("down"))

	err = repo.Append(ctx(t), models.HeaterEvent{EventID: "e1", Kind: models.EventCooledDown})
	if err == nil || !strings.Contains(err.Error(), "down") {
		t.Fatalf("expected error, got %v", err)
	}
}

func TestList_NoFilters(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewEventSQLite(db)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(eventCols).
		AddRow("1", 1, "bed", models.EventTargetReached, 60.0, 60.0, 0.0, now).
		AddRow("2", 1, "bed", models.EventCooledDown, 35.0, 0.0, 0.0, now.Add(time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta(selectEventsSQL + " ORDER BY occurred_at ASC")).
		WillReturnRows(rows)

	got, err := repo.List(ctx(t), EventQuery{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].EventID != "1" || got[1].Kind != models.EventCooledDown {
		t.Fatalf("unexpected events: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestList_WithFilters_OrderAndArgs(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewEventSQLite(db)
	from := time.Date(2025, 1, 1, 11, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	query := selectEventsSQL + ` WHERE printer_id = ? AND heater = ? AND kind = ? AND occurred_at >= ? AND occurred_at <= ? ORDER BY occurred_at ASC`

	rows := sqlmock.NewRows(eventCols).
		AddRow("3", 2, "tool0", models.EventTargetReached, 209.0, 210.0, 0.0, from)

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs(2, "tool0", models.EventTargetReached, from, to).
		WillReturnRows(rows)

	got, err := repo.List(ctx(t), EventQuery{
		PrinterID: 2,
		Heater:    " tool0 ",
		Kind:      models.EventTargetReached,
		From:      from,
		To:        to,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].EventID != "3" {
		t.Fatalf("unexpected results: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestList_ScanError(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewEventSQLite(db)

	rows := sqlmock.NewRows(eventCols).
		AddRow("x", 1, "bed", "kind", 1.0, 1.0, 0.0, 123) // occurred_at wrong type

	mock.ExpectQuery("FROM heater_events").WillReturnRows(rows)

	if _, err := repo.List(ctx(t), EventQuery{}); err == nil {
		t.Fatalf("expected scan error, got nil")
	}
}
