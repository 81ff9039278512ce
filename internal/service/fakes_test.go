package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"printer_monitor/internal/models"
	"printer_monitor/internal/repository"
)

// memTrackerRepo is an in-memory TrackerRepo with all-or-nothing transactions.
type memTrackerRepo struct {
	mu     sync.Mutex
	rows   map[int64]models.HeaterTracker
	nextID int64

	failOp  string // "list" | "create" | "update" | "delete"
	failErr error

	creates, updates, deletes int
}

func newMemTrackerRepo() *memTrackerRepo {
	return &memTrackerRepo{rows: map[int64]models.HeaterTracker{}}
}

// seed inserts a tracker directly, bypassing counters.
func (r *memTrackerRepo) seed(t models.HeaterTracker) models.HeaterTracker {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t.ID = r.nextID
	r.rows[t.ID] = t
	return t
}

// get returns the tracker for printer/name, if any.
func (r *memTrackerRepo) get(printerID int64, name string) (models.HeaterTracker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.rows {
		if t.PrinterID == printerID && t.Name == name {
			return t, true
		}
	}
	return models.HeaterTracker{}, false
}

func (r *memTrackerRepo) count(printerID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.rows {
		if t.PrinterID == printerID {
			n++
		}
	}
	return n
}

func (r *memTrackerRepo) List(ctx context.Context, printerID int64) ([]models.HeaterTracker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return (&memTx{repo: r, rows: r.rows}).List(ctx, printerID)
}

func (r *memTrackerRepo) Create(ctx context.Context, t *models.HeaterTracker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return (&memTx{repo: r, rows: r.rows}).Create(ctx, t)
}

func (r *memTrackerRepo) Update(ctx context.Context, t models.HeaterTracker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return (&memTx{repo: r, rows: r.rows}).Update(ctx, t)
}

func (r *memTrackerRepo) Delete(ctx context.Context, t models.HeaterTracker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return (&memTx{repo: r, rows: r.rows}).Delete(ctx, t)
}

func (r *memTrackerRepo) WithinTx(ctx context.Context, fn func(repository.TrackerStore) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	work := make(map[int64]models.HeaterTracker, len(r.rows))
	for id, t := range r.rows {
		work[id] = t
	}
	if err := fn(&memTx{repo: r, rows: work}); err != nil {
		return err
	}
	r.rows = work
	return nil
}

// memTx operates on a working copy; the caller holds repo.mu.
type memTx struct {
	repo *memTrackerRepo
	rows map[int64]models.HeaterTracker
}

func (tx *memTx) fail(op string) error {
	if tx.repo.failOp == op {
		return tx.repo.failErr
	}
	return nil
}

func (tx *memTx) List(_ context.Context, printerID int64) ([]models.HeaterTracker, error) {
	if err := tx.fail("list"); err != nil {
		return nil, err
	}
	var out []models.HeaterTracker
	for _, t := range tx.rows {
		if t.PrinterID == printerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (tx *memTx) Create(_ context.Context, t *models.HeaterTracker) error {
	if err := tx.fail("create"); err != nil {
		return err
	}
	for _, row := range tx.rows {
		if row.PrinterID == t.PrinterID && row.Name == t.Name {
			return errors.New("UNIQUE constraint failed")
		}
	}
	tx.repo.nextID++
	t.ID = tx.repo.nextID
	tx.rows[t.ID] = *t
	tx.repo.creates++
	return nil
}

func (tx *memTx) Update(_ context.Context, t models.HeaterTracker) error {
	if err := tx.fail("update"); err != nil {
		return err
	}
	if _, ok := tx.rows[t.ID]; !ok {
		return repository.ErrTrackerNotFound
	}
	tx.rows[t.ID] = t
	tx.repo.updates++
	return nil
}

func (tx *memTx) Delete(_ context.Context, t models.HeaterTracker) error {
	if err := tx.fail("delete"); err != nil {
		return err
	}
	if _, ok := tx.rows[t.ID]; !ok {
		return repository.ErrTrackerNotFound
	}
	delete(tx.rows, t.ID)
	tx.repo.deletes++
	return nil
}

// recordingNotifier captures every event, optionally failing each send.
type recordingNotifier struct {
	mu     sync.Mutex
	events []models.HeaterEvent
	err    error
}

func (n *recordingNotifier) SendHeaterEvent(_ context.Context, ev models.HeaterEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.err
}

func (n *recordingNotifier) all() []models.HeaterEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.HeaterEvent(nil), n.events...)
}

// localEventRepo filters in memory like the SQLite journal does.
type localEventRepo struct {
	events    []models.HeaterEvent
	listErr   error
	lastQuery repository.EventQuery
}

func (f *localEventRepo) Append(_ context.Context, e models.HeaterEvent) error {
	f.events = append(f.events, e)
	return nil
}

func (f *localEventRepo) List(_ context.Context, q repository.EventQuery) ([]models.HeaterEvent, error) {
	f.lastQuery = q
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.HeaterEvent
	for _, e := range f.events {
		if q.PrinterID != 0 && e.PrinterID != q.PrinterID {
			continue
		}
		if q.Kind != "" && e.Kind != q.Kind {
			continue
		}
		if !q.From.IsZero() && e.OccurredAt.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && e.OccurredAt.After(q.To) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func reading(actual float64, target *float64, offset float64) models.HeaterReading {
	return models.HeaterReading{Actual: models.Float(actual), Target: target, Offset: offset}
}
