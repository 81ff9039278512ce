package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"printer_monitor/internal/logger"
	"printer_monitor/internal/models"
	"printer_monitor/internal/repository"

	"github.com/google/uuid"
)

// TrackerService reconciles persisted heater trackers with each telemetry poll.
type TrackerService struct {
	repo       repository.TrackerRepo
	outbox     *eventOutbox
	thresholds Thresholds
	locks      printerLocks
	now        func() time.Time
}

func NewTrackerService(repo repository.TrackerRepo, notifier Notifier, th Thresholds, log *logger.Logger) *TrackerService {
	return &TrackerService{
		repo:       repo,
		outbox:     newEventOutbox(notifier, log),
		thresholds: th,
		now:        time.Now,
	}
}

// Update reconciles printerID's trackers with snap. All tracker mutations
// commit together. Events are queued for delivery only after the commit
// succeeds, and Update does not wait for them.
func (s *TrackerService) Update(ctx context.Context, printerID int64, snap models.Snapshot) error {
	if err := ValidateSnapshot(snap); err != nil {
		return err
	}

	events, err := s.commit(ctx, printerID, snap)
	if err != nil {
		return fmt.Errorf("update heater trackers for printer %d: %w", printerID, err)
	}

	s.outbox.enqueue(events)
	return nil
}

// Flush blocks until every queued event has been handed to the notifier.
func (s *TrackerService) Flush(ctx context.Context) error {
	return s.outbox.flush(ctx)
}

// Close drains queued events and rejects new ones.
func (s *TrackerService) Close(ctx context.Context) error {
	return s.outbox.close(ctx)
}

func (s *TrackerService) commit(ctx context.Context, printerID int64, snap models.Snapshot) ([]models.HeaterEvent, error) {
	unlock := s.locks.lock(printerID)
	defer unlock()

	var events []models.HeaterEvent
	err := s.repo.WithinTx(ctx, func(store repository.TrackerStore) error {
		var err error
		events, err = s.reconcile(ctx, store, printerID, snap)
		return err
	})
	return events, err
}

func (s *TrackerService) reconcile(ctx context.Context, store repository.TrackerStore, printerID int64, snap models.Snapshot) ([]models.HeaterEvent, error) {
	existing, err := store.List(ctx, printerID)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]models.HeaterTracker, len(existing))
	for _, t := range existing {
		r, ok := snap[t.Name]
		if !ok || !r.HasTarget() {
			if err := store.Delete(ctx, t); err != nil {
				return nil, err
			}
			continue
		}
		byName[t.Name] = t
	}

	var events []models.HeaterEvent
	for _, name := range sortedNames(snap) {
		r := snap[name]
		if !r.HasTarget() {
			continue
		}
		actual, target := *r.Actual, *r.Target

		t, ok := byName[name]
		if !ok {
			state, fired := notReached.observe(s.thresholds, actual, target, r.Offset)
			t = models.HeaterTracker{PrinterID: printerID, Name: name, Target: target, Reached: bool(state)}
			if err := store.Create(ctx, &t); err != nil {
				return nil, err
			}
			if fired {
				events = append(events, s.newEvent(printerID, name, r))
			}
			continue
		}

		state := latch(t.Reached)
		targetChanged := t.Target != target
		if targetChanged {
			// a new target starts a fresh heating cycle
			state = notReached
		}
		next, fired := state.observe(s.thresholds, actual, target, r.Offset)
		if !targetChanged && bool(next) == t.Reached {
			continue
		}

		t.Target = target
		t.Reached = bool(next)
		if err := store.Update(ctx, t); err != nil {
			return nil, err
		}
		if fired {
			events = append(events, s.newEvent(printerID, name, r))
		}
	}
	return events, nil
}

func (s *TrackerService) newEvent(printerID int64, name string, r models.HeaterReading) models.HeaterEvent {
	return models.HeaterEvent{
		EventID:    uuid.NewString(),
		PrinterID:  printerID,
		Heater:     name,
		Kind:       EventKind(*r.Target),
		Actual:     *r.Actual,
		Target:     *r.Target,
		Offset:     r.Offset,
		OccurredAt: s.now().UTC(),
	}
}

// printerLocks serializes work per printer while letting printers run in parallel.
type printerLocks struct {
	mu      sync.Mutex
	entries map[int64]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func (p *printerLocks) lock(printerID int64) (unlock func()) {
	p.mu.Lock()
	if p.entries == nil {
		p.entries = make(map[int64]*lockEntry)
	}
	e, ok := p.entries[printerID]
	if !ok {
		e = &lockEntry{}
		p.entries[printerID] = e
	}
	e.refs++
	p.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		p.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(p.entries, printerID)
		}
		p.mu.Unlock()
	}
}
