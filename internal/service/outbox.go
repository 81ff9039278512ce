package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"printer_monitor/internal/logger"
	"printer_monitor/internal/models"
)

const (
	outboxCapacity = 256
	sendTimeout    = 5 * time.Second
)

var errOutboxClosed = errors.New("event outbox is closed")

// eventOutbox delivers committed events on a single background worker so a
// slow notifier never holds up a poll. Events keep their enqueue order.
// When the queue is full new events are dropped and logged.
type eventOutbox struct {
	notifier Notifier
	log      *logger.Logger
	timeout  time.Duration

	queue     chan models.HeaterEvent
	startOnce sync.Once

	mu       sync.Mutex
	closed   bool
	inflight int
	idle     chan struct{} // closed when inflight drops to zero
}

func newEventOutbox(notifier Notifier, log *logger.Logger) *eventOutbox {
	return &eventOutbox{
		notifier: notifier,
		log:      log,
		timeout:  sendTimeout,
		queue:    make(chan models.HeaterEvent, outboxCapacity),
	}
}

func (o *eventOutbox) enqueue(events []models.HeaterEvent) {
	if o.notifier == nil || len(events) == 0 {
		return
	}
	o.startOnce.Do(func() { go o.run() })

	o.mu.Lock()
	defer o.mu.Unlock()
	for _, ev := range events {
		if o.closed {
			o.warn("heater_event_dropped", errOutboxClosed, ev)
			continue
		}
		select {
		case o.queue <- ev:
			if o.inflight == 0 {
				o.idle = make(chan struct{})
			}
			o.inflight++
		default:
			o.warn("heater_event_dropped", errors.New("outbox full"), ev)
		}
	}
}

func (o *eventOutbox) run() {
	for ev := range o.queue {
		o.send(ev)
		o.mu.Lock()
		o.inflight--
		if o.inflight == 0 {
			close(o.idle)
			o.idle = nil
		}
		o.mu.Unlock()
	}
}

func (o *eventOutbox) send(ev models.HeaterEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()
	if err := o.notifier.SendHeaterEvent(ctx, ev); err != nil {
		o.warn("heater_event_send_failed", err, ev)
	}
}

func (o *eventOutbox) warn(key string, err error, ev models.HeaterEvent) {
	if o.log == nil {
		return
	}
	o.log.Warnw(key,
		"err", err,
		"printer_id", ev.PrinterID,
		"heater", ev.Heater,
		"kind", ev.Kind,
	)
}

// flush waits until every queued event has been handed to the notifier.
func (o *eventOutbox) flush(ctx context.Context) error {
	o.mu.Lock()
	idle := o.idle
	o.mu.Unlock()
	if idle == nil {
		return nil
	}
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close stops accepting events and drains what is already queued.
func (o *eventOutbox) close(ctx context.Context) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	o.mu.Unlock()

	err := o.flush(ctx)
	// a worker must not start after the queue is closed
	o.startOnce.Do(func() {})
	close(o.queue)
	return err
}
