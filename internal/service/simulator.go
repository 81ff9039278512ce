package service

import (
	"context"
	"sort"
	"time"

	"printer_monitor/internal/logger"
	"printer_monitor/internal/models"
)

// ----------- Simulation constants -----------
const (
	AmbientC        = 25.0 // ambient temperature °C
	RampUpCPerSec   = 3.0  // °C per second while heating
	RampDownCPerSec = 5.0  // °C per second while cooling toward target
	IdleCoolPerSec  = 0.5  // °C per second drift to ambient with no target
)

// simPhase is one step of the demo print cycle. A heater missing from
// targets is idle and reports no target.
type simPhase struct {
	targets  map[string]float64
	duration time.Duration
}

// defaultProgram is: idle, preheat, hold, cooldown, repeat.
var defaultProgram = []simPhase{
	{targets: nil, duration: 10 * time.Second},
	{targets: map[string]float64{"bed": 60, "tool0": 210}, duration: 90 * time.Second},
	{targets: map[string]float64{"bed": 60, "tool0": 215}, duration: 30 * time.Second},
	{targets: map[string]float64{"bed": 0, "tool0": 0}, duration: 120 * time.Second},
}

var simHeaterNames = []string{"bed", "tool0"}

type simPrinter struct {
	actual     map[string]float64
	phase      int
	phaseStart time.Time
	lastTick   time.Time
}

type snapshotSink interface {
	Update(ctx context.Context, printerID int64, snap models.Snapshot) error
}

// SimulatorService drives fake heaters through defaultProgram and feeds
// every tick's snapshot to the tracker.
type SimulatorService struct {
	tracker  snapshotSink
	ids      []int64
	printers map[int64]*simPrinter
	program  []simPhase
	log      *logger.Logger
}

func NewSimulatorService(tracker snapshotSink, printerIDs []int64, log *logger.Logger) *SimulatorService {
	ids := append([]int64(nil), printerIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return &SimulatorService{
		tracker:  tracker,
		ids:      ids,
		printers: make(map[int64]*simPrinter, len(ids)),
		program:  defaultProgram,
		log:      log,
	}
}

// Run ticks at the given interval until ctx is canceled.
func (s *SimulatorService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.step(ctx, now)
		}
	}
}

// step advances every simulated printer to now and reports its snapshot.
func (s *SimulatorService) step(ctx context.Context, now time.Time) {
	for _, id := range s.ids {
		p := s.printer(id, now)
		snap := s.advance(p, now)
		if err := s.tracker.Update(ctx, id, snap); err != nil && s.log != nil {
			s.log.Errorw("simulator_update_failed", "err", err, "printer_id", id)
		}
	}
}

func (s *SimulatorService) printer(id int64, now time.Time) *simPrinter {
	p, ok := s.printers[id]
	if !ok {
		p = &simPrinter{actual: make(map[string]float64, len(simHeaterNames)), phaseStart: now, lastTick: now}
		for _, name := range simHeaterNames {
			p.actual[name] = AmbientC
		}
		s.printers[id] = p
	}
	return p
}

// advance moves p's phase and temperatures forward and returns the snapshot.
func (s *SimulatorService) advance(p *simPrinter, now time.Time) models.Snapshot {
	for now.Sub(p.phaseStart) >= s.program[p.phase].duration {
		p.phaseStart = p.phaseStart.Add(s.program[p.phase].duration)
		p.phase = (p.phase + 1) % len(s.program)
	}

	elapsed := now.Sub(p.lastTick).Seconds()
	p.lastTick = now
	phase := s.program[p.phase]

	snap := make(models.Snapshot, len(simHeaterNames))
	for _, name := range simHeaterNames {
		target, active := phase.targets[name]
		if active {
			p.actual[name] = driveToward(p.actual[name], target, elapsed)
			snap[name] = models.HeaterReading{Actual: models.Float(p.actual[name]), Target: models.Float(target)}
			continue
		}
		p.actual[name] = driftToAmbient(p.actual[name], elapsed)
		snap[name] = models.HeaterReading{Actual: models.Float(p.actual[name])}
	}
	return snap
}

// driveToward heats or cools toward target without overshoot. A zero target
// means heater off: cool toward ambient.
func driveToward(actual, target, elapsed float64) float64 {
	if IsCooldownTarget(target) {
		return maxFloat(actual-RampDownCPerSec*elapsed, AmbientC)
	}
	if actual < target {
		return minFloat(actual+RampUpCPerSec*elapsed, target)
	}
	return maxFloat(actual-RampDownCPerSec*elapsed, target)
}

func driftToAmbient(actual, elapsed float64) float64 {
	if actual > AmbientC {
		return maxFloat(actual-IdleCoolPerSec*elapsed, AmbientC)
	}
	return actual
}

// helpers
func maxFloat(a, b float64) float64 {
	if a >= b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a <= b {
		return a
	}
	return b
}
