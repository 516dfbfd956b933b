// Package engine drives a game in real time: wall-clock time accumulates and
// one tick fires per whole tick interval.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Stepper advances a simulation by one tick
type Stepper interface {
	Tick()
}

// Engine accumulates elapsed time and fires fixed-interval ticks. It is the
// only caller of the stepper's Tick while it runs.
type Engine struct {
	Ticks    uint64        // Ticks fired since creation
	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Simulated time per tick

	// Lock, when set, is held around every tick so other goroutines can
	// read the game between ticks.
	Lock sync.Locker

	// AutosaveEvery fires OnAutosave after that many ticks; 0 disables it.
	// OnAutosave runs without Lock held.
	AutosaveEvery uint64
	OnAutosave    func(ctx context.Context) error

	target Stepper
	acc    time.Duration
	now    func() time.Time
}

// New creates an engine that ticks target once per interval
func New(target Stepper, interval time.Duration) *Engine {
	if interval <= 0 {
		interval = time.Second
	}
	return &Engine{
		Speed:    1.0,
		Interval: interval,
		target:   target,
		now:      time.Now,
	}
}

// Advance adds elapsed wall-clock time, scaled by Speed, and fires one tick
// per whole interval accumulated. The remainder carries over to the next call.
func (e *Engine) Advance(elapsed time.Duration) int {
	if e.Speed <= 0 || elapsed <= 0 {
		return 0
	}
	e.acc += time.Duration(float64(elapsed) * e.Speed)

	fired := 0
	for e.acc >= e.Interval {
		e.acc -= e.Interval
		e.step()
		fired++
	}
	return fired
}

func (e *Engine) step() {
	if e.Lock != nil {
		e.Lock.Lock()
		defer e.Lock.Unlock()
	}
	e.target.Tick()
	e.Ticks++
}

// Pending returns the time accumulated toward the next tick
func (e *Engine) Pending() time.Duration { return e.acc }

// Run drives Advance from a ticker until ctx is cancelled
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("engine started", "interval", e.Interval, "speed", e.Speed)

	ticker := time.NewTicker(e.pollInterval())
	defer ticker.Stop()

	last := e.now()
	var sinceSave uint64
	for {
		select {
		case <-ctx.Done():
			slog.Info("engine stopped", "ticks", e.Ticks)
			return nil
		case <-ticker.C:
			now := e.now()
			fired := e.Advance(now.Sub(last))
			last = now

			sinceSave += uint64(fired)
			if e.AutosaveEvery > 0 && sinceSave >= e.AutosaveEvery && e.OnAutosave != nil {
				sinceSave = 0
				if err := e.OnAutosave(ctx); err != nil {
					slog.Error("autosave failed", "error", err)
				}
			}
		}
	}
}

// pollInterval samples the clock a few times per tick so ticks stay close to
// their due time without busy looping
func (e *Engine) pollInterval() time.Duration {
	p := e.Interval / 4
	if p < 10*time.Millisecond {
		p = 10 * time.Millisecond
	}
	return p
}
