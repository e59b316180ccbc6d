package service

import (
	"sync"
	"time"

	"github.com/wricardo/minesweeper/game/engine"
)

// Timer measures the elapsed play time of one game.
// It starts on the first command and stops when the game ends.
type Timer struct {
	mu        sync.Mutex
	now       func() time.Time
	startedAt time.Time
	stoppedAt time.Time
	started   bool
	running   bool
}

// NewTimer creates a stopped timer using the wall clock
func NewTimer() *Timer {
	return NewTimerWithClock(time.Now)
}

// NewTimerWithClock creates a stopped timer reading time from now
func NewTimerWithClock(now func() time.Time) *Timer {
	return &Timer{now: now}
}

// Start begins measuring. Starting a started timer has no effect.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return
	}
	t.started = true
	t.running = true
	t.startedAt = t.now()
}

// Stop freezes the elapsed time
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}
	t.running = false
	t.stoppedAt = t.now()
}

// Reset returns the timer to zero for a new game
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.started = false
	t.running = false
	t.startedAt = time.Time{}
	t.stoppedAt = time.Time{}
}

// Running reports whether the timer is counting
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Elapsed returns the measured play time
func (t *Timer) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case !t.started:
		return 0
	case t.running:
		return t.now().Sub(t.startedAt)
	default:
		return t.stoppedAt.Sub(t.startedAt)
	}
}

// Snapshot returns the timer state in whole seconds
func (t *Timer) Snapshot() TimerInfo {
	elapsed := t.Elapsed()
	return TimerInfo{
		Running:        t.Running(),
		ElapsedSeconds: int(elapsed / time.Second),
	}
}

// Apply starts or stops the timer according to board events
func (t *Timer) Apply(events []engine.Event) {
	for _, ev := range events {
		switch ev.Type {
		case engine.EventTimerStarted:
			t.Start()
		case engine.EventTimerStopped:
			t.Stop()
		}
	}
}
