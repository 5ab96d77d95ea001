// Package tracking manages the elapsed-time stopwatch for a task and merges
// finished sessions into the task's accumulated actual hours through an
// external persistence callback.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/paraflow/paraflow/internal/clock"
)

type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StatePaused  State = "paused"
)

// Session state transitions: idle → running ↔ paused; stop returns to idle
// from either active state.
var validSessionTransitions = map[State]map[State]bool{
	StateIdle: {
		StateRunning: true,
	},
	StateRunning: {
		StatePaused: true,
		StateIdle:   true,
	},
	StatePaused: {
		StateRunning: true,
		StateIdle:    true,
	},
}

func ValidateTransition(from, to State) error {
	allowed, ok := validSessionTransitions[from]
	if !ok {
		return fmt.Errorf("unknown session state %q", from)
	}
	if !allowed[to] {
		return fmt.Errorf("invalid session transition: %q → %q", from, to)
	}
	return nil
}

var (
	ErrNoActiveSession = errors.New("no active session")
	ErrSessionActive   = errors.New("session already active")
	ErrSaveInFlight    = errors.New("save already in flight")
)

// PersistFunc saves a task's new absolute actual-hours total. The tracker
// imposes no timeout and never retries; both are the caller's concern.
type PersistFunc func(ctx context.Context, taskID string, actualHours float64) error

// TickFunc receives the current elapsed time on the 1-second display
// cadence while the session is running.
type TickFunc func(elapsed time.Duration)

// Tracker is the stopwatch session manager. At most one session exists at a
// time; elapsed time survives pause/resume and a failed save.
type Tracker struct {
	clk     clock.Clock
	persist PersistFunc
	onTick  TickFunc

	mu           sync.Mutex
	state        State
	taskID       string
	baseHours    float64       // task's actual hours before this session
	accumulated  time.Duration // frozen elapsed time from earlier segments
	segmentStart time.Time     // start of the current running segment
	saving       bool

	cancelTick context.CancelFunc
	tickWG     sync.WaitGroup
}

func NewTracker(clk clock.Clock, persist PersistFunc, onTick TickFunc) *Tracker {
	return &Tracker{
		clk:     clk,
		persist: persist,
		onTick:  onTick,
		state:   StateIdle,
	}
}

// State returns the current session state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Elapsed returns the session's elapsed time so far; zero when idle.
func (t *Tracker) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsedLocked()
}

func (t *Tracker) elapsedLocked() time.Duration {
	elapsed := t.accumulated
	if t.state == StateRunning {
		elapsed += t.clk.Now().Sub(t.segmentStart)
	}
	return elapsed
}

// Start opens a session for the task. currentHours is the task's actual
// hours before the session; the final save adds the session on top of it.
func (t *Tracker) Start(taskID string, currentHours float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.saving {
		return ErrSaveInFlight
	}
	if t.state != StateIdle {
		return fmt.Errorf("%w: %s", ErrSessionActive, t.taskID)
	}

	t.state = StateRunning
	t.taskID = taskID
	t.baseHours = currentHours
	t.accumulated = 0
	t.segmentStart = t.clk.Now()
	t.startTickLocked()
	return nil
}

// Pause freezes the elapsed-time display. The tick is cancelled
// synchronously: after Pause returns, no further tick fires.
func (t *Tracker) Pause() error {
	t.mu.Lock()
	if t.saving {
		t.mu.Unlock()
		return ErrSaveInFlight
	}
	if err := ValidateTransition(t.state, StatePaused); err != nil {
		t.mu.Unlock()
		return err
	}
	t.accumulated += t.clk.Now().Sub(t.segmentStart)
	t.state = StatePaused
	cancel := t.cancelTick
	t.cancelTick = nil
	t.mu.Unlock()

	t.stopTick(cancel)
	return nil
}

// Resume continues a paused session; elapsed time picks up where Pause
// froze it.
func (t *Tracker) Resume() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.saving {
		return ErrSaveInFlight
	}
	if t.state != StatePaused {
		if t.state == StateIdle {
			return ErrNoActiveSession
		}
		return ValidateTransition(t.state, StateRunning)
	}

	t.state = StateRunning
	t.segmentStart = t.clk.Now()
	t.startTickLocked()
	return nil
}

// Stop ends the session and persists baseHours + elapsed/3600. The tick is
// cancelled before the persistence call begins. On success the session is
// discarded and the tracker returns to idle; on failure the session is kept
// in its prior state so the caller can retry without losing elapsed time.
// A Stop while idle is a no-op reported as ErrNoActiveSession.
func (t *Tracker) Stop(ctx context.Context) error {
	t.mu.Lock()
	if t.saving {
		t.mu.Unlock()
		return ErrSaveInFlight
	}
	if t.state == StateIdle {
		t.mu.Unlock()
		return ErrNoActiveSession
	}

	prior := t.state
	taskID := t.taskID
	sessionHours := t.elapsedLocked().Hours()
	newTotal := t.baseHours + sessionHours
	cancel := t.cancelTick
	t.cancelTick = nil
	t.saving = true
	t.mu.Unlock()

	// No tick may fire once the stop decision is made.
	t.stopTick(cancel)

	err := t.persist(ctx, taskID, newTotal)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.saving = false

	if err != nil {
		// Session survives; a running segment keeps accruing from its
		// original start so no elapsed time is dropped.
		if prior == StateRunning {
			t.startTickLocked()
		}
		return fmt.Errorf("persist session for task %s: %w", taskID, err)
	}

	t.state = StateIdle
	t.taskID = ""
	t.baseHours = 0
	t.accumulated = 0
	return nil
}

// SetManualHours bypasses the stopwatch and persists an absolute
// actual-hours value. Independent of session state.
func (t *Tracker) SetManualHours(ctx context.Context, taskID string, hours float64) error {
	if hours < 0 {
		return fmt.Errorf("manual hours must be non-negative, got %v", hours)
	}
	if err := t.persist(ctx, taskID, hours); err != nil {
		return fmt.Errorf("persist manual hours for task %s: %w", taskID, err)
	}
	return nil
}

// startTickLocked launches the 1-second display tick for the current
// running segment. Caller holds t.mu.
func (t *Tracker) startTickLocked() {
	if t.onTick == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.cancelTick = cancel
	t.tickWG.Add(1)
	go func() {
		defer t.tickWG.Done()
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.onTick(t.Elapsed())
			}
		}
	}()
}

// stopTick cancels the tick goroutine and waits for it to exit. Must be
// called without t.mu held: the tick callback reads Elapsed.
func (t *Tracker) stopTick(cancel context.CancelFunc) {
	if cancel == nil {
		return
	}
	cancel()
	t.tickWG.Wait()
}
