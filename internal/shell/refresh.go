package shell

import (
	"sync"
	"time"
)

// stoppableTimer is the slice of *time.Timer the refresh timer needs.
// Tests substitute a manual implementation to fire deterministically.
type stoppableTimer interface {
	Stop() bool
}

// SessionRefreshTimer periodically invokes a refresh callback so that
// long-lived remote sessions never expire while the operator is away from
// the keyboard. The timer is one-shot and re-arms itself on each fire, which
// keeps a slow refresh from stacking up behind the next interval.
type SessionRefreshTimer struct {
	mu       sync.Mutex
	interval time.Duration
	timer    stoppableTimer
	running  bool
	refresh  func()
	newTimer func(time.Duration, func()) stoppableTimer
}

// NewSessionRefreshTimer creates and starts a refresh timer. The refresh
// callback owns its own locking and timeout lookup so that it always reads
// the values current at fire time, not at construction time.
func NewSessionRefreshTimer(interval time.Duration, refresh func()) *SessionRefreshTimer {
	t := &SessionRefreshTimer{
		interval: interval,
		refresh:  refresh,
		newTimer: func(d time.Duration, f func()) stoppableTimer {
			return time.AfterFunc(d, f)
		},
	}
	t.Start()
	return t
}

// Start schedules the next fire if the timer is idle. Starting a scheduled
// timer is a no-op.
func (t *SessionRefreshTimer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.startLocked()
}

func (t *SessionRefreshTimer) startLocked() {
	if t.running {
		return
	}
	t.timer = t.newTimer(t.interval, t.fire)
	t.running = true
}

// fire re-arms the timer before refreshing, so a panic or long refresh
// never leaves the sessions without a next scheduled check.
func (t *SessionRefreshTimer) fire() {
	t.mu.Lock()
	t.running = false
	t.startLocked()
	t.mu.Unlock()

	t.refresh()
}

// Stop cancels the pending fire and returns the timer to idle.
func (t *SessionRefreshTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.running = false
}

// Running reports whether a fire is currently scheduled.
func (t *SessionRefreshTimer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}
