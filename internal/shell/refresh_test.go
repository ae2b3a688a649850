package shell

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualTimer is a controllable stand-in for time.AfterFunc so tests fire
// the refresh deterministically.
type manualTimer struct {
	fn      func()
	stopped bool
}

func (m *manualTimer) Stop() bool {
	m.stopped = true
	return !m.stopped
}

type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (c *manualClock) newTimer(_ time.Duration, fn func()) stoppableTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	timer := &manualTimer{fn: fn}
	c.timers = append(c.timers, timer)
	return timer
}

func (c *manualClock) fireLatest() {
	c.mu.Lock()
	timer := c.timers[len(c.timers)-1]
	c.mu.Unlock()
	timer.fn()
}

func newTestRefreshTimer(clock *manualClock, refresh func()) *SessionRefreshTimer {
	t := &SessionRefreshTimer{
		interval: time.Minute,
		refresh:  refresh,
		newTimer: clock.newTimer,
	}
	t.Start()
	return t
}

func TestSessionRefreshTimerFiresAndRearms(t *testing.T) {
	clock := &manualClock{}
	refreshes := 0

	timer := newTestRefreshTimer(clock, func() { refreshes++ })
	require.True(t, timer.Running())
	require.Len(t, clock.timers, 1)

	clock.fireLatest()
	assert.Equal(t, 1, refreshes)
	// The fire re-armed a new underlying timer before refreshing.
	assert.True(t, timer.Running())
	assert.Len(t, clock.timers, 2)

	clock.fireLatest()
	assert.Equal(t, 2, refreshes)
	assert.Len(t, clock.timers, 3)
}

func TestSessionRefreshTimerStartIsIdempotent(t *testing.T) {
	clock := &manualClock{}
	timer := newTestRefreshTimer(clock, func() {})

	timer.Start()
	timer.Start()
	assert.Len(t, clock.timers, 1, "starting a scheduled timer must not schedule another fire")
}

func TestSessionRefreshTimerStop(t *testing.T) {
	clock := &manualClock{}
	refreshes := 0
	timer := newTestRefreshTimer(clock, func() { refreshes++ })

	timer.Stop()
	assert.False(t, timer.Running())
	assert.True(t, clock.timers[0].stopped)

	// Stop then Start schedules a fresh fire.
	timer.Start()
	assert.True(t, timer.Running())
	assert.Len(t, clock.timers, 2)

	clock.fireLatest()
	assert.Equal(t, 1, refreshes)
}

// TestSessionRefreshTimerReadsTimeoutAtFireTime pins the contract that the
// refresh callback sees parameter changes made after construction.
func TestSessionRefreshTimerReadsTimeoutAtFireTime(t *testing.T) {
	clock := &manualClock{}

	var mu sync.Mutex
	timeout := 30 * time.Second
	var seen []time.Duration

	timer := newTestRefreshTimer(clock, func() {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, timeout)
	})
	defer timer.Stop()

	clock.fireLatest()

	mu.Lock()
	timeout = 90 * time.Second
	mu.Unlock()

	clock.fireLatest()

	require.Len(t, seen, 2)
	assert.Equal(t, 30*time.Second, seen[0])
	assert.Equal(t, 90*time.Second, seen[1])
}
