// Package trigger implements the debounced capture-trigger gate. A
// hardware button tends to bounce and users tend to mash it; the gate
// collapses a flurry of calls inside the cooldown window to one accepted
// trigger.
package trigger

import (
	"sync"
	"time"
)

// DefaultCooldown is the minimum interval between accepted triggers.
const DefaultCooldown = 3 * time.Second

// Gate records a monotonically non-decreasing trigger timestamp in Unix
// milliseconds. It is a pure debounce, not a queue: rejected calls have no
// side effect beyond returning the previously stored timestamp.
type Gate struct {
	mu       sync.Mutex
	cooldown time.Duration
	last     int64 // unix millis of the last accepted trigger, 0 before the first

	now func() time.Time // clock, replaceable in tests
}

// NewGate creates a gate with the given cooldown; zero or negative means
// DefaultCooldown.
func NewGate(cooldown time.Duration) *Gate {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Gate{
		cooldown: cooldown,
		now:      time.Now,
	}
}

// Fire attempts to accept a trigger. If the elapsed time since the last
// accepted trigger is at least the cooldown, the stored timestamp advances
// to the current wall-clock time and is returned along with true.
// Otherwise the prior timestamp is returned unchanged with false.
func (g *Gate) Fire() (int64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now().UnixMilli()
	if g.last == 0 || now-g.last >= g.cooldown.Milliseconds() {
		g.last = now
		return now, true
	}
	return g.last, false
}

// Peek returns the current stored timestamp without mutating it. Pollers
// compare it against the last value they observed; any increase is a new
// trigger signal.
func (g *Gate) Peek() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}
