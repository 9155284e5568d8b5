package alertstate

import (
	"sync"
	"time"

	"GoldSentinel/internal/model"
)

// Deduplicator remembers the last dispatched (level, direction) pair and
// suppresses an identical repeat. Only one pair is remembered, and it lives
// in memory for the lifetime of the process.
type Deduplicator struct {
	mu   sync.Mutex
	last model.LastAlert
	now  func() time.Time
}

// NewDeduplicator creates an empty Deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{now: time.Now}
}

// ShouldSuppress reports whether (level, direction) equals the recorded pair.
func (d *Deduplicator) ShouldSuppress(level float64, direction model.Signal) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.matches(level, direction)
}

// Record overwrites the remembered pair unconditionally.
func (d *Deduplicator) Record(level float64, direction model.Signal) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record(level, direction)
}

// Gate runs send and records the pair while holding the lock, unless the pair
// is suppressed. It returns false when suppressed. Holding the lock across
// check, send and record keeps two concurrent cycles from both passing the check.
func (d *Deduplicator) Gate(level float64, direction model.Signal, send func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.matches(level, direction) {
		return false
	}
	send()
	d.record(level, direction)
	return true
}

// Last returns a copy of the remembered pair.
func (d *Deduplicator) Last() model.LastAlert {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

func (d *Deduplicator) matches(level float64, direction model.Signal) bool {
	return d.last.Set && d.last.Level == level && d.last.Direction == direction
}

func (d *Deduplicator) record(level float64, direction model.Signal) {
	d.last = model.LastAlert{Level: level, Direction: direction, Set: true, At: d.now()}
}
