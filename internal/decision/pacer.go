package decision

import "time"

// DefaultTickInterval is the read/solve cadence.
const DefaultTickInterval = 500 * time.Millisecond

// Pacer turns a fast frame loop into fixed-interval ticks.
type Pacer struct {
	interval time.Duration
	next     time.Time
}

// NewPacer returns a pacer whose first Due call fires immediately.
func NewPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Pacer{interval: interval}
}

// Due reports whether a tick should run at now, and if so schedules the
// next one. Missed intervals are not replayed.
func (p *Pacer) Due(now time.Time) bool {
	if now.Before(p.next) {
		return false
	}
	p.next = now.Add(p.interval)
	return true
}

// Interval returns the tick interval.
func (p *Pacer) Interval() time.Duration { return p.interval }

// SetInterval changes the interval from the next scheduled tick on.
func (p *Pacer) SetInterval(d time.Duration) {
	if d > 0 {
		p.interval = d
	}
}
