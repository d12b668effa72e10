package transform

import "time"

// throttle decides which progress values are worth publishing: only new,
// higher percents, and no more often than once per interval.
type throttle struct {
	interval time.Duration
	now      func() time.Time
	last     int
	lastAt   time.Time
}

func newThrottle(interval time.Duration, now func() time.Time) *throttle {
	return &throttle{interval: interval, now: now}
}

func (t *throttle) ready(percent int) bool {
	if percent <= t.last {
		return false
	}
	at := t.now()
	if !t.lastAt.IsZero() && at.Sub(t.lastAt) < t.interval {
		return false
	}
	t.last = percent
	t.lastAt = at
	return true
}
