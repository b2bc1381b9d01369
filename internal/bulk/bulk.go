// Package bulk distinguishes a host-initiated "replace all metadata"
// operation from routine per-item updates. Such an operation produces many
// near-simultaneous show notifications without changing any provider
// identifiers; counting them inside a sliding window is what separates the
// two cases.
package bulk

import (
	"sync"
	"time"
)

// Detector is a sliding-window counter with its own trigger cooldown.
type Detector struct {
	mu sync.Mutex

	window    time.Duration
	threshold int
	cooldown  time.Duration

	timestamps  []time.Time
	lastTrigger time.Time
}

func New(window time.Duration, threshold int, cooldown time.Duration) *Detector {
	return &Detector{window: window, threshold: threshold, cooldown: cooldown}
}

// Observe records one routine show-update at now and reports whether a
// full-catalog sweep should be triggered. On trigger the window is cleared
// so the burst cannot immediately re-trigger.
func (d *Detector) Observe(now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	cutoff := now.Add(-d.window)
	kept := d.timestamps[:0]
	for _, ts := range d.timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	d.timestamps = append(kept, now)

	if len(d.timestamps) < d.threshold {
		return false
	}
	if !d.lastTrigger.IsZero() && now.Sub(d.lastTrigger) < d.cooldown {
		return false
	}

	d.lastTrigger = now
	d.timestamps = d.timestamps[:0]
	return true
}

// Pending reports the current window occupancy (diagnostics).
func (d *Detector) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timestamps)
}

// Reset clears the window and the trigger cooldown.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.timestamps = nil
	d.lastTrigger = time.Time{}
}
