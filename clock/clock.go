// Package clock maps wall-clock time to presentation timestamps and
// enforces the per-transport rate limits DMX and render both need
// (§4.A Frame Clock).
package clock

import (
	"sync"
	"time"
)

// Clock is a monotonic nanosecond clock anchored at creation time. It
// never reports a value smaller than a previously reported one, even if
// the OS clock adjusts underneath it, because it is built on
// time.Time's monotonic reading (time.Since never goes backward on a
// single time.Time).
type Clock struct {
	start time.Time
}

// New creates a Clock anchored at the current instant.
func New() *Clock {
	return &Clock{start: time.Now()}
}

// NowNS returns monotonic nanoseconds since the clock was created.
func (c *Clock) NowNS() uint64 {
	return uint64(time.Since(c.start).Nanoseconds())
}

// PTSForFrame returns the presentation timestamp of frame frameIdx at
// the given fps: frameIdx * (1e9 / fps).
func PTSForFrame(frameIdx uint64, fps int) uint64 {
	if fps <= 0 {
		return 0
	}
	interval := uint64(time.Second) / uint64(fps)
	return frameIdx * interval
}

// Ticker produces presentation timestamps at a fixed fps, resynchronizing
// when the caller falls behind rather than bursting to catch up.
type Ticker struct {
	clock    *Clock
	interval uint64 // ns
	next     uint64 // next tick boundary, in clock ns
}

// NewTicker returns a Ticker driving at fps ticks/sec, rooted at clock.
func (c *Clock) NewTicker(fps int) *Ticker {
	interval := uint64(time.Second) / uint64(fps)
	if interval == 0 {
		interval = 1
	}
	return &Ticker{clock: c, interval: interval, next: interval}
}

// WaitNextTick blocks until the next tick boundary and returns its PTS
// in nanoseconds. If the caller is two or more intervals behind
// schedule, the ticker resynchronizes to floor(now/interval)+1 instead
// of delivering a burst of overdue ticks (§4.A).
func (t *Ticker) WaitNextTick() uint64 {
	now := t.clock.NowNS()
	if now > t.next && now-t.next >= t.interval {
		// caller is >= 2 intervals behind schedule; resync instead of
		// delivering a burst of overdue ticks.
		k := now/t.interval + 1
		t.next = k * t.interval
	}

	target := t.next
	if now < target {
		sleepUntil(t.clock, target)
	}
	pts := t.next
	t.next += t.interval
	return pts
}

func sleepUntil(c *Clock, targetNS uint64) {
	for {
		now := c.NowNS()
		if now >= targetNS {
			return
		}
		remaining := time.Duration(targetNS-now) * time.Nanosecond
		if remaining > 2*time.Millisecond {
			time.Sleep(remaining - time.Millisecond)
			continue
		}
		time.Sleep(remaining)
		return
	}
}

// RateLimiter enforces "at most once per interval" for a keyed resource
// (e.g. a (transport, universe) pair), matching the 40 Hz (>=25ms) DMX
// send gate in §4.F and the general invariant in §8.2.
type RateLimiter struct {
	clock    *Clock
	interval uint64 // ns

	mu       sync.Mutex
	lastSend map[any]uint64
}

// NewRateLimiter returns a limiter allowing one event per interval per
// key, timed against clock.
func (c *Clock) NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{
		clock:    c,
		interval: uint64(interval.Nanoseconds()),
		lastSend: make(map[any]uint64),
	}
}

// Allow reports whether an event for key may proceed now, and if so
// records the timestamp. No lock is held during any caller I/O: Allow
// only touches its own map.
func (r *RateLimiter) Allow(key any) bool {
	now := r.clock.NowNS()
	r.mu.Lock()
	defer r.mu.Unlock()
	last, ok := r.lastSend[key]
	if ok && now-last < r.interval {
		return false
	}
	r.lastSend[key] = now
	return true
}
