// Package ratelimit implements a fixed-window token bucket per client key.
//
// Buckets are replaced, never reset in place: once a bucket's window has
// elapsed the next request swaps in a fresh full bucket, so a counter driven
// negative during an exhausted window can never bleed into the next one.
package ratelimit

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultMaxRequests is the bucket capacity per window.
	DefaultMaxRequests = 30
	// DefaultWindow is the fixed refill window.
	DefaultWindow = 60 * time.Second
)

type bucket struct {
	tokens      atomic.Int32
	windowStart time.Time
}

func (b *bucket) expired(now time.Time, window time.Duration) bool {
	return now.Sub(b.windowStart) > window
}

// Limiter maps client keys to token buckets. Allocation and window-rollover
// races resolve to a single winner via compare-and-swap on the key map.
type Limiter struct {
	buckets sync.Map // key -> *bucket
	max     int32
	window  time.Duration
	now     func() time.Time
}

// New returns a limiter with the given capacity and window, falling back to
// the defaults for non-positive values.
func New(maxRequests int, window time.Duration) *Limiter {
	return NewWithClock(maxRequests, window, time.Now)
}

// NewWithClock allows deterministic windows in tests.
func NewWithClock(maxRequests int, window time.Duration, now func() time.Time) *Limiter {
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{max: int32(maxRequests), window: window, now: now}
}

func (l *Limiter) newBucket(now time.Time) *bucket {
	b := &bucket{windowStart: now}
	b.tokens.Store(l.max)
	return b
}

// Allow consumes one token for key and reports whether the request may
// proceed. Exhaustion is a plain false, not an error; the caller owns the
// rejection surface.
func (l *Limiter) Allow(key string) bool {
	now := l.now()
	for {
		existing, ok := l.buckets.Load(key)
		if !ok {
			fresh := l.newBucket(now)
			actual, loaded := l.buckets.LoadOrStore(key, fresh)
			if !loaded {
				return fresh.tokens.Add(-1) >= 0
			}
			existing = actual
		}

		b := existing.(*bucket)
		if b.expired(now, l.window) {
			fresh := l.newBucket(now)
			if !l.buckets.CompareAndSwap(key, existing, fresh) {
				// Another request rolled the window; retry against its bucket.
				continue
			}
			b = fresh
		}
		return b.tokens.Add(-1) >= 0
	}
}

// Sweep evicts expired buckets and reports how many were removed. Traffic on
// an expired bucket replaces it inline, so anything still expired here has
// been idle since its window lapsed. Eviction is cache hygiene only.
func (l *Limiter) Sweep() int {
	now := l.now()
	removed := 0
	l.buckets.Range(func(key, value any) bool {
		if value.(*bucket).expired(now, l.window) {
			if l.buckets.CompareAndDelete(key, value) {
				removed++
			}
		}
		return true
	})
	return removed
}

// StartJanitor evicts expired buckets on the given interval until ctx is done.
func (l *Limiter) StartJanitor(ctx DoneContext, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Sweep()
			}
		}
	}()
}

// DoneContext is the slice of context.Context the janitor needs.
type DoneContext interface {
	Done() <-chan struct{}
}
