// Package session tracks the single live quiz attempt per user.
//
// Correctness never depends on the background sweep: every operation
// re-derives liveness from the deadline at the moment of access, so an entry
// the sweep has not reclaimed yet still reads as absent once expired.
package session

import (
	"sync"
	"time"

	"quiz-attempt-service/internal/domain"
)

// Attempt is one live timed quiz attempt.
type Attempt struct {
	OwnerKey  string
	QuizID    string
	TimeLimit time.Duration
	Deadline  time.Time
}

// StartedAt is the instant the attempt began, recovered from the deadline.
func (a Attempt) StartedAt() time.Time {
	return a.Deadline.Add(-a.TimeLimit)
}

// Tracker enforces at most one unexpired attempt per owner key. Entries live
// in a sync.Map with per-key compare-and-swap discipline; independent keys
// never contend.
type Tracker struct {
	attempts sync.Map // owner key -> *Attempt
	now      func() time.Time
}

// New returns a tracker using the wall clock.
func New() *Tracker {
	return NewWithClock(time.Now)
}

// NewWithClock allows deterministic deadlines in tests.
func NewWithClock(now func() time.Time) *Tracker {
	return &Tracker{now: now}
}

// Start installs a new attempt unless an unexpired one already exists.
// Concurrent starts for the same owner resolve to exactly one winner.
func (t *Tracker) Start(ownerKey, quizID string, timeLimit time.Duration) (Attempt, error) {
	for {
		now := t.now()
		fresh := &Attempt{
			OwnerKey:  ownerKey,
			QuizID:    quizID,
			TimeLimit: timeLimit,
			Deadline:  now.Add(timeLimit),
		}

		existing, loaded := t.attempts.LoadOrStore(ownerKey, fresh)
		if !loaded {
			return *fresh, nil
		}

		current := existing.(*Attempt)
		if now.Before(current.Deadline) {
			return Attempt{}, domain.ErrAttemptActive
		}
		// The resident entry is expired; replace it. Losing the swap means a
		// concurrent start or sweep got there first, so re-evaluate.
		if t.attempts.CompareAndSwap(ownerKey, existing, fresh) {
			return *fresh, nil
		}
	}
}

// Stop removes the owner's attempt. Absent or expired attempts fail with
// ErrNoActiveAttempt; an expired entry that loses a removal race is
// indistinguishable from one the sweep already reclaimed.
func (t *Tracker) Stop(ownerKey string) error {
	_, err := t.take(ownerKey)
	return err
}

// Peek returns the owner's live attempt without mutating state.
func (t *Tracker) Peek(ownerKey string) (Attempt, bool) {
	existing, ok := t.attempts.Load(ownerKey)
	if !ok {
		return Attempt{}, false
	}
	current := existing.(*Attempt)
	if !t.now().Before(current.Deadline) {
		return Attempt{}, false
	}
	return *current, true
}

// SubmitAndClear atomically reads and removes the owner's live attempt so a
// concurrent stop or sweep cannot slip between the read and the delete.
// Scoring depends on the returned attempt's start time.
func (t *Tracker) SubmitAndClear(ownerKey string) (Attempt, error) {
	return t.take(ownerKey)
}

func (t *Tracker) take(ownerKey string) (Attempt, error) {
	for {
		existing, ok := t.attempts.Load(ownerKey)
		if !ok {
			return Attempt{}, domain.ErrNoActiveAttempt
		}
		current := existing.(*Attempt)
		if !t.now().Before(current.Deadline) {
			// Expired entries read as absent; reclaim opportunistically.
			t.attempts.CompareAndDelete(ownerKey, existing)
			return Attempt{}, domain.ErrNoActiveAttempt
		}
		if t.attempts.CompareAndDelete(ownerKey, existing) {
			return *current, nil
		}
		// Lost a race against another stop/submit or a replacing start.
	}
}

// Sweep removes every expired entry and reports how many were reclaimed. This
// is memory hygiene for abandoned attempts, not a liveness check.
func (t *Tracker) Sweep() int {
	now := t.now()
	removed := 0
	t.attempts.Range(func(key, value any) bool {
		if !now.Before(value.(*Attempt).Deadline) {
			if t.attempts.CompareAndDelete(key, value) {
				removed++
			}
		}
		return true
	})
	return removed
}

// StartJanitor sweeps on the given interval until ctx is done.
func (t *Tracker) StartJanitor(ctx DoneContext, every time.Duration) {
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
				t.Sweep()
			}
		}
	}()
}

// DoneContext is the slice of context.Context the janitor needs.
type DoneContext interface {
	Done() <-chan struct{}
}
