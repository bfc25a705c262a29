// Package schedule runs periodic tasks cooperatively on the caller's
// goroutine.
//
// A task is re-armed only after its callback returns: the next deadline is
// the clock reading after completion plus the period. A slow tick therefore
// delays the following one instead of queueing a burst, and a task can never
// overlap with itself or with any other task of the same scheduler.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrInvalidTask is returned by Add for a task without a callback or
	// with a non-positive period.
	ErrInvalidTask = errors.New("schedule: invalid task")

	// ErrDuplicateTask is returned by Add when the name is already taken.
	ErrDuplicateTask = errors.New("schedule: duplicate task")
)

// Task is a named periodic callback.
type Task struct {
	Name   string
	Period time.Duration
	// Immediate makes the first run due at Add time instead of one period later.
	Immediate bool
	Run       func(now time.Time)
}

// TaskStats is a snapshot of one task's bookkeeping.
type TaskStats struct {
	Name         string
	Period       time.Duration
	Runs         uint64
	Next         time.Time
	LastDuration time.Duration
}

type entry struct {
	task    Task
	next    time.Time
	runs    uint64
	lastDur time.Duration
}

// Scheduler holds a set of periodic tasks.
type Scheduler struct {
	clock Clock

	mu      sync.Mutex
	entries []*entry
	polling bool
}

// New creates a scheduler on clock. A nil clock uses RealClock.
func New(clock Clock) *Scheduler {
	if clock == nil {
		clock = RealClock{}
	}
	return &Scheduler{clock: clock}
}

// Clock returns the scheduler's time source.
func (s *Scheduler) Clock() Clock {
	return s.clock
}

// Add registers t. Tasks run in the order they were added when several are
// due on the same poll.
func (s *Scheduler) Add(t Task) error {
	if t.Run == nil || t.Period <= 0 {
		return fmt.Errorf("%w: %q", ErrInvalidTask, t.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.task.Name == t.Name {
			return fmt.Errorf("%w: %q", ErrDuplicateTask, t.Name)
		}
	}

	next := s.clock.Now()
	if !t.Immediate {
		next = next.Add(t.Period)
	}
	s.entries = append(s.entries, &entry{task: t, next: next})
	return nil
}

// Remove drops the named task. It reports whether the task existed.
func (s *Scheduler) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if e.task.Name == name {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of registered tasks.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Poll runs every task due at now and returns how many ran. A Poll issued
// from inside a task callback runs nothing.
func (s *Scheduler) Poll(now time.Time) int {
	s.mu.Lock()
	if s.polling {
		s.mu.Unlock()
		return 0
	}
	s.polling = true
	due := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		if !now.Before(e.next) {
			due = append(due, e)
		}
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.polling = false
		s.mu.Unlock()
	}()

	for _, e := range due {
		start := s.clock.Now()
		e.task.Run(now)
		done := s.clock.Now()

		s.mu.Lock()
		e.runs++
		e.lastDur = done.Sub(start)
		e.next = done.Add(e.task.Period)
		s.mu.Unlock()
	}
	return len(due)
}

// NextDeadline returns the earliest pending deadline. ok is false when no
// task is registered.
func (s *Scheduler) NextDeadline() (next time.Time, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if !ok || e.next.Before(next) {
			next, ok = e.next, true
		}
	}
	return next, ok
}

// Stats returns per-task bookkeeping in registration order.
func (s *Scheduler) Stats() []TaskStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := make([]TaskStats, 0, len(s.entries))
	for _, e := range s.entries {
		stats = append(stats, TaskStats{
			Name:         e.task.Name,
			Period:       e.task.Period,
			Runs:         e.runs,
			Next:         e.next,
			LastDuration: e.lastDur,
		})
	}
	return stats
}

// idleWait bounds the sleep of Run when no task is registered.
const idleWait = 50 * time.Millisecond

// Run polls until ctx is done, sleeping until the earliest deadline between
// polls. It returns nil when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		// Cancellation wins over a due tick.
		if ctx.Err() != nil {
			return nil
		}
		s.Poll(s.clock.Now())

		wait := idleWait
		if next, ok := s.NextDeadline(); ok {
			wait = next.Sub(s.clock.Now())
			if wait < 0 {
				wait = 0
			}
		}
		timer.Reset(wait)
	}
}
