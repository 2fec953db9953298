package snake

import (
	"sync"
	"time"
)

// Timer is a cancellable pending callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs a callback once after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules on the wall clock via time.AfterFunc.
type RealScheduler struct{}

// AfterFunc implements Scheduler.
func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualScheduler queues callbacks until Fire is called.
// Tests use it to drive an engine deterministically.
type ManualScheduler struct {
	mu      sync.Mutex
	pending []*manualTimer
}

type manualTimer struct {
	s       *ManualScheduler
	delay   time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// NewManualScheduler creates an empty manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc implements Scheduler.
func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{s: s, delay: d, f: f}
	s.pending = append(s.pending, t)
	return t
}

// Pending returns the delays of callbacks that are neither stopped nor fired.
func (s *ManualScheduler) Pending() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.compactLocked()
	delays := make([]time.Duration, 0, len(s.pending))
	for _, t := range s.pending {
		delays = append(delays, t.delay)
	}
	return delays
}

// Fire runs the oldest live callback. Reports false when nothing is pending.
func (s *ManualScheduler) Fire() bool {
	s.mu.Lock()
	s.compactLocked()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return false
	}
	t := s.pending[0]
	s.pending = s.pending[1:]
	t.fired = true
	s.mu.Unlock()

	t.f()
	return true
}

func (s *ManualScheduler) compactLocked() {
	live := s.pending[:0]
	for _, t := range s.pending {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	s.pending = live
}
