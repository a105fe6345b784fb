package session

import (
	"sync"
	"time"
)

// DefaultSplashDelay is how long the splash screen stays up.
const DefaultSplashDelay = 2 * time.Second

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. time.AfterFunc satisfies it through
// RealScheduler; tests substitute a manual one.
type Scheduler func(d time.Duration, f func()) Timer

// RealScheduler schedules with the runtime timer.
func RealScheduler(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SplashTimer flips to SplashComplete once, a fixed delay after Start.
type SplashTimer struct {
	delay      time.Duration
	schedule   Scheduler
	onComplete func()

	mu      sync.Mutex
	state   SplashState
	timer   Timer
	started bool
	stopped bool
}

// NewSplashTimer creates a timer that calls onComplete (outside any lock)
// when the delay elapses. A nil schedule means RealScheduler.
func NewSplashTimer(delay time.Duration, schedule Scheduler, onComplete func()) *SplashTimer {
	if schedule == nil {
		schedule = RealScheduler
	}
	if onComplete == nil {
		onComplete = func() {}
	}
	return &SplashTimer{delay: delay, schedule: schedule, onComplete: onComplete}
}

// Start arms the timer. Calling it again, or after Stop, does nothing.
func (s *SplashTimer) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true
	s.timer = s.schedule(s.delay, s.fire)
}

// Stop cancels a pending timer. A fire that races with Stop is ignored.
func (s *SplashTimer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
}

// State returns the current splash state.
func (s *SplashTimer) State() SplashState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *SplashTimer) fire() {
	s.mu.Lock()
	if s.stopped || s.state == SplashComplete {
		s.mu.Unlock()
		return
	}
	s.state = SplashComplete
	s.mu.Unlock()
	s.onComplete()
}
