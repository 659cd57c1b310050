package morse

import (
	"sync"
	"time"
)

// Spacer emits a single trailing space when the key stays idle after a
// release. Arm schedules the emission; a new press-start must call Cancel,
// and any later Arm supersedes a pending one. Firing after Stop is a no-op,
// so a disconnect racing the timer cannot emit into a dead session.
type Spacer struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	emit    func(Signal)
}

// NewSpacer creates a spacer that calls emit with Space when it fires.
func NewSpacer(emit func(Signal)) *Spacer {
	return &Spacer{emit: emit}
}

// Arm schedules a space after the given blank delay, replacing any pending
// one. The delay is clamped to the supported blank-timing range.
func (s *Spacer) Arm(after time.Duration) {
	after = ClampBlankDelay(after)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(after, s.fire)
}

// Cancel drops any pending space without emitting.
func (s *Spacer) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Stop cancels permanently. Subsequent Arm calls do nothing.
func (s *Spacer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Spacer) fire() {
	s.mu.Lock()
	if s.stopped || s.timer == nil {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.mu.Unlock()

	s.emit(Space)
}
