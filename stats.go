package phris

import (
	"sync"
	"sync/atomic"
	"time"
)

// Stats tracks the runtime counters shown on the dashboard and logged
// at shutdown.  Safe for concurrent use
type Stats struct {
	frames atomic.Int64
	alerts atomic.Int64
	people atomic.Int64
	start  time.Time

	// FPS is measured over a sliding one second window
	mu         sync.Mutex
	fps        float64
	winFrames  int
	winStarted time.Time
}

// NewStats returns a stats tracker with the runtime clock started
func NewStats() *Stats {
	now := time.Now()
	return &Stats{
		start:      now,
		winStarted: now,
	}
}

// FrameProcessed records a processed frame and updates the FPS window
func (s *Stats) FrameProcessed() int64 {

	n := s.frames.Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.winFrames++

	if elapsed := time.Since(s.winStarted).Seconds(); elapsed >= 1.0 {
		s.fps = float64(s.winFrames) / elapsed
		s.winFrames = 0
		s.winStarted = time.Now()
	}

	return n
}

// SetPeople records the number of people tracked in the current frame
func (s *Stats) SetPeople(n int) {
	s.people.Store(int64(n))
}

// AlertRaised increments the alert counter
func (s *Stats) AlertRaised() {
	s.alerts.Add(1)
}

// Frames returns the total number of frames processed
func (s *Stats) Frames() int64 {
	return s.frames.Load()
}

// Alerts returns the total number of alerts raised
func (s *Stats) Alerts() int64 {
	return s.alerts.Load()
}

// People returns the number of people in the last processed frame
func (s *Stats) People() int {
	return int(s.people.Load())
}

// FPS returns the processing rate over the last window
func (s *Stats) FPS() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.fps
}

// Runtime returns the elapsed time since startup
func (s *Stats) Runtime() time.Duration {
	return time.Since(s.start)
}
