/*
Package alert raises notifications when people reach a critical risk
score.  Alerts are rate limited so a person standing in a danger zone
produces one alert per second rather than one per frame, and fan out to
pluggable sinks such as the structured log or an HTTP webhook.
*/
package alert

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Person identifies one critical person within an alert event
type Person struct {
	// ID is the person's track ID
	ID int `json:"id"`
	// Score is the risk score that triggered the alert
	Score int `json:"score"`
	// Zone the person occupies
	Zone string `json:"zone"`
}

// Event is a single alert covering everyone critical in the frame
type Event struct {
	// Time the alert was raised
	Time time.Time `json:"time"`
	// People at critical risk
	People []Person `json:"people"`
}

// Sink delivers an alert event to a destination
type Sink interface {
	Send(ctx context.Context, ev Event) error
}

// Manager rate limits alert events and fans them out to the configured
// sinks.  Sink failures are logged and do not block the pipeline
type Manager struct {
	limiter *rate.Limiter
	sinks   []Sink
	total   atomic.Int64
	log     *zap.Logger
}

// NewManager returns a manager that emits at most one alert per the
// given interval
func NewManager(interval time.Duration, log *zap.Logger, sinks ...Sink) *Manager {
	return &Manager{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		sinks:   sinks,
		log:     log,
	}
}

// Notify raises an alert for the event unless one was raised within the
// rate limit interval.  Returns true when the alert was emitted
func (m *Manager) Notify(ctx context.Context, ev Event) bool {

	if len(ev.People) == 0 {
		return false
	}

	if !m.limiter.Allow() {
		return false
	}

	m.total.Add(1)

	for _, sink := range m.sinks {
		if err := sink.Send(ctx, ev); err != nil {
			m.log.Warn("alert sink failed",
				zap.Error(err),
				zap.Time("event_time", ev.Time),
			)
		}
	}

	return true
}

// Total returns the number of alerts emitted since startup
func (m *Manager) Total() int64 {
	return m.total.Load()
}
