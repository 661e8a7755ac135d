/*
Package risk scores each tracked person on a 0-100 danger scale from
six weighted factors: the zone they occupy, how long they have dwelled
in it, their movement speed and acceleration, their body posture, and
their proximity to the frame edges while inside a zone.  Scores feed
the alert manager and the video overlay.
*/
package risk

import (
	"image"
	"sync"
	"time"
)

// Status buckets a risk score for display and alerting
type Status int

const (
	Safe Status = iota
	Warning
	Critical
)

// Status thresholds on the 0-100 risk scale
const (
	warningScore  = 30
	criticalScore = 60
)

// String returns the status name as shown on the overlay
func (s Status) String() string {
	switch s {
	case Warning:
		return "WARNING"
	case Critical:
		return "CRITICAL"
	default:
		return "SAFE"
	}
}

// Trend indicates which way a person's risk is heading over their last
// few assessments
type Trend int

const (
	Stable Trend = iota
	Increasing
	Decreasing
)

// String returns the trend with its direction arrow for the overlay
func (t Trend) String() string {
	switch t {
	case Increasing:
		return "INCREASING"
	case Decreasing:
		return "DECREASING"
	default:
		return "STABLE"
	}
}

// Factor is a single named contribution to a risk score
type Factor struct {
	Name   string
	Points int
}

// Assessment is the risk evaluation of one person for one frame
type Assessment struct {
	// PersonID is the track ID of the assessed person
	PersonID int
	// Score is the total risk, 0-100
	Score int
	// Factors lists the non-zero contributions making up the score
	Factors []Factor
	// Trend over the person's last three scores
	Trend Trend
	// Status bucket for the score
	Status Status
	// Zone the person occupies, "SAFE" when outside all danger zones
	Zone string
}

// Input carries the per frame observations of one person into the
// engine
type Input struct {
	// PersonID is the track ID
	PersonID int
	// Center point of the person's bounding box in frame coordinates
	Center image.Point
	// FrameWidth of the video in pixels
	FrameWidth int
	// InDanger is true when the center point is inside a danger zone
	InDanger bool
	// ZoneName of the occupied zone, "SAFE" otherwise
	ZoneName string
	// ZoneRisk is the zone's base risk value
	ZoneRisk int
	// Speed in pixels per second
	Speed float64
	// PostureRisk is the risk contribution of the classified posture
	PostureRisk int
	// Now is the assessment time
	Now time.Time
}

// historySize is the number of recent scores and speeds kept per person
const historySize = 100

// profile accumulates the per person state the time based factors need
type profile struct {
	speeds          []float64
	scores          []int
	firstDangerTime time.Time
	lastUpdate      time.Time
}

func (p *profile) pushSpeed(v float64) {
	p.speeds = append(p.speeds, v)
	if len(p.speeds) > historySize {
		p.speeds = p.speeds[1:]
	}
}

func (p *profile) pushScore(v int) {
	p.scores = append(p.scores, v)
	if len(p.scores) > historySize {
		p.scores = p.scores[1:]
	}
}

// Engine computes risk assessments and keeps the rolling per person
// history behind the dwell, trend, and acceleration factors.  Safe for
// concurrent use
type Engine struct {
	mu       sync.Mutex
	profiles map[int]*profile
}

// NewEngine returns an initialized risk engine
func NewEngine() *Engine {
	return &Engine{
		profiles: make(map[int]*profile),
	}
}

// Assess scores a single person from the current frame's observations
func (e *Engine) Assess(in Input) Assessment {

	e.mu.Lock()
	defer e.mu.Unlock()

	p, exists := e.profiles[in.PersonID]

	if !exists {
		p = &profile{}
		e.profiles[in.PersonID] = p
	}

	p.lastUpdate = in.Now

	var factors []Factor

	addFactor := func(name string, points int) {
		if points > 0 {
			factors = append(factors, Factor{Name: name, Points: points})
		}
	}

	// zone base risk
	factorZone := 0
	if in.InDanger {
		factorZone = in.ZoneRisk
	}
	addFactor("Zone", factorZone)

	// dwell time inside the zone, timer resets on exit
	factorTime := 0
	if in.InDanger {
		if p.firstDangerTime.IsZero() {
			p.firstDangerTime = in.Now
		}

		switch dwell := in.Now.Sub(p.firstDangerTime); {
		case dwell > 5*time.Second:
			factorTime = 20
		case dwell > 3*time.Second:
			factorTime = 15
		case dwell > time.Second:
			factorTime = 10
		}
	} else {
		p.firstDangerTime = time.Time{}
	}
	addFactor("Time", factorTime)

	// movement speed in pixels per second
	factorSpeed := 0
	switch {
	case in.Speed > 200:
		factorSpeed = 20
	case in.Speed > 100:
		factorSpeed = 15
	case in.Speed > 50:
		factorSpeed = 10
	case in.Speed > 20:
		factorSpeed = 5
	}
	addFactor("Speed", factorSpeed)

	// posture contribution is capped so a lying person inside a zone
	// cannot saturate the score on posture alone
	factorPosture := min(20, in.PostureRisk)
	addFactor("Posture", factorPosture)

	// proximity to the frame edge while inside a zone, scaled to the
	// frame width so the check holds at any capture resolution
	factorProximity := 0
	if in.InDanger && in.FrameWidth > 0 {
		edge := in.FrameWidth * 8 / 100
		if in.Center.X < edge || in.Center.X > in.FrameWidth-edge {
			factorProximity = 10
		}
	}
	addFactor("Proximity", factorProximity)

	// sudden speed increase since the previous frame
	factorAccel := 0
	if len(p.speeds) >= 1 {
		accel := in.Speed - p.speeds[len(p.speeds)-1]
		if accel > 50 {
			factorAccel = 10
		} else if accel > 25 {
			factorAccel = 5
		}
	}
	addFactor("Accel", factorAccel)

	p.pushSpeed(in.Speed)

	total := factorZone + factorTime + factorSpeed + factorPosture +
		factorProximity + factorAccel

	total = min(100, total)

	p.pushScore(total)

	// trend over the last three scores
	trend := Stable
	if n := len(p.scores); n >= 3 {
		recent := p.scores[n-3:]
		if recent[2] > recent[0]+10 {
			trend = Increasing
		} else if recent[2] < recent[0]-10 {
			trend = Decreasing
		}
	}

	status := Safe
	if total >= criticalScore {
		status = Critical
	} else if total >= warningScore {
		status = Warning
	}

	zoneName := in.ZoneName
	if zoneName == "" {
		zoneName = "SAFE"
	}

	return Assessment{
		PersonID: in.PersonID,
		Score:    total,
		Factors:  factors,
		Trend:    trend,
		Status:   status,
		Zone:     zoneName,
	}
}

// Cleanup removes profiles of people not seen within maxAge and returns
// the number removed.  Prevents unbounded growth from stale track IDs
func (e *Engine) Cleanup(now time.Time, maxAge time.Duration) int {

	e.mu.Lock()
	defer e.mu.Unlock()

	removed := 0

	for id, p := range e.profiles {
		if now.Sub(p.lastUpdate) > maxAge {
			delete(e.profiles, id)
			removed++
		}
	}

	return removed
}

// Forget drops the profile of a single person
func (e *Engine) Forget(personID int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.profiles, personID)
}

// People returns the number of people with active profiles
func (e *Engine) People() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.profiles)
}
