package risk

import (
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

// baseInput returns a person standing still in open floor space
func baseInput(id int, now time.Time) Input {
	return Input{
		PersonID:   id,
		Center:     image.Pt(640, 360),
		FrameWidth: 1280,
		ZoneName:   "SAFE",
		Now:        now,
	}
}

func TestAssessSafePerson(t *testing.T) {

	e := NewEngine()

	a := e.Assess(baseInput(1, t0))

	assert.Equal(t, 0, a.Score)
	assert.Equal(t, Safe, a.Status)
	assert.Equal(t, Stable, a.Trend)
	assert.Equal(t, "SAFE", a.Zone)
	assert.Empty(t, a.Factors)
}

func TestAssessZoneFactor(t *testing.T) {

	e := NewEngine()

	in := baseInput(1, t0)
	in.InDanger = true
	in.ZoneName = "HEAVY_MACHINERY"
	in.ZoneRisk = 40

	a := e.Assess(in)

	assert.Equal(t, 40, a.Score)
	assert.Equal(t, Warning, a.Status)
	assert.Equal(t, "HEAVY_MACHINERY", a.Zone)
	require.Len(t, a.Factors, 1)
	assert.Equal(t, Factor{Name: "Zone", Points: 40}, a.Factors[0])
}

func TestAssessDwellTime(t *testing.T) {

	e := NewEngine()

	in := baseInput(1, t0)
	in.InDanger = true
	in.ZoneName = "ELECTRICAL"
	in.ZoneRisk = 35

	dwellPoints := func(a Assessment) int {
		for _, f := range a.Factors {
			if f.Name == "Time" {
				return f.Points
			}
		}
		return 0
	}

	// first frame starts the dwell timer
	a := e.Assess(in)
	assert.Equal(t, 0, dwellPoints(a))

	in.Now = t0.Add(1500 * time.Millisecond)
	a = e.Assess(in)
	assert.Equal(t, 10, dwellPoints(a))

	in.Now = t0.Add(4 * time.Second)
	a = e.Assess(in)
	assert.Equal(t, 15, dwellPoints(a))

	in.Now = t0.Add(6 * time.Second)
	a = e.Assess(in)
	assert.Equal(t, 20, dwellPoints(a))
	assert.Equal(t, 55, a.Score)

	// leaving the zone resets the timer
	out := baseInput(1, t0.Add(7*time.Second))
	a = e.Assess(out)
	assert.Equal(t, 0, dwellPoints(a))

	in.Now = t0.Add(8 * time.Second)
	a = e.Assess(in)
	assert.Equal(t, 0, dwellPoints(a))

	in.Now = t0.Add(10 * time.Second)
	a = e.Assess(in)
	assert.Equal(t, 10, dwellPoints(a))
}

func TestAssessSpeedFactor(t *testing.T) {

	tests := []struct {
		speed float64
		want  int
	}{
		{10, 0},
		{21, 5},
		{51, 10},
		{101, 15},
		{201, 20},
	}

	for _, tc := range tests {

		e := NewEngine()

		in := baseInput(1, t0)
		in.Speed = tc.speed

		a := e.Assess(in)
		assert.Equal(t, tc.want, a.Score, "speed %.0f", tc.speed)
	}
}

func TestAssessPostureCap(t *testing.T) {

	e := NewEngine()

	// lying posture carries 50 risk but contributes at most 20
	in := baseInput(1, t0)
	in.PostureRisk = 50

	a := e.Assess(in)

	assert.Equal(t, 20, a.Score)
	require.Len(t, a.Factors, 1)
	assert.Equal(t, "Posture", a.Factors[0].Name)
}

func TestAssessProximity(t *testing.T) {

	e := NewEngine()

	in := baseInput(1, t0)
	in.InDanger = true
	in.ZoneName = "CHEMICAL"
	in.ZoneRisk = 30

	// 8% of a 1280 wide frame is 102 pixels
	in.Center = image.Pt(90, 360)
	a := e.Assess(in)
	assert.Equal(t, 40, a.Score)

	in.Center = image.Pt(1200, 360)
	a = e.Assess(in)
	assert.Equal(t, 40, a.Score)

	in.Center = image.Pt(640, 360)
	a = e.Assess(in)
	assert.Equal(t, 30, a.Score)

	// outside a zone the frame edge carries no risk
	safe := baseInput(2, t0)
	safe.Center = image.Pt(10, 360)
	a = e.Assess(safe)
	assert.Equal(t, 0, a.Score)
}

func TestAssessAcceleration(t *testing.T) {

	e := NewEngine()

	in := baseInput(1, t0)
	in.Speed = 10

	// no history on the first frame
	a := e.Assess(in)
	assert.Equal(t, 0, a.Score)

	// jump of 30 px/s over the previous frame
	in.Speed = 40
	in.Now = t0.Add(33 * time.Millisecond)
	a = e.Assess(in)
	assert.Equal(t, 10, a.Score) // Speed 5 + Accel 5

	// jump of over 50 px/s
	in.Speed = 120
	in.Now = t0.Add(66 * time.Millisecond)
	a = e.Assess(in)
	assert.Equal(t, 25, a.Score) // Speed 15 + Accel 10
}

func TestAssessTrend(t *testing.T) {

	e := NewEngine()

	// hold a low score for two frames then jump
	in := baseInput(1, t0)
	e.Assess(in)
	e.Assess(in)

	in.InDanger = true
	in.ZoneName = "HEAVY_MACHINERY"
	in.ZoneRisk = 40

	a := e.Assess(in)
	assert.Equal(t, Increasing, a.Trend)

	// hold steady
	a = e.Assess(in)
	a = e.Assess(in)
	a = e.Assess(in)
	assert.Equal(t, Stable, a.Trend)

	// drop back out of the zone
	out := baseInput(1, t0)
	a = e.Assess(out)
	a = e.Assess(out)
	assert.Equal(t, Decreasing, a.Trend)
}

func TestAssessScoreCap(t *testing.T) {

	e := NewEngine()

	// saturate every factor
	in := baseInput(1, t0)
	in.InDanger = true
	in.ZoneName = "HEAVY_MACHINERY"
	in.ZoneRisk = 40
	in.PostureRisk = 50
	in.Center = image.Pt(20, 360)
	in.Speed = 10
	e.Assess(in)

	in.Speed = 250
	in.Now = t0.Add(6 * time.Second)
	a := e.Assess(in)

	assert.Equal(t, 100, a.Score)
	assert.Equal(t, Critical, a.Status)
}

func TestStatusThresholds(t *testing.T) {

	e := NewEngine()

	// 20 points of posture is below the warning threshold
	in := baseInput(1, t0)
	in.PostureRisk = 20
	a := e.Assess(in)
	assert.Equal(t, Safe, a.Status)

	// 30 points reaches warning
	in = baseInput(2, t0)
	in.InDanger = true
	in.ZoneName = "CHEMICAL"
	in.ZoneRisk = 30
	a = e.Assess(in)
	assert.Equal(t, Warning, a.Status)

	// 60 points reaches critical
	in.PostureRisk = 50
	in.Speed = 120
	in.Now = t0.Add(20 * time.Millisecond)
	a = e.Assess(in)
	assert.Equal(t, Critical, a.Status)
}

func TestCleanup(t *testing.T) {

	e := NewEngine()

	e.Assess(baseInput(1, t0))
	e.Assess(baseInput(2, t0.Add(50*time.Second)))

	assert.Equal(t, 2, e.People())

	removed := e.Cleanup(t0.Add(70*time.Second), 60*time.Second)

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, e.People())

	e.Forget(2)
	assert.Equal(t, 0, e.People())
}
