package render

import (
	"image/color"

	"gocv.io/x/gocv"

	"github.com/phris-ai/phris/tracker"
)

// TrailStyle defines the parameters used for rendering the trail style
type TrailStyle struct {
	// LineSame defines if the color of the trail line should be the
	// same color as that of the person's track color.  If set to false
	// then use the color specified at LineColor
	LineSame      bool
	LineColor     color.RGBA
	LineThickness int
	// CircleSame defines if the color of the midpoint circle should be
	// the same color as that of the person's track color.  If set to
	// false then use the color specified at CircleColor
	CircleSame   bool
	CircleColor  color.RGBA
	CircleRadius int
}

// DefaultTrailStyle returns default trail style settings
func DefaultTrailStyle() TrailStyle {
	return TrailStyle{
		LineSame:      false,
		LineColor:     Yellow,
		LineThickness: 1,
		CircleSame:    true,
		CircleColor:   Pink,
		CircleRadius:  3,
	}
}

// Trail draws the movement trail lines for each tracked person
func Trail(img *gocv.Mat, trackResults []*tracker.STrack,
	trail *tracker.Trail, style TrailStyle) {

	for _, tResult := range trackResults {

		objClr := TrackColor(tResult.GetTrackID())

		// determine style colors to use
		lineClr := objClr
		circleClr := objClr

		if !style.LineSame {
			lineClr = style.LineColor
		}

		if !style.CircleSame {
			circleClr = style.CircleColor
		}

		// draw trail line showing tracking history
		points := trail.GetPoints(tResult.GetTrackID())

		if len(points) > 2 {
			for i := 1; i < len(points); i++ {
				gocv.Line(img, points[i-1], points[i],
					lineClr, style.LineThickness)

				if i == len(points)-1 {
					// circle marks the person's current center point
					gocv.Circle(img, points[i],
						style.CircleRadius, circleClr, -1)
				}
			}
		}
	}
}
