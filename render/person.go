/*
Package render draws the risk overlay onto video frames: zone polygons,
per person bounding boxes with risk scores, pose skeletons, movement
trails, the statistics dashboard, and the critical alert banner.
*/
package render

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/phris-ai/phris/risk"
	"github.com/phris-ai/phris/tracker"
)

// Person bundles everything known about one tracked person for overlay
// rendering
type Person struct {
	// Track holds the person's current bounding box and ID
	Track *tracker.STrack
	// Assessment is the person's risk evaluation for this frame
	Assessment risk.Assessment
	// Posture name shown in the detail lines
	Posture string
	// Speed in pixels per second
	Speed float64
}

// People draws each person's bounding box colored by risk status, the
// risk score label, and the detail lines below the box
func People(img *gocv.Mat, people []Person, lineThickness int) {

	labelFont := LabelFont()
	smallFont := SmallFont()

	for _, p := range people {

		boxLeft := int(p.Track.GetRect().TLX())
		boxTop := int(p.Track.GetRect().TLY())
		boxRight := int(p.Track.GetRect().BRX())
		boxBottom := int(p.Track.GetRect().BRY())

		clr := StatusColor(p.Assessment.Status)

		rect := image.Rect(boxLeft, boxTop, boxRight, boxBottom)
		gocv.Rectangle(img, rect, clr, lineThickness)

		// main info line above the box
		info := fmt.Sprintf("ID:%d RISK:%d/100 [%s]",
			p.Assessment.PersonID, p.Assessment.Score, p.Assessment.Status)

		gocv.PutTextWithParams(img, info,
			image.Pt(boxLeft, boxTop-35),
			labelFont.Face, labelFont.Scale, clr, labelFont.Thickness,
			labelFont.LineType, false)

		gocv.PutTextWithParams(img, "Trend: "+p.Assessment.Trend.String(),
			image.Pt(boxLeft, boxTop-10),
			smallFont.Face, 0.5, clr, smallFont.Thickness,
			smallFont.LineType, false)

		// detail lines below the box
		details := []string{
			"Zone: " + p.Assessment.Zone,
			fmt.Sprintf("Speed: %.1f px/s", p.Speed),
			"Posture: " + p.Posture,
		}

		y := boxBottom + 20

		for _, line := range details {
			gocv.PutTextWithParams(img, line,
				image.Pt(boxLeft, y),
				smallFont.Face, 0.5, Gray, smallFont.Thickness,
				smallFont.LineType, false)
			y += 20
		}

		// risk factor breakdown
		for _, f := range p.Assessment.Factors {
			gocv.PutTextWithParams(img,
				fmt.Sprintf("- %s: +%d", f.Name, f.Points),
				image.Pt(boxLeft, y),
				smallFont.Face, smallFont.Scale, White, smallFont.Thickness,
				smallFont.LineType, false)
			y += 18
		}
	}
}
