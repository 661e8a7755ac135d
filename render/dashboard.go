package render

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"gocv.io/x/gocv"
)

// dashboard panel geometry, anchored to the bottom left corner
const (
	panelWidth  = 390
	panelHeight = 350
	panelAlpha  = 0.5
	panelMargin = 10
)

// DashboardStats are the runtime counters shown on the dashboard panel
type DashboardStats struct {
	// Frames processed since startup
	Frames int64
	// FPS is the current processing rate
	FPS float64
	// People currently tracked in frame
	People int
	// Alerts raised since startup
	Alerts int64
	// Runtime since startup
	Runtime time.Duration
}

// Dashboard draws the translucent statistics panel and the status color
// legend in the bottom left corner of the frame
func Dashboard(img *gocv.Mat, stats DashboardStats) {

	top := img.Rows() - panelMargin - panelHeight
	left := panelMargin

	// semi-transparent black background
	overlay := img.Clone()
	gocv.Rectangle(&overlay,
		image.Rect(left, top, left+panelWidth, top+panelHeight),
		Black, -1)
	gocv.AddWeighted(overlay, panelAlpha, *img, 1-panelAlpha, 0, img)
	overlay.Close()

	title := TitleFont()
	body := DefaultFont()

	gocv.PutTextWithParams(img, "PHRIS DASHBOARD",
		image.Pt(left+10, top+30),
		title.Face, title.Scale, title.Color, title.Thickness,
		title.LineType, false)

	lines := []string{
		fmt.Sprintf("Frames: %d", stats.Frames),
		fmt.Sprintf("FPS: %.1f", stats.FPS),
		fmt.Sprintf("People: %d", stats.People),
		fmt.Sprintf("Alerts: %d", stats.Alerts),
		fmt.Sprintf("Runtime: %ds", int(stats.Runtime.Seconds())),
	}

	y := top + 60

	for _, line := range lines {
		gocv.PutTextWithParams(img, line,
			image.Pt(left+10, y),
			body.Face, 0.6, White, body.Thickness, body.LineType, false)
		y += 30
	}

	drawLegend(img, left, y+10, body)
}

// drawLegend draws the status color key below the statistics
func drawLegend(img *gocv.Mat, left, top int, font Font) {

	entries := []struct {
		label string
		width int
		clr   color.RGBA
	}{
		{"SAFE", 70, Green},
		{"WARNING", 90, Yellow},
		{"CRITICAL", 90, Red},
	}

	x := left

	for _, e := range entries {
		gocv.Rectangle(img, image.Rect(x, top, x+e.width, top+30), e.clr, 2)
		gocv.PutTextWithParams(img, e.label,
			image.Pt(x+8, top+22),
			font.Face, font.Scale, e.clr, font.Thickness,
			font.LineType, false)
		x += e.width + 10
	}
}
