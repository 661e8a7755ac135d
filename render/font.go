package render

import (
	"image/color"

	"gocv.io/x/gocv"
)

type Alignment int

const (
	Left   Alignment = 1
	Center Alignment = 2
	Right  Alignment = 3
)

// Font defines the parameters for rendering text on an image using GoCV
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
	LineType  gocv.LineType
	// Padding to place around text
	LeftPad   int
	RightPad  int
	TopPad    int
	BottomPad int
	// Alignment of the text label to the bounding box
	Alignment Alignment
}

// DefaultFont returns default font settings
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.5,
		Color:     White,
		Thickness: 1,
		LineType:  gocv.LineAA,
		LeftPad:   4,
		RightPad:  4,
		TopPad:    4,
		BottomPad: 6,
		Alignment: Left,
	}
}

// LabelFont returns the larger font used for the main person label
func LabelFont() Font {
	f := DefaultFont()
	f.Scale = 0.7
	f.Thickness = 2
	return f
}

// SmallFont returns the font used for the per person detail lines
func SmallFont() Font {
	f := DefaultFont()
	f.Scale = 0.45
	return f
}

// TitleFont returns the font used for the dashboard title and the
// critical alert banner
func TitleFont() Font {
	f := DefaultFont()
	f.Scale = 0.8
	f.Thickness = 2
	f.Color = Cyan
	return f
}
