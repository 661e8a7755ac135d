// Package result holds the detection result types shared between the
// model post processors, the tracker, and the renderer.
package result

import "sync/atomic"

// BoxRect are the dimensions of the bounding box of a detected object in
// source frame coordinates
type BoxRect struct {
	Left   int
	Right  int
	Top    int
	Bottom int
}

// Width returns the pixel width of the bounding box
func (b BoxRect) Width() int {
	return b.Right - b.Left
}

// Height returns the pixel height of the bounding box
func (b BoxRect) Height() int {
	return b.Bottom - b.Top
}

// DetectResult defines the attributes of a single object detected
type DetectResult struct {
	// Class is the COCO class index of the detected object, person is
	// class 0
	Class int
	// Box are the bounding box dimensions of the object location
	Box BoxRect
	// Probability is the confidence score of the object detected
	Probability float32
	// ID is a unique ID assigned to the detection result
	ID int64
}

// KeyPoint is a single pose estimation skeleton joint
type KeyPoint struct {
	X int
	Y int
	// Score is the confidence the joint was located, joints outside the
	// frame or occluded have a low score
	Score float32
}

// IDGenerator issues unique incrementing detection IDs, safe for use
// across a pool of detectors
type IDGenerator struct {
	id atomic.Int64
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// GetNext returns the next incremental number
func (g *IDGenerator) GetNext() int64 {
	return g.id.Add(1)
}
