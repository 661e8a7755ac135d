package tracker

// Object represents a person detection passed into the tracker
type Object struct {
	// Rect is the bounding box representation of the detected person
	Rect Rect
	// Label is the class label of the object detected
	Label int
	// Prob is the confidence/probability of the detection
	Prob float32
	// ID is a unique ID given to this detection which can be used to match
	// the input detection and tracked object
	ID int64
}

// NewObject is a constructor function for the Object struct
func NewObject(rect Rect, label int, prob float32, id int64) Object {
	return Object{
		Rect:  rect,
		Label: label,
		Prob:  prob,
		ID:    id,
	}
}
