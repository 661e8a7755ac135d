package detect

import (
	"testing"

	"github.com/phris-ai/phris/detect/result"
	"github.com/phris-ai/phris/preprocess"
)

// buildTensor creates a zeroed output tensor of the given dimensions
func buildTensor(channels, anchors int) []float32 {
	return make([]float32, channels*anchors)
}

// setAnchor writes a detection candidate into the tensor at the given
// anchor index
func setAnchor(tensor []float32, anchors, a int, cx, cy, w, h float32,
	class int, score float32) {

	tensor[0*anchors+a] = cx
	tensor[1*anchors+a] = cy
	tensor[2*anchors+a] = w
	tensor[3*anchors+a] = h
	tensor[(4+class)*anchors+a] = score
}

func TestYOLOv8DetectObjects(t *testing.T) {

	const (
		channels = 84
		anchors  = 16
	)

	// 1280x720 frame letterboxed to 640x640: scale 0.5, yPad 140
	resizer := preprocess.NewResizer(1280, 720, 640, 640)
	defer resizer.Close()

	tensor := buildTensor(channels, anchors)

	// person centered at tensor (320,320), 100x200 box
	setAnchor(tensor, anchors, 0, 320, 320, 100, 200, PersonClass, 0.9)

	// near identical box with a lower score, NMS should suppress it
	setAnchor(tensor, anchors, 1, 322, 321, 100, 200, PersonClass, 0.7)

	// a car elsewhere in the frame
	setAnchor(tensor, anchors, 2, 100, 500, 60, 40, 2, 0.8)

	// a person below the box threshold
	setAnchor(tensor, anchors, 3, 500, 100, 50, 80, PersonClass, 0.3)

	proc := NewYOLOv8(YOLOv8COCOParams())

	dets, err := proc.DetectObjects(tensor, channels, anchors, resizer)

	if err != nil {
		t.Fatalf("DetectObjects returned error: %v", err)
	}

	if len(dets) != 2 {
		t.Fatalf("expected 2 detections, got %d", len(dets))
	}

	// results are confidence sorted so the person comes first
	person := dets[0]

	if person.Class != PersonClass {
		t.Errorf("expected person class, got %d", person.Class)
	}

	if person.Probability != 0.9 {
		t.Errorf("expected probability 0.9, got %f", person.Probability)
	}

	// tensor box (270,220)-(370,420) maps to frame (540,160)-(740,560)
	want := result.BoxRect{Left: 540, Top: 160, Right: 740, Bottom: 560}

	if person.Box != want {
		t.Errorf("expected box %+v, got %+v", want, person.Box)
	}

	if dets[1].Class != 2 {
		t.Errorf("expected second detection to be class 2, got %d", dets[1].Class)
	}

	// detection IDs are unique
	if person.ID == dets[1].ID {
		t.Errorf("expected unique detection IDs, both are %d", person.ID)
	}

	people := FilterClass(dets, PersonClass)

	if len(people) != 1 {
		t.Errorf("expected 1 person after class filter, got %d", len(people))
	}
}

func TestYOLOv8DimensionMismatch(t *testing.T) {

	resizer := preprocess.NewResizer(1280, 720, 640, 640)
	defer resizer.Close()

	proc := NewYOLOv8(YOLOv8COCOParams())

	_, err := proc.DetectObjects(buildTensor(10, 4), 10, 4, resizer)

	if err == nil {
		t.Errorf("expected error for wrong channel count")
	}
}

func TestYOLOv8NoDetections(t *testing.T) {

	resizer := preprocess.NewResizer(1280, 720, 640, 640)
	defer resizer.Close()

	proc := NewYOLOv8(YOLOv8COCOParams())

	dets, err := proc.DetectObjects(buildTensor(84, 16), 84, 16, resizer)

	if err != nil {
		t.Fatalf("DetectObjects returned error: %v", err)
	}

	if len(dets) != 0 {
		t.Errorf("expected no detections, got %d", len(dets))
	}
}
