package detect

import (
	"fmt"

	"github.com/phris-ai/phris/detect/result"
	"github.com/phris-ai/phris/preprocess"
)

// YOLOv8 decodes the output tensor of an ultralytics YOLOv8 detection
// model exported to ONNX.  The model emits a single output of shape
// [1, 4+C, anchors] where C is the number of trained classes, 8400
// anchors at 640x640 input.
type YOLOv8 struct {
	// Params are the model configuration parameters
	Params YOLOv8Params
	// idGen provides the next number for each detection result ID
	idGen *result.IDGenerator
}

// YOLOv8Params defines the struct containing the YOLOv8 parameters to use
// for post processing operations
type YOLOv8Params struct {
	// BoxThreshold is the minimum probability score required for a bounding
	// box region to be considered for processing
	BoxThreshold float32
	// NMSThreshold is the Non-Maximum Suppression threshold used for
	// defining the maximum allowed Intersection Over Union (IoU) between
	// two bounding boxes for both to be kept
	NMSThreshold float32
	// ObjectClassNum is the number of different object classes the model
	// has been trained with
	ObjectClassNum int
	// MaxObjectNumber is the maximum number of objects detected that can
	// be returned
	MaxObjectNumber int
}

// YOLOv8COCOParams returns an instance of YOLOv8Params configured with
// default values for a model trained on the COCO dataset featuring:
// - Object Classes: 80
// - Box Threshold: 0.5
// - NMS Threshold: 0.45
// - Maximum Object Number: 64
func YOLOv8COCOParams() YOLOv8Params {
	return YOLOv8Params{
		BoxThreshold:    0.5,
		NMSThreshold:    0.45,
		ObjectClassNum:  80,
		MaxObjectNumber: 64,
	}
}

// NewYOLOv8 returns an instance of the YOLOv8 post processor
func NewYOLOv8(p YOLOv8Params) *YOLOv8 {
	return &YOLOv8{
		Params: p,
		idGen:  result.NewIDGenerator(),
	}
}

// DetectObjects takes the flattened model output tensor with the given
// channel and anchor dimensions and runs the object detection process,
// mapping boxes back to source frame coordinates through the resizer
func (y *YOLOv8) DetectObjects(tensor []float32, channels, anchors int,
	resizer *preprocess.Resizer) ([]result.DetectResult, error) {

	if channels != 4+y.Params.ObjectClassNum {
		return nil, fmt.Errorf("tensor has %d channels, expected %d for %d classes",
			channels, 4+y.Params.ObjectClassNum, y.Params.ObjectClassNum)
	}

	if len(tensor) < channels*anchors {
		return nil, fmt.Errorf("tensor has %d values, expected %d",
			len(tensor), channels*anchors)
	}

	data := newStrideData()
	validCount := 0

	// channel c of anchor a lives at tensor[c*anchors+a]
	for a := 0; a < anchors; a++ {

		maxScore := float32(0)
		maxClassID := -1

		for c := 0; c < y.Params.ObjectClassNum; c++ {
			score := tensor[(4+c)*anchors+a]

			if score > maxScore {
				maxScore = score
				maxClassID = c
			}
		}

		if maxScore < y.Params.BoxThreshold {
			continue
		}

		// box channels are center x, center y, width, height in tensor
		// coordinates
		cx := tensor[0*anchors+a]
		cy := tensor[1*anchors+a]
		w := tensor[2*anchors+a]
		h := tensor[3*anchors+a]

		data.filterBoxes = append(data.filterBoxes, cx-w/2, cy-h/2, w, h)
		data.objProbs = append(data.objProbs, maxScore)
		data.classID = append(data.classID, maxClassID)
		validCount++
	}

	if validCount <= 0 {
		// no object detected
		return nil, nil
	}

	// indexArray keeps an index of detected objects contained in the
	// stride "data" variable
	indexArray := make([]int, validCount)

	for i := 0; i < validCount; i++ {
		indexArray[i] = i
	}

	quickSortIndiceInverse(data.objProbs, 0, validCount-1, indexArray)

	// create a unique set of ClassID (ie: eliminate any multiples found)
	classSet := make(map[int]bool)

	for _, id := range data.classID {
		classSet[id] = true
	}

	// for each classID in the classSet calculate the NMS
	for c := range classSet {
		nms(validCount, data.filterBoxes, data.classID, indexArray, c,
			y.Params.NMSThreshold, 4)
	}

	// collate objects into a result for returning
	group := make([]result.DetectResult, 0)
	lastCount := 0

	for i := 0; i < validCount; i++ {
		if indexArray[i] == -1 || lastCount >= y.Params.MaxObjectNumber {
			continue
		}
		n := indexArray[i]

		x1 := data.filterBoxes[n*4+0]
		y1 := data.filterBoxes[n*4+1]
		x2 := x1 + data.filterBoxes[n*4+2]
		y2 := y1 + data.filterBoxes[n*4+3]

		group = append(group, result.DetectResult{
			Box:         resizer.MapBox(x1, y1, x2, y2),
			Probability: data.objProbs[i],
			Class:       data.classID[n],
			ID:          y.idGen.GetNext(),
		})

		lastCount++
	}

	return group, nil
}
