package detect

import (
	"fmt"

	"github.com/phris-ai/phris/detect/result"
	"github.com/phris-ai/phris/preprocess"
)

// YOLOv8Pose decodes the output tensor of an ultralytics YOLOv8 pose
// model exported to ONNX.  The model emits a single output of shape
// [1, 5+K*3, anchors] where K is the number of skeleton keypoints, being
// a single person class score followed by x/y/score triplets per joint.
type YOLOv8Pose struct {
	// Params are the model configuration parameters
	Params YOLOv8PoseParams
	// idGen provides the next number for each detection result ID
	idGen *result.IDGenerator
}

// YOLOv8PoseParams defines the struct containing the YOLOv8 pose
// parameters to use for post processing operations
type YOLOv8PoseParams struct {
	// BoxThreshold is the minimum probability score required for a bounding
	// box region to be considered for processing
	BoxThreshold float32
	// NMSThreshold is the Non-Maximum Suppression threshold used for
	// defining the maximum allowed Intersection Over Union (IoU) between
	// two bounding boxes for both to be kept
	NMSThreshold float32
	// MaxObjectNumber is the maximum number of objects detected that can
	// be returned
	MaxObjectNumber int
	// KeyPointsNumber is the number of COCO keypoints representing
	// different parts of the body the pose model is trained on
	KeyPointsNumber int
}

// YOLOv8PoseCOCOParams returns an instance of YOLOv8PoseParams configured
// with default values for a model trained on the COCO keypoints dataset
// featuring:
// - Box Threshold: 0.5
// - NMS Threshold: 0.4
// - Maximum Object Number: 64
// - KeyPoints Number: 17
func YOLOv8PoseCOCOParams() YOLOv8PoseParams {
	return YOLOv8PoseParams{
		BoxThreshold:    0.5,
		NMSThreshold:    0.4,
		MaxObjectNumber: 64,
		KeyPointsNumber: 17,
	}
}

// NewYOLOv8Pose returns an instance of the YOLOv8Pose post processor
func NewYOLOv8Pose(p YOLOv8PoseParams) *YOLOv8Pose {
	return &YOLOv8Pose{
		Params: p,
		idGen:  result.NewIDGenerator(),
	}
}

// DetectPoses takes the flattened model output tensor with the given
// channel and anchor dimensions and returns the detected people with
// their skeleton keypoints in source frame coordinates
func (y *YOLOv8Pose) DetectPoses(tensor []float32, channels, anchors int,
	resizer *preprocess.Resizer) ([]result.DetectResult, [][]result.KeyPoint, error) {

	wantChannels := 5 + y.Params.KeyPointsNumber*3

	if channels != wantChannels {
		return nil, nil, fmt.Errorf("tensor has %d channels, expected %d for %d keypoints",
			channels, wantChannels, y.Params.KeyPointsNumber)
	}

	if len(tensor) < channels*anchors {
		return nil, nil, fmt.Errorf("tensor has %d values, expected %d",
			len(tensor), channels*anchors)
	}

	data := newStrideData()
	validCount := 0

	for a := 0; a < anchors; a++ {

		score := tensor[4*anchors+a]

		if score < y.Params.BoxThreshold {
			continue
		}

		cx := tensor[0*anchors+a]
		cy := tensor[1*anchors+a]
		w := tensor[2*anchors+a]
		h := tensor[3*anchors+a]

		// fifth value records the anchor index so the keypoints of the
		// boxes kept after NMS can be located in the tensor
		data.filterBoxes = append(data.filterBoxes, cx-w/2, cy-h/2, w, h,
			float32(a))
		data.objProbs = append(data.objProbs, score)
		data.classID = append(data.classID, 0)
		validCount++
	}

	if validCount <= 0 {
		// no person detected
		return nil, nil, nil
	}

	indexArray := make([]int, validCount)

	for i := 0; i < validCount; i++ {
		indexArray[i] = i
	}

	quickSortIndiceInverse(data.objProbs, 0, validCount-1, indexArray)

	// single class model so a single NMS pass
	nms(validCount, data.filterBoxes, data.classID, indexArray, 0,
		y.Params.NMSThreshold, 5)

	group := make([]result.DetectResult, 0)
	allKeyPoints := make([][]result.KeyPoint, 0)
	lastCount := 0

	for i := 0; i < validCount; i++ {
		if indexArray[i] == -1 || lastCount >= y.Params.MaxObjectNumber {
			continue
		}
		n := indexArray[i]

		x1 := data.filterBoxes[n*5+0]
		y1 := data.filterBoxes[n*5+1]
		x2 := x1 + data.filterBoxes[n*5+2]
		y2 := y1 + data.filterBoxes[n*5+3]
		anchorIdx := int(data.filterBoxes[n*5+4])

		keyPtData := make([]result.KeyPoint, 0, y.Params.KeyPointsNumber)

		for j := 0; j < y.Params.KeyPointsNumber; j++ {
			kpX := tensor[(5+j*3+0)*anchors+anchorIdx]
			kpY := tensor[(5+j*3+1)*anchors+anchorIdx]
			kpScore := tensor[(5+j*3+2)*anchors+anchorIdx]

			px, py := resizer.MapPoint(kpX, kpY)

			keyPtData = append(keyPtData, result.KeyPoint{
				X:     px,
				Y:     py,
				Score: kpScore,
			})
		}

		allKeyPoints = append(allKeyPoints, keyPtData)

		group = append(group, result.DetectResult{
			Box:         resizer.MapBox(x1, y1, x2, y2),
			Probability: data.objProbs[i],
			Class:       0,
			ID:          y.idGen.GetNext(),
		})

		lastCount++
	}

	return group, allKeyPoints, nil
}
