/*
Package detect provides person detection and pose estimation for the
risk monitoring pipeline.  Inference runs on pretrained ultralytics
YOLOv8 models exported to ONNX via the OpenCV DNN module, with the raw
output tensors decoded by the post processors in this package.
*/
package detect

import (
	"gocv.io/x/gocv"

	"github.com/phris-ai/phris/detect/result"
	"github.com/phris-ai/phris/preprocess"
)

// PersonClass is the COCO class index for a person
const PersonClass = 0

// Detector locates people in a video frame
type Detector interface {
	// Detect returns the people found in the frame with bounding boxes in
	// source frame coordinates
	Detect(img gocv.Mat, resizer *preprocess.Resizer) ([]result.DetectResult, error)
	// Close frees resources held by the detector
	Close() error
}

// PoseEstimator locates people and their skeleton keypoints in a video
// frame
type PoseEstimator interface {
	// DetectPoses returns the people found in the frame along with the
	// skeleton keypoints for each person
	DetectPoses(img gocv.Mat, resizer *preprocess.Resizer) ([]result.DetectResult, [][]result.KeyPoint, error)
	// Close frees resources held by the estimator
	Close() error
}

// FilterClass returns only the detections of the given class
func FilterClass(dets []result.DetectResult, class int) []result.DetectResult {

	out := make([]result.DetectResult, 0, len(dets))

	for _, det := range dets {
		if det.Class == class {
			out = append(out, det)
		}
	}

	return out
}
