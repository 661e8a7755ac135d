package detect

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/phris-ai/phris/detect/result"
	"github.com/phris-ai/phris/preprocess"
)

// letterBoxColor is the pad color YOLOv8 models are trained with
var letterBoxColor = color.RGBA{R: 114, G: 114, B: 114, A: 255}

// dnnNet wraps an OpenCV DNN network loaded from an ONNX model file.
// A network instance must not run Forward concurrently, use a Pool to
// run inference in parallel.
type dnnNet struct {
	net gocv.Net
	// input tensor dimensions
	inputWidth  int
	inputHeight int
	// destMat holds the letterboxed input frame
	destMat gocv.Mat
}

func newDNNNet(modelFile string, inputWidth, inputHeight int) (*dnnNet, error) {

	net := gocv.ReadNetFromONNX(modelFile)

	if net.Empty() {
		return nil, fmt.Errorf("error loading ONNX model from %s", modelFile)
	}

	return &dnnNet{
		net:         net,
		inputWidth:  inputWidth,
		inputHeight: inputHeight,
		destMat:     gocv.NewMat(),
	}, nil
}

// forward letterboxes the frame, runs inference, and returns a copy of
// the flattened output tensor with its channel and anchor dimensions
func (d *dnnNet) forward(img gocv.Mat, resizer *preprocess.Resizer) ([]float32, int, int, error) {

	resizer.LetterBoxResize(img, &d.destMat, letterBoxColor)

	blob := gocv.BlobFromImage(d.destMat, 1.0/255.0,
		image.Pt(d.inputWidth, d.inputHeight),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")

	out := d.net.Forward("")
	defer out.Close()

	dims := out.Size()

	if len(dims) != 3 {
		return nil, 0, 0, fmt.Errorf("unexpected output tensor rank %d", len(dims))
	}

	data, err := out.DataPtrFloat32()

	if err != nil {
		return nil, 0, 0, fmt.Errorf("error reading output tensor: %w", err)
	}

	// the Mat buffer is freed on Close so the tensor is copied out
	tensor := make([]float32, len(data))
	copy(tensor, data)

	return tensor, dims[1], dims[2], nil
}

func (d *dnnNet) close() error {
	_ = d.destMat.Close()
	return d.net.Close()
}

// DNNDetector is a person Detector backed by a YOLOv8 ONNX model run
// through the OpenCV DNN module
type DNNDetector struct {
	net  *dnnNet
	proc *YOLOv8
}

// NewDNNDetector loads the YOLOv8 detection model from the given ONNX
// file
func NewDNNDetector(modelFile string, inputWidth, inputHeight int,
	params YOLOv8Params) (*DNNDetector, error) {

	net, err := newDNNNet(modelFile, inputWidth, inputHeight)

	if err != nil {
		return nil, err
	}

	return &DNNDetector{
		net:  net,
		proc: NewYOLOv8(params),
	}, nil
}

// Detect runs person detection on the frame
func (d *DNNDetector) Detect(img gocv.Mat,
	resizer *preprocess.Resizer) ([]result.DetectResult, error) {

	tensor, channels, anchors, err := d.net.forward(img, resizer)

	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	dets, err := d.proc.DetectObjects(tensor, channels, anchors, resizer)

	if err != nil {
		return nil, fmt.Errorf("post processing failed: %w", err)
	}

	return FilterClass(dets, PersonClass), nil
}

// Close frees the underlying network
func (d *DNNDetector) Close() error {
	return d.net.close()
}

// DNNPoseEstimator is a PoseEstimator backed by a YOLOv8 pose ONNX model
// run through the OpenCV DNN module
type DNNPoseEstimator struct {
	net  *dnnNet
	proc *YOLOv8Pose
}

// NewDNNPoseEstimator loads the YOLOv8 pose model from the given ONNX
// file
func NewDNNPoseEstimator(modelFile string, inputWidth, inputHeight int,
	params YOLOv8PoseParams) (*DNNPoseEstimator, error) {

	net, err := newDNNNet(modelFile, inputWidth, inputHeight)

	if err != nil {
		return nil, err
	}

	return &DNNPoseEstimator{
		net:  net,
		proc: NewYOLOv8Pose(params),
	}, nil
}

// DetectPoses runs pose estimation on the frame
func (d *DNNPoseEstimator) DetectPoses(img gocv.Mat,
	resizer *preprocess.Resizer) ([]result.DetectResult, [][]result.KeyPoint, error) {

	tensor, channels, anchors, err := d.net.forward(img, resizer)

	if err != nil {
		return nil, nil, fmt.Errorf("inference failed: %w", err)
	}

	dets, keyPoints, err := d.proc.DetectPoses(tensor, channels, anchors, resizer)

	if err != nil {
		return nil, nil, fmt.Errorf("post processing failed: %w", err)
	}

	return dets, keyPoints, nil
}

// Close frees the underlying network
func (d *DNNPoseEstimator) Close() error {
	return d.net.close()
}
