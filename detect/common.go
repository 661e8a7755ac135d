package detect

import (
	"math"
)

// quickSortIndiceInverse is a quick sort algorithm that sorts the objProbs
// vector in descending order and synchronously updates the indices vector
// to track the reordering of elements
func quickSortIndiceInverse(input []float32, left int, right int, indices []int) int {

	var key float32
	var keyIndex int

	low := left
	high := right

	if left < right {
		keyIndex = indices[left]
		key = input[left]

		for low < high {
			for low < high && input[high] <= key {
				high--
			}

			input[low] = input[high]
			indices[low] = indices[high]

			for low < high && input[low] >= key {
				low++
			}

			input[high] = input[low]
			indices[high] = indices[low]
		}

		input[low] = key
		indices[low] = keyIndex

		quickSortIndiceInverse(input, left, low-1, indices)
		quickSortIndiceInverse(input, low+1, right, indices)
	}

	return low
}

// nms implements a Non-Maximum Suppression (NMS) algorithm.  boxStride is
// the number of float values used per box in the outputLocations slice.
func nms(validCount int, outputLocations []float32, classIds, order []int,
	filterId int, threshold float32, boxStride int) {

	for i := 0; i < validCount; i++ {

		if order[i] == -1 || classIds[i] != filterId {
			continue
		}

		n := order[i]

		for j := i + 1; j < validCount; j++ {
			m := order[j]

			if m == -1 || classIds[i] != filterId {
				continue
			}

			xmin0 := outputLocations[n*boxStride+0]
			ymin0 := outputLocations[n*boxStride+1]
			xmax0 := xmin0 + outputLocations[n*boxStride+2]
			ymax0 := ymin0 + outputLocations[n*boxStride+3]

			xmin1 := outputLocations[m*boxStride+0]
			ymin1 := outputLocations[m*boxStride+1]
			xmax1 := xmin1 + outputLocations[m*boxStride+2]
			ymax1 := ymin1 + outputLocations[m*boxStride+3]

			iou := calculateOverlap(xmin0, ymin0, xmax0, ymax0, xmin1, ymin1, xmax1, ymax1)

			if iou > threshold {
				order[j] = -1
			}
		}
	}
}

// calculateOverlap works out the Intersection of Union (IoU) value of two
// boxes dimensions
func calculateOverlap(xmin0, ymin0, xmax0, ymax0, xmin1, ymin1,
	xmax1, ymax1 float32) float32 {

	w := math.Max(0.0, math.Min(float64(xmax0), float64(xmax1))-math.Max(float64(xmin0), float64(xmin1))+1.0)
	h := math.Max(0.0, math.Min(float64(ymax0), float64(ymax1))-math.Max(float64(ymin0), float64(ymin1))+1.0)
	intersection := w * h

	// Calculate the area of both rectangles with added 1.0 for inclusive
	// pixel calculation
	area0 := (xmax0 - xmin0 + 1) * (ymax0 - ymin0 + 1)
	area1 := (xmax1 - xmin1 + 1) * (ymax1 - ymin1 + 1)

	// Calculate union
	union := area0 + area1 - float32(intersection)

	if union <= 0 {
		return 0.0
	}

	return float32(intersection) / union
}

// strideData accumulates the candidate boxes found whilst scanning the
// output tensor before NMS is applied
type strideData struct {
	filterBoxes []float32
	objProbs    []float32
	classID     []int
}

func newStrideData() *strideData {
	return &strideData{
		filterBoxes: make([]float32, 0),
		objProbs:    make([]float32, 0),
		classID:     make([]int, 0),
	}
}
