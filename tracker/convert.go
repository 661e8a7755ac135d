package tracker

import "github.com/phris-ai/phris/detect/result"

// DetectionsToObjects converts person detection results into tracker
// objects
func DetectionsToObjects(dets []result.DetectResult) []Object {

	objs := make([]Object, 0, len(dets))

	for _, det := range dets {

		x := float32(det.Box.Left)
		y := float32(det.Box.Top)
		width := float32(det.Box.Width())
		height := float32(det.Box.Height())

		objs = append(objs, Object{
			Rect:  NewRect(x, y, width, height),
			Label: det.Class,
			Prob:  det.Probability,
			ID:    det.ID,
		})
	}

	return objs
}
