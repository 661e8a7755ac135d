package pose

import (
	"github.com/phris-ai/phris/detect/result"
	"github.com/phris-ai/phris/tracker"
)

// minMatchIoU is the minimum box overlap for a pose detection to be
// assigned to a tracked person
const minMatchIoU = 0.3

// Person holds the pose data matched to a single tracked person
type Person struct {
	// Posture classified from the keypoints
	Posture Posture
	// KeyPoints of the skeleton in frame pixel coordinates
	KeyPoints []result.KeyPoint
}

// MatchToTracks assigns each pose detection to the tracked person whose
// bounding box overlaps it most.  The pose model and the person
// detector run independently so their outputs are associated by IoU.
// Returns a map keyed by track ID, people without a matching pose are
// absent
func MatchToTracks(tracks []*tracker.STrack, boxes []result.DetectResult,
	keyPoints [][]result.KeyPoint) map[int]Person {

	matched := make(map[int]Person)

	if len(boxes) == 0 {
		return matched
	}

	used := make([]bool, len(boxes))

	for _, trk := range tracks {

		bestIoU := float32(minMatchIoU)
		bestIdx := -1

		for i, box := range boxes {

			if used[i] {
				continue
			}

			poseRect := tracker.NewRect(
				float32(box.Box.Left),
				float32(box.Box.Top),
				float32(box.Box.Width()),
				float32(box.Box.Height()),
			)

			if iou := trk.GetRect().CalcIoU(poseRect); iou > bestIoU {
				bestIoU = iou
				bestIdx = i
			}
		}

		if bestIdx < 0 {
			continue
		}

		used[bestIdx] = true

		matched[trk.GetTrackID()] = Person{
			Posture:   Classify(keyPoints[bestIdx]),
			KeyPoints: keyPoints[bestIdx],
		}
	}

	return matched
}
