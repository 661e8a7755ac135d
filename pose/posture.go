/*
Package pose classifies body posture from the 17 point COCO skeleton
produced by the pose estimation model.  Posture feeds the risk engine, a
person lying down inside a machinery zone scores far higher than one
standing upright.
*/
package pose

import (
	"math"

	"github.com/phris-ai/phris/detect/result"
)

// COCO keypoint indices used for posture classification
const (
	KeyPointNose          = 0
	KeyPointLeftShoulder  = 5
	KeyPointRightShoulder = 6
	KeyPointLeftHip       = 11
	KeyPointRightHip      = 12
	KeyPointLeftAnkle     = 15
	KeyPointRightAnkle    = 16
)

// minKeyPointScore is the confidence below which a joint is treated as
// not detected
const minKeyPointScore = 0.3

// Posture is the classified body position of a person
type Posture int

const (
	Unknown Posture = iota
	Standing
	Bending
	Lying
	Kneeling
)

// String returns the posture name as shown on the overlay
func (p Posture) String() string {
	switch p {
	case Standing:
		return "STANDING"
	case Bending:
		return "BENDING"
	case Lying:
		return "LYING"
	case Kneeling:
		return "KNEELING"
	default:
		return "UNKNOWN"
	}
}

// Risk returns the risk contribution of the posture
func (p Posture) Risk() int {
	switch p {
	case Bending:
		return 25
	case Lying:
		return 50
	case Kneeling:
		return 15
	default:
		return 0
	}
}

// Classify determines a person's posture from the vertical spacing of
// their shoulder, hip, and ankle joints.  A collapsed shoulder to hip
// distance indicates bending, a collapsed hip to ankle distance
// indicates lying down
func Classify(kps []result.KeyPoint) Posture {

	if len(kps) < 17 {
		return Unknown
	}

	shoulder := kps[KeyPointLeftShoulder]
	hip := kps[KeyPointLeftHip]
	ankle := kps[KeyPointLeftAnkle]

	if shoulder.Score < minKeyPointScore || hip.Score < minKeyPointScore {
		return Unknown
	}

	shoulderToHip := math.Abs(float64(shoulder.Y - hip.Y))
	hipToAnkle := math.Abs(float64(hip.Y - ankle.Y))

	// ankle joints are often occluded, without them only the bending
	// check is reliable
	ankleKnown := ankle.Score >= minKeyPointScore

	switch {
	case shoulderToHip < 40:
		return Bending
	case ankleKnown && hipToAnkle < 30:
		return Lying
	case ankleKnown && shoulderToHip > 100 && hipToAnkle < 40:
		return Kneeling
	default:
		return Standing
	}
}
