package pose

import (
	"testing"

	"github.com/phris-ai/phris/detect/result"
	"github.com/stretchr/testify/assert"
)

// makeKeyPoints builds a full 17 point skeleton with the given joint
// heights, all other joints are placed at y=0 with full confidence
func makeKeyPoints(shoulderY, hipY, ankleY int, ankleScore float32) []result.KeyPoint {

	kps := make([]result.KeyPoint, 17)

	for i := range kps {
		kps[i] = result.KeyPoint{X: 100, Y: 0, Score: 0.9}
	}

	kps[KeyPointLeftShoulder].Y = shoulderY
	kps[KeyPointRightShoulder].Y = shoulderY
	kps[KeyPointLeftHip].Y = hipY
	kps[KeyPointRightHip].Y = hipY
	kps[KeyPointLeftAnkle].Y = ankleY
	kps[KeyPointRightAnkle].Y = ankleY
	kps[KeyPointLeftAnkle].Score = ankleScore
	kps[KeyPointRightAnkle].Score = ankleScore

	return kps
}

func TestClassify(t *testing.T) {

	tests := []struct {
		name string
		kps  []result.KeyPoint
		want Posture
	}{
		{
			name: "standing upright",
			kps:  makeKeyPoints(100, 180, 260, 0.9),
			want: Standing,
		},
		{
			name: "bending over",
			kps:  makeKeyPoints(160, 190, 260, 0.9),
			want: Bending,
		},
		{
			name: "lying down",
			kps:  makeKeyPoints(200, 250, 270, 0.9),
			want: Lying,
		},
		{
			name: "kneeling",
			kps:  makeKeyPoints(100, 220, 255, 0.9),
			want: Kneeling,
		},
		{
			name: "occluded ankles default to standing",
			kps:  makeKeyPoints(100, 180, 185, 0.1),
			want: Standing,
		},
		{
			name: "incomplete skeleton",
			kps:  make([]result.KeyPoint, 10),
			want: Unknown,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.kps))
		})
	}
}

func TestClassifyLowConfidence(t *testing.T) {

	kps := makeKeyPoints(100, 180, 260, 0.9)
	kps[KeyPointLeftShoulder].Score = 0.1

	assert.Equal(t, Unknown, Classify(kps))

	kps = makeKeyPoints(100, 180, 260, 0.9)
	kps[KeyPointLeftHip].Score = 0.1

	assert.Equal(t, Unknown, Classify(kps))
}

func TestPostureRisk(t *testing.T) {

	assert.Equal(t, 0, Standing.Risk())
	assert.Equal(t, 25, Bending.Risk())
	assert.Equal(t, 50, Lying.Risk())
	assert.Equal(t, 15, Kneeling.Risk())
	assert.Equal(t, 0, Unknown.Risk())
}

func TestPostureString(t *testing.T) {

	assert.Equal(t, "STANDING", Standing.String())
	assert.Equal(t, "BENDING", Bending.String())
	assert.Equal(t, "LYING", Lying.String())
	assert.Equal(t, "KNEELING", Kneeling.String())
	assert.Equal(t, "UNKNOWN", Unknown.String())
	assert.Equal(t, "UNKNOWN", Posture(99).String())
}
