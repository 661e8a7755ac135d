package pose

import (
	"testing"

	"github.com/phris-ai/phris/detect/result"
	"github.com/phris-ai/phris/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeTrack creates an activated track with the given box and ID
func makeTrack(id int, x, y, w, h float32) *tracker.STrack {
	s := tracker.NewSTrack(tracker.NewRect(x, y, w, h), 0.9, int64(id), 0)
	s.Activate(1, id)
	return s
}

func TestMatchToTracks(t *testing.T) {

	tracks := []*tracker.STrack{
		makeTrack(1, 100, 100, 50, 120),
		makeTrack(2, 400, 100, 50, 120),
		makeTrack(3, 700, 100, 50, 120),
	}

	boxes := []result.DetectResult{
		// overlaps track 2
		{Box: result.BoxRect{Left: 405, Top: 105, Right: 455, Bottom: 225}},
		// overlaps track 1
		{Box: result.BoxRect{Left: 102, Top: 98, Right: 152, Bottom: 218}},
	}

	keyPoints := [][]result.KeyPoint{
		makeKeyPoints(160, 190, 260, 0.9), // bending
		makeKeyPoints(100, 180, 260, 0.9), // standing
	}

	matched := MatchToTracks(tracks, boxes, keyPoints)

	require.Len(t, matched, 2)

	p1, ok := matched[1]
	require.True(t, ok)
	assert.Equal(t, Standing, p1.Posture)
	assert.Len(t, p1.KeyPoints, 17)

	p2, ok := matched[2]
	require.True(t, ok)
	assert.Equal(t, Bending, p2.Posture)

	// track 3 has no overlapping pose detection
	_, ok = matched[3]
	assert.False(t, ok)
}

func TestMatchToTracksNoPoses(t *testing.T) {

	tracks := []*tracker.STrack{makeTrack(1, 100, 100, 50, 120)}

	matched := MatchToTracks(tracks, nil, nil)
	assert.Empty(t, matched)
}

func TestMatchToTracksLowOverlap(t *testing.T) {

	tracks := []*tracker.STrack{makeTrack(1, 100, 100, 50, 120)}

	// pose box barely touches the track box, below the IoU floor
	boxes := []result.DetectResult{
		{Box: result.BoxRect{Left: 145, Top: 215, Right: 195, Bottom: 335}},
	}
	keyPoints := [][]result.KeyPoint{makeKeyPoints(100, 180, 260, 0.9)}

	matched := MatchToTracks(tracks, boxes, keyPoints)
	assert.Empty(t, matched)
}
