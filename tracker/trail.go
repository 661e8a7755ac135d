package tracker

import (
	"image"
	"sync"
)

// Track represents the movement history of a single person
type Track struct {
	points []image.Point
}

// Trail keeps a history of center points for each tracked person, used
// for drawing a movement trail on the output frame
type Trail struct {
	// size is the maximum number of most recent points to keep per person
	size int
	// history of tracked points keyed by track ID
	history map[int]*Track
	sync.Mutex
}

// NewTrail returns a new trail history instance.  Size is the number of
// most recent points to keep and specifies the maximum length of the
// trail to maintain
func NewTrail(size int) *Trail {
	return &Trail{
		size:    size,
		history: make(map[int]*Track),
	}
}

// Reset clears all history
func (t *Trail) Reset() {
	t.Lock()
	defer t.Unlock()

	t.history = make(map[int]*Track)
}

// Add records the person's current center point in their track history
func (t *Trail) Add(strack *STrack) {
	t.Lock()
	defer t.Unlock()

	if _, exists := t.history[strack.GetTrackID()]; !exists {
		t.history[strack.GetTrackID()] = &Track{}
	}

	track := t.history[strack.GetTrackID()]
	track.points = append(track.points, strack.GetRect().Center())

	// drop the oldest point once the history limit is exceeded
	if len(track.points) > t.size {
		track.points = track.points[1:]
	}
}

// GetPoints gets the point history for a specific track id
func (t *Trail) GetPoints(id int) []image.Point {
	t.Lock()
	defer t.Unlock()

	if _, exists := t.history[id]; exists {
		return t.history[id].points
	}

	// no history yet
	return nil
}

// Remove deletes the history for a track id that is no longer active
func (t *Trail) Remove(id int) {
	t.Lock()
	defer t.Unlock()

	delete(t.history, id)
}
