package zone

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyMargin(t *testing.T) {

	zones := []Zone{
		{
			Label:  "PRESS",
			Risk:   40,
			Points: [][2]int{{100, 100}, {200, 100}, {200, 200}, {100, 200}},
		},
		{
			Label:  "BREAK_ROOM",
			Risk:   0,
			Safe:   true,
			Points: [][2]int{{300, 100}, {400, 100}, {400, 200}, {300, 200}},
		},
	}

	set, err := NewSet(zones)
	require.NoError(t, err)

	require.NoError(t, set.ApplyMargin(10))

	press := &set.Zones()[0]

	// a point just outside the painted boundary is now inside the zone
	assert.True(t, press.Contains(image.Pt(95, 150)))
	assert.True(t, press.Contains(image.Pt(150, 205)))

	// points beyond the margin stay outside
	assert.False(t, press.Contains(image.Pt(85, 150)))

	// safe reference zones are not grown
	breakRoom := &set.Zones()[1]
	assert.Equal(t, [][2]int{{300, 100}, {400, 100}, {400, 200}, {300, 200}},
		breakRoom.Points)
}

func TestApplyMarginZero(t *testing.T) {

	set, err := NewSet([]Zone{
		{
			Label:  "A",
			Risk:   20,
			Points: [][2]int{{0, 0}, {10, 0}, {10, 10}, {0, 10}},
		},
	})
	require.NoError(t, err)

	require.NoError(t, set.ApplyMargin(0))

	assert.Equal(t, [][2]int{{0, 0}, {10, 0}, {10, 10}, {0, 10}},
		set.Zones()[0].Points)
}
