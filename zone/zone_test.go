package zone

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZoneContains(t *testing.T) {

	z := Zone{
		Label:  "TEST",
		Risk:   40,
		Points: [][2]int{{100, 100}, {300, 100}, {300, 300}, {100, 300}},
	}

	tests := []struct {
		name string
		pt   image.Point
		want bool
	}{
		{"center", image.Pt(200, 200), true},
		{"on edge", image.Pt(100, 200), true},
		{"on corner", image.Pt(100, 100), true},
		{"outside left", image.Pt(99, 200), false},
		{"outside below", image.Pt(200, 301), false},
		{"far away", image.Pt(500, 500), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, z.Contains(tc.pt))
		})
	}
}

func TestZoneContainsTriangle(t *testing.T) {

	z := Zone{
		Label:  "TRI",
		Risk:   30,
		Points: [][2]int{{0, 0}, {100, 0}, {50, 100}},
	}

	assert.True(t, z.Contains(image.Pt(50, 50)))
	assert.False(t, z.Contains(image.Pt(5, 90)))
	assert.False(t, z.Contains(image.Pt(95, 90)))
}

func TestSetLookup(t *testing.T) {

	set, err := NewSet(DefaultZones())
	require.NoError(t, err)

	// point inside both the machinery and electrical zones, the first
	// defined zone wins
	m := set.Lookup(image.Pt(600, 300))
	assert.True(t, m.InDanger)
	assert.Equal(t, "HEAVY_MACHINERY", m.Name)
	assert.Equal(t, 40, m.Risk)
	require.NotNil(t, m.Zone)
	assert.Equal(t, "HEAVY MACHINERY AREA", m.Zone.Name)

	// point only inside the chemical zone
	m = set.Lookup(image.Pt(150, 150))
	assert.True(t, m.InDanger)
	assert.Equal(t, "CHEMICAL", m.Name)
	assert.Equal(t, 30, m.Risk)

	// point inside the safe office zone is not a danger match
	m = set.Lookup(image.Pt(1100, 200))
	assert.False(t, m.InDanger)
	assert.Equal(t, "SAFE", m.Name)
	assert.Equal(t, 0, m.Risk)
	assert.Nil(t, m.Zone)

	// point in open floor space
	m = set.Lookup(image.Pt(50, 650))
	assert.False(t, m.InDanger)
	assert.Equal(t, "SAFE", m.Name)
}

func TestNewSetValidation(t *testing.T) {

	tests := []struct {
		name string
		zone Zone
	}{
		{"missing label", Zone{Risk: 10, Points: [][2]int{{0, 0}, {1, 0}, {1, 1}}}},
		{"too few points", Zone{Label: "A", Risk: 10, Points: [][2]int{{0, 0}, {1, 1}}}},
		{"risk out of range", Zone{Label: "A", Risk: 150, Points: [][2]int{{0, 0}, {1, 0}, {1, 1}}}},
		{"safe zone with risk", Zone{Label: "A", Risk: 10, Safe: true, Points: [][2]int{{0, 0}, {1, 0}, {1, 1}}}},
		{"bad color", Zone{Label: "A", Risk: 10, Color: "red", Points: [][2]int{{0, 0}, {1, 0}, {1, 1}}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSet([]Zone{tc.zone})
			assert.Error(t, err)
		})
	}
}

func TestZoneRGBA(t *testing.T) {

	z := Zone{Color: "#FFA500"}
	assert.Equal(t, color.RGBA{R: 255, G: 165, B: 0, A: 255}, z.RGBA())

	// unparsable color falls back to red
	z = Zone{Color: "nope"}
	assert.Equal(t, color.RGBA{R: 255, A: 255}, z.RGBA())
}

func TestLoadFile(t *testing.T) {

	content := `zones:
  - label: LOADING_DOCK
    name: LOADING DOCK
    description: Forklift traffic
    risk: 35
    color: "#FF0000"
    points:
      - [100, 100]
      - [400, 100]
      - [400, 300]
      - [100, 300]
  - label: WALKWAY
    name: PEDESTRIAN WALKWAY
    risk: 0
    color: "#00FF00"
    safe: true
    points:
      - [500, 100]
      - [700, 100]
      - [700, 300]
      - [500, 300]
`

	path := filepath.Join(t.TempDir(), "zones.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	set, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, set.Zones(), 2)

	m := set.Lookup(image.Pt(200, 200))
	assert.True(t, m.InDanger)
	assert.Equal(t, "LOADING_DOCK", m.Name)
	assert.Equal(t, 35, m.Risk)

	// safe zone contributes no risk
	m = set.Lookup(image.Pt(600, 200))
	assert.False(t, m.InDanger)
}

func TestLoadFileErrors(t *testing.T) {

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("zones: []\n"), 0644))

	_, err = LoadFile(path)
	assert.Error(t, err)
}
