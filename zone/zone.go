/*
Package zone manages the danger zone polygons monitored by the risk
pipeline.  Zones are defined in frame pixel coordinates and each carries
a base risk value applied to any person whose center point falls inside
the polygon.
*/
package zone

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
)

// Match is the result of looking up a point against the zone set
type Match struct {
	// InDanger is true when the point falls inside a danger zone
	InDanger bool
	// Name of the matched zone, or "SAFE" when no danger zone contains
	// the point
	Name string
	// Risk is the matched zone's base risk value, 0 when safe
	Risk int
	// Zone is the matched zone definition, nil when safe
	Zone *Zone
}

// Zone defines a single monitored area as a closed polygon
type Zone struct {
	// Label is the short identifier used in lookups and alerts
	Label string `yaml:"label"`
	// Name is the human readable name drawn on the video overlay
	Name string `yaml:"name"`
	// Description of the hazard
	Description string `yaml:"description,omitempty"`
	// Risk is the base risk value applied to a person inside the zone
	Risk int `yaml:"risk"`
	// Color is the zone overlay color in #RRGGBB hex form
	Color string `yaml:"color"`
	// Safe marks a zone drawn for reference only, it contributes no risk
	Safe bool `yaml:"safe,omitempty"`
	// Points are the polygon corner points in frame pixel coordinates
	Points [][2]int `yaml:"points"`
}

// Polygon returns the zone corner points for drawing
func (z *Zone) Polygon() []image.Point {
	pts := make([]image.Point, len(z.Points))
	for i, p := range z.Points {
		pts[i] = image.Pt(p[0], p[1])
	}
	return pts
}

// RGBA parses the zone's hex color string.  An unparsable color falls
// back to red
func (z *Zone) RGBA() color.RGBA {
	c, err := parseHexColor(z.Color)
	if err != nil {
		return color.RGBA{R: 255, A: 255}
	}
	return c
}

// Contains reports whether the point lies inside the zone polygon.
// Points exactly on an edge count as inside
func (z *Zone) Contains(pt image.Point) bool {

	n := len(z.Points)

	if n < 3 {
		return false
	}

	inside := false
	j := n - 1

	for i := 0; i < n; i++ {

		xi, yi := z.Points[i][0], z.Points[i][1]
		xj, yj := z.Points[j][0], z.Points[j][1]

		if onSegment(pt.X, pt.Y, xi, yi, xj, yj) {
			return true
		}

		// ray cast to the right of the point counting edge crossings
		if (yi > pt.Y) != (yj > pt.Y) {
			xCross := float64(xj-xi)*float64(pt.Y-yi)/float64(yj-yi) + float64(xi)
			if float64(pt.X) < xCross {
				inside = !inside
			}
		}

		j = i
	}

	return inside
}

// onSegment reports whether point (px,py) lies on the segment from
// (x1,y1) to (x2,y2)
func onSegment(px, py, x1, y1, x2, y2 int) bool {

	// collinearity via cross product
	if (x2-x1)*(py-y1)-(y2-y1)*(px-x1) != 0 {
		return false
	}

	return min(x1, x2) <= px && px <= max(x1, x2) &&
		min(y1, y2) <= py && py <= max(y1, y2)
}

// Set holds the zones monitored for a camera view
type Set struct {
	zones []Zone
}

// NewSet creates a zone set after validating each zone definition
func NewSet(zones []Zone) (*Set, error) {

	for i := range zones {
		if err := validateZone(&zones[i]); err != nil {
			return nil, fmt.Errorf("zone %d (%s): %w", i, zones[i].Label, err)
		}
	}

	return &Set{zones: zones}, nil
}

// Zones returns all zone definitions including safe reference zones
func (s *Set) Zones() []Zone {
	return s.zones
}

// Lookup tests the point against each danger zone in definition order
// and returns the first match.  Safe reference zones are skipped
func (s *Set) Lookup(pt image.Point) Match {

	for i := range s.zones {

		z := &s.zones[i]

		if z.Safe {
			continue
		}

		if z.Contains(pt) {
			return Match{
				InDanger: true,
				Name:     z.Label,
				Risk:     z.Risk,
				Zone:     z,
			}
		}
	}

	return Match{Name: "SAFE"}
}

// validateZone checks a zone definition is usable
func validateZone(z *Zone) error {

	if z.Label == "" {
		return fmt.Errorf("label is required")
	}

	if len(z.Points) < 3 {
		return fmt.Errorf("polygon needs at least 3 points, got %d", len(z.Points))
	}

	if z.Risk < 0 || z.Risk > 100 {
		return fmt.Errorf("risk %d out of range 0-100", z.Risk)
	}

	if z.Safe && z.Risk != 0 {
		return fmt.Errorf("safe zone must have risk 0")
	}

	if z.Color != "" {
		if _, err := parseHexColor(z.Color); err != nil {
			return err
		}
	}

	if z.Name == "" {
		z.Name = z.Label
	}

	return nil
}

// parseHexColor parses a #RRGGBB color string
func parseHexColor(s string) (color.RGBA, error) {

	s = strings.TrimPrefix(s, "#")

	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q, want RRGGBB hex", s)
	}

	v, err := strconv.ParseUint(s, 16, 32)

	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}

	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}, nil
}

// DefaultZones returns the factory floor example zone layout used when
// no zones file is configured
func DefaultZones() []Zone {
	return []Zone{
		{
			Label:       "HEAVY_MACHINERY",
			Name:        "HEAVY MACHINERY AREA",
			Description: "Industrial machinery - highest danger",
			Risk:        40,
			Color:       "#FF0000",
			Points:      [][2]int{{300, 200}, {900, 200}, {900, 600}, {300, 600}},
		},
		{
			Label:       "ELECTRICAL",
			Name:        "ELECTRICAL AREA",
			Description: "High voltage equipment",
			Risk:        35,
			Color:       "#FFA500",
			Points:      [][2]int{{500, 150}, {700, 150}, {700, 400}, {500, 400}},
		},
		{
			Label:       "CHEMICAL",
			Name:        "CHEMICAL STORAGE",
			Description: "Hazardous materials area",
			Risk:        30,
			Color:       "#FFFF00",
			Points:      [][2]int{{100, 100}, {250, 100}, {250, 300}, {100, 300}},
		},
		{
			Label:       "OFFICE",
			Name:        "OFFICE AREA",
			Description: "Safe zone",
			Risk:        0,
			Color:       "#00FF00",
			Safe:        true,
			Points:      [][2]int{{1000, 100}, {1280, 100}, {1280, 300}, {1000, 300}},
		},
	}
}
