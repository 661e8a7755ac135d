package zone

import (
	"fmt"

	clipper "github.com/ctessum/go.clipper"
)

// ApplyMargin grows every danger zone polygon outward by the given
// number of pixels, so a person is flagged before stepping over the
// painted boundary.  Safe reference zones are left unchanged
func (s *Set) ApplyMargin(pixels int) error {

	if pixels <= 0 {
		return nil
	}

	for i := range s.zones {

		if s.zones[i].Safe {
			continue
		}

		grown, err := inflate(s.zones[i].Points, pixels)

		if err != nil {
			return fmt.Errorf("zone %s: %w", s.zones[i].Label, err)
		}

		s.zones[i].Points = grown
	}

	return nil
}

// inflate offsets a closed polygon outward by the given distance using
// a miter join so rectangular zones keep square corners
func inflate(points [][2]int, distance int) ([][2]int, error) {

	var path clipper.Path

	for _, pt := range points {
		path = append(path, &clipper.IntPoint{
			X: clipper.CInt(pt[0]),
			Y: clipper.CInt(pt[1]),
		})
	}

	co := clipper.NewClipperOffset()
	co.AddPath(path, clipper.JtMiter, clipper.EtClosedPolygon)

	solution := co.Execute(float64(distance))

	if len(solution) == 0 {
		return nil, fmt.Errorf("polygon offset produced no solution")
	}

	// the offset of a simple closed polygon yields a single path
	out := make([][2]int, 0, len(solution[0]))

	for _, pt := range solution[0] {
		out = append(out, [2]int{int(pt.X), int(pt.Y)})
	}

	return out, nil
}
