package render

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/phris-ai/phris/zone"
)

// zoneFillAlpha is the opacity of the polygon fill
const zoneFillAlpha = 0.2

// Zones draws each zone as a semi-transparent filled polygon with a
// solid border and its name at the first corner point
func Zones(img *gocv.Mat, set *zone.Set, font Font, lineThickness int) {

	zones := set.Zones()

	if len(zones) == 0 {
		return
	}

	// fill all polygons on one overlay then blend it back in a single
	// pass
	overlay := img.Clone()
	defer overlay.Close()

	for i := range zones {
		pts := gocv.NewPointsVectorFromPoints([][]image.Point{zones[i].Polygon()})
		gocv.FillPoly(&overlay, pts, zones[i].RGBA())
		pts.Close()
	}

	gocv.AddWeighted(overlay, zoneFillAlpha, *img, 1-zoneFillAlpha, 0, img)

	// borders and labels go on top of the blend
	for i := range zones {

		clr := zones[i].RGBA()

		pts := gocv.NewPointsVectorFromPoints([][]image.Point{zones[i].Polygon()})
		gocv.Polylines(img, pts, true, clr, lineThickness)
		pts.Close()

		corner := zones[i].Polygon()[0]

		gocv.PutTextWithParams(img, zones[i].Name,
			image.Pt(corner.X, corner.Y-6),
			font.Face, 0.6, clr, 2, font.LineType, false)
	}
}
