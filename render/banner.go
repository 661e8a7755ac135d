package render

import (
	"fmt"
	"image"
	"strings"

	"gocv.io/x/gocv"

	"github.com/phris-ai/phris/alert"
)

// banner geometry, anchored to the top left corner
const (
	bannerWidth  = 790
	bannerHeight = 110
	bannerAlpha  = 0.6
)

// Banner draws the red critical alert banner across the top of the
// frame listing each person at critical risk
func Banner(img *gocv.Mat, people []alert.Person) {

	if len(people) == 0 {
		return
	}

	overlay := img.Clone()
	gocv.Rectangle(&overlay,
		image.Rect(10, 10, 10+bannerWidth, 10+bannerHeight),
		Red, -1)
	gocv.AddWeighted(overlay, bannerAlpha, *img, 1-bannerAlpha, 0, img)
	overlay.Close()

	title := TitleFont()

	gocv.PutTextWithParams(img, "CRITICAL RISK ALERT!",
		image.Pt(30, 50),
		title.Face, 1.2, Yellow, 3, title.LineType, false)

	var sb strings.Builder
	sb.WriteString("IMMEDIATE ACTION NEEDED FOR: ")

	for _, p := range people {
		fmt.Fprintf(&sb, "Person %d (Risk:%d) ", p.ID, p.Score)
	}

	gocv.PutTextWithParams(img, sb.String(),
		image.Pt(30, 100),
		title.Face, 0.7, Yellow, 2, title.LineType, false)
}
