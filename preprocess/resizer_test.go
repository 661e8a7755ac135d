package preprocess

import (
	"image/color"
	"testing"

	"gocv.io/x/gocv"
)

var (
	black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
)

func TestLetterBoxResize(t *testing.T) {

	tests := []struct {
		srcWidth      int
		srcHeight     int
		resizeWidth   int
		resizeHeight  int
		expectedXPad  int
		expectedYPad  int
		expectedScale float32
	}{
		{1280, 720, 640, 640, 0, 140, 0.50},
		{800, 1000, 640, 640, 64, 0, 0.64},
		{800, 800, 640, 640, 0, 0, 0.8},
	}

	for _, tc := range tests {
		img := gocv.NewMatWithSize(tc.srcHeight, tc.srcWidth, gocv.MatTypeCV8UC1)

		resizedImg := gocv.NewMat()

		resizer := NewResizer(tc.srcWidth, tc.srcHeight, tc.resizeWidth, tc.resizeHeight)

		resizer.LetterBoxResize(img, &resizedImg, black)

		if resizer.XPad() != tc.expectedXPad || resizer.YPad() != tc.expectedYPad {
			t.Errorf("src (%d, %d): expected XPad=%d, YPad=%d, got xPad=%d, yPad=%d",
				tc.srcWidth, tc.srcHeight, tc.expectedXPad, tc.expectedYPad, resizer.XPad(), resizer.YPad())
		}

		if resizer.ScaleFactor() != tc.expectedScale {
			t.Errorf("src (%d, %d): expected scale %f, got %f",
				tc.srcWidth, tc.srcHeight, tc.expectedScale, resizer.ScaleFactor())
		}

		img.Close()
		resizedImg.Close()
		resizer.Close()
	}
}

func TestMapBox(t *testing.T) {

	// 1280x720 frame letterboxed to 640x640, scale 0.5, yPad 140
	resizer := NewResizer(1280, 720, 640, 640)
	defer resizer.Close()

	box := resizer.MapBox(100, 240, 300, 400)

	if box.Left != 200 || box.Top != 200 || box.Right != 600 || box.Bottom != 520 {
		t.Errorf("expected box (200,200,600,520), got (%d,%d,%d,%d)",
			box.Left, box.Top, box.Right, box.Bottom)
	}

	// coordinates past the frame edges clamp to the frame
	box = resizer.MapBox(-50, 100, 1500, 700)

	if box.Left != 0 || box.Top != 0 || box.Right != 1280 || box.Bottom != 720 {
		t.Errorf("expected clamped box (0,0,1280,720), got (%d,%d,%d,%d)",
			box.Left, box.Top, box.Right, box.Bottom)
	}
}
