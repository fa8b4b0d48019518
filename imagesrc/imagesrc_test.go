package imagesrc

import (
	"image"
	"image/color"
	"testing"

	"sstvgo/sstv"
)

func TestProviderRemapsNonZeroOrigin(t *testing.T) {
	full := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			full.Set(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), A: 255})
		}
	}

	// A sub-image has a non-zero-origin Bounds(); the provider must still
	// address it as if it started at (0, 0).
	sub := full.SubImage(image.Rect(2, 3, 8, 8)).(*image.RGBA)
	src := FromImage(sub)

	if src.Width() != 6 || src.Height() != 5 {
		t.Fatalf("sub-image source is %dx%d, want 6x5", src.Width(), src.Height())
	}

	r, g, _, _ := src.Provider()(0, 0)
	if r != 20 || g != 30 {
		t.Errorf("provider(0,0) = (%d, %d), want the pixel at full-image (2, 3) = (20, 30)", r, g)
	}
}

func TestTestPatternBars(t *testing.T) {
	src := TestPattern(70, 10)
	p := src.Provider()

	r, g, b, a := p(0, 0)
	if r != 192 || g != 192 || b != 192 || a != 255 {
		t.Errorf("leftmost bar = (%d,%d,%d,%d), want gray (192,192,192,255)", r, g, b, a)
	}
	r, g, b, _ = p(69, 9)
	if r != 0 || g != 0 || b != 192 {
		t.Errorf("rightmost bar = (%d,%d,%d), want blue (0,0,192)", r, g, b)
	}
}

func TestLetterboxFromSource(t *testing.T) {
	// A wide source into a taller mode frame gets horizontal bars; the
	// rect the encoder is handed must match geometry computed directly.
	src := TestPattern(320, 100)
	got := sstv.Letterbox(320, 240, sstv.Rect{W: src.Width(), H: src.Height()})
	if got.X != 0 || got.W != 320 {
		t.Errorf("letterbox X/W = %d/%d, want 0/320", got.X, got.W)
	}
	if got.Y < 69 || got.Y > 71 || got.H < 99 || got.H > 101 {
		t.Errorf("letterbox Y/H = %d/%d, want 70/100 within 1", got.Y, got.H)
	}
}
