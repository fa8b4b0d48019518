// Package imagesrc adapts stdlib images (loaded, decoded, or
// synthesised) into the pixel-provider callback the sstv encoder samples
// from, remapping arbitrary source bounds to the (0,0)-origin coordinate
// space the encoder expects.
package imagesrc

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"sstvgo/sstv"
)

// Source is a sized, sampleable image. It satisfies the encoder's
// PixelProviderFunc contract via Provider.
type Source struct {
	img  image.Image
	w, h int
}

// FromImage wraps an already-decoded stdlib image.Image.
func FromImage(img image.Image) *Source {
	b := img.Bounds()
	return &Source{img: img, w: b.Dx(), h: b.Dy()}
}

// Load decodes a JPEG, PNG, or GIF file at path.
func Load(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imagesrc: opening %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("imagesrc: decoding %s: %w", path, err)
	}
	return FromImage(img), nil
}

// Width and Height report the source's pixel dimensions.
func (s *Source) Width() int  { return s.w }
func (s *Source) Height() int { return s.h }

// Provider returns a sstv.PixelProviderFunc that samples this source,
// translating (x, y) into the image's own (possibly non-zero-origin)
// bounds.
func (s *Source) Provider() sstv.PixelProviderFunc {
	origin := s.img.Bounds().Min
	return func(x, y int) (r, g, b, a uint8) {
		rr, gg, bb, aa := s.img.At(origin.X+x, origin.Y+y).RGBA()
		return uint8(rr >> 8), uint8(gg >> 8), uint8(bb >> 8), uint8(aa >> 8)
	}
}

// smpteBarColors are the 7 vertical stripes of a standard SMPTE color
// bars test pattern.
var smpteBarColors = [7][3]uint8{
	{192, 192, 192}, // Gray
	{192, 192, 0},   // Yellow
	{0, 192, 192},   // Cyan
	{0, 192, 0},     // Green
	{192, 0, 192},   // Magenta
	{192, 0, 0},     // Red
	{0, 0, 192},     // Blue
}

// TestPattern returns a synthesised SMPTE color-bars Source at the given
// size, for exercising an encoder without a real source image.
func TestPattern(width, height int) *Source {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	barWidth := width / len(smpteBarColors)
	if barWidth == 0 {
		barWidth = 1
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			barIdx := x / barWidth
			if barIdx >= len(smpteBarColors) {
				barIdx = len(smpteBarColors) - 1
			}
			c := smpteBarColors[barIdx]
			img.Set(x, y, color.RGBA{R: c[0], G: c[1], B: c[2], A: 255})
		}
	}
	return FromImage(img)
}
