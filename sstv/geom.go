package sstv

// Rect is an integer rectangle used both for the encoder's source-image
// bounds and for the letterbox placement computed by Letterbox.
type Rect struct {
	X, Y int
	W, H int
}

// Letterbox computes the rectangle inside a box of size (boxW, boxH) that
// preserves the aspect ratio of rect. A source wider than it is tall spans
// the box's full width; any other source spans its full height. The other
// axis is not limited to the box: a 300x250 source in a 320x240 box gets a
// height of 266.
func Letterbox(boxW, boxH int, rect Rect) Rect {
	out := Rect{0, 0, boxW, boxH}

	aspectBox := float64(boxW) / float64(boxH)
	aspectRect := float64(rect.W) / float64(rect.H)
	scalar := aspectBox / aspectRect

	if rect.W > rect.H {
		out.H = int(float64(boxH) * scalar)
		out.Y = (boxH - out.H) / 2
	} else {
		out.W = int(float64(boxH) * (aspectBox / scalar))
		out.X = (boxW - out.W) / 2
	}

	return out
}
