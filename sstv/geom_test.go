package sstv

import "testing"

func TestLetterboxWideSource(t *testing.T) {
	// A 2:1 source inside a 1:1 box should be centred with bars top/bottom.
	out := Letterbox(100, 100, Rect{0, 0, 200, 100})
	if out.W != 100 {
		t.Errorf("W = %d, want 100", out.W)
	}
	if out.H != 50 {
		t.Errorf("H = %d, want 50", out.H)
	}
	if out.Y != 25 {
		t.Errorf("Y = %d, want 25", out.Y)
	}
	if out.X != 0 {
		t.Errorf("X = %d, want 0", out.X)
	}
}

func TestLetterboxTallSource(t *testing.T) {
	// A 1:2 source inside a 1:1 box should be centred with bars left/right.
	out := Letterbox(100, 100, Rect{0, 0, 100, 200})
	if out.H != 100 {
		t.Errorf("H = %d, want 100", out.H)
	}
	if out.W != 50 {
		t.Errorf("W = %d, want 50", out.W)
	}
	if out.X != 25 {
		t.Errorf("X = %d, want 25", out.X)
	}
	if out.Y != 0 {
		t.Errorf("Y = %d, want 0", out.Y)
	}
}

func TestLetterboxMatchingAspect(t *testing.T) {
	out := Letterbox(320, 240, Rect{0, 0, 640, 480})
	if out.W != 320 || out.H != 240 {
		t.Errorf("got %+v, want full box 320x240", out)
	}
	if out.X != 0 || out.Y != 0 {
		t.Errorf("got offset %d,%d, want 0,0", out.X, out.Y)
	}
}
