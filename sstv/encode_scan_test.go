package sstv

import "testing"

func TestPitchFromByteRange(t *testing.T) {
	if got := pitchFromByte(0); got != 1500 {
		t.Errorf("pitchFromByte(0) = %v, want 1500", got)
	}
	if got := pitchFromByte(255); got != 2300 {
		t.Errorf("pitchFromByte(255) = %v, want 2300", got)
	}
}

func TestScanSweep(t *testing.T) {
	mode := Mode{Width: 100}
	if got := ScanSweep(mode, 0, false); got != 1500 {
		t.Errorf("ScanSweep at x=0 = %v, want 1500", got)
	}
	if got := ScanSweep(mode, 100, false); got != 2300 {
		t.Errorf("ScanSweep at x=width = %v, want 2300", got)
	}
	if got := ScanSweep(mode, 0, true); got != 2300 {
		t.Errorf("ScanSweep inverted at x=0 = %v, want 2300", got)
	}
}

func TestScanMonochromeNilPixel(t *testing.T) {
	ins := Instruction{}
	if got := ScanMonochrome(ins, 0, 0, nil, false); got != 1500 {
		t.Errorf("ScanMonochrome(nil, no checkerboard) = %v, want 1500", got)
	}
}

func TestScanMonochromeGray(t *testing.T) {
	ins := Instruction{}
	pixel := [4]uint8{128, 128, 128, 255}
	got := ScanMonochrome(ins, 0, 0, &pixel, false)
	want := pitchFromByte(128)
	if got != want {
		t.Errorf("ScanMonochrome(gray) = %v, want %v", got, want)
	}
}

func TestScanRGBChannelSelection(t *testing.T) {
	pixel := [4]uint8{10, 20, 30, 255}
	for channel, want := range map[int]uint8{0: 10, 1: 20, 2: 30} {
		ins := Instruction{Pitch: float64(channel)}
		got := ScanRGB(ins, 0, 0, &pixel, false)
		if got != pitchFromByte(float64(want)) {
			t.Errorf("ScanRGB channel %d = %v, want %v", channel, got, pitchFromByte(float64(want)))
		}
	}
}

func TestClampHelpers(t *testing.T) {
	if clamp(-1, 0, 1) != 0 {
		t.Error("clamp did not floor at lo")
	}
	if clamp(2, 0, 1) != 1 {
		t.Error("clamp did not ceiling at hi")
	}
	if clampInt(-5, 0, 10) != 0 || clampInt(50, 0, 10) != 10 {
		t.Error("clampInt out of range")
	}
}
