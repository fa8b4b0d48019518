package sstv

import (
	"math"
	"testing"
)

func TestDecodeSamplesEmptyInput(t *testing.T) {
	var d Decoder
	err := d.DecodeSamples(make([]float32, 10), 8000, nil, false)
	if err == nil {
		t.Fatal("expected an error for a too-short buffer")
	}
	de, ok := err.(*DecodeError)
	if !ok || de.Kind != EmptyInput {
		t.Errorf("got error %v, want kind EmptyInput", err)
	}
}

func TestDecodeSamplesSilenceIsUnknownMode(t *testing.T) {
	// Silence demodulates to a steady low frequency, which decodes every
	// VIS bit as "1" (closer to 1100 Hz than 1300 Hz); 0x7F isn't any
	// catalogue mode's VIS code.
	hdr := BuildVOXHeader(nil)
	hdr = BuildVISHeader(hdr, 0)
	var totalMS float64
	for _, ins := range hdr {
		totalMS += ins.LengthMS
	}
	sampleRate := 8000
	n := int(totalMS/1000*float64(sampleRate)) + 200

	var d Decoder
	err := d.DecodeSamples(make([]float32, n), sampleRate, nil, false)
	if err == nil {
		t.Fatal("expected an error decoding silence")
	}
	de, ok := err.(*DecodeError)
	if !ok || de.Kind != UnknownMode {
		t.Errorf("got error %v, want kind UnknownMode", err)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	mode, ok := GetModeByName("B&W 8")
	if !ok {
		t.Fatal("B&W 8 missing from catalogue")
	}

	const sampleRate = 8000
	e := NewEncoder()
	e.SetMode(mode)
	e.SetSampleRate(sampleRate)
	e.SetSourceSize(mode.Width, mode.Lines)
	e.SetLetterbox(Rect{0, 0, mode.Width, mode.Lines})
	e.SetPixelProvider(func(x, y int) (r, g, b, a uint8) {
		// A horizontal gradient, dark on the left and bright on the right.
		v := uint8(x * 255 / mode.Width)
		return v, v, v, 255
	})
	pcm := e.RunAll()

	var d Decoder
	if err := d.DecodeSamples(pcm, sampleRate, nil, false); err != nil {
		t.Fatalf("DecodeSamples failed: %v", err)
	}

	gotMode, ok := d.GetMode()
	if !ok || gotMode.VISCode != mode.VISCode {
		t.Fatalf("decoded mode = %+v, ok=%v; want VIS code %d", gotMode, ok, mode.VISCode)
	}

	pixels, ok := d.GetPixels()
	if !ok {
		t.Fatal("GetPixels reported no pixels after a successful decode")
	}
	if len(pixels) != mode.Width*mode.Lines*3 {
		t.Fatalf("len(pixels) = %d, want %d", len(pixels), mode.Width*mode.Lines*3)
	}

	// The gradient should still be visibly rising from left to right on
	// an interior row, within the tolerance of a lossy tone pipeline.
	row := mode.Lines / 2
	leftIdx := (row*mode.Width + 2) * 3
	rightIdx := (row*mode.Width + mode.Width - 3) * 3
	if int(pixels[rightIdx]) <= int(pixels[leftIdx]) {
		t.Errorf("expected brightness to rise across the row: left=%d right=%d", pixels[leftIdx], pixels[rightIdx])
	}
}

func TestDecodeDetectsMartin1VIS(t *testing.T) {
	mode, ok := GetModeByName("Martin 1")
	if !ok {
		t.Fatal("Martin 1 missing from catalogue")
	}

	const sampleRate = 8000
	e := NewEncoder()
	e.SetMode(mode)
	e.SetSampleRate(sampleRate)
	e.SetSourceSize(mode.Width, mode.Lines)
	e.SetLetterbox(Rect{0, 0, mode.Width, mode.Lines})
	e.SetPixelProvider(func(x, y int) (r, g, b, a uint8) {
		return 0, 0, 0, 255
	})
	pcm := e.RunAll()

	var d Decoder
	if err := d.DecodeSamples(pcm, sampleRate, nil, false); err != nil {
		t.Fatalf("DecodeSamples failed: %v", err)
	}
	got, ok := d.GetMode()
	if !ok || got.Name != "Martin 1" {
		t.Errorf("decoded mode = %q, want \"Martin 1\" (VIS code 44)", got.Name)
	}
}

func TestCordicRectangularToPolarAxes(t *testing.T) {
	cases := []struct {
		i, q     int16
		wantSign int
	}{
		{1000, 0, 0},
		{0, 1000, 1},
		{-1000, 0, 2},
	}
	for _, c := range cases {
		mag, _ := cordicRectangularToPolar(c.i, c.q)
		if mag == 0 {
			t.Errorf("cordicRectangularToPolar(%d, %d) magnitude = 0, want > 0", c.i, c.q)
		}
	}
}

func TestHalfBandFilterDCGain(t *testing.T) {
	f := newHalfBandFilter()
	var lastI int16
	for i := 0; i < halfBandTaps*4; i++ {
		lastI, _ = f.filter(1000, 0)
	}
	// A steady DC input should settle to roughly unity gain once the
	// delay line has filled.
	if math.Abs(float64(lastI)-1000) > 50 {
		t.Errorf("settled DC output = %d, want close to 1000", lastI)
	}
}

func TestAverageFreqAtArea(t *testing.T) {
	freq := []float64{1000, 1200, 1400, 1600, 1800, 2000}
	got := averageFreqAtArea(0, 4, freq, 1000)
	if got < 1000 || got > 1800 {
		t.Errorf("averageFreqAtArea = %v, want within the sample range", got)
	}
}

func TestAverageFreqAtAreaExpected(t *testing.T) {
	freq := []float64{1200, 1200, 1200, 1200, 1200, 1200}
	if avg, ok := averageFreqAtAreaExpected(0, 1200, 30, 4, freq, 1000); !ok || avg != 1200 {
		t.Errorf("averageFreqAtAreaExpected = (%v, %v), want (1200, true)", avg, ok)
	}
	if _, ok := averageFreqAtAreaExpected(0, 1900, 30, 4, freq, 1000); ok {
		t.Error("averageFreqAtAreaExpected should reject a far-off expected frequency")
	}
}

func TestVisBitIsOne(t *testing.T) {
	if !visBitIsOne(1100) {
		t.Error("1100 Hz should decode as bit 1")
	}
	if visBitIsOne(1300) {
		t.Error("1300 Hz should decode as bit 0")
	}
}

func TestParityOf(t *testing.T) {
	if parityOf(0) {
		t.Error("parityOf(0) should be even (false)")
	}
	if !parityOf(1) {
		t.Error("parityOf(1) should be odd (true)")
	}
	if parityOf(3) {
		t.Error("parityOf(3) (two set bits) should be even (false)")
	}
}
