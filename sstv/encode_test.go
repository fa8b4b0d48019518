package sstv

import "testing"

func newTestEncoder(t *testing.T) *Encoder {
	t.Helper()
	mode, ok := GetModeByName("B&W 8")
	if !ok {
		t.Fatal("B&W 8 missing from catalogue")
	}
	e := NewEncoder()
	e.SetMode(mode)
	e.SetSampleRate(8000)
	e.SetSourceSize(mode.Width, mode.Lines)
	e.SetLetterbox(Rect{0, 0, mode.Width, mode.Lines})
	e.SetPixelProvider(func(x, y int) (r, g, b, a uint8) {
		return uint8(x % 256), uint8(y % 256), 128, 255
	})
	return e
}

func TestEncoderRunAllLength(t *testing.T) {
	e := newTestEncoder(t)
	out := e.RunAll()
	if len(out) == 0 {
		t.Fatal("RunAll produced no samples")
	}
	state := e.GetState()
	if uint32(len(out)) != state.EstimatedTotalSamples {
		t.Errorf("len(RunAll()) = %d, EstimatedTotalSamples = %d", len(out), state.EstimatedTotalSamples)
	}
	if !e.IsDone() {
		t.Error("expected IsDone() after RunAll")
	}
}

// TestPumpRunAllEquivalence verifies that draining Pump in arbitrarily
// sized chunks produces the exact same waveform as RunAll.
func TestPumpRunAllEquivalence(t *testing.T) {
	full := newTestEncoder(t).RunAll()

	e := newTestEncoder(t)
	e.Reset()
	var pumped []float32
	buf := make([]float32, 37) // an odd chunk size to exercise boundaries
	for {
		n, done := e.Pump(buf)
		pumped = append(pumped, buf[:n]...)
		if done {
			break
		}
	}

	if len(pumped) != len(full) {
		t.Fatalf("pumped %d samples, RunAll produced %d", len(pumped), len(full))
	}
	for i := range full {
		if pumped[i] != full[i] {
			t.Fatalf("sample %d: pumped %v, want %v", i, pumped[i], full[i])
		}
	}
}

func TestEncoderSilenceWithoutPixelProvider(t *testing.T) {
	mode, _ := GetModeByName("B&W 8")
	e := NewEncoder()
	e.SetMode(mode)
	e.SetSampleRate(8000)
	// No pixel provider, no letterbox: delegatedPitch should fall back to
	// silence (1500 Hz) rather than panic.
	out := e.RunAll()
	if len(out) == 0 {
		t.Fatal("expected samples even with no pixel provider")
	}
}

func TestEncoderInstructionFilter(t *testing.T) {
	e := newTestEncoder(t)
	e.SetInstructionFilter(Scan, -1)
	out := e.RunAll()

	var sawNonZero bool
	for _, s := range out {
		if s != 0 {
			sawNonZero = true
			break
		}
	}
	if !sawNonZero {
		t.Error("expected some non-zero samples when filtering to Scan instructions")
	}
}

func TestSetModeByVISUnknown(t *testing.T) {
	e := NewEncoder()
	if err := e.SetModeByVIS(255); err == nil {
		t.Error("expected an error for an unknown VIS code")
	}
}

func TestSetModeByNameUnknown(t *testing.T) {
	e := NewEncoder()
	if err := e.SetModeByName("does not exist"); err == nil {
		t.Error("expected an error for an unknown mode name")
	}
}
