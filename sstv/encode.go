package sstv

import (
	"log"
	"math"
)

// PixelProviderFunc samples a source image at (x, y), returning an
// RGBA8 pixel. It is the encoder's only source of image data; a nil
// provider makes the encoder fall back to silence or a test pattern.
type PixelProviderFunc func(x, y int) (r, g, b, a uint8)

type encoderState int

const (
	encoderIdle encoderState = iota
	encoderRunning
	encoderDone
)

// EncoderState is a snapshot of the encoder's progress, suitable for a
// progress bar or diagnostic readout.
type EncoderState struct {
	CurX, CurY            int
	CurSample             uint32
	EstimatedTotalSamples uint32
}

// Encoder synthesises a phase-continuous mono float waveform from a
// mode's instruction sequence. It is pumpable: Pump fills a caller
// buffer in bounded time, or RunAll drains the whole waveform in one
// call. An Encoder owns its state exclusively; two Encoders may run
// concurrently on disjoint inputs without locks.
type Encoder struct {
	sampleRate            int
	estimatedTotalSamples uint32

	mode         Mode
	hasMode      bool
	instructions []Instruction

	instrIndex            int
	phase                 float64
	curX, curY            int
	curSample             uint32
	lastInstructionSample uint32
	state                 encoderState

	letterbox      Rect
	letterboxLines bool
	sourceW        int
	sourceH        int
	pixelProvider  PixelProviderFunc

	filterType InstructionType
	filterScan int

	warnedNoProvider bool
}

// NewEncoder returns an Encoder with the default 44100 Hz sample rate and
// no instruction-type filter.
func NewEncoder() *Encoder {
	return &Encoder{
		sampleRate: 44100,
		filterType: InvalidInstructionType,
		filterScan: -1,
	}
}

func (e *Encoder) rebuild() {
	if !e.hasMode {
		e.instructions = nil
		e.estimatedTotalSamples = 0
		return
	}
	e.instructions = CreateInstructions(e.mode, e.instructions[:0], false)
	var totalMS float64
	for _, ins := range e.instructions {
		totalMS += ins.LengthMS
	}
	e.estimatedTotalSamples = uint32((totalMS * float64(e.sampleRate)) / 1000.0)
}

// SetMode configures the encoder for mode m.
func (e *Encoder) SetMode(m Mode) {
	e.mode = m
	e.hasMode = true
	e.state = encoderIdle
	e.rebuild()
}

// SetModeByName looks up a catalogue mode by name.
func (e *Encoder) SetModeByName(name string) error {
	m, ok := GetModeByName(name)
	if !ok {
		return newDecodeError(UnknownMode, "no mode named %q", name)
	}
	e.SetMode(m)
	return nil
}

// SetModeByVIS looks up a catalogue mode by VIS code.
func (e *Encoder) SetModeByVIS(code uint8) error {
	m, ok := GetModeByVIS(code)
	if !ok {
		return newDecodeError(UnknownMode, "no mode with VIS code %d", code)
	}
	e.SetMode(m)
	return nil
}

// SetSampleRate sets the output sample rate and recomputes the estimated
// total sample count.
func (e *Encoder) SetSampleRate(hz int) {
	e.sampleRate = hz
	e.rebuild()
}

// SetLetterbox sets the destination letterbox rectangle, in the mode's
// own pixel coordinates, that the source image is mapped into.
func (e *Encoder) SetLetterbox(r Rect) { e.letterbox = r }

// SetLetterboxLines enables a diagonal checkerboard test pattern outside
// the letterbox (and for a missing pixel provider) instead of silence.
func (e *Encoder) SetLetterboxLines(b bool) { e.letterboxLines = b }

// SetSourceSize records the dimensions of the image behind the pixel
// provider, used to map encoder scan coordinates to sample coordinates.
func (e *Encoder) SetSourceSize(w, h int) { e.sourceW, e.sourceH = w, h }

// SetPixelProvider sets the callback used to sample the source image for
// delegated (scan) instructions.
func (e *Encoder) SetPixelProvider(fn PixelProviderFunc) { e.pixelProvider = fn }

// SetInstructionFilter restricts sample synthesis to instructions of the
// given type (and, for Scan instructions, the given scan channel id);
// every other instruction yields silence. Pass InvalidInstructionType to
// clear the filter.
func (e *Encoder) SetInstructionFilter(t InstructionType, scanID int) {
	e.filterType = t
	e.filterScan = scanID
}

// GetMode returns the currently configured mode.
func (e *Encoder) GetMode() (Mode, bool) { return e.mode, e.hasMode }

// GetState returns a snapshot of the encoder's progress.
func (e *Encoder) GetState() EncoderState {
	return EncoderState{
		CurX: e.curX, CurY: e.curY,
		CurSample:             e.curSample,
		EstimatedTotalSamples: e.estimatedTotalSamples,
	}
}

// HasStarted reports whether Reset has been called since the mode was
// last set.
func (e *Encoder) HasStarted() bool { return e.state != encoderIdle }

// IsDone reports whether the instruction sequence has been fully
// consumed.
func (e *Encoder) IsDone() bool { return e.state == encoderDone }

// Reset rewinds the encoder to the start of its instruction sequence.
func (e *Encoder) Reset() {
	e.curSample = 0
	e.lastInstructionSample = 0
	e.phase = 0
	e.curX, e.curY = 0, 0
	e.instrIndex = 0
	if len(e.instructions) == 0 {
		e.state = encoderDone
		return
	}
	e.state = encoderRunning
}

func (e *Encoder) lenSamples(ins Instruction) uint32 {
	return uint32(ins.LengthMS * float64(e.sampleRate) / 1000.0)
}

// advance moves to the next instruction, incrementing curY on NewLine.
// Reports false if the sequence is exhausted.
func (e *Encoder) advance() bool {
	e.lastInstructionSample = e.curSample
	if e.instrIndex+1 >= len(e.instructions) {
		return false
	}
	e.instrIndex++
	if e.instructions[e.instrIndex].Flags.Has(NewLine) {
		e.curY++
	}
	return true
}

// Pump fills up to len(buf) samples, writing exactly min(len(buf),
// remaining) values and leaving the rest of buf untouched. It returns
// the number of samples written and whether the sequence is now done.
func (e *Encoder) Pump(buf []float32) (n int, done bool) {
	if e.state == encoderIdle {
		e.Reset()
	}
	for n = 0; n < len(buf); n++ {
		if e.state == encoderDone {
			break
		}
		ins := e.instructions[e.instrIndex]
		lenSamples := e.lenSamples(ins)

		if e.curSample >= e.lastInstructionSample+lenSamples {
			if !e.advance() {
				e.state = encoderDone
				break
			}
			ins = e.instructions[e.instrIndex]
			lenSamples = e.lenSamples(ins)
		}

		widthFrac := float64(e.curSample-e.lastInstructionSample) / float64(lenSamples)
		e.curX = int(float64(e.mode.Width) * widthFrac)

		buf[n] = float32(e.samplePitch(ins))
		e.curSample++
	}
	return n, e.state == encoderDone
}

// RunAll drains the encoder to completion in one call, starting from a
// fresh Reset, and returns the full sample vector. It is defined in
// terms of Pump so the two are always sample-for-sample equivalent.
func (e *Encoder) RunAll() []float32 {
	e.Reset()
	out := make([]float32, 0, e.estimatedTotalSamples)
	buf := make([]float32, 4096)
	for {
		n, done := e.Pump(buf)
		out = append(out, buf[:n]...)
		if done {
			break
		}
	}
	return out
}

// samplePitch determines the instruction's pitch (dispatching to the
// instruction-type filter, an index lookup, a sweep, or a scan mixer),
// advances the phase accumulator, and returns the synthesised sample. A
// filtered-out instruction returns 0 without updating the phase.
func (e *Encoder) samplePitch(ins Instruction) float64 {
	if e.filterType != InvalidInstructionType {
		filtered := ins.Type == e.filterType
		if ins.Type == Scan && e.filterScan >= 0 && int(ins.Pitch) != e.filterScan {
			filtered = false
		}
		if !filtered {
			return 0
		}
	}

	var pitch float64
	switch {
	case ins.Flags.Has(PitchUsesIndex):
		pitch = e.mode.Frequencies[int(ins.Pitch)]
	case ins.Flags.Has(PitchIsSweep):
		pitch = ScanSweep(e.mode, e.curX, true)
	case ins.Flags.Has(PitchIsDelegated):
		pitch = e.delegatedPitch(ins)
	default:
		pitch = ins.Pitch
	}

	e.phase += pitch * (2.0 * math.Pi / float64(e.sampleRate))
	e.phase = math.Mod(e.phase, 2.0*math.Pi)
	return math.Sin(e.phase)
}

// delegatedPitch samples the source image (respecting the letterbox) and
// dispatches to the scan mixer for the mode's scan type.
func (e *Encoder) delegatedPitch(ins Instruction) float64 {
	outsideSides := e.letterbox.X > 0 && (e.curX < e.letterbox.X || e.curX >= e.letterbox.X+e.letterbox.W)
	outsideTop := e.letterbox.Y > 0 && (e.curY < e.letterbox.Y || e.curY >= e.letterbox.Y+e.letterbox.H)

	if e.pixelProvider == nil && !e.warnedNoProvider {
		e.warnedNoProvider = true
		log.Printf("sstv: %v; substituting test pattern", newDecodeError(PixelProviderMissing, "scan instruction with no pixel provider set"))
	}

	var pixel *[4]uint8
	if !outsideSides && !outsideTop && e.pixelProvider != nil && e.letterbox.W > 0 && e.letterbox.H > 0 {
		sampleX := int(float64(e.sourceW-1) * float64(maxInt(e.curX-e.letterbox.X, 0)) / float64(e.letterbox.W))
		sampleY := int(float64(e.sourceH-1) * float64(maxInt(e.curY-e.letterbox.Y, 0)) / float64(e.letterbox.H))
		r, g, b, a := e.pixelProvider(sampleX, sampleY)
		pixel = &[4]uint8{r, g, b, a}
	}

	switch e.mode.ScanType {
	case Monochrome:
		return ScanMonochrome(ins, e.curX, e.curY, pixel, e.letterboxLines)
	case YCbCr:
		return ScanYCbCr(ins, e.curX, e.curY, pixel, e.letterboxLines)
	case RGB:
		return ScanRGB(ins, e.curX, e.curY, pixel, e.letterboxLines)
	default:
		return 1500
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
