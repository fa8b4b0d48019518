package sstv

import (
	"log"
	"math"
)

// Layout of the header instructions produced by BuildVOXHeader followed
// by BuildVISHeader: 8 VOX tones, then a 13-step VIS header (2 leader
// tones, a break, a start bit, 7 data bits, a parity bit, a stop bit).
// This layout never depends on the VIS code, so it can be computed once
// against a dummy (VIS code 0) header and reused against the real one.
const (
	voxInstructionCount    = 8
	visInstructionCount    = 13
	visBitsStart           = 4 // index, within the VIS header, of data bit 0
	visBitsCount           = 7
	visParityIndex         = 11
	headerInstructionCount = voxInstructionCount + visInstructionCount
)

// Decoder turns a recorded audio waveform back into pixels. All
// demodulator state lives on the Decoder (or in the demodState it
// creates fresh per call), never at package scope, so two Decoders (or
// two successive calls) never share state.
type Decoder struct {
	mode    Mode
	hasMode bool
	pixels  []byte
}

// GetMode returns the mode detected by the last successful DecodeSamples
// call.
func (d *Decoder) GetMode() (Mode, bool) { return d.mode, d.hasMode }

// GetPixels returns the RGB8 pixel buffer (3 bytes per pixel, row-major)
// produced by the last successful DecodeSamples call.
func (d *Decoder) GetPixels() ([]byte, bool) { return d.pixels, d.hasMode }

// DecodeSamples demodulates pcm (mono samples in [-1, 1]) at sampleRate,
// locates and validates the VOX/VIS header, looks up the signalled mode,
// and decodes the scan body into an RGB8 pixel buffer retrievable via
// GetPixels. If expectedMode is non-nil and the decoded VIS code doesn't
// match it, fallbackOnMismatch controls whether to proceed using
// expectedMode anyway or to fail with UnexpectedMode.
func (d *Decoder) DecodeSamples(pcm []float32, sampleRate int, expectedMode *Mode, fallbackOnMismatch bool) error {
	hdr := BuildVOXHeader(nil)
	hdr = BuildVISHeader(hdr, 0)

	var headerMS float64
	for _, ins := range hdr {
		headerMS += ins.LengthMS
	}
	headerSamples := int(headerMS / 1000 * float64(sampleRate))
	if len(pcm) < headerSamples {
		return newDecodeError(EmptyInput, "have %d samples, need at least %d to cover the VOX+VIS header", len(pcm), headerSamples)
	}

	demod := newDemodState()
	samplesFreq := make([]float64, len(pcm))
	for i, s := range pcm {
		a := float64(s) * 32767
		if a > 32767 {
			a = 32767
		}
		if a < -32768 {
			a = -32768
		}
		samplesFreq[i] = demod.rollingFreqFromSample(int16(a), sampleRate)
	}

	fudgeSamples := (halfBandTaps - 1) / 2
	progressSamples := float64(fudgeSamples)

	var visCode uint8
	for i, ins := range hdr {
		widthSamples := ins.LengthMS / 1000 * float64(sampleRate)
		centerMS := (progressSamples/float64(sampleRate))*1000 + ins.LengthMS/2

		// Header tones are read over half the instruction's width,
		// centred, so the window never touches a neighboring tone.
		switch {
		case i < voxInstructionCount:
			// VOX tones are informational only: a noisy or absent preamble
			// must never block VIS detection, so a mismatch is logged and
			// decoding proceeds regardless.
			if _, ok := averageFreqAtAreaExpected(centerMS, ins.Pitch, 30, widthSamples/2, samplesFreq, sampleRate); !ok {
				log.Printf("sstv: VOX tone %d (%s) off expected %.0f Hz", i, ins.Name, ins.Pitch)
			}
		case i >= voxInstructionCount+visBitsStart && i < voxInstructionCount+visBitsStart+visBitsCount:
			bitIdx := i - (voxInstructionCount + visBitsStart)
			avg := averageFreqAtArea(centerMS, widthSamples/2, samplesFreq, sampleRate)
			if visBitIsOne(avg) {
				visCode |= 1 << uint(bitIdx)
			}
		case i == voxInstructionCount+visParityIndex:
			avg := averageFreqAtArea(centerMS, widthSamples/2, samplesFreq, sampleRate)
			if visBitIsOne(avg) != parityOf(visCode) {
				return newDecodeError(VisParityMismatch, "VIS code %#07b has a mismatched parity bit", visCode)
			}
		}
		progressSamples += widthSamples
	}

	mode, ok := GetModeByVIS(visCode)
	if !ok {
		return newDecodeError(UnknownMode, "no catalogue mode for VIS code %d", visCode)
	}
	if expectedMode != nil && mode.VISCode != expectedMode.VISCode {
		if !fallbackOnMismatch {
			return newDecodeError(UnexpectedMode, "decoded VIS code %d (%s) does not match expected mode %s", visCode, mode.Name, expectedMode.Name)
		}
		mode = *expectedMode
	}

	instructions := CreateInstructions(mode, nil, true)
	workBuf := make([]float64, mode.Width*mode.Lines*3)

	curLine := -1
	for i := headerInstructionCount; i < len(instructions); i++ {
		ins := instructions[i]
		widthSamples := ins.LengthMS / 1000 * float64(sampleRate)
		progressMS := (progressSamples / float64(sampleRate)) * 1000

		if ins.Flags.Has(NewLine) {
			curLine++
		}

		if ins.Type == Scan && curLine >= 0 && curLine < mode.Lines {
			field := clampInt(int(ins.Pitch), 0, 2)
			colWidthMS := ins.LengthMS / float64(mode.Width)
			colWidthSamples := widthSamples / float64(mode.Width)

			for col := 0; col < mode.Width; col++ {
				centerMS := progressMS + float64(col)*colWidthMS
				freq := averageFreqAtArea(centerMS, colWidthSamples, samplesFreq, sampleRate)
				v := clamp((freq-1500)/800, 0, 1)

				setWorkBuf(workBuf, mode, curLine, col, field, v)
				if ins.Flags.Has(ScanIsDoubled) && curLine+1 < mode.Lines {
					setWorkBuf(workBuf, mode, curLine+1, col, field, v)
				}
			}
		} else if ins.Flags.Has(PitchUsesIndex) {
			// Sync pulses and porches are diagnostic only: a mistimed
			// or noisy one must never abort a decode already committed
			// to a mode.
			expected := mode.Frequencies[int(ins.Pitch)]
			centerMS := progressMS + ins.LengthMS/2
			if _, ok := averageFreqAtAreaExpected(centerMS, expected, 30, widthSamples, samplesFreq, sampleRate); !ok {
				log.Printf("sstv: %s off expected %.0f Hz", ins.Name, expected)
			}
		}
		progressSamples += widthSamples
	}

	d.pixels = workBufToRGB8(mode, workBuf)
	d.mode = mode
	d.hasMode = true
	return nil
}

func setWorkBuf(buf []float64, mode Mode, line, col, field int, v float64) {
	idx := (line*mode.Width+col)*3 + field
	if idx >= 0 && idx < len(buf) {
		buf[idx] = v
	}
}

// workBufToRGB8 converts the decoded 3-field-per-pixel work buffer into a
// packed RGB8 image, dispatching on the mode's colour encoding.
func workBufToRGB8(mode Mode, workBuf []float64) []byte {
	out := make([]byte, mode.Width*mode.Lines*3)
	for line := 0; line < mode.Lines; line++ {
		for col := 0; col < mode.Width; col++ {
			base3 := (line*mode.Width + col) * 3
			f0, f1, f2 := workBuf[base3], workBuf[base3+1], workBuf[base3+2]

			var r, g, b float64
			switch mode.ScanType {
			case Monochrome, Sweep:
				v := f0 * 255
				r, g, b = v, v, v
			case RGB:
				r, g, b = f0*255, f1*255, f2*255
			case YCbCr:
				y := f0*255 - 16
				cr := f1*255 - 128
				cb := f2*255 - 128
				r = 1.164*y + 1.596*cr
				g = 1.164*y - 0.392*cb - 0.813*cr
				b = 1.164*y + 2.017*cb
			}

			out[base3] = byteFromFloat(r)
			out[base3+1] = byteFromFloat(g)
			out[base3+2] = byteFromFloat(b)
		}
	}
	return out
}

func byteFromFloat(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// visBitIsOne reports whether avg is closer to the "1" tone (1100 Hz)
// than to the "0" tone (1300 Hz).
func visBitIsOne(avg float64) bool {
	return math.Abs(avg-1100) < math.Abs(avg-1300)
}

// parityOf returns the even-parity bit for the low 7 bits of code.
func parityOf(code uint8) bool {
	var parity bool
	for i := 0; i < 7; i++ {
		if code&(1<<uint(i)) != 0 {
			parity = !parity
		}
	}
	return parity
}

// averageFreqAtArea averages the tracked frequency over a window of
// widthSamples centred on centerMS, clamping the window to the bounds of
// freq. A window narrower than one sample falls back to the single
// nearest sample.
func averageFreqAtArea(centerMS, widthSamples float64, freq []float64, sampleRate int) float64 {
	centerIdx := int(centerMS / 1000 * float64(sampleRate))

	if widthSamples <= 1 {
		return freq[clampInt(centerIdx, 0, len(freq)-1)]
	}

	lo := clampInt(centerIdx-int(widthSamples/2), 0, len(freq)-1)
	hi := clampInt(centerIdx+int(widthSamples/2), 0, len(freq)-1)
	if hi <= lo {
		return freq[lo]
	}

	var sum float64
	for i := lo; i < hi; i++ {
		sum += freq[i]
	}
	return sum / float64(hi-lo)
}

// averageFreqAtAreaExpected is averageFreqAtArea plus a tolerance check:
// ok reports whether the averaged frequency falls within margin/2 Hz of
// expected. It is used for the non-gating diagnostic checks on the VOX
// tones and on the body's sync pulses and porches.
func averageFreqAtAreaExpected(centerMS, expected, margin, widthSamples float64, freq []float64, sampleRate int) (avg float64, ok bool) {
	avg = averageFreqAtArea(centerMS, widthSamples, freq, sampleRate)
	return avg, math.Abs(avg-expected) <= margin/2
}
