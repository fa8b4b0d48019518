package sstv

import "math"

// halfBandTaps sets the half-band FIR's tap count. Its group delay,
// (halfBandTaps-1)/2 samples, is also the VOX/VIS alignment fudge offset
// used by DecodeSamples — see fudgeSamples there.
const halfBandTaps = 71

const cordicIterations = 16

// cordicAngleUnits holds atan(2^-i) expressed in the angle unit used
// throughout the demodulator: a full turn (2*pi) is 65536 units, so the
// value wraps naturally in an int16 the same way a phase angle does.
var cordicAngleUnits [cordicIterations]int32

func init() {
	for i := 0; i < cordicIterations; i++ {
		angle := math.Atan(math.Pow(2, float64(-i)))
		cordicAngleUnits[i] = int32(angle / math.Pi * 32768)
	}
}

// cordicRectangularToPolar converts rectangular I/Q samples to magnitude
// and phase using a fixed-point vectoring-mode CORDIC, operating on the
// same 16-bit integer widths as the rest of the demodulator. The phase is
// measured clockwise (the negation of atan2(q, i)), so a positive tone
// frequency makes it fall from sample to sample.
func cordicRectangularToPolar(i, q int16) (magnitude uint16, phase int16) {
	x, y := int32(i), int32(q)
	var z int32
	var halfTurn int32

	if x < 0 {
		x, y = -x, -y
		halfTurn = 32768
	}

	for k := 0; k < cordicIterations; k++ {
		xs := x >> uint(k)
		ys := y >> uint(k)
		if y < 0 {
			x, y = x-ys, y+xs
			z -= cordicAngleUnits[k]
		} else {
			x, y = x+ys, y-xs
			z += cordicAngleUnits[k]
		}
	}

	// x now holds magnitude scaled by the CORDIC gain (~1.647); correct
	// it back down by multiplying with the inverse gain.
	const cordicGainInverse = 0.6072529350088812
	mag := float64(x) * cordicGainInverse
	if mag < 0 {
		mag = 0
	}
	return uint16(mag), -int16(z + halfTurn)
}

// halfBandFilter is a symmetric windowed-sinc low-pass FIR, designed with
// a Blackman window (the same construction the transmit chain uses for
// its low-pass taps), with the non-centre taps an even distance from the
// centre zeroed to
// give it the half-band property. It runs two independent delay lines,
// one per I/Q rail, and its state is owned exclusively by one Decoder.
type halfBandFilter struct {
	taps   []float64
	delayI []float64
	delayQ []float64
	pos    int
}

func newHalfBandFilter() *halfBandFilter {
	taps := blackmanHalfBandTaps(halfBandTaps)
	return &halfBandFilter{
		taps:   taps,
		delayI: make([]float64, halfBandTaps),
		delayQ: make([]float64, halfBandTaps),
	}
}

func blackmanHalfBandTaps(numTaps int) []float64 {
	const normalizedCutoff = 0.25 // fraction of Nyquist passed
	taps := make([]float64, numTaps)
	m := float64(numTaps - 1)
	center := numTaps / 2

	for n := 0; n < numTaps; n++ {
		fn := float64(n)
		window := 0.42 - 0.5*math.Cos(2*math.Pi*fn/m) + 0.08*math.Cos(4*math.Pi*fn/m)

		var sinc float64
		if n == center {
			sinc = math.Pi * normalizedCutoff
		} else {
			x := math.Pi * normalizedCutoff * (fn - m/2)
			sinc = math.Sin(x) / (fn - m/2)
		}
		taps[n] = sinc * window
	}

	for n := range taps {
		if n != center && (center-n)%2 == 0 {
			taps[n] = 0
		}
	}

	var sum float64
	for _, v := range taps {
		sum += v
	}
	for n := range taps {
		taps[n] /= sum
	}
	return taps
}

// filter pushes one I/Q sample pair through the delay lines and returns
// the filtered pair.
func (f *halfBandFilter) filter(i, q int16) (ii, qq int16) {
	f.delayI[f.pos] = float64(i)
	f.delayQ[f.pos] = float64(q)

	var accI, accQ float64
	n := len(f.taps)
	idx := f.pos
	for _, t := range f.taps {
		accI += t * f.delayI[idx]
		accQ += t * f.delayQ[idx]
		idx--
		if idx < 0 {
			idx = n - 1
		}
	}

	f.pos++
	if f.pos >= n {
		f.pos = 0
	}
	return int16(accI), int16(accQ)
}

// demodState is the per-decoder-instance state of the frequency tracker:
// the SSB phase counter, the half-band filter's delay lines, the last
// CORDIC phase, and the exponential smoother. It must be freshly zeroed
// at the start of every DecodeSamples call so that two Decoders (or two
// successive decodes on the same Decoder) never interfere.
type demodState struct {
	ssbPhase     uint8
	filter       *halfBandFilter
	lastPhase    int16
	smoothedFreq int32
}

func newDemodState() *demodState {
	return &demodState{filter: newHalfBandFilter()}
}

// rollingFreqFromSample demodulates one int16 audio sample into a
// smoothed tone frequency estimate, clamped to [1000, 2400] Hz. This is
// the frequency-tracking pipeline described for the decoder: a 2-bit SSB
// phase rotation, the half-band filter, a second phase rotation, a
// CORDIC rectangular-to-polar conversion, and exponential smoothing, all
// operating on 16-bit integers to preserve bit-accurate behaviour.
func (d *demodState) rollingFreqFromSample(audio int16, sampleRate int) float64 {
	d.ssbPhase = (d.ssbPhase + 1) & 3
	audio = audio >> 1

	audioI := [4]int16{audio, 0, -audio, 0}
	audioQ := [4]int16{0, -audio, 0, audio}
	ii, qq := d.filter.filter(audioI[d.ssbPhase], audioQ[d.ssbPhase])

	sampleI := [4]int16{-qq, -ii, qq, ii}
	sampleQ := [4]int16{ii, -qq, -ii, qq}
	i := sampleI[d.ssbPhase]
	q := sampleQ[d.ssbPhase]

	_, phase := cordicRectangularToPolar(i, q)
	tracked := d.lastPhase - phase
	d.lastPhase = phase

	freqAtSample := (int32(tracked) * int32(sampleRate)) >> 16

	shifted := (d.smoothedFreq << 3) + freqAtSample - d.smoothedFreq
	d.smoothedFreq = shifted >> 3

	clamped := d.smoothedFreq
	if clamped < 1000 {
		clamped = 1000
	}
	if clamped > 2400 {
		clamped = 2400
	}
	return float64(clamped)
}
