// Package sstv implements the mode catalogue, encoder, and decoder for
// Slow-Scan Television audio.
package sstv

// InstructionFlags is a bitset describing how an Instruction's length and
// pitch fields are interpreted, and how it participates in line counting.
type InstructionFlags uint8

const (
	// ExtraLine marks an instruction that only exists in a mode's
	// "doubled" variant (e.g. Robot 4:2:0 vs 4:2:2).
	ExtraLine InstructionFlags = 1 << iota
	// NewLine marks the first instruction of an output scan line.
	NewLine
	// LengthUsesIndex means Instruction.LengthMS is an index into
	// Mode.Timings, not a literal millisecond value.
	LengthUsesIndex
	// PitchUsesIndex means Instruction.Pitch is an index into
	// Mode.Frequencies.
	PitchUsesIndex
	// PitchIsDelegated means the pitch comes from a scan mixer function
	// of Mode.ScanType and the sampled pixel.
	PitchIsDelegated
	// PitchIsSweep means the pitch is a linear sweep across the row.
	PitchIsSweep
	// ScanIsDoubled means the scan's output is written to two lines at
	// once (PD-family chroma subsampling).
	ScanIsDoubled
)

// Has reports whether all bits of mask are set.
func (f InstructionFlags) Has(mask InstructionFlags) bool { return f&mask == mask }

// InstructionType tags the protocol role of an Instruction.
type InstructionType uint8

const (
	InvalidInstructionType InstructionType = iota
	VOX
	VIS
	Pulse
	Porch
	Scan
	Any
)

// ScanType identifies a mode's pixel-to-tone colour encoding.
type ScanType uint8

const (
	InvalidScanType ScanType = iota
	Monochrome
	YCbCr // also written Y/R-Y/B-Y in SSTV literature
	RGB
	Sweep
)

// Instruction is one atomic step in a mode's schedule.
type Instruction struct {
	Name     string
	LengthMS float64
	Pitch    float64 // literal Hz, an index, a channel id, or unused
	Type     InstructionType
	Flags    InstructionFlags
}

// Mode is one catalogue entry: timings, geometry, and colour encoding for
// a named SSTV variant.
type Mode struct {
	Name                 string
	VISCode              uint8
	ScanType             ScanType
	Width                int
	Lines                int
	UsesExtraLines       bool
	Timings              []float64
	Frequencies          []float64
	InstructionsLooping  []Instruction
	InstructionLoopStart int
}

// VOX preamble and VIS header tone constants.
const (
	voxLengthMS  = 100
	visLeaderHz  = 1900
	visBreakHz   = 1200
	visDataBitMS = 30
	visBreakMS   = 10
	visLeaderMS  = 300
)

var voxFreqs = [3]float64{1500, 1900, 2300} // low, mid, high

// visBitFreq maps a VIS data bit to its tone frequency: 1100 Hz = 1,
// 1300 Hz = 0.
func visBitFreq(bit bool) float64 {
	if bit {
		return 1100
	}
	return 1300
}

var robotYCbCr420Instructions = []Instruction{
	{"Sync pulse", 0, 0, Pulse, NewLine | LengthUsesIndex | PitchUsesIndex},
	{"Sync porch", 1, 1, Porch, LengthUsesIndex | PitchUsesIndex},
	{"Y scan", 2, 0, Scan, LengthUsesIndex | PitchIsDelegated},
	{"Even separator pulse", 3, 1, Pulse, LengthUsesIndex | PitchUsesIndex},
	{"Porch", 4, 2, Porch, LengthUsesIndex | PitchUsesIndex},
	{"R-Y scan", 5, 1, Scan, LengthUsesIndex | PitchIsDelegated | ScanIsDoubled},
	{"Sync pulse", 0, 0, Pulse, ExtraLine | NewLine | LengthUsesIndex | PitchUsesIndex},
	{"Sync porch", 1, 1, Porch, ExtraLine | LengthUsesIndex | PitchUsesIndex},
	{"Y scan", 2, 0, Scan, ExtraLine | LengthUsesIndex | PitchIsDelegated},
	{"Odd separator pulse", 3, 3, Pulse, LengthUsesIndex | PitchUsesIndex},
	{"Porch", 4, 2, Porch, LengthUsesIndex | PitchUsesIndex},
	{"B-Y scan", 5, 2, Scan, LengthUsesIndex | PitchIsDelegated | ScanIsDoubled},
}

var robotYCbCr422Instructions = []Instruction{
	{"Sync pulse", 0, 0, Pulse, NewLine | LengthUsesIndex | PitchUsesIndex},
	{"Sync porch", 1, 1, Porch, LengthUsesIndex | PitchUsesIndex},
	{"Y scan", 2, 0, Scan, LengthUsesIndex | PitchIsDelegated},
	{"Separator pulse", 3, 1, Pulse, LengthUsesIndex | PitchUsesIndex},
	{"Porch", 4, 2, Porch, LengthUsesIndex | PitchUsesIndex},
	{"R-Y scan", 5, 1, Scan, LengthUsesIndex | PitchIsDelegated},
	{"Separator pulse", 3, 3, Pulse, LengthUsesIndex | PitchUsesIndex},
	{"Porch", 4, 2, Porch, LengthUsesIndex | PitchUsesIndex},
	{"B-Y scan", 5, 2, Scan, LengthUsesIndex | PitchIsDelegated},
}

var robotMonochromeInstructions = []Instruction{
	{"Sync pulse", 0, 0, Pulse, NewLine | LengthUsesIndex | PitchUsesIndex},
	{"Scan", 1, 0, Scan, LengthUsesIndex | PitchIsDelegated},
}

var martinInstructions = []Instruction{
	{"Sync pulse", 0, 0, Pulse, NewLine | LengthUsesIndex | PitchUsesIndex},
	{"Sync porch", 1, 1, Porch, LengthUsesIndex | PitchUsesIndex},
	{"Green scan", 2, 1, Scan, LengthUsesIndex | PitchIsDelegated},
	{"Separator pulse", 1, 1, Pulse, LengthUsesIndex | PitchUsesIndex},
	{"Blue scan", 2, 2, Scan, LengthUsesIndex | PitchIsDelegated},
	{"Separator pulse", 1, 1, Pulse, LengthUsesIndex | PitchUsesIndex},
	{"Red scan", 2, 0, Scan, LengthUsesIndex | PitchIsDelegated},
	{"Separator pulse", 1, 1, Pulse, LengthUsesIndex | PitchUsesIndex},
}

var wraaseInstructions = []Instruction{
	{"Sync pulse", 0, 0, Pulse, NewLine | LengthUsesIndex | PitchUsesIndex},
	{"Porch", 1, 1, Porch, LengthUsesIndex | PitchUsesIndex},
	{"Green scan", 2, 0, Scan, LengthUsesIndex | PitchIsDelegated},
	{"Blue scan", 2, 1, Scan, LengthUsesIndex | PitchIsDelegated},
	{"Red scan", 2, 2, Scan, LengthUsesIndex | PitchIsDelegated},
}

var scottieInstructions = []Instruction{
	{"Starting sync pulse", 0, 0, Pulse, LengthUsesIndex | PitchUsesIndex},
	{"Separator pulse", 1, 1, Pulse, NewLine | LengthUsesIndex | PitchUsesIndex},
	{"Green scan", 2, 1, Scan, LengthUsesIndex | PitchIsDelegated},
	{"Separator pulse", 1, 1, Pulse, LengthUsesIndex | PitchUsesIndex},
	{"Blue scan", 2, 2, Scan, LengthUsesIndex | PitchIsDelegated},
	{"Sync pulse", 0, 0, Pulse, LengthUsesIndex | PitchUsesIndex},
	{"Sync porch", 1, 1, Porch, LengthUsesIndex | PitchUsesIndex},
	{"Red scan", 2, 0, Scan, LengthUsesIndex | PitchIsDelegated},
}

var pdInstructions = []Instruction{
	{"Sync pulse", 0, 0, Pulse, NewLine | LengthUsesIndex | PitchUsesIndex},
	{"Porch", 1, 1, Porch, LengthUsesIndex | PitchUsesIndex},
	{"Y scan (from odd line)", 2, 0, Scan, LengthUsesIndex | PitchIsDelegated},
	{"R-Y scan", 2, 1, Scan, LengthUsesIndex | PitchIsDelegated | ScanIsDoubled},
	{"B-Y scan", 2, 2, Scan, LengthUsesIndex | PitchIsDelegated | ScanIsDoubled},
	{"Y scan (from even line)", 2, 0, Scan, ExtraLine | NewLine | LengthUsesIndex | PitchIsDelegated},
}

var pasokonInstructions = []Instruction{
	{"Sync pulse", 0, 0, Pulse, NewLine | LengthUsesIndex | PitchUsesIndex},
	{"Porch", 1, 1, Porch, LengthUsesIndex | PitchUsesIndex},
	{"Red scan", 2, 0, Scan, LengthUsesIndex | PitchIsDelegated},
	{"Porch", 1, 1, Porch, LengthUsesIndex | PitchUsesIndex},
	{"Green scan", 2, 1, Scan, LengthUsesIndex | PitchIsDelegated},
	{"Porch", 1, 1, Porch, LengthUsesIndex | PitchUsesIndex},
	{"Blue scan", 2, 2, Scan, LengthUsesIndex | PitchIsDelegated},
	{"Porch", 1, 1, Porch, LengthUsesIndex | PitchUsesIndex},
}

var blockInstructions = []Instruction{
	{"Sync pulse", 0, 0, Pulse, NewLine | LengthUsesIndex | PitchUsesIndex},
	{"Porch", 1, 1, Porch, LengthUsesIndex | PitchUsesIndex},
	{"Red scan", 2, 0, Scan, LengthUsesIndex | PitchIsDelegated},
	{"Green scan", 2, 1, Scan, LengthUsesIndex | PitchIsDelegated},
	{"Blue scan", 2, 2, Scan, LengthUsesIndex | PitchIsDelegated},
}

// Modes is the frozen mode catalogue: exact timings, widths, lines, scan
// types, VIS codes, and instruction templates. Changing any value here
// changes the protocol-compatible output.
var Modes = []Mode{
	// Robot
	{"Robot 12", 0, YCbCr, 160, 120, true,
		[]float64{7.0, 3.0, 60.0, 4.5, 1.5, 30.0},
		[]float64{1200, 1500, 1900, 2300},
		robotYCbCr420Instructions, 0},
	{"Robot 24", 4, YCbCr, 160, 120, false,
		[]float64{9.0, 3.0, 88.0, 4.5, 1.5, 44.0},
		[]float64{1200, 1500, 1900, 2300},
		robotYCbCr422Instructions, 0},
	{"Robot 36", 8, YCbCr, 320, 240, true,
		[]float64{9.0, 3.0, 88.0, 4.5, 1.5, 44.0},
		[]float64{1200, 1500, 1900, 2300},
		robotYCbCr420Instructions, 0},
	{"Robot 72", 12, YCbCr, 320, 240, false,
		[]float64{9.0, 3.0, 138.0, 4.5, 1.5, 69.0},
		[]float64{1200, 1500, 1900, 2300},
		robotYCbCr422Instructions, 0},
	{"B&W 8", 2, Monochrome, 160, 120, false,
		[]float64{10.0, 56.0},
		[]float64{1200},
		robotMonochromeInstructions, 0},
	{"B&W 12", 6, Monochrome, 160, 120, false,
		[]float64{7.0, 93.0},
		[]float64{1200},
		robotMonochromeInstructions, 0},
	{"B&W 24", 10, Monochrome, 320, 240, false,
		[]float64{12.0, 93.0},
		[]float64{1200},
		robotMonochromeInstructions, 0},
	{"B&W 36", 14, Monochrome, 320, 240, false,
		[]float64{12.0, 138.0},
		[]float64{1200},
		robotMonochromeInstructions, 0},

	// Martin
	{"Martin 1", 44, RGB, 320, 256, false,
		[]float64{4.862, 0.572, 146.432},
		[]float64{1200, 1500},
		martinInstructions, 0},
	{"Martin 2", 40, RGB, 320, 256, false,
		[]float64{4.862, 0.572, 73.216},
		[]float64{1200, 1500},
		martinInstructions, 0},
	{"Martin 3", 36, RGB, 128, 256, false,
		[]float64{4.862, 0.572, 146.432},
		[]float64{1200, 1500},
		martinInstructions, 0},
	{"Martin 4", 32, RGB, 128, 256, false,
		[]float64{4.862, 0.572, 73.216},
		[]float64{1200, 1500},
		martinInstructions, 0},

	// Wraase
	{"Wraase SC2-180", 55, RGB, 320, 256, false,
		[]float64{5.5225, 0.500, 235.000},
		[]float64{1200, 1500},
		wraaseInstructions, 0},

	// Scottie
	{"Scottie 1", 60, RGB, 320, 256, false,
		[]float64{9.0, 1.5, 138.240},
		[]float64{1200, 1500},
		scottieInstructions, 1},
	{"Scottie 2", 56, RGB, 320, 256, false,
		[]float64{9.0, 1.5, 88.064},
		[]float64{1200, 1500},
		scottieInstructions, 1},
	{"Scottie DX", 76, RGB, 320, 256, false,
		[]float64{9.0, 1.5, 345.6},
		[]float64{1200, 1500},
		scottieInstructions, 1},

	// PD
	{"PD50", 93, YCbCr, 320, 256, true,
		[]float64{20.000, 2.080, 91.520},
		[]float64{1200, 1500},
		pdInstructions, 0},
	{"PD90", 99, YCbCr, 320, 256, true,
		[]float64{20.000, 2.080, 170.240},
		[]float64{1200, 1500},
		pdInstructions, 0},
	{"PD120", 95, YCbCr, 640, 496, true,
		[]float64{20.000, 2.080, 121.600},
		[]float64{1200, 1500},
		pdInstructions, 0},
	{"PD160", 98, YCbCr, 512, 400, true,
		[]float64{20.000, 2.080, 195.584},
		[]float64{1200, 1500},
		pdInstructions, 0},
	{"PD180", 96, YCbCr, 640, 496, true,
		[]float64{20.000, 2.080, 183.040},
		[]float64{1200, 1500},
		pdInstructions, 0},
	{"PD240", 97, YCbCr, 640, 496, true,
		[]float64{20.000, 2.080, 244.480},
		[]float64{1200, 1500},
		pdInstructions, 0},
	{"PD290", 94, YCbCr, 800, 616, true,
		[]float64{20.000, 2.080, 228.800},
		[]float64{1200, 1500},
		pdInstructions, 0},

	// Pasokon
	{"Pasokon P3", 113, RGB, 640, 496, false,
		[]float64{5.208, 1.042, 133.333},
		[]float64{1200, 1500},
		pasokonInstructions, 0},
	{"Pasokon P5", 114, RGB, 640, 496, false,
		[]float64{7.813, 1.563, 200.000},
		[]float64{1200, 1500},
		pasokonInstructions, 0},
	{"Pasokon P7", 115, RGB, 640, 496, false,
		[]float64{10.417, 1.042, 266.666},
		[]float64{1200, 1500},
		pasokonInstructions, 0},

	// Custom
	{"Block57", 57, YCbCr, 426, 240, false,
		[]float64{2.0, 0.5, 100.0},
		[]float64{1200, 1500},
		blockInstructions, 0},
}

// GetModeByName returns the catalogue entry with the given display name.
func GetModeByName(name string) (Mode, bool) {
	for _, m := range Modes {
		if m.Name == name {
			return m, true
		}
	}
	return Mode{}, false
}

// GetModeByVIS returns the catalogue entry with the given VIS code.
func GetModeByVIS(code uint8) (Mode, bool) {
	for _, m := range Modes {
		if m.VISCode == code {
			return m, true
		}
	}
	return Mode{}, false
}

// BuildVOXHeader appends the eight 100-ms VOX preamble tones.
func BuildVOXHeader(out []Instruction) []Instruction {
	out = append(out,
		Instruction{"VOX Low", voxLengthMS, voxFreqs[1], VOX, 0},
		Instruction{"VOX Low", voxLengthMS, voxFreqs[0], VOX, 0},
		Instruction{"VOX Low", voxLengthMS, voxFreqs[1], VOX, 0},
		Instruction{"VOX Low", voxLengthMS, voxFreqs[0], VOX, 0},
		Instruction{"VOX High", voxLengthMS, voxFreqs[2], VOX, 0},
		Instruction{"VOX High", voxLengthMS, voxFreqs[0], VOX, 0},
		Instruction{"VOX High", voxLengthMS, voxFreqs[2], VOX, 0},
		Instruction{"VOX High", voxLengthMS, voxFreqs[0], VOX, 0},
	)
	return out
}

// BuildVISHeader appends the thirteen-step VIS header: two leader tones, a
// break, a start bit, seven LSB-first data bits, a parity bit making the
// total 1-count even, and a stop bit.
func BuildVISHeader(out []Instruction, visCode uint8) []Instruction {
	out = append(out,
		Instruction{"Leader 1", visLeaderMS, visLeaderHz, VIS, 0},
		Instruction{"Break", visBreakMS, visBreakHz, VIS, 0},
		Instruction{"Leader 2", visLeaderMS, visLeaderHz, VIS, 0},
		Instruction{"VIS start", visDataBitMS, visBreakHz, VIS, 0},
	)

	parity := false
	for i := 0; i < 7; i++ {
		bit := visCode&(1<<uint(i)) != 0
		out = append(out, Instruction{
			Name: "VIS bit", LengthMS: visDataBitMS, Pitch: visBitFreq(bit), Type: VIS,
		})
		if bit {
			parity = !parity
		}
	}
	out = append(out,
		Instruction{"VIS parity", visDataBitMS, visBitFreq(parity), VIS, 0},
		Instruction{"VIS stop", visDataBitMS, visBreakHz, VIS, 0},
	)
	return out
}

// BuildFooter appends the four alternating-tone footer steps. Undocumented
// in SSTV literature; tolerated to be absent on decode.
func BuildFooter(out []Instruction) []Instruction {
	out = append(out,
		Instruction{"Footer 1", voxLengthMS, voxFreqs[1], VOX, 0},
		Instruction{"Footer 2", voxLengthMS, voxFreqs[0], VOX, 0},
		Instruction{"Footer 3", voxLengthMS, voxFreqs[1], VOX, 0},
		Instruction{"Footer 4", voxLengthMS, voxFreqs[0], VOX, 0},
	)
	return out
}

// loopDivisor returns the number of NewLine-flagged instructions within
// one looping cycle, used to convert mode.Lines into a loop count.
func loopDivisor(mode Mode) int {
	if !mode.UsesExtraLines {
		return 1
	}
	divisor := 0
	for _, ins := range mode.InstructionsLooping {
		if ins.Flags.Has(NewLine) {
			divisor++
		}
	}
	return divisor
}

// CreateInstructions expands mode into a flat instruction sequence: VOX
// header, VIS header (parameterised by mode.VISCode), the non-looping
// prelude (if InstructionLoopStart > 0), (Lines / divisor) repetitions of
// the looping body with ExtraLine-flagged steps filtered unless the mode
// opts in, and the footer. Every LengthUsesIndex length is resolved to a
// literal millisecond value; pitch indices are left for the caller to
// interpret. If clear is true, out is built from an empty slice.
func CreateInstructions(mode Mode, out []Instruction, clear bool) []Instruction {
	if clear {
		out = out[:0]
	}

	out = BuildVOXHeader(out)
	out = BuildVISHeader(out, mode.VISCode)

	divisor := loopDivisor(mode)
	lines := mode.Lines / divisor

	if mode.InstructionLoopStart > 0 {
		out = append(out, mode.InstructionsLooping[:mode.InstructionLoopStart]...)
	}

	for i := 0; i < lines; i++ {
		for j := mode.InstructionLoopStart; j < len(mode.InstructionsLooping); j++ {
			ins := mode.InstructionsLooping[j]
			if !mode.UsesExtraLines && ins.Flags.Has(ExtraLine) {
				continue
			}
			out = append(out, ins)
		}
	}

	out = BuildFooter(out)

	for i := range out {
		if out[i].Flags.Has(LengthUsesIndex) {
			out[i].LengthMS = mode.Timings[int(out[i].LengthMS)]
			out[i].Flags &^= LengthUsesIndex
		}
	}

	return out
}
