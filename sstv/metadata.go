package sstv

import "sync"

// ModeMetadata holds precomputed durations for one catalogue mode.
type ModeMetadata struct {
	Mode         Mode
	LengthMS     float64 // total duration of VOX+VIS+body+footer
	LoopLengthMS float64 // duration of one looping-body cycle per NewLine it emits (see loopDivisor)
}

var (
	metadataOnce  sync.Once
	metadataByVIS map[uint8]ModeMetadata
	longestMode   Mode
	shortestMode  Mode
)

func buildMetadata() {
	metadataByVIS = make(map[uint8]ModeMetadata, len(Modes))

	var longestMS, shortestMS float64
	shortestMS = -1

	for _, mode := range Modes {
		divisor := loopDivisor(mode)

		var loopLengthMS float64
		for i := mode.InstructionLoopStart; i < len(mode.InstructionsLooping); i++ {
			ins := mode.InstructionsLooping[i]
			length := ins.LengthMS
			if ins.Flags.Has(LengthUsesIndex) {
				length = mode.Timings[int(length)]
			}
			loopLengthMS += length
		}
		loopLengthMS /= float64(divisor)

		instructions := CreateInstructions(mode, nil, true)
		var totalMS float64
		for _, ins := range instructions {
			totalMS += ins.LengthMS
		}

		metadataByVIS[mode.VISCode] = ModeMetadata{
			Mode:         mode,
			LengthMS:     totalMS,
			LoopLengthMS: loopLengthMS,
		}

		if totalMS > longestMS {
			longestMS = totalMS
			longestMode = mode
		}
		if shortestMS < 0 || totalMS < shortestMS {
			shortestMS = totalMS
			shortestMode = mode
		}
	}
}

// GetModeMetadata returns the precomputed durations for mode, building
// the metadata table (a pure function of the catalogue) on first use.
func GetModeMetadata(mode Mode) (ModeMetadata, bool) {
	metadataOnce.Do(buildMetadata)
	meta, ok := metadataByVIS[mode.VISCode]
	return meta, ok
}

// LongestMode and ShortestMode return the catalogue's longest- and
// shortest-duration modes (at their own VIS code).
func LongestMode() Mode {
	metadataOnce.Do(buildMetadata)
	return longestMode
}

func ShortestMode() Mode {
	metadataOnce.Do(buildMetadata)
	return shortestMode
}
