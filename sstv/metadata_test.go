package sstv

import "testing"

func TestGetModeMetadataAllModes(t *testing.T) {
	for _, m := range Modes {
		meta, ok := GetModeMetadata(m)
		if !ok {
			t.Errorf("no metadata for mode %s", m.Name)
			continue
		}
		if meta.LengthMS <= 0 {
			t.Errorf("mode %s: LengthMS = %v, want > 0", m.Name, meta.LengthMS)
		}
		if meta.LoopLengthMS <= 0 {
			t.Errorf("mode %s: LoopLengthMS = %v, want > 0", m.Name, meta.LoopLengthMS)
		}
	}
}

func TestLongestShortestMode(t *testing.T) {
	longest := LongestMode()
	shortest := ShortestMode()

	longestMeta, _ := GetModeMetadata(longest)
	shortestMeta, _ := GetModeMetadata(shortest)

	if longestMeta.LengthMS < shortestMeta.LengthMS {
		t.Errorf("longest mode %s (%vms) is shorter than shortest mode %s (%vms)",
			longest.Name, longestMeta.LengthMS, shortest.Name, shortestMeta.LengthMS)
	}
}
