package sstv

import "testing"

func TestGetModeByNameAndVIS(t *testing.T) {
	for _, m := range Modes {
		byName, ok := GetModeByName(m.Name)
		if !ok || byName.VISCode != m.VISCode {
			t.Errorf("GetModeByName(%q) = %+v, %v; want VIS code %d", m.Name, byName, ok, m.VISCode)
		}
		byVIS, ok := GetModeByVIS(m.VISCode)
		if !ok || byVIS.Name != m.Name {
			t.Errorf("GetModeByVIS(%d) = %+v, %v; want name %q", m.VISCode, byVIS, ok, m.Name)
		}
	}
}

func TestGetModeByNameUnknown(t *testing.T) {
	if _, ok := GetModeByName("Not A Real Mode"); ok {
		t.Error("expected ok=false for an unknown mode name")
	}
}

func TestVisBitFreq(t *testing.T) {
	if got := visBitFreq(true); got != 1100 {
		t.Errorf("visBitFreq(true) = %v, want 1100", got)
	}
	if got := visBitFreq(false); got != 1300 {
		t.Errorf("visBitFreq(false) = %v, want 1300", got)
	}
}

func TestBuildVISHeaderLayout(t *testing.T) {
	hdr := BuildVISHeader(nil, 0)
	if len(hdr) != visInstructionCount {
		t.Fatalf("len(BuildVISHeader) = %d, want %d", len(hdr), visInstructionCount)
	}
	if hdr[1].Pitch != visBreakHz {
		t.Errorf("break tone = %v, want %v", hdr[1].Pitch, float64(visBreakHz))
	}
}

func TestBuildVISHeaderParity(t *testing.T) {
	// Every VIS code in the catalogue must assemble with even parity
	// across its 7 data bits plus the parity bit.
	for _, m := range Modes {
		hdr := BuildVISHeader(nil, m.VISCode)
		var ones int
		for i := 0; i < visBitsCount; i++ {
			if hdr[visBitsStart+i].Pitch == visBitFreq(true) {
				ones++
			}
		}
		parityIsOne := hdr[visParityIndex].Pitch == visBitFreq(true)
		if (ones%2 == 1) != parityIsOne {
			t.Errorf("mode %s: VIS code %d has %d one-bits but parity bit one=%v", m.Name, m.VISCode, ones, parityIsOne)
		}
	}
}

func TestCreateInstructionsLineCount(t *testing.T) {
	for _, m := range Modes {
		instructions := CreateInstructions(m, nil, true)
		var lines int
		for _, ins := range instructions {
			if ins.Flags.Has(NewLine) {
				lines++
			}
		}
		if lines != m.Lines {
			t.Errorf("mode %s: counted %d NewLine instructions, want %d lines", m.Name, lines, m.Lines)
		}
	}
}

func TestCreateInstructionsResolvesLengths(t *testing.T) {
	for _, m := range Modes {
		instructions := CreateInstructions(m, nil, true)
		for _, ins := range instructions {
			if ins.Flags.Has(LengthUsesIndex) {
				t.Errorf("mode %s: instruction %q still has LengthUsesIndex set after CreateInstructions", m.Name, ins.Name)
			}
			if ins.LengthMS <= 0 {
				t.Errorf("mode %s: instruction %q has non-positive length %v", m.Name, ins.Name, ins.LengthMS)
			}
		}
	}
}

func TestCreateInstructionsExtraLineFiltering(t *testing.T) {
	m, ok := GetModeByName("Robot 12")
	if !ok {
		t.Fatal("Robot 12 missing from catalogue")
	}
	if !m.UsesExtraLines {
		t.Fatal("Robot 12 is expected to use extra lines")
	}
	instructions := CreateInstructions(m, nil, true)
	var sawExtraLine bool
	for _, ins := range instructions {
		if ins.Flags.Has(ExtraLine) {
			sawExtraLine = true
		}
	}
	if !sawExtraLine {
		t.Error("Robot 12: expected at least one ExtraLine instruction since UsesExtraLines=true")
	}
}
