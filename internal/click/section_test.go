package click

import "testing"

func TestSectionTypeString(t *testing.T) {
	if Song.String() != "SONG" || Speaking.String() != "SPEAKING" {
		t.Errorf("got %q and %q", Song.String(), Speaking.String())
	}
}

func TestSectionAccessors(t *testing.T) {
	s := Section{Number: 3, StartSample: 88200, EndSample: 220500, Type: Song, BPM: 128}
	if s.Name() != "section_03" {
		t.Errorf("Name() = %q", s.Name())
	}
	if s.Samples() != 132300 {
		t.Errorf("Samples() = %d", s.Samples())
	}
	if s.Duration(44100) != 3 || s.StartSeconds(44100) != 2 {
		t.Errorf("Duration() = %v, StartSeconds() = %v", s.Duration(44100), s.StartSeconds(44100))
	}
	if !s.HasBPM() {
		t.Error("HasBPM() = false")
	}
}

func TestCheckCoverage(t *testing.T) {
	ok := []Section{
		{Number: 1, StartSample: 0, EndSample: 10, Type: Speaking},
		{Number: 2, StartSample: 10, EndSample: 30, Type: Song, BPM: 120},
	}
	if err := CheckCoverage(ok, 30); err != nil {
		t.Fatalf("CheckCoverage(valid) = %v", err)
	}

	tests := []struct {
		name     string
		sections []Section
		total    int
	}{
		{"gap", []Section{{Number: 1, StartSample: 0, EndSample: 10}, {Number: 2, StartSample: 12, EndSample: 30}}, 30},
		{"overlap", []Section{{Number: 1, StartSample: 0, EndSample: 12}, {Number: 2, StartSample: 10, EndSample: 30}}, 30},
		{"short", []Section{{Number: 1, StartSample: 0, EndSample: 10}}, 30},
		{"empty_section", []Section{{Number: 1, StartSample: 0, EndSample: 0}, {Number: 2, StartSample: 0, EndSample: 30}}, 30},
		{"numbering", []Section{{Number: 2, StartSample: 0, EndSample: 30}}, 30},
		{"song_without_bpm", []Section{{Number: 1, StartSample: 0, EndSample: 30, Type: Song}}, 30},
		{"speaking_with_bpm", []Section{{Number: 1, StartSample: 0, EndSample: 30, BPM: 90}}, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CheckCoverage(tt.sections, tt.total); err == nil {
				t.Error("CheckCoverage() = nil, want error")
			}
		})
	}
}
