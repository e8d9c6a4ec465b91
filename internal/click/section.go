package click

import "fmt"

// SectionType classifies a span of the recording timeline.
type SectionType int

const (
	Speaking SectionType = iota
	Song
)

// String returns the label used in session files and reports.
func (t SectionType) String() string {
	if t == Song {
		return "SONG"
	}
	return "SPEAKING"
}

// Section is one contiguous span [StartSample, EndSample) of the timeline.
// BPM is zero when no tempo was estimated.
//
// Sections are values: merging builds new ones and never edits a section
// that has already been handed out.
type Section struct {
	Number      int
	StartSample int
	EndSample   int
	Type        SectionType
	BPM         int
}

// HasBPM reports whether a tempo estimate is attached.
func (s Section) HasBPM() bool { return s.BPM > 0 }

// Samples returns the section length in samples.
func (s Section) Samples() int { return s.EndSample - s.StartSample }

// Duration returns the section length in seconds.
func (s Section) Duration(sampleRate int) float64 {
	return float64(s.Samples()) / float64(sampleRate)
}

// StartSeconds returns the section start in seconds.
func (s Section) StartSeconds(sampleRate int) float64 {
	return float64(s.StartSample) / float64(sampleRate)
}

// Name returns the directory-style name, e.g. section_03.
func (s Section) Name() string {
	return fmt.Sprintf("section_%02d", s.Number)
}

func (s Section) withEnd(end int) Section {
	s.EndSample = end
	return s
}

func renumber(sections []Section) []Section {
	out := make([]Section, len(sections))
	for i, s := range sections {
		s.Number = i + 1
		out[i] = s
	}
	return out
}

// CheckCoverage verifies that sections tile [0, totalSamples) exactly,
// are numbered 1..N and carry a BPM exactly when typed SONG.
func CheckCoverage(sections []Section, totalSamples int) error {
	pos := 0
	for i, s := range sections {
		if s.Number != i+1 {
			return fmt.Errorf("section %d numbered %d", i+1, s.Number)
		}
		if s.StartSample != pos {
			return fmt.Errorf("%s starts at %d, expected %d", s.Name(), s.StartSample, pos)
		}
		if s.EndSample <= s.StartSample {
			return fmt.Errorf("%s is empty: [%d, %d)", s.Name(), s.StartSample, s.EndSample)
		}
		if s.HasBPM() != (s.Type == Song) {
			return fmt.Errorf("%s is %s with bpm %d", s.Name(), s.Type, s.BPM)
		}
		pos = s.EndSample
	}
	if pos != totalSamples {
		return fmt.Errorf("sections end at %d, expected %d", pos, totalSamples)
	}
	return nil
}
