package click

// MergeShortSections folds sections shorter than minSeconds into a
// neighbour in a single left-to-right pass. The first section merges
// forward; every other short section merges backward into the section
// already emitted. The merged section takes its type and tempo from the
// longer contributor.
//
// A merged section is not re-examined, so two adjacent short sections can
// leave a result still under minSeconds. minSeconds <= 0 disables merging.
func MergeShortSections(sections []Section, minSeconds float64, sampleRate int) []Section {
	if minSeconds <= 0 || len(sections) < 2 {
		return renumber(sections)
	}

	out := make([]Section, 0, len(sections))
	for i := 0; i < len(sections); i++ {
		s := sections[i]
		if s.Duration(sampleRate) >= minSeconds {
			out = append(out, s)
			continue
		}
		if i == 0 {
			out = append(out, mergePair(s, sections[i+1], false))
			i++
			continue
		}
		last := len(out) - 1
		out[last] = mergePair(out[last], s, true)
	}
	return renumber(out)
}

// mergePair spans a and b (a immediately before b). Type and tempo come
// from the longer one; preferFirst breaks a tie toward a.
func mergePair(a, b Section, preferFirst bool) Section {
	donor := b
	if a.Samples() > b.Samples() || (a.Samples() == b.Samples() && preferFirst) {
		donor = a
	}
	return Section{
		Number:      a.Number,
		StartSample: a.StartSample,
		EndSample:   b.EndSample,
		Type:        donor.Type,
		BPM:         donor.BPM,
	}
}

// ClassifySections derives each section's type from its tempo: SONG when
// a BPM is attached, SPEAKING otherwise. It is idempotent.
func ClassifySections(sections []Section) []Section {
	out := make([]Section, len(sections))
	for i, s := range sections {
		if s.HasBPM() {
			s.Type = Song
		} else {
			s.Type = Speaking
		}
		out[i] = s
	}
	return out
}
