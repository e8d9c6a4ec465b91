package click

// AssembleSections turns song regions into a section list that tiles
// [0, totalSamples). Gaps of at least the gap threshold become SPEAKING
// sections; shorter gaps are absorbed by the neighbouring section so the
// timeline stays covered. Song sections carry the region tempo, or zero
// when it could not be estimated.
func AssembleSections(regions []Region, totalSamples, sampleRate int, cfg Config) []Section {
	if totalSamples <= 0 {
		return nil
	}
	gap := cfg.gapSamples(sampleRate)

	var out []Section
	pos := 0
	for _, r := range regions {
		start := max(r.Start, pos)
		end := min(r.End, totalSamples)
		if end <= start {
			continue
		}
		switch {
		case start-pos >= gap:
			out = append(out, Section{StartSample: pos, EndSample: start, Type: Speaking})
		case start > pos && len(out) == 0:
			start = pos
		case start > pos:
			out[len(out)-1] = out[len(out)-1].withEnd(start)
		}

		bpm, ok := EstimateBPM(r.Onsets, sampleRate, cfg.MinBPM, cfg.MaxBPM)
		out = append(out, Section{
			StartSample: start,
			EndSample:   end,
			Type:        Song,
			BPM:         roundBPM(bpm, ok),
		})
		pos = end
	}

	switch {
	case len(out) == 0:
		out = append(out, Section{StartSample: 0, EndSample: totalSamples, Type: Speaking})
	case totalSamples-pos >= gap:
		out = append(out, Section{StartSample: pos, EndSample: totalSamples, Type: Speaking})
	case pos < totalSamples:
		out[len(out)-1] = out[len(out)-1].withEnd(totalSamples)
	}
	return renumber(out)
}
