package click

import "math"

const (
	// minSplitOnsets is the smallest region the tempo-change detector will
	// look at.
	minSplitOnsets = 8

	// changePointSpacingSeconds suppresses change points that cluster
	// around a single transition.
	changePointSpacingSeconds = 2.0

	minTempoWindow = 4
	maxTempoWindow = 16
)

// SplitRegionByTempo divides a region where its local tempo moves by at
// least cfg.BPMChangeThreshold. Every returned sub-region has at least four
// onsets; when no split qualifies the region is returned unchanged.
func SplitRegionByTempo(region Region, sampleRate int, cfg Config) []Region {
	if len(region.Onsets) < minSplitOnsets {
		return []Region{region}
	}
	points := tempoChangePoints(region.Onsets, sampleRate, cfg)
	points = spaceChangePoints(points, region.Onsets, sampleRate)

	var cuts []int
	prev := 0
	for _, cp := range points {
		if cp-prev >= minTempoOnsets && len(region.Onsets)-cp >= minTempoOnsets {
			cuts = append(cuts, cp)
			prev = cp
		}
	}
	if len(cuts) == 0 {
		return []Region{region}
	}

	subs := make([]Region, 0, len(cuts)+1)
	bounds := append(append([]int{0}, cuts...), len(region.Onsets))
	for i := 0; i+1 < len(bounds); i++ {
		members := append([]int(nil), region.Onsets[bounds[i]:bounds[i+1]]...)
		end := region.End
		if i+2 < len(bounds) {
			end = region.Onsets[bounds[i+1]]
		}
		subs = append(subs, Region{Start: members[0], End: end, Onsets: members})
	}
	return subs
}

// tempoChangePoints runs a greedy detector over the instantaneous tempo
// sequence. The local tempo at IOI index i is the median of the in-range
// values in [i-w/2, i+w/2), so an odd w yields w-1 values. The returned
// values are onset indices: a jump detected at IOI index i starts at onset i+1.
func tempoChangePoints(onsets []int, sampleRate int, cfg Config) []int {
	n := len(onsets) - 1
	bpms := make([]float64, n)
	for i := range bpms {
		bpms[i] = 60 * float64(sampleRate) / float64(onsets[i+1]-onsets[i])
	}

	w := min(max(n/4, minTempoWindow), maxTempoWindow)
	half := w / 2
	lo, hi := float64(cfg.MinBPM), float64(cfg.MaxBPM)
	threshold := float64(cfg.BPMChangeThreshold)

	var points []int
	var ref float64
	haveRef := false
	valid := make([]float64, 0, w)
	for i := range bpms {
		valid = valid[:0]
		for _, b := range bpms[max(i-half, 0):min(i+half, n)] {
			if b >= lo && b <= hi {
				valid = append(valid, b)
			}
		}
		if len(valid) == 0 {
			continue
		}
		local := median(valid)
		if !haveRef {
			ref, haveRef = local, true
			continue
		}
		if math.Abs(local-ref) >= threshold {
			points = append(points, i+1)
			ref = local
		}
	}
	return points
}

// spaceChangePoints drops change points that fall within
// changePointSpacingSeconds of the last accepted one.
func spaceChangePoints(points, onsets []int, sampleRate int) []int {
	spacing := int(changePointSpacingSeconds * float64(sampleRate))
	var out []int
	for _, cp := range points {
		if len(out) > 0 && onsets[cp]-onsets[out[len(out)-1]] < spacing {
			continue
		}
		out = append(out, cp)
	}
	return out
}
