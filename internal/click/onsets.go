package click

import "sort"

// PickPeaks returns the indices of local maxima in x that are at least
// distance samples apart and stand out from their surroundings by at least
// prominence. Flat-topped maxima report their midpoint. When two candidates
// compete for the same neighbourhood the higher one wins, and on equal
// heights the earlier one.
func PickPeaks(x []float64, distance int, prominence float64) []int {
	peaks := localMaxima(x)
	if distance > 1 {
		peaks = selectByDistance(x, peaks, distance)
	}
	kept := peaks[:0]
	for _, p := range peaks {
		if prominentEnough(x, p, prominence) {
			kept = append(kept, p)
		}
	}
	return kept
}

func localMaxima(x []float64) []int {
	var peaks []int
	last := len(x) - 1
	for i := 1; i < last; i++ {
		if x[i-1] >= x[i] {
			continue
		}
		ahead := i + 1
		for ahead < last && x[ahead] == x[i] {
			ahead++
		}
		if x[ahead] < x[i] {
			peaks = append(peaks, (i+ahead-1)/2)
			i = ahead
		}
	}
	return peaks
}

func selectByDistance(x []float64, peaks []int, distance int) []int {
	order := make([]int, len(peaks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return x[peaks[order[a]]] > x[peaks[order[b]]]
	})

	keep := make([]bool, len(peaks))
	for i := range keep {
		keep[i] = true
	}
	for _, j := range order {
		if !keep[j] {
			continue
		}
		for k := j - 1; k >= 0 && peaks[j]-peaks[k] < distance; k-- {
			keep[k] = false
		}
		for k := j + 1; k < len(peaks) && peaks[k]-peaks[j] < distance; k++ {
			keep[k] = false
		}
	}

	out := make([]int, 0, len(peaks))
	for i, p := range peaks {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}

// prominentEnough reports whether peak p rises at least prominence above
// the signal on both sides. Each side is scanned until it either dips low
// enough or climbs above the peak, so identical neighbouring clicks do not
// force a scan of the whole signal. The outcome matches comparing the full
// prominence (peak height above the higher of the two side minima) against
// the threshold.
func prominentEnough(x []float64, p int, prominence float64) bool {
	h := x[p]
	floor := h - prominence
	return sideReaches(x, p, -1, h, floor) && sideReaches(x, p, 1, h, floor)
}

func sideReaches(x []float64, p, step int, h, floor float64) bool {
	for i := p; i >= 0 && i < len(x); i += step {
		if x[i] > h {
			return false
		}
		if x[i] <= floor {
			return true
		}
	}
	return false
}
