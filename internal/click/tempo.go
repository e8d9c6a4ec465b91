package click

import (
	"math"
	"slices"
	"sort"
)

// minTempoOnsets is the smallest onset count that yields a tempo estimate.
const minTempoOnsets = 4

// EstimateBPM derives a tempo from the median inter-onset interval. It
// reports false when there are too few onsets or the tempo falls outside
// [minBPM, maxBPM]; neither case is an error.
func EstimateBPM(onsets []int, sampleRate int, minBPM, maxBPM int) (float64, bool) {
	if len(onsets) < minTempoOnsets || sampleRate <= 0 {
		return 0, false
	}
	iois := make([]float64, len(onsets)-1)
	for i := range iois {
		iois[i] = float64(onsets[i+1]-onsets[i]) / float64(sampleRate)
	}
	m := median(iois)
	if m <= 0 {
		return 0, false
	}
	bpm := 60 / m
	if bpm < float64(minBPM) || bpm > float64(maxBPM) {
		return 0, false
	}
	return bpm, true
}

// roundBPM converts an estimate to the integer stored on sections.
func roundBPM(bpm float64, ok bool) int {
	if !ok {
		return 0
	}
	return int(math.Round(bpm))
}

// median returns the middle value of v, averaging the two middle values
// for even lengths. v is not modified.
func median(v []float64) float64 {
	if len(v) == 0 {
		return math.NaN()
	}
	s := slices.Clone(v)
	slices.Sort(s)
	mid := len(s) / 2
	if len(s)%2 == 0 {
		return (s[mid-1] + s[mid]) / 2
	}
	return s[mid]
}

// TempoPoint is a tempo estimate for one fixed window of the timeline.
type TempoPoint struct {
	StartSample int
	EndSample   int
	Onsets      int
	BPM         float64
	OK          bool
}

// TempoMap estimates tempo over consecutive windows of windowSeconds. It
// is a diagnostic view; sections carry their own per-region estimates.
func TempoMap(onsets []int, totalSamples, sampleRate int, windowSeconds float64, minBPM, maxBPM int) []TempoPoint {
	win := int(windowSeconds * float64(sampleRate))
	if win <= 0 || totalSamples <= 0 {
		return nil
	}
	points := make([]TempoPoint, 0, totalSamples/win+1)
	for start := 0; start < totalSamples; start += win {
		end := min(start+win, totalSamples)
		lo := sort.SearchInts(onsets, start)
		hi := sort.SearchInts(onsets, end)
		bpm, ok := EstimateBPM(onsets[lo:hi], sampleRate, minBPM, maxBPM)
		points = append(points, TempoPoint{
			StartSample: start,
			EndSample:   end,
			Onsets:      hi - lo,
			BPM:         bpm,
			OK:          ok,
		})
	}
	return points
}
