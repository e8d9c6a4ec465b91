package click

import (
	"testing"
)

func TestPickPeaks(t *testing.T) {
	tests := []struct {
		name       string
		x          []float64
		distance   int
		prominence float64
		want       []int
	}{
		{"two_peaks", []float64{0, 1, 0, 2, 0}, 1, 0.5, []int{1, 3}},
		{"plateau_odd", []float64{0, 1, 1, 1, 0}, 1, 0.5, []int{2}},
		{"plateau_even_rounds_down", []float64{0, 1, 1, 0}, 1, 0.5, []int{1}},
		{"rising_edge_not_peak", []float64{0, 1, 2}, 1, 0, nil},
		{"falling_edge_not_peak", []float64{2, 1, 0}, 1, 0, nil},
		{"plateau_into_edge", []float64{0, 1, 1}, 1, 0, nil},
		{"distance_keeps_higher", []float64{0, 2, 0, 3, 0, 0}, 3, 0.5, []int{3}},
		{"distance_tie_keeps_earlier", []float64{0, 2, 0, 2, 0}, 3, 0.5, []int{1}},
		{"distance_exact_keeps_both", []float64{0, 2, 0, 2, 0}, 2, 0.5, []int{1, 3}},
		{"prominence_rejects_shoulder", []float64{0, 5, 4, 4.5, 0}, 1, 1, []int{1}},
		{"prominence_keeps_shoulder", []float64{0, 5, 4, 4.5, 0}, 1, 0.5, []int{1, 3}},
		{"silence", []float64{0, 0, 0, 0}, 1, 0, nil},
		{"too_short", []float64{1, 2}, 1, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PickPeaks(tt.x, tt.distance, tt.prominence)
			if len(got) != len(tt.want) {
				t.Fatalf("PickPeaks() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("PickPeaks()[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestProminentEnough(t *testing.T) {
	x := []float64{1, 3, 2, 4, 0.5, 2.5, 0}
	tests := []struct {
		peak       int
		prominence float64
		want       bool
	}{
		{1, 1, true},    // right side climbs past 3 after dipping to 2
		{1, 1.5, false}, // so its prominence is exactly 1
		{3, 3, true},    // bases 1 and 0, the higher one counts
		{3, 3.1, false},
		{5, 2, true}, // left side climbs past 2.5 after dipping to 0.5
		{5, 2.1, false},
	}
	for _, tt := range tests {
		if got := prominentEnough(x, tt.peak, tt.prominence); got != tt.want {
			t.Errorf("prominentEnough(peak %d, %v) = %v, want %v", tt.peak, tt.prominence, got, tt.want)
		}
	}
}

func TestDetectOnsetsSpacing(t *testing.T) {
	samples := generateClickTrain(t, clickTrainOptions{
		NoiseLevel: 0.002,
		Segments:   []clickSegment{{BPM: 240, Seconds: 10}},
	})
	cfg := DefaultConfig()
	a, err := NewEnvelopeAnalyzer(cfg)
	if err != nil {
		t.Fatalf("NewEnvelopeAnalyzer: %v", err)
	}
	onsets, err := a.DetectOnsets(samples, 8000)
	if err != nil {
		t.Fatalf("DetectOnsets: %v", err)
	}
	if len(onsets) != 40 {
		t.Errorf("detected %d onsets, want 40", len(onsets))
	}
	minGap := cfg.peakDistanceSamples(8000)
	for i := 1; i < len(onsets); i++ {
		if onsets[i] <= onsets[i-1] {
			t.Fatalf("onsets not ascending at %d: %d then %d", i, onsets[i-1], onsets[i])
		}
		if onsets[i]-onsets[i-1] < minGap {
			t.Errorf("onsets %d and %d are %d samples apart, minimum is %d",
				i-1, i, onsets[i]-onsets[i-1], minGap)
		}
	}
}

func TestDetectOnsetsDoubleClickSuppressed(t *testing.T) {
	// Each beat fires twice 30 ms apart; the minimum peak distance must
	// collapse every pair to a single onset.
	base := generateClickTrain(t, clickTrainOptions{
		Segments: []clickSegment{{BPM: 120, Seconds: 5}},
	})
	echo := make([]float64, len(base))
	shift := int(0.03 * 8000)
	for i := range base {
		echo[i] = base[i]
		if i >= shift {
			echo[i] += 0.5 * base[i-shift]
		}
	}

	a, err := NewEnvelopeAnalyzer(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEnvelopeAnalyzer: %v", err)
	}
	onsets, err := a.DetectOnsets(echo, 8000)
	if err != nil {
		t.Fatalf("DetectOnsets: %v", err)
	}
	if len(onsets) != 10 {
		t.Errorf("detected %d onsets, want 10", len(onsets))
	}
}
