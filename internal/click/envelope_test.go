package click

import (
	"math"
	"testing"
)

func TestAnalyticWeights(t *testing.T) {
	tests := []struct {
		n    int
		want []float64
	}{
		{1, []float64{1}},
		{2, []float64{1, 1}},
		{4, []float64{1, 2, 1, 0}},
		{5, []float64{1, 2, 2, 0, 0}},
		{6, []float64{1, 2, 2, 1, 0, 0}},
	}
	for _, tt := range tests {
		got := analyticWeights(tt.n)
		if len(got) != len(tt.want) {
			t.Fatalf("analyticWeights(%d) len = %d, want %d", tt.n, len(got), len(tt.want))
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("analyticWeights(%d)[%d] = %v, want %v", tt.n, i, got[i], tt.want[i])
			}
		}
	}
}

func TestRunningMean(t *testing.T) {
	tests := []struct {
		name string
		x    []float64
		w    int
		want []float64
	}{
		{"width_one_copies", []float64{1, 2, 3}, 1, []float64{1, 2, 3}},
		// Centred like a same-mode convolution: odd width is symmetric
		{"odd_width", []float64{3, 3, 3, 3}, 3, []float64{2, 3, 3, 2}},
		// Even width leans one sample to the left
		{"even_width", []float64{0, 4, 0, 0}, 2, []float64{0, 2, 2, 0}},
		{"impulse", []float64{0, 0, 6, 0, 0}, 3, []float64{0, 2, 2, 2, 0}},
		{"empty", []float64{}, 5, []float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runningMean(tt.x, tt.w)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-12 {
					t.Errorf("runningMean[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestAnalyticMagnitudeOfSteadyTone(t *testing.T) {
	// 1 kHz at 8 kHz: eight samples per cycle, a whole number of cycles,
	// so the analytic signal has constant magnitude.
	const n = 8000
	x := make([]float64, n)
	for i := range x {
		x[i] = 0.5 * math.Sin(2*math.Pi*float64(i)/8)
	}
	mag := analyticMagnitude(x)
	for i, v := range mag {
		if math.Abs(v-0.5) > 1e-9 {
			t.Fatalf("magnitude[%d] = %v, want 0.5", i, v)
		}
	}
}

func TestAnalyticMagnitudeBlockedInput(t *testing.T) {
	// Longer than one block; the interior must stay flat across block joins.
	const n = 600000
	x := make([]float64, n)
	for i := range x {
		x[i] = 0.25 * math.Sin(2*math.Pi*float64(i)/8)
	}
	mag := analyticMagnitude(x)
	if len(mag) != n {
		t.Fatalf("len = %d, want %d", len(mag), n)
	}
	hop := envelopeBlockLen - 2*envelopePad
	for _, i := range []int{50000, hop - 1, hop, hop + 1, 2*hop - 1, 2 * hop, 450000} {
		if math.Abs(mag[i]-0.25) > 1e-3 {
			t.Errorf("magnitude[%d] = %v, want 0.25", i, mag[i])
		}
	}
}

func TestEnvelopeSilence(t *testing.T) {
	env := Envelope(make([]float64, 4000), 8000, 0.05)
	for i, v := range env {
		if v != 0 {
			t.Fatalf("envelope[%d] = %v, want 0 for digital silence", i, v)
		}
	}
}
