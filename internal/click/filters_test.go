package click

import (
	"math"
	"testing"
)

func sine(freq float64, sampleRate, n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return x
}

// rms measures the second half of x, after filter start-up transients.
func rms(x []float64) float64 {
	var sum float64
	tail := x[len(x)/2:]
	for _, v := range tail {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(tail)))
}

func TestPrefilterAttenuation(t *testing.T) {
	const sr = 44100
	p := PrefilterConfig{Enabled: true, LowHz: 500, HighHz: 5000, Order: 4, HumNotch: true, HumHz: 60}

	tests := []struct {
		name    string
		freq    float64
		maxGain float64
		minGain float64
	}{
		{"passband", 1500, 1.05, 0.9},
		{"below_highpass", 60.5, 0.01, 0},
		{"above_lowpass", 15000, 0.01, 0},
		{"hum_fundamental", 60, 0.01, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := sine(tt.freq, sr, sr)
			gain := rms(Prefilter(in, sr, p)) / rms(in)
			if gain > tt.maxGain || gain < tt.minGain {
				t.Errorf("gain at %.1f Hz = %.4f, want [%.2f, %.2f]", tt.freq, gain, tt.minGain, tt.maxGain)
			}
		})
	}
}

func TestHumNotchAlone(t *testing.T) {
	const sr = 8000
	p := PrefilterConfig{Enabled: true, Order: 2, HumNotch: true, HumHz: 50}
	// Long enough for the narrow notch to settle before the measured half
	hum := sine(50, sr, 4*sr)
	click := sine(1000, sr, 4*sr)
	if g := rms(Prefilter(hum, sr, p)) / rms(hum); g > 0.02 {
		t.Errorf("50 Hz gain = %.4f, want < 0.02", g)
	}
	if g := rms(Prefilter(click, sr, p)) / rms(click); g < 0.95 {
		t.Errorf("1 kHz gain = %.4f, want > 0.95", g)
	}
}

func TestPrefilterDisabledCopies(t *testing.T) {
	in := []float64{0.1, -0.2, 0.3}
	out := Prefilter(in, 8000, PrefilterConfig{Order: 4, LowHz: 100})
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("disabled prefilter changed sample %d", i)
		}
	}
	out[0] = 9
	if in[0] != 0.1 {
		t.Error("Prefilter returned the caller's slice")
	}
}

func TestActiveFilters(t *testing.T) {
	tests := []struct {
		name       string
		p          PrefilterConfig
		sampleRate int
		want       []FilterID
	}{
		{"disabled", PrefilterConfig{LowHz: 20, HighHz: 20000, Order: 4}, 44100, nil},
		{"band", PrefilterConfig{Enabled: true, LowHz: 20, HighHz: 20000, Order: 4}, 44100, []FilterID{FilterHighpass, FilterLowpass}},
		{"lowpass_above_nyquist", PrefilterConfig{Enabled: true, LowHz: 20, HighHz: 20000, Order: 4}, 8000, []FilterID{FilterHighpass}},
		{"notch_only", PrefilterConfig{Enabled: true, Order: 4, HumNotch: true}, 8000, []FilterID{FilterHumNotch}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ActiveFilters(tt.p, tt.sampleRate)
			if len(got) != len(tt.want) {
				t.Fatalf("ActiveFilters() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ActiveFilters()[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestButterworthStageCount(t *testing.T) {
	for order := 1; order <= 8; order++ {
		got := len(butterworth(1000, 44100, order, false))
		want := (order + 1) / 2
		if got != want {
			t.Errorf("order %d: %d stages, want %d", order, got, want)
		}
	}
}

func TestAnalyzeWithPrefilter(t *testing.T) {
	samples := generateClickTrain(t, clickTrainOptions{
		Segments: []clickSegment{{BPM: 120, Seconds: 20}},
	})
	// Add strong 50 Hz hum under the clicks
	for i := range samples {
		samples[i] += 0.3 * math.Sin(2*math.Pi*50*float64(i)/8000)
	}
	a := newTestAnalyzer(t, func(c *Config) {
		c.Prefilter = PrefilterConfig{Enabled: true, LowHz: 300, HighHz: 3000, Order: 4, HumNotch: true, HumHz: 50}
	})
	result, err := a.Analyze(samples, 8000)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(result.Sections) != 1 || result.Sections[0].BPM != 120 {
		t.Errorf("sections = %+v, want a single 120 BPM song", result.Sections)
	}
}
