package click

import (
	"math"
	"testing"
)

// clickSegment describes one stretch of a synthetic click channel. A zero
// BPM produces silence.
type clickSegment struct {
	BPM     float64
	Seconds float64
}

// clickTrainOptions configures the synthetic click channel.
type clickTrainOptions struct {
	SampleRate int     // default 8000
	CarrierHz  float64 // default 1000
	Level      float64 // peak amplitude, default 0.5
	NoiseLevel float64 // white noise amplitude, 0 = none
	Segments   []clickSegment
}

// generateClickTrain renders a metronome channel: each click is a decaying
// sine burst starting exactly on the beat. Beat spacing is rounded to whole
// samples so inter-onset intervals are exact.
func generateClickTrain(t *testing.T, opts clickTrainOptions) []float64 {
	t.Helper()

	if opts.SampleRate == 0 {
		opts.SampleRate = 8000
	}
	if opts.CarrierHz == 0 {
		opts.CarrierHz = 1000
	}
	if opts.Level == 0 {
		opts.Level = 0.5
	}
	sr := float64(opts.SampleRate)

	total := 0
	for _, seg := range opts.Segments {
		total += int(seg.Seconds * sr)
	}
	if total == 0 {
		t.Fatal("click train has no duration")
	}
	out := make([]float64, total)

	burstLen := int(0.1 * sr)
	decay := 0.02 * sr
	pos := 0
	for _, seg := range opts.Segments {
		n := int(seg.Seconds * sr)
		if seg.BPM > 0 {
			interval := int(math.Round(60 * sr / seg.BPM))
			for beat := 0; beat < n; beat += interval {
				for j := 0; j < burstLen && pos+beat+j < total; j++ {
					out[pos+beat+j] += opts.Level * math.Exp(-float64(j)/decay) *
						math.Sin(2*math.Pi*opts.CarrierHz*float64(j)/sr)
				}
			}
		}
		pos += n
	}

	if opts.NoiseLevel > 0 {
		// Deterministic LCG noise, same generator as the WAV fixtures
		state := uint32(12345)
		for i := range out {
			state = state*1664525 + 1013904223
			out[i] += opts.NoiseLevel * ((float64(state)/float64(0xFFFFFFFF))*2 - 1)
		}
	}
	return out
}

// evenOnsets returns count onsets spaced for bpm, starting at start.
func evenOnsets(start, count int, bpm float64, sampleRate int) []int {
	interval := int(math.Round(60 * float64(sampleRate) / bpm))
	onsets := make([]int, count)
	for i := range onsets {
		onsets[i] = start + i*interval
	}
	return onsets
}

func secondsOf(samples, sampleRate int) float64 {
	return float64(samples) / float64(sampleRate)
}
