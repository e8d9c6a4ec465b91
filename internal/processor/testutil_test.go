package processor

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/linuxmatters/clicksplit/internal/audio"
)

// ClickSegment is one stretch of a synthetic session; BPM 0 is silence
type ClickSegment struct {
	BPM     float64
	Seconds float64
}

// TestSessionOptions configures the synthetic click file to generate
type TestSessionOptions struct {
	SampleRate   int     // default 8000
	Channels     int     // default 1
	ClickChannel int     // channel carrying the clicks
	NoiseLevel   float64 // white noise amplitude on the other channels
	Segments     []ClickSegment
}

// generateClickFile writes a 16-bit WAV whose click channel carries
// decaying 1 kHz bursts on each beat. Returns the path and frame count.
func generateClickFile(t *testing.T, dir string, opts TestSessionOptions) (string, int) {
	t.Helper()

	if opts.SampleRate == 0 {
		opts.SampleRate = 8000
	}
	if opts.Channels == 0 {
		opts.Channels = 1
	}
	sr := float64(opts.SampleRate)

	frames := 0
	for _, seg := range opts.Segments {
		frames += int(seg.Seconds * sr)
	}
	clicks := make([]float64, frames)
	pos := 0
	for _, seg := range opts.Segments {
		n := int(seg.Seconds * sr)
		if seg.BPM > 0 {
			interval := int(math.Round(60 * sr / seg.BPM))
			for beat := 0; beat < n; beat += interval {
				for j := 0; j < int(0.1*sr) && pos+beat+j < frames; j++ {
					clicks[pos+beat+j] = 0.5 * math.Exp(-float64(j)/(0.02*sr)) *
						math.Sin(2*math.Pi*1000*float64(j)/sr)
				}
			}
		}
		pos += n
	}

	// Simple LCG for deterministic noise
	rngState := uint32(12345)
	nextRandom := func() float64 {
		rngState = rngState*1664525 + 1013904223
		return (float64(rngState)/float64(0xFFFFFFFF))*2.0 - 1.0
	}

	data := make([]int, 0, frames*opts.Channels)
	for i := 0; i < frames; i++ {
		for c := 0; c < opts.Channels; c++ {
			v := 0.0
			if c == opts.ClickChannel {
				v = clicks[i]
			} else if opts.NoiseLevel > 0 {
				v = opts.NoiseLevel * nextRandom()
			}
			data = append(data, int(math.Round(v*math.MaxInt16)))
		}
	}

	path := filepath.Join(dir, "click.wav")
	writeFrames(t, path, opts.SampleRate, opts.Channels, data)
	return path, frames
}

// generateTrack writes a mono track of the given length
func generateTrack(t *testing.T, path string, sampleRate, frames int) {
	t.Helper()
	data := make([]int, frames)
	for i := range data {
		data[i] = (i % 200) - 100
	}
	writeFrames(t, path, sampleRate, 1, data)
}

func writeFrames(t *testing.T, path string, sampleRate, channels int, data []int) {
	t.Helper()
	enc, err := audio.CreateEncoder(path, &audio.Metadata{SampleRate: sampleRate, Channels: channels, BitDepth: 16})
	require.NoError(t, err)
	require.NoError(t, enc.WriteFrames(data))
	require.NoError(t, enc.Close())
}
