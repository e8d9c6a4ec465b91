package audio

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// writeTestWAV writes a 16-bit PCM WAV file from per-channel sample slices.
// All channels must have the same length.
func writeTestWAV(t *testing.T, path string, sampleRate int, channels ...[]int16) {
	t.Helper()

	if len(channels) == 0 {
		t.Fatal("writeTestWAV needs at least one channel")
	}
	frames := len(channels[0])
	numChannels := len(channels)
	const bitsPerSample = 16

	byteRate := sampleRate * numChannels * bitsPerSample / 8
	blockAlign := numChannels * bitsPerSample / 8
	dataSize := frames * blockAlign
	fileSize := 36 + dataSize // total file size minus the RIFF header

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()

	write := func(v any) {
		if err := binary.Write(f, binary.LittleEndian, v); err != nil {
			t.Fatalf("failed to write WAV: %v", err)
		}
	}

	// RIFF header
	write([]byte("RIFF"))
	write(uint32(fileSize))
	write([]byte("WAVE"))

	// fmt subchunk
	write([]byte("fmt "))
	write(uint32(16))
	write(uint16(1)) // PCM
	write(uint16(numChannels))
	write(uint32(sampleRate))
	write(uint32(byteRate))
	write(uint16(blockAlign))
	write(uint16(bitsPerSample))

	// data subchunk
	write([]byte("data"))
	write(uint32(dataSize))
	interleaved := make([]int16, 0, frames*numChannels)
	for i := 0; i < frames; i++ {
		for c := range channels {
			interleaved = append(interleaved, channels[c][i])
		}
	}
	write(interleaved)
}

// rampSamples returns n samples counting up from start, wrapping at limit
func rampSamples(n, start, limit int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16((start + i) % limit)
	}
	return out
}

// readAllFrames decodes every interleaved sample of a WAV file
func readAllFrames(t *testing.T, path string) ([]int, *Metadata) {
	t.Helper()

	r, meta, err := OpenAudioFile(path)
	if err != nil {
		t.Fatalf("OpenAudioFile(%s) failed: %v", filepath.Base(path), err)
	}
	defer r.Close()

	var out []int
	for {
		buf, err := r.ReadChunk()
		if err != nil {
			break
		}
		out = append(out, buf.Data...)
	}
	return out, meta
}
