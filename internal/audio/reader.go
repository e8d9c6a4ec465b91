// Package audio provides WAV file I/O for click and performance tracks
package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrUnsupportedFormat is returned for WAV encodings the reader cannot
// normalise, such as IEEE float.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// WAV format tags accepted by the reader
const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// readChunkFrames is the number of frames decoded per ReadChunk call
const readChunkFrames = 1 << 16

// Reader wraps a go-audio WAV decoder for chunked reading
type Reader struct {
	file *os.File
	dec  *wav.Decoder
	meta *Metadata
	buf  *goaudio.IntBuffer
	left int // frames remaining in the data chunk
}

// Metadata contains audio file metadata
type Metadata struct {
	Duration   float64 // seconds
	SampleRate int
	Channels   int
	BitDepth   int
	Frames     int
}

// OpenAudioFile opens a PCM WAV file for reading
func OpenAudioFile(filename string) (*Reader, *Metadata, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input file: %w", err)
	}

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		f.Close()
		return nil, nil, fmt.Errorf("not a valid WAV file: %s", filename)
	}
	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		f.Close()
		return nil, nil, fmt.Errorf("%w: WAV format tag %d in %s", ErrUnsupportedFormat, dec.WavAudioFormat, filename)
	}
	if dec.NumChans == 0 || dec.SampleRate == 0 {
		f.Close()
		return nil, nil, fmt.Errorf("%w: %d channels at %d Hz in %s", ErrUnsupportedFormat, dec.NumChans, dec.SampleRate, filename)
	}
	switch dec.BitDepth {
	case 8, 16, 24, 32:
	default:
		f.Close()
		return nil, nil, fmt.Errorf("%w: %d-bit samples in %s", ErrUnsupportedFormat, dec.BitDepth, filename)
	}

	if err := dec.FwdToPCM(); err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("failed to find PCM data: %w", err)
	}

	meta := &Metadata{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
	}
	frameBytes := meta.Channels * meta.BitDepth / 8
	meta.Frames = int(dec.PCMLen()) / frameBytes
	meta.Duration = float64(meta.Frames) / float64(meta.SampleRate)

	r := &Reader{
		file: f,
		dec:  dec,
		meta: meta,
		left: meta.Frames,
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: meta.Channels, SampleRate: meta.SampleRate},
			Data:           make([]int, readChunkFrames*meta.Channels),
			SourceBitDepth: meta.BitDepth,
		},
	}
	return r, meta, nil
}

// ReadChunk decodes the next block of interleaved samples. The returned
// buffer is reused by the next call. It returns io.EOF once the PCM data
// is exhausted.
func (r *Reader) ReadChunk() (*goaudio.IntBuffer, error) {
	if r.left <= 0 {
		return nil, io.EOF
	}
	r.buf.Data = r.buf.Data[:min(cap(r.buf.Data), r.left*r.meta.Channels)]
	n, err := r.dec.PCMBuffer(r.buf)
	if err != nil {
		return nil, fmt.Errorf("failed to decode PCM data: %w", err)
	}
	if n == 0 {
		return nil, io.EOF
	}
	// Drop a trailing partial frame
	n -= n % r.meta.Channels
	r.buf.Data = r.buf.Data[:n]
	r.left -= n / r.meta.Channels
	if r.meta.BitDepth == 8 {
		// 8-bit WAV is unsigned
		for i := range r.buf.Data {
			r.buf.Data[i] -= 128
		}
	}
	return r.buf, nil
}

// Metadata returns the file's format information
func (r *Reader) Metadata() *Metadata {
	return r.meta
}

// Close releases the underlying file
func (r *Reader) Close() error {
	return r.file.Close()
}

// fullScale returns the divisor that maps integer samples to [-1, 1)
func fullScale(bitDepth int) float64 {
	return float64(int64(1) << (bitDepth - 1))
}

// ReadMono decodes a WAV file into a single normalised channel. A
// non-negative channel selects that channel (the click channel of a
// multitrack export); a negative channel averages all channels. progress,
// if non-nil, receives the fraction of frames read.
func ReadMono(filename string, channel int, progress func(float64)) ([]float64, *Metadata, error) {
	r, meta, err := OpenAudioFile(filename)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	if channel >= meta.Channels {
		return nil, nil, fmt.Errorf("channel %d requested from %d-channel file %s", channel, meta.Channels, filename)
	}

	scale := 1 / fullScale(meta.BitDepth)
	chans := meta.Channels
	out := make([]float64, 0, meta.Frames)
	for {
		buf, err := r.ReadChunk()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		for i := 0; i < len(buf.Data); i += chans {
			frame := buf.Data[i : i+chans]
			if channel >= 0 {
				out = append(out, float64(frame[channel])*scale)
				continue
			}
			var sum int
			for _, v := range frame {
				sum += v
			}
			out = append(out, float64(sum)*scale/float64(chans))
		}
		if progress != nil && meta.Frames > 0 {
			progress(min(float64(len(out))/float64(meta.Frames), 1))
		}
	}

	// A truncated file decodes short of the header length
	meta.Frames = len(out)
	meta.Duration = float64(meta.Frames) / float64(meta.SampleRate)
	return out, meta, nil
}
