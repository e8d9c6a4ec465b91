package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Span is a frame range [Start, End) of a track
type Span struct {
	Start int
	End   int
}

// Encoder writes one WAV output file in the source track's format
type Encoder struct {
	file   *os.File
	enc    *wav.Encoder
	path   string
	meta   *Metadata
	wrote  bool
	closed bool
}

// CreateEncoder creates a WAV encoder at outputPath matching meta. Parent
// directories are created as needed.
func CreateEncoder(outputPath string, meta *Metadata) (*Encoder, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return &Encoder{
		file: f,
		enc:  wav.NewEncoder(f, meta.SampleRate, meta.BitDepth, meta.Channels, wavFormatPCM),
		path: outputPath,
		meta: meta,
	}, nil
}

// WriteFrames encodes interleaved samples
func (e *Encoder) WriteFrames(data []int) error {
	e.wrote = true
	if e.meta.BitDepth == 8 {
		shifted := make([]int, len(data))
		for i, v := range data {
			shifted[i] = v + 128
		}
		data = shifted
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: e.meta.Channels, SampleRate: e.meta.SampleRate},
		Data:           data,
		SourceBitDepth: e.meta.BitDepth,
	}
	if err := e.enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write %s: %w", e.path, err)
	}
	return nil
}

// Close finalises the WAV header and closes the file.
// Safe to call multiple times - subsequent calls are no-ops.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	if !e.wrote {
		// the header is written with the first buffer
		if err := e.WriteFrames(nil); err != nil {
			e.file.Close()
			e.closed = true
			return err
		}
	}
	e.closed = true
	encErr := e.enc.Close()
	fileErr := e.file.Close()
	if encErr != nil {
		return fmt.Errorf("failed to finalise %s: %w", e.path, encErr)
	}
	return fileErr
}

// SplitFile streams srcPath once and writes each span to the path returned
// by dst. Spans must be ascending and non-overlapping. Frames outside every
// span are skipped; spans past the end of the file are truncated.
func SplitFile(srcPath string, spans []Span, dst func(i int) string) error {
	r, meta, err := OpenAudioFile(srcPath)
	if err != nil {
		return err
	}
	defer r.Close()

	for i := 1; i < len(spans); i++ {
		if spans[i].Start < spans[i-1].End {
			return fmt.Errorf("span %d overlaps span %d", i, i-1)
		}
	}

	chans := meta.Channels
	cur := 0
	var enc *Encoder
	defer func() {
		if enc != nil {
			enc.Close()
		}
	}()

	frame := 0
	for cur < len(spans) {
		buf, err := r.ReadChunk()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		chunkStart := frame
		chunkEnd := frame + len(buf.Data)/chans
		frame = chunkEnd

		for cur < len(spans) {
			s := spans[cur]
			lo := max(s.Start, chunkStart)
			hi := min(s.End, chunkEnd)
			if lo < hi {
				if enc == nil {
					if enc, err = CreateEncoder(dst(cur), meta); err != nil {
						return err
					}
				}
				if err := enc.WriteFrames(buf.Data[(lo-chunkStart)*chans : (hi-chunkStart)*chans]); err != nil {
					return err
				}
			}
			if s.End > chunkEnd {
				break
			}
			// span complete
			if enc == nil {
				if enc, err = CreateEncoder(dst(cur), meta); err != nil {
					return err
				}
			}
			if err := enc.Close(); err != nil {
				return err
			}
			enc = nil
			cur++
		}
	}

	// Spans running past the end of the file are closed short
	for ; cur < len(spans); cur++ {
		if enc == nil {
			if enc, err = CreateEncoder(dst(cur), meta); err != nil {
				return err
			}
		}
		if err := enc.Close(); err != nil {
			return err
		}
		enc = nil
	}
	return nil
}
