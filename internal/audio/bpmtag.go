package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/go-audio/riff"
)

// ID3 tags in WAV files live in their own RIFF chunk. Writers disagree on
// the case of the identifier, so both are recognised.
var id3ChunkIDs = [][4]byte{
	{'i', 'd', '3', ' '},
	{'I', 'D', '3', ' '},
}

const bpmFrameID = "TBPM"

func isID3Chunk(id [4]byte) bool {
	for _, c := range id3ChunkIDs {
		if id == c {
			return true
		}
	}
	return false
}

// chunkVisitor inspects one RIFF chunk. offset is the file offset of the
// chunk header and size its length rounded up to the word boundary.
// Returning stop ends the walk early.
type chunkVisitor func(ch *riff.Chunk, offset, size int64) (stop bool, err error)

// walkChunks iterates the top-level chunks of a RIFF/WAVE stream
func walkChunks(rs io.ReadSeeker, visit chunkVisitor) error {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return err
	}
	p := riff.New(rs)
	if err := p.ParseHeaders(); err != nil {
		return fmt.Errorf("failed to parse RIFF header: %w", err)
	}
	if p.Format != riff.WavFormatID {
		return fmt.Errorf("%w: RIFF form %q is not WAVE", ErrUnsupportedFormat, p.Format[:])
	}

	offset := int64(12)
	for {
		if _, err := rs.Seek(offset, io.SeekStart); err != nil {
			return err
		}
		ch, err := p.NextChunk()
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read chunk header: %w", err)
		}
		size := int64(ch.Size)
		if size%2 == 1 {
			size++
		}
		stop, err := visit(ch, offset, size)
		if err != nil || stop {
			return err
		}
		offset += 8 + size
	}
}

// WriteBPM embeds bpm as an ID3v2 TBPM frame in the WAV file at path. An
// existing ID3 chunk at the end of the file is replaced.
func WriteBPM(path string, bpm int) error {
	if bpm <= 0 {
		return fmt.Errorf("invalid BPM %d", bpm)
	}

	tag := id3v2.NewEmptyTag()
	tag.AddTextFrame(bpmFrameID, id3v2.EncodingUTF8, strconv.Itoa(bpm))
	var body bytes.Buffer
	if _, err := tag.WriteTo(&body); err != nil {
		return fmt.Errorf("failed to encode ID3 tag: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("failed to open %s for tagging: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	end := info.Size()

	existing := int64(-1)
	err = walkChunks(f, func(ch *riff.Chunk, offset, size int64) (bool, error) {
		if isID3Chunk(ch.ID) {
			if offset+8+size < end {
				return true, fmt.Errorf("existing ID3 chunk in %s is not the last chunk", path)
			}
			existing = offset
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return err
	}
	if existing >= 0 {
		if err := f.Truncate(existing); err != nil {
			return fmt.Errorf("failed to remove old ID3 chunk: %w", err)
		}
		end = existing
	}

	if body.Len()%2 == 1 {
		body.WriteByte(0)
	}
	if end%2 == 1 {
		// keep the new chunk word aligned after an unpadded odd chunk
		if _, err := f.WriteAt([]byte{0}, end); err != nil {
			return err
		}
		end++
	}
	header := make([]byte, 8)
	copy(header, id3ChunkIDs[0][:])
	binary.LittleEndian.PutUint32(header[4:], uint32(body.Len()))

	if _, err := f.WriteAt(append(header, body.Bytes()...), end); err != nil {
		return fmt.Errorf("failed to append ID3 chunk: %w", err)
	}
	riffSize := end + 8 + int64(body.Len()) - 8
	if riffSize > math.MaxUint32 {
		return fmt.Errorf("%s exceeds the 4 GiB RIFF limit", path)
	}
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(riffSize))
	if _, err := f.WriteAt(size[:], 4); err != nil {
		return fmt.Errorf("failed to update RIFF size: %w", err)
	}
	return nil
}

// ReadBPM returns the TBPM value embedded in the WAV file at path. The
// boolean is false when the file has no ID3 chunk or no TBPM frame.
func ReadBPM(path string) (int, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var raw []byte
	err = walkChunks(f, func(ch *riff.Chunk, offset, _ int64) (bool, error) {
		if !isID3Chunk(ch.ID) {
			return false, nil
		}
		data, err := io.ReadAll(io.NewSectionReader(f, offset+8, int64(ch.Size)))
		if err != nil {
			return true, fmt.Errorf("failed to read ID3 chunk: %w", err)
		}
		raw = data
		return true, nil
	})
	if err != nil || raw == nil {
		return 0, false, err
	}

	tag, err := id3v2.ParseReader(bytes.NewReader(raw), id3v2.Options{Parse: true})
	if err != nil {
		return 0, false, fmt.Errorf("failed to parse ID3 tag in %s: %w", path, err)
	}
	text := strings.TrimSpace(strings.Trim(tag.GetTextFrame(bpmFrameID).Text, "\x00"))
	if text == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid BPM %q in %s", text, path)
	}
	return int(math.Round(v)), true, nil
}
