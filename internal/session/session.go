// Package session reads and writes sections.json, the per-session summary
// of where each section starts, how long it runs and its tempo.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/linuxmatters/clicksplit/internal/click"
)

// FileName is the session file written next to the section directories
const FileName = "sections.json"

// ErrMalformed is returned when a session file cannot be turned back into
// a valid section list.
var ErrMalformed = errors.New("malformed session file")

// Entry is one section as stored on disk
type Entry struct {
	Section         string  `json:"section"`
	StartSeconds    float64 `json:"start_seconds"`
	StartHMS        string  `json:"start_hms"`
	DurationSeconds float64 `json:"duration_seconds"`
	DurationHMS     string  `json:"duration_hms"`
	Type            string  `json:"type"`
	BPM             *int    `json:"bpm"`
	StartSample     int     `json:"start_sample"`
	EndSample       int     `json:"end_sample"`
}

// Entries converts sections to their stored form
func Entries(sections []click.Section, sampleRate int) []Entry {
	entries := make([]Entry, len(sections))
	for i, s := range sections {
		start := s.StartSeconds(sampleRate)
		duration := s.Duration(sampleRate)
		e := Entry{
			Section:         s.Name(),
			StartSeconds:    round3(start),
			StartHMS:        FormatHMS(start),
			DurationSeconds: round3(duration),
			DurationHMS:     FormatHMS(duration),
			Type:            s.Type.String(),
			StartSample:     s.StartSample,
			EndSample:       s.EndSample,
		}
		if s.HasBPM() {
			bpm := s.BPM
			e.BPM = &bpm
		}
		entries[i] = e
	}
	return entries
}

// Write stores sections as JSON at path. The file is replaced atomically
// so a reader never sees a partial session.
func Write(path string, sections []click.Section, sampleRate int) error {
	data, err := json.MarshalIndent(Entries(sections, sampleRate), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode sections: %w", err)
	}
	return writeAtomic(path, append(data, '\n'))
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// Read loads a session file and rebuilds the section list
func Read(path string) ([]click.Section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	sections := make([]click.Section, len(entries))
	for i, e := range entries {
		s := click.Section{
			Number:      i + 1,
			StartSample: e.StartSample,
			EndSample:   e.EndSample,
		}
		switch strings.ToUpper(e.Type) {
		case click.Song.String():
			s.Type = click.Song
		case click.Speaking.String():
			s.Type = click.Speaking
		default:
			return nil, fmt.Errorf("%w: %s has unknown type %q", ErrMalformed, e.Section, e.Type)
		}
		if e.BPM != nil {
			s.BPM = *e.BPM
		}
		if s.Name() != e.Section {
			return nil, fmt.Errorf("%w: entry %d is named %q", ErrMalformed, i+1, e.Section)
		}
		sections[i] = s
	}
	if len(sections) > 0 {
		if err := click.CheckCoverage(sections, sections[len(sections)-1].EndSample); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
	return sections, nil
}

// FormatHMS formats seconds as HH:MM:SS, truncating fractions
func FormatHMS(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total%3600/60, total%60)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
