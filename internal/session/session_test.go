package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxmatters/clicksplit/internal/click"
)

func sampleSections() []click.Section {
	return []click.Section{
		{Number: 1, StartSample: 0, EndSample: 477000, Type: click.Song, BPM: 120},
		{Number: 2, StartSample: 477000, EndSample: 800200, Type: click.Speaking},
		{Number: 3, StartSample: 800200, EndSample: 29600000, Type: click.Song, BPM: 96},
	}
}

func TestWriteFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", FileName)
	require.NoError(t, Write(path, sampleSections()[:2], 8000))

	got, err := os.ReadFile(path)
	require.NoError(t, err)

	want := `[
  {
    "section": "section_01",
    "start_seconds": 0,
    "start_hms": "00:00:00",
    "duration_seconds": 59.625,
    "duration_hms": "00:00:59",
    "type": "SONG",
    "bpm": 120,
    "start_sample": 0,
    "end_sample": 477000
  },
  {
    "section": "section_02",
    "start_seconds": 59.625,
    "start_hms": "00:00:59",
    "duration_seconds": 40.4,
    "duration_hms": "00:00:40",
    "type": "SPEAKING",
    "bpm": null,
    "start_sample": 477000,
    "end_sample": 800200
  }
]
`
	assert.Equal(t, want, string(got))
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, Write(path, sampleSections(), 8000))
	require.NoError(t, Write(path, sampleSections()[:1], 8000))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, FileName, entries[0].Name())
}

func TestReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	want := sampleSections()
	require.NoError(t, Write(path, want, 8000))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReadEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Write(path, nil, 8000))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{"section":`},
		{"unknown type", `[{"section":"section_01","type":"BREAK","start_sample":0,"end_sample":10}]`},
		{"misnamed", `[{"section":"section_07","type":"SPEAKING","start_sample":0,"end_sample":10}]`},
		{"gap", `[{"section":"section_01","type":"SPEAKING","start_sample":0,"end_sample":10},
			{"section":"section_02","type":"SPEAKING","start_sample":12,"end_sample":20}]`},
		{"song without bpm", `[{"section":"section_01","type":"SONG","bpm":null,"start_sample":0,"end_sample":10}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))
			_, err := Read(path)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestReadMissing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformed)
}

func TestFormatHMS(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00"},
		{59.999, "00:00:59"},
		{61.5, "00:01:01"},
		{3600, "01:00:00"},
		{37230.2, "10:20:30"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatHMS(tt.seconds), "%v", tt.seconds)
	}
}
