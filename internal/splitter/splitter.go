// Package splitter cuts rendered tracks at section boundaries into one
// directory per section.
package splitter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/linuxmatters/clicksplit/internal/audio"
	"github.com/linuxmatters/clicksplit/internal/click"
)

// ErrNoSections is returned when there is nothing to split
var ErrNoSections = errors.New("no sections to split")

// Options controls a split run
type Options struct {
	// SampleRate of the click track the sections were measured on. Tracks
	// at a different rate have their boundaries rescaled. Zero means the
	// tracks share the click's rate.
	SampleRate int

	// TagBPM writes a TBPM tag into every SONG output
	TagBPM bool

	// Workers bounds how many tracks are split at once. Zero uses GOMAXPROCS.
	Workers int

	// Progress is called after each track with the number completed.
	// Calls are serialised.
	Progress func(done, total int)

	Logger *zap.Logger
}

// Output describes one written file
type Output struct {
	Section click.Section
	Track   string // source path
	Path    string
	Tagged  bool
}

// SectionDir returns the directory a section's files are written to
func SectionDir(outDir string, s click.Section) string {
	return filepath.Join(outDir, s.Name())
}

// Split writes outDir/section_NN/<track>.wav for every section and track.
// Tracks are split concurrently, each read once. Outputs are returned in
// track order, then section order.
func Split(ctx context.Context, tracks []string, sections []click.Section, outDir string, opts Options) ([]Output, error) {
	if len(sections) == 0 {
		return nil, ErrNoSections
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	names := trackNames(tracks)
	perTrack := make([][]Output, len(tracks))

	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, track := range tracks {
		i, track := i, track
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outputs, err := splitTrack(track, names[i], sections, outDir, opts)
			if err != nil {
				return err
			}
			log.Debug("split track",
				zap.String("track", track),
				zap.Int("sections", len(sections)))

			mu.Lock()
			defer mu.Unlock()
			perTrack[i] = outputs
			done++
			if opts.Progress != nil {
				opts.Progress(done, len(tracks))
			}
			return nil
		})
	}
	err := g.Wait()

	outputs := make([]Output, 0, len(tracks)*len(sections))
	for _, o := range perTrack {
		outputs = append(outputs, o...)
	}
	return outputs, err
}

func splitTrack(track, name string, sections []click.Section, outDir string, opts Options) ([]Output, error) {
	spans, err := trackSpans(track, sections, opts.SampleRate)
	if err != nil {
		return nil, err
	}
	dst := func(j int) string {
		return filepath.Join(SectionDir(outDir, sections[j]), name)
	}
	if err := audio.SplitFile(track, spans, dst); err != nil {
		return nil, fmt.Errorf("failed to split %s: %w", track, err)
	}

	outputs := make([]Output, 0, len(sections))
	for j, s := range sections {
		out := Output{Section: s, Track: track, Path: dst(j)}
		if opts.TagBPM && s.Type == click.Song && s.HasBPM() {
			if err := audio.WriteBPM(out.Path, s.BPM); err != nil {
				return outputs, fmt.Errorf("failed to tag %s: %w", out.Path, err)
			}
			out.Tagged = true
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

// trackSpans converts section boundaries to frame spans of one track
func trackSpans(track string, sections []click.Section, clickRate int) ([]audio.Span, error) {
	r, meta, err := audio.OpenAudioFile(track)
	if err != nil {
		return nil, err
	}
	r.Close()

	spans := make([]audio.Span, len(sections))
	for i, s := range sections {
		spans[i] = audio.Span{
			Start: rescale(s.StartSample, clickRate, meta.SampleRate),
			End:   rescale(s.EndSample, clickRate, meta.SampleRate),
		}
	}
	// The last section takes whatever the track has past the click's end
	last := &spans[len(spans)-1]
	last.End = max(last.End, meta.Frames)
	return spans, nil
}

func rescale(sample, from, to int) int {
	if from <= 0 || from == to {
		return sample
	}
	return int(int64(sample) * int64(to) / int64(from))
}
