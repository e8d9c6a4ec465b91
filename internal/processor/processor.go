// Package processor runs a complete clicksplit session: load the click
// channel, analyse it, write the session file, split the tracks and
// optionally publish the result.
package processor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/linuxmatters/clicksplit/internal/audio"
	"github.com/linuxmatters/clicksplit/internal/click"
	"github.com/linuxmatters/clicksplit/internal/mains"
	"github.com/linuxmatters/clicksplit/internal/session"
	"github.com/linuxmatters/clicksplit/internal/splitter"
	"github.com/linuxmatters/clicksplit/internal/storage"
)

// Pipeline stages, in the order they run
const (
	StageLoading = iota + 1
	StageAnalysing
	StageSplitting
	StagePublishing
)

// StageName returns the display name for a stage number
func StageName(stage int) string {
	switch stage {
	case StageLoading:
		return "Loading"
	case StageAnalysing:
		return "Analysing"
	case StageSplitting:
		return "Splitting"
	case StagePublishing:
		return "Publishing"
	default:
		return "Unknown"
	}
}

// ErrNoClickPath is returned when a request has no click track
var ErrNoClickPath = errors.New("no click track given")

// ProgressCallback receives stage progress in [0, 1]. analysis is nil
// until the analysing stage completes.
type ProgressCallback func(stage int, stageName string, progress float64, analysis *click.Analysis)

// Request describes one session
type Request struct {
	ClickPath string
	// ClickChannel selects the click channel; negative averages all channels
	ClickChannel int
	Tracks       []string

	// OutputDir receives sections.json and the section directories. When
	// empty only the analysis runs.
	OutputDir string

	Analysis click.Config
	TagBPM   bool

	// Store, when set, receives the output tree under Prefix
	Store  storage.Storage
	Prefix string

	Logger *zap.Logger
}

// Result contains the outcome of a session
type Result struct {
	Analysis    *click.Analysis
	Click       *audio.Metadata
	Config      click.Config // as analysed, with the hum frequency resolved
	Hum         *mains.Detection
	SessionPath string
	Outputs     []splitter.Output
	Published   []string
	Elapsed     time.Duration
}

// ProcessSession runs every stage the request asks for. An analysis
// failure returns before anything is written.
func ProcessSession(ctx context.Context, req Request, progressCallback ProgressCallback) (*Result, error) {
	start := time.Now()
	if req.ClickPath == "" {
		return nil, ErrNoClickPath
	}
	log := req.Logger
	if log == nil {
		log = zap.NewNop()
	}
	report := func(stage int, progress float64, analysis *click.Analysis) {
		if progressCallback != nil {
			progressCallback(stage, StageName(stage), progress, analysis)
		}
	}

	// Stage 1: load the click channel
	report(StageLoading, 0, nil)
	samples, meta, err := audio.ReadMono(req.ClickPath, req.ClickChannel, func(p float64) {
		report(StageLoading, p, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load click track: %w", err)
	}
	log.Info("click track loaded",
		zap.String("path", req.ClickPath),
		zap.Int("sample_rate", meta.SampleRate),
		zap.Int("channels", meta.Channels),
		zap.Int("bit_depth", meta.BitDepth),
		zap.Float64("duration", meta.Duration))
	report(StageLoading, 1, nil)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: analyse
	result := &Result{Click: meta, Config: req.Analysis}
	if result.Config.Prefilter.Enabled && result.Config.Prefilter.HumNotch {
		hz, detection := mains.Resolve(result.Config.Prefilter.HumHz)
		result.Config.Prefilter.HumHz = hz
		result.Hum = &detection
		log.Info("hum notch", zap.Stringer("mains", detection))
	}

	report(StageAnalysing, 0, nil)
	analyzer, err := click.NewEnvelopeAnalyzer(result.Config, click.WithLogger(log.Named("click")))
	if err != nil {
		return nil, fmt.Errorf("invalid analysis settings: %w", err)
	}
	analysis, err := analyzer.Analyze(samples, meta.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	result.Analysis = analysis
	for _, s := range analysis.Sections {
		log.Info("section",
			zap.String("name", s.Name()),
			zap.Stringer("type", s.Type),
			zap.Int("bpm", s.BPM),
			zap.Float64("start", s.StartSeconds(meta.SampleRate)),
			zap.Float64("duration", s.Duration(meta.SampleRate)))
	}
	report(StageAnalysing, 1, analysis)

	if req.OutputDir == "" {
		result.Elapsed = time.Since(start)
		return result, nil
	}

	// Stage 3: session file and track splits
	result.SessionPath = filepath.Join(req.OutputDir, session.FileName)
	if err := session.Write(result.SessionPath, analysis.Sections, meta.SampleRate); err != nil {
		return result, err
	}

	if len(req.Tracks) > 0 && len(analysis.Sections) > 0 {
		report(StageSplitting, 0, analysis)
		outputs, err := splitter.Split(ctx, req.Tracks, analysis.Sections, req.OutputDir, splitter.Options{
			SampleRate: meta.SampleRate,
			TagBPM:     req.TagBPM,
			Progress: func(done, total int) {
				report(StageSplitting, float64(done)/float64(total), analysis)
			},
			Logger: log.Named("splitter"),
		})
		result.Outputs = outputs
		if err != nil {
			return result, err
		}
		log.Info("tracks split", zap.Int("files", len(outputs)))
	}

	// Stage 4: publish
	if req.Store != nil {
		report(StagePublishing, 0, analysis)
		keys, err := storage.Publish(ctx, req.Store, req.OutputDir, req.Prefix, func(done, total int) {
			report(StagePublishing, float64(done)/float64(total), analysis)
		})
		result.Published = keys
		if err != nil {
			return result, err
		}
		if len(keys) > 0 {
			log.Info("published", zap.Int("objects", len(keys)), zap.String("location", req.Store.Location(keys[0])))
		}
	}

	result.Elapsed = time.Since(start)
	return result, nil
}
