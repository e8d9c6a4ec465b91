package click

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Analyzer turns a mono click waveform into a section list. Alternative
// detection strategies implement the same interface.
type Analyzer interface {
	Analyze(samples []float64, sampleRate int) (*Analysis, error)
	DetectOnsets(samples []float64, sampleRate int) ([]int, error)
	EstimateBPM(onsets []int, sampleRate int) (float64, bool)
}

// Analysis is the result of one Analyze call. The caller owns it.
type Analysis struct {
	Sections     []Section
	Onsets       []int
	Regions      int // song regions before tempo splitting
	SubRegions   int // song regions after tempo splitting
	Merged       int // sections absorbed by the minimum-length merge
	TempoMap     []TempoPoint
	SampleRate   int
	TotalSamples int
}

// Duration returns the analysed length in seconds.
func (a *Analysis) Duration() float64 {
	if a.SampleRate <= 0 {
		return 0
	}
	return float64(a.TotalSamples) / float64(a.SampleRate)
}

// SongCount returns the number of SONG sections.
func (a *Analysis) SongCount() int {
	n := 0
	for _, s := range a.Sections {
		if s.Type == Song {
			n++
		}
	}
	return n
}

var _ Analyzer = (*EnvelopeAnalyzer)(nil)

// EnvelopeAnalyzer detects clicks as peaks of the smoothed analytic-signal
// envelope. It keeps no state between calls and is safe for concurrent use.
type EnvelopeAnalyzer struct {
	cfg Config
	log *zap.Logger
}

// Option configures an EnvelopeAnalyzer.
type Option func(*EnvelopeAnalyzer)

// WithLogger routes debug output to log.
func WithLogger(log *zap.Logger) Option {
	return func(a *EnvelopeAnalyzer) {
		if log != nil {
			a.log = log
		}
	}
}

// NewEnvelopeAnalyzer validates cfg and returns an analyzer bound to it.
func NewEnvelopeAnalyzer(cfg Config, opts ...Option) (*EnvelopeAnalyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &EnvelopeAnalyzer{cfg: cfg, log: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Config returns the configuration the analyzer was built with.
func (a *EnvelopeAnalyzer) Config() Config { return a.cfg }

// Analyze runs the full pipeline: onsets, regions, tempo splits, gap
// filling, merging and classification.
func (a *EnvelopeAnalyzer) Analyze(samples []float64, sampleRate int) (*Analysis, error) {
	onsets, err := a.DetectOnsets(samples, sampleRate)
	if err != nil {
		return nil, err
	}
	total := len(samples)

	regions := SegmentRegions(onsets, sampleRate, a.cfg.GapThresholdSeconds)
	var split []Region
	for _, r := range regions {
		subs := SplitRegionByTempo(r, sampleRate, a.cfg)
		if len(subs) > 1 {
			a.log.Debug("tempo change split",
				zap.Int("region_start", r.Start),
				zap.Int("parts", len(subs)))
		}
		split = append(split, subs...)
	}

	assembled := AssembleSections(split, total, sampleRate, a.cfg)
	merged := MergeShortSections(assembled, a.cfg.MinSectionLengthSeconds, sampleRate)
	sections := ClassifySections(merged)

	a.log.Debug("click analysis complete",
		zap.Int("onsets", len(onsets)),
		zap.Int("regions", len(regions)),
		zap.Int("sub_regions", len(split)),
		zap.Int("sections", len(sections)),
		zap.Int("merged", len(assembled)-len(merged)))

	return &Analysis{
		Sections:     sections,
		Onsets:       onsets,
		Regions:      len(regions),
		SubRegions:   len(split),
		Merged:       len(assembled) - len(merged),
		TempoMap:     TempoMap(onsets, total, sampleRate, a.cfg.BPMWindowSeconds, a.cfg.MinBPM, a.cfg.MaxBPM),
		SampleRate:   sampleRate,
		TotalSamples: total,
	}, nil
}

// DetectOnsets returns the ascending click positions in samples.
func (a *EnvelopeAnalyzer) DetectOnsets(samples []float64, sampleRate int) ([]int, error) {
	if err := checkWaveform(samples, sampleRate); err != nil {
		return nil, err
	}
	x := samples
	if a.cfg.Prefilter.Enabled {
		x = Prefilter(samples, sampleRate, a.cfg.Prefilter)
		a.log.Debug("prefilter applied", zap.Any("stages", ActiveFilters(a.cfg.Prefilter, sampleRate)))
	}
	env := Envelope(x, sampleRate, a.cfg.NoveltyWindow)
	onsets := PickPeaks(env, a.cfg.peakDistanceSamples(sampleRate), a.cfg.PeakProminence)
	a.log.Debug("onsets detected", zap.Int("count", len(onsets)), zap.Int("sample_rate", sampleRate))
	return onsets, nil
}

// EstimateBPM applies the configured tempo bounds to EstimateBPM.
func (a *EnvelopeAnalyzer) EstimateBPM(onsets []int, sampleRate int) (float64, bool) {
	return EstimateBPM(onsets, sampleRate, a.cfg.MinBPM, a.cfg.MaxBPM)
}

func checkWaveform(samples []float64, sampleRate int) error {
	if len(samples) == 0 {
		return ErrEmptyWaveform
	}
	if sampleRate <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSampleRate, sampleRate)
	}
	for i, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: sample %d is %v", ErrNonFiniteSample, i, v)
		}
	}
	return nil
}
