// Package click segments a click-track recording into song and speaking
// sections and estimates a tempo for each song.
package click

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config holds the tuning for one analysis. It is passed explicitly to the
// analyzer; there are no package-level defaults that can be changed.
type Config struct {
	// Region segmentation and section assembly
	GapThresholdSeconds     float64 `yaml:"gap_threshold_seconds" env:"GAP_THRESHOLD_SECONDS, overwrite" validate:"gt=0"`
	MinSectionLengthSeconds float64 `yaml:"min_section_length_seconds" env:"MIN_SECTION_LENGTH_SECONDS, overwrite" validate:"gt=0"`
	BPMChangeThreshold      int     `yaml:"bpm_change_threshold" env:"BPM_CHANGE_THRESHOLD, overwrite" validate:"gte=1"`

	// Onset detection
	MinPeakDistance float64 `yaml:"min_peak_distance" env:"MIN_PEAK_DISTANCE, overwrite" validate:"gt=0"` // seconds
	PeakProminence  float64 `yaml:"peak_prominence" env:"PEAK_PROMINENCE, overwrite" validate:"gt=0"`     // full-scale units
	NoveltyWindow   float64 `yaml:"novelty_window" env:"NOVELTY_WINDOW, overwrite" validate:"gt=0"`       // seconds

	// Tempo estimation
	BPMWindowSeconds float64 `yaml:"bpm_window_seconds" env:"BPM_WINDOW_SECONDS, overwrite" validate:"gt=0"`
	MinBPM           int     `yaml:"min_bpm" env:"MIN_BPM, overwrite" validate:"gte=1"`
	MaxBPM           int     `yaml:"max_bpm" env:"MAX_BPM, overwrite" validate:"gtfield=MinBPM"`

	Prefilter PrefilterConfig `yaml:"prefilter" env:", prefix=PREFILTER_"`
}

// PrefilterConfig controls the optional conditioning applied to the click
// channel before envelope extraction.
type PrefilterConfig struct {
	Enabled  bool    `yaml:"enabled" env:"ENABLED, overwrite"`
	LowHz    float64 `yaml:"bandpass_low" env:"BANDPASS_LOW, overwrite" validate:"gte=0"`
	HighHz   float64 `yaml:"bandpass_high" env:"BANDPASS_HIGH, overwrite" validate:"gte=0"`
	Order    int     `yaml:"filter_order" env:"FILTER_ORDER, overwrite" validate:"gte=1,lte=8"`
	HumNotch bool    `yaml:"hum_notch" env:"HUM_NOTCH, overwrite"`
	HumHz    float64 `yaml:"hum_hz" env:"HUM_HZ, overwrite" validate:"gte=0"` // 0 means 50 Hz unless the caller resolves the local mains frequency
}

// DefaultConfig returns the stock tuning for a metronome channel.
func DefaultConfig() Config {
	return Config{
		GapThresholdSeconds:     3.0,
		MinSectionLengthSeconds: 15.0,
		BPMChangeThreshold:      1,
		MinPeakDistance:         0.1,
		PeakProminence:          0.001,
		NoveltyWindow:           0.05,
		BPMWindowSeconds:        5.0,
		MinBPM:                  45,
		MaxBPM:                  300,
		Prefilter: PrefilterConfig{
			LowHz:  20,
			HighHz: 20000,
			Order:  4,
		},
	}
}

var validate = validator.New()

// Validate checks every threshold and bound. The returned error wraps
// ErrInvalidConfig and names each offending field.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		problems := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			problems = append(problems, describeFieldError(fe))
		}
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}

	p := c.Prefilter
	if p.Enabled && p.LowHz > 0 && p.HighHz > 0 && p.HighHz <= p.LowHz {
		return fmt.Errorf("%w: prefilter bandpass_high (%g Hz) must exceed bandpass_low (%g Hz)",
			ErrInvalidConfig, p.HighHz, p.LowHz)
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("%s must be greater than %s (got %v)", fe.Namespace(), fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be at least %s (got %v)", fe.Namespace(), fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("%s must be at most %s (got %v)", fe.Namespace(), fe.Param(), fe.Value())
	case "gtfield":
		return fmt.Sprintf("%s must be greater than %s (got %v)", fe.Namespace(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value())
	}
}

func (c Config) gapSamples(sampleRate int) int {
	return int(c.GapThresholdSeconds * float64(sampleRate))
}

func (c Config) peakDistanceSamples(sampleRate int) int {
	d := int(c.MinPeakDistance * float64(sampleRate))
	if d < 1 {
		d = 1
	}
	return d
}
