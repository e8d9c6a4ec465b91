package click

import (
	"errors"
	"strings"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		field   string
	}{
		{"defaults", func(c *Config) {}, false, ""},
		{"zero_gap", func(c *Config) { c.GapThresholdSeconds = 0 }, true, "GapThresholdSeconds"},
		{"negative_gap", func(c *Config) { c.GapThresholdSeconds = -1 }, true, "GapThresholdSeconds"},
		{"zero_min_length", func(c *Config) { c.MinSectionLengthSeconds = 0 }, true, "MinSectionLengthSeconds"},
		{"negative_min_length", func(c *Config) { c.MinSectionLengthSeconds = -5 }, true, "MinSectionLengthSeconds"},
		{"zero_bpm_change", func(c *Config) { c.BPMChangeThreshold = 0 }, true, "BPMChangeThreshold"},
		{"zero_peak_distance", func(c *Config) { c.MinPeakDistance = 0 }, true, "MinPeakDistance"},
		{"zero_prominence", func(c *Config) { c.PeakProminence = 0 }, true, "PeakProminence"},
		{"zero_novelty", func(c *Config) { c.NoveltyWindow = 0 }, true, "NoveltyWindow"},
		{"zero_bpm_window", func(c *Config) { c.BPMWindowSeconds = 0 }, true, "BPMWindowSeconds"},
		{"zero_min_bpm", func(c *Config) { c.MinBPM = 0 }, true, "MinBPM"},
		{"max_equals_min", func(c *Config) { c.MaxBPM = c.MinBPM }, true, "MaxBPM"},
		{"max_below_min", func(c *Config) { c.MinBPM, c.MaxBPM = 200, 100 }, true, "MaxBPM"},
		{"filter_order_too_high", func(c *Config) { c.Prefilter.Order = 9 }, true, "Order"},
		{"filter_order_zero", func(c *Config) { c.Prefilter.Order = 0 }, true, "Order"},
		{"inverted_band", func(c *Config) {
			c.Prefilter.Enabled = true
			c.Prefilter.LowHz, c.Prefilter.HighHz = 5000, 100
		}, true, "bandpass_high"},
		{"inverted_band_disabled", func(c *Config) {
			c.Prefilter.LowHz, c.Prefilter.HighHz = 5000, 100
		}, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name %s", err, tt.field)
			}
		})
	}
}

func TestPeakDistanceSamples(t *testing.T) {
	tests := []struct {
		distance   float64
		sampleRate int
		want       int
	}{
		{0.1, 44100, 4410},
		{0.1, 8000, 800},
		{0.00001, 8000, 1},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.MinPeakDistance = tt.distance
		if got := cfg.peakDistanceSamples(tt.sampleRate); got != tt.want {
			t.Errorf("peakDistanceSamples(%v s @ %d) = %d, want %d", tt.distance, tt.sampleRate, got, tt.want)
		}
	}
}
