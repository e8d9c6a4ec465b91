// Package config loads clicksplit settings. Values are layered, lowest
// precedence first: built-in defaults, a YAML file, then CLICKSPLIT_*
// environment variables. Command-line flags are applied by the caller
// before Validate.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"

	"github.com/linuxmatters/clicksplit/internal/click"
	"github.com/linuxmatters/clicksplit/internal/storage"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "CLICKSPLIT_"

// AverageChannels selects the mean of all channels as the click signal
const AverageChannels = -1

var (
	// ErrInvalid is returned when the merged configuration fails validation.
	ErrInvalid = errors.New("config: invalid configuration")
	// ErrFile is returned when the YAML file cannot be read or parsed.
	ErrFile = errors.New("config: cannot load file")
)

// Config holds all settings for a run
type Config struct {
	Analysis click.Config `yaml:"analysis" env:", prefix=ANALYSIS_"`

	// ClickChannel is the zero-based channel carrying the metronome, or
	// AverageChannels.
	ClickChannel int    `yaml:"click_channel" env:"CLICK_CHANNEL, overwrite" validate:"gte=-1"`
	Output       string `yaml:"output" env:"OUTPUT, overwrite"`
	TagBPM       bool   `yaml:"tag_bpm" env:"TAG_BPM, overwrite"`

	Storage storage.Config `yaml:"storage" env:", prefix=STORAGE_"`
	Log     LogConfig      `yaml:"log" env:", prefix=LOG_"`
}

// LogConfig controls the debug log file
type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL, overwrite" validate:"oneof=debug info warn error"`
	File  string `yaml:"file" env:"FILE, overwrite"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Analysis: click.DefaultConfig(),
		Log:      LogConfig{Level: "info"},
	}
}

// Load builds a configuration from defaults, the YAML file at path (if
// path is non-empty) and the process environment.
func Load(ctx context.Context, path string) (*Config, error) {
	return LoadWith(ctx, path, envconfig.OsLookuper())
}

// LoadWith is Load with an explicit environment source
func LoadWith(ctx context.Context, path string, env envconfig.Lookuper) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFile, err)
		}
		if err := cfg.applyYAML(data); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrFile, path, err)
		}
	}

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:           cfg,
		Lookuper:         envconfig.PrefixLookuper(EnvPrefix, env),
		DefaultOverwrite: true,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// fileExtras are YAML keys that map onto Config indirectly
type fileExtras struct {
	ClickChannel     *int           `yaml:"click_channel"`
	Channels         []channelEntry `yaml:"channels"`
	SectionSplitting yaml.Node      `yaml:"section_splitting"`
}

// channelEntry is one console channel; action "click" marks the metronome
type channelEntry struct {
	Ch     int    `yaml:"ch"`
	Name   string `yaml:"name"`
	Action string `yaml:"action"`
}

// sectionSplitting is the flat analysis block used by console-export
// configs, where the bandpass settings sit beside the thresholds.
type sectionSplitting struct {
	click.Config `yaml:",inline"`

	BandpassLow  *float64 `yaml:"bandpass_low"`
	BandpassHigh *float64 `yaml:"bandpass_high"`
	FilterOrder  *int     `yaml:"filter_order"`
}

func (c *Config) applyYAML(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return err
	}
	var extras fileExtras
	if err := yaml.Unmarshal(data, &extras); err != nil {
		return err
	}

	if extras.SectionSplitting.Kind != 0 {
		legacy := sectionSplitting{Config: c.Analysis}
		if err := (&extras.SectionSplitting).Decode(&legacy); err != nil {
			return fmt.Errorf("section_splitting: %w", err)
		}
		c.Analysis = legacy.Config
		if legacy.BandpassLow != nil || legacy.BandpassHigh != nil || legacy.FilterOrder != nil {
			c.Analysis.Prefilter.Enabled = true
		}
		if legacy.BandpassLow != nil {
			c.Analysis.Prefilter.LowHz = *legacy.BandpassLow
		}
		if legacy.BandpassHigh != nil {
			c.Analysis.Prefilter.HighHz = *legacy.BandpassHigh
		}
		if legacy.FilterOrder != nil {
			c.Analysis.Prefilter.Order = *legacy.FilterOrder
		}
	}

	if extras.ClickChannel == nil {
		for _, ch := range extras.Channels {
			if strings.EqualFold(ch.Action, "click") {
				if ch.Ch < 1 {
					return fmt.Errorf("click channel %q has invalid number %d", ch.Name, ch.Ch)
				}
				c.ClickChannel = ch.Ch - 1
				break
			}
		}
	}
	return nil
}

var validate = validator.New()

// Validate checks the merged configuration
func (c *Config) Validate() error {
	if err := c.Analysis.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Storage.Backend == "s3" && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("%w: storage.s3.bucket is required for the s3 backend", ErrInvalid)
	}
	return nil
}

// String returns a summary with secrets masked
func (c *Config) String() string {
	secret := ""
	if c.Storage.S3.SecretAccessKey != "" {
		secret = "****"
	}
	return fmt.Sprintf(
		"Config{ClickChannel: %d, Output: %s, TagBPM: %t, Storage: %s, S3Bucket: %s, S3Endpoint: %s, S3Secret: %s, LogLevel: %s}",
		c.ClickChannel,
		c.Output,
		c.TagBPM,
		c.Storage.Backend,
		c.Storage.S3.Bucket,
		c.Storage.S3.Endpoint,
		secret,
		c.Log.Level,
	)
}
