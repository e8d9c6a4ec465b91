package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/linuxmatters/clicksplit/internal/cli"
	"github.com/linuxmatters/clicksplit/internal/click"
	"github.com/linuxmatters/clicksplit/internal/config"
	"github.com/linuxmatters/clicksplit/internal/logging"
	"github.com/linuxmatters/clicksplit/internal/processor"
	"github.com/linuxmatters/clicksplit/internal/storage"
	"github.com/linuxmatters/clicksplit/internal/ui"
)

var (
	version = "0.0.1"
)

// CLI defines the command-line interface
type CLI struct {
	Version   bool    `short:"v" help:"Show version information"`
	Config    string  `short:"c" type:"existingfile" help:"Path to YAML config file (optional)"`
	Output    string  `short:"o" type:"path" help:"Directory for sections.json and the split tracks; analysis only when empty"`
	Channel   *int    `help:"Click channel, counting from 1; 0 averages all channels"`
	TagBPM    bool    `name:"tag-bpm" help:"Write the section tempo into each split song file"`
	Publish   string  `help:"Publish the output tree to a storage backend (local or s3)"`
	PublishTo string  `name:"publish-dir" type:"path" help:"Destination directory for the local backend"`
	Prefix    *string `help:"Key prefix for published objects"`
	Logs      bool    `help:"Save a detailed session report"`
	LogFile   string  `name:"log-file" type:"path" help:"Write diagnostic logs to this file"`
	LogLevel  string  `name:"log-level" help:"Diagnostic log level (debug, info, warn, error)"`

	Tuning Tuning `embed:"" group:"Tuning"`

	Click  string   `arg:"" name:"click" help:"Click track WAV file" type:"existingfile" optional:""`
	Tracks []string `arg:"" name:"tracks" help:"Track WAV files to split" type:"existingfile" optional:""`
}

// Tuning overrides single analysis settings. Unset flags leave the
// configured value alone; the switches can only turn a stage on.
type Tuning struct {
	GapThreshold       *float64 `name:"gap-threshold" help:"Seconds without a click that end a song"`
	MinSectionLength   *float64 `name:"min-section-length" help:"Shorter sections are merged into a neighbour"`
	BPMChangeThreshold *int     `name:"bpm-change-threshold" help:"Tempo change that splits a song, in BPM"`
	MinPeakDistance    *float64 `name:"min-peak-distance" help:"Minimum seconds between clicks"`
	PeakProminence     *float64 `name:"peak-prominence" help:"Minimum click prominence in full-scale units"`
	NoveltyWindow      *float64 `name:"novelty-window" help:"Envelope smoothing window in seconds"`
	BPMWindow          *float64 `name:"bpm-window" help:"Tempo map window in seconds"`
	MinBPM             *int     `name:"min-bpm" help:"Slowest accepted tempo"`
	MaxBPM             *int     `name:"max-bpm" help:"Fastest accepted tempo"`
	Prefilter          bool     `help:"Condition the click channel before detection"`
	BandpassLow        *float64 `name:"bandpass-low" help:"Prefilter highpass corner in Hz"`
	BandpassHigh       *float64 `name:"bandpass-high" help:"Prefilter lowpass corner in Hz"`
	FilterOrder        *int     `name:"filter-order" help:"Prefilter Butterworth order"`
	HumNotch           bool     `name:"hum-notch" help:"Notch out mains hum (enables the prefilter)"`
	HumHz              *float64 `name:"hum-hz" help:"Mains frequency; 0 detects it from the local timezone"`
}

func (t Tuning) apply(a *click.Config) {
	setFloat := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	setInt := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	setFloat(&a.GapThresholdSeconds, t.GapThreshold)
	setFloat(&a.MinSectionLengthSeconds, t.MinSectionLength)
	setInt(&a.BPMChangeThreshold, t.BPMChangeThreshold)
	setFloat(&a.MinPeakDistance, t.MinPeakDistance)
	setFloat(&a.PeakProminence, t.PeakProminence)
	setFloat(&a.NoveltyWindow, t.NoveltyWindow)
	setFloat(&a.BPMWindowSeconds, t.BPMWindow)
	setInt(&a.MinBPM, t.MinBPM)
	setInt(&a.MaxBPM, t.MaxBPM)
	setFloat(&a.Prefilter.LowHz, t.BandpassLow)
	setFloat(&a.Prefilter.HighHz, t.BandpassHigh)
	setInt(&a.Prefilter.Order, t.FilterOrder)
	setFloat(&a.Prefilter.HumHz, t.HumHz)
	if t.Prefilter {
		a.Prefilter.Enabled = true
	}
	if t.HumNotch {
		a.Prefilter.Enabled = true
		a.Prefilter.HumNotch = true
	}
}

// apply layers the command line over the loaded configuration
func (c *CLI) apply(cfg *config.Config) {
	if c.Output != "" {
		cfg.Output = c.Output
	}
	if c.Channel != nil {
		cfg.ClickChannel = *c.Channel - 1
	}
	if c.TagBPM {
		cfg.TagBPM = true
	}
	if c.Publish != "" {
		cfg.Storage.Backend = c.Publish
	}
	if c.PublishTo != "" {
		cfg.Storage.Dir = c.PublishTo
	}
	if c.Prefix != nil {
		cfg.Storage.Prefix = *c.Prefix
	}
	if c.LogFile != "" {
		cfg.Log.File = c.LogFile
	}
	if c.LogLevel != "" {
		cfg.Log.Level = c.LogLevel
	}
	c.Tuning.apply(&cfg.Analysis)
}

func main() {
	cliArgs := &CLI{}
	kctx := kong.Parse(cliArgs,
		kong.Name("clicksplit"),
		kong.Description("Split a live multitrack recording into songs using its click track"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	if cliArgs.Click == "" {
		cli.PrintError("No click track specified")
		_ = kctx.PrintUsage(false)
		os.Exit(1)
	}

	if err := run(cliArgs); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

func run(cliArgs *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load(ctx, cliArgs.Config)
	if err != nil {
		return err
	}
	cliArgs.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.NewLogger(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	log.Info("starting", zap.String("version", version), zap.Stringer("config", cfg))

	req := processor.Request{
		ClickPath:    cliArgs.Click,
		ClickChannel: cfg.ClickChannel,
		Tracks:       cliArgs.Tracks,
		OutputDir:    cfg.Output,
		Analysis:     cfg.Analysis,
		TagBPM:       cfg.TagBPM,
		Prefix:       cfg.Storage.Prefix,
		Logger:       log,
	}

	if cfg.Storage.Enabled() {
		if cfg.Output == "" {
			return errors.New("publishing needs an output directory (--output)")
		}
		store, err := storage.New(ctx, cfg.Storage)
		if err != nil {
			return fmt.Errorf("storage: %w", err)
		}
		req.Store = store
	}

	if cfg.Output != "" {
		if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		return runSession(ctx, cliArgs, req, log)
	}
	return runAnalysis(ctx, cliArgs, req, log)
}

// runSession analyses, splits and publishes under the progress UI
func runSession(ctx context.Context, cliArgs *CLI, req processor.Request, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := ui.NewModel(req.ClickPath, req.Tracks, req.OutputDir, req.Store != nil, log.Named("ui"))
	p := tea.NewProgram(model)

	done := make(chan struct{})
	go func() {
		defer close(done)
		start := time.Now()
		ph := newProgressHandler(func(stage int, name string, progress float64, analysis *click.Analysis) {
			p.Send(ui.ProgressMsg{Stage: stage, StageName: name, Progress: progress, Analysis: analysis})
		})

		result, err := processor.ProcessSession(ctx, req, ph.callback)
		ph.finish()
		if err != nil {
			log.Error("session failed", zap.Error(err))
		}
		if cliArgs.Logs && result != nil {
			writeReport(cliArgs, req, start, ph, result, log)
		}
		p.Send(ui.SessionCompleteMsg{Result: result, Error: err})
	}()

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("UI error: %w", err)
	}
	m, _ := final.(ui.Model)
	if m.Cancelled {
		cancel()
		<-done
		return errors.New("cancelled")
	}
	<-done
	return m.Error
}

// runAnalysis detects sections and prints them without writing anything
func runAnalysis(ctx context.Context, cliArgs *CLI, req processor.Request, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(ui.NewAnalysisModel())

	done := make(chan struct{})
	go func() {
		defer close(done)
		start := time.Now()
		p.Send(ui.AnalysisStartMsg{FileName: req.ClickPath, FilePath: req.ClickPath})
		ph := newProgressHandler(func(stage int, name string, progress float64, _ *click.Analysis) {
			p.Send(ui.AnalysisProgressMsg{Stage: stage, StageName: name, Progress: progress})
		})

		result, err := processor.ProcessSession(ctx, req, ph.callback)
		ph.finish()
		if cliArgs.Logs && result != nil {
			writeReport(cliArgs, req, start, ph, result, log)
		}
		p.Send(ui.AnalysisCompleteMsg{Result: result, Error: err})
	}()

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("UI error: %w", err)
	}
	m, _ := final.(ui.AnalysisModel)
	if !m.Done {
		cancel()
		<-done
		return errors.New("cancelled")
	}
	<-done
	if m.Error != nil {
		return m.Error
	}
	logging.DisplayAnalysisResults(os.Stdout, req.ClickPath, m.Result.Click, m.Result.Analysis, m.Result.Config)
	return nil
}

func writeReport(cliArgs *CLI, req processor.Request, start time.Time, ph *progressHandler, result *processor.Result, log *zap.Logger) {
	data := logging.ReportData{
		ClickPath:  req.ClickPath,
		Tracks:     req.Tracks,
		OutputDir:  req.OutputDir,
		StartTime:  start,
		EndTime:    time.Now(),
		StageTimes: ph.times,
		Result:     result,
	}
	if err := logging.GenerateReport(data); err != nil {
		log.Warn("failed to generate report", zap.Error(err))
		return
	}
	log.Info("report written", zap.String("path", logging.ReportPath(data)))
}

// progressHandler forwards progress to the UI and times each stage
type progressHandler struct {
	send       processor.ProgressCallback
	stage      int
	stageStart time.Time
	times      map[int]time.Duration
}

func newProgressHandler(send processor.ProgressCallback) *progressHandler {
	return &progressHandler{send: send, times: make(map[int]time.Duration)}
}

func (ph *progressHandler) callback(stage int, stageName string, progress float64, analysis *click.Analysis) {
	if stage != ph.stage {
		ph.finish()
		ph.stage = stage
		ph.stageStart = time.Now()
	}
	ph.send(stage, stageName, progress, analysis)
}

// finish closes the timing of the running stage
func (ph *progressHandler) finish() {
	if ph.stage != 0 {
		ph.times[ph.stage] = time.Since(ph.stageStart)
	}
	ph.stage = 0
}
