package logging

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/linuxmatters/clicksplit/internal/click"
	"github.com/linuxmatters/clicksplit/internal/mains"
	"github.com/linuxmatters/clicksplit/internal/processor"
	"github.com/linuxmatters/clicksplit/internal/session"
)

// ReportFileName is the report written into the output directory
const ReportFileName = "clicksplit.log"

// writeSection writes a section header with title and dashed underline.
// The underline length matches the title length.
func writeSection(w io.Writer, title string) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("-", len(title)))
}

// ReportData contains all the information needed to generate a session report
type ReportData struct {
	ClickPath  string
	Tracks     []string
	OutputDir  string
	StartTime  time.Time
	EndTime    time.Time
	StageTimes map[int]time.Duration // keyed by processor stage; absent stages did not run
	Result     *processor.Result
}

// ReportPath returns where GenerateReport writes: inside the output
// directory, or beside the click track for an analysis-only run.
func ReportPath(data ReportData) string {
	if data.OutputDir != "" {
		return filepath.Join(data.OutputDir, ReportFileName)
	}
	return strings.TrimSuffix(data.ClickPath, filepath.Ext(data.ClickPath)) + "-" + ReportFileName
}

// GenerateReport creates a detailed session report at ReportPath.
//
// Report structure:
// 1. Header - click track info and timestamp
// 2. Processing Summary - stage timings
// 3. Analysis Settings - tuning as used, with hum detection
// 4. Detection - onset and region counts
// 5. Sections - one row per section
// 6. Tempo Map - windowed tempo estimates
// 7. Output - written and published files
// 8. Tips - prioritised advice
func GenerateReport(data ReportData) error {
	f, err := os.Create(ReportPath(data))
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	writeReport(f, data)
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write log file: %w", err)
	}
	return nil
}

func writeReport(w io.Writer, data ReportData) {
	writeReportHeader(w, data)
	writeProcessingSummary(w, data)

	if data.Result == nil || data.Result.Analysis == nil {
		return
	}
	a := data.Result.Analysis
	cfg := data.Result.Config

	writeAnalysisSettings(w, data.Result)
	writeDetectionSummary(w, a)
	writeSectionTable(w, a, cfg)
	writeTempoMap(w, a)
	writeOutputs(w, data.Result)
	writeTips(w, GenerateRecordingTips(a, cfg))
}

// writeReportHeader outputs the report header with click track info and timestamp.
func writeReportHeader(w io.Writer, data ReportData) {
	fmt.Fprintln(w, "Clicksplit Session Report")
	fmt.Fprintln(w, "=========================")
	fmt.Fprintf(w, "Click track: %s\n", filepath.Base(data.ClickPath))
	fmt.Fprintf(w, "Processed: %s\n", data.EndTime.Format("2006-01-02 15:04:05 MST"))
	if data.Result != nil && data.Result.Click != nil {
		meta := data.Result.Click
		fmt.Fprintf(w, "Duration: %s (%s)\n",
			formatDuration(time.Duration(meta.Duration*float64(time.Second))), session.FormatHMS(meta.Duration))
		fmt.Fprintf(w, "Format: %d Hz, %d-bit, %s\n", meta.SampleRate, meta.BitDepth, channelName(meta.Channels))
	}
	if len(data.Tracks) > 0 {
		fmt.Fprintf(w, "Tracks: %d\n", len(data.Tracks))
		for _, t := range data.Tracks {
			fmt.Fprintf(w, "  %s\n", filepath.Base(t))
		}
	}
	fmt.Fprintln(w, "")
}

// writeProcessingSummary outputs the time spent in each stage.
func writeProcessingSummary(w io.Writer, data ReportData) {
	writeSection(w, "Processing Summary")

	for stage := processor.StageLoading; stage <= processor.StagePublishing; stage++ {
		d, ok := data.StageTimes[stage]
		if !ok {
			continue
		}
		label := processor.StageName(stage) + ":"
		fmt.Fprintf(w, "%-12s %s\n", label, formatDuration(d))
	}

	totalTime := data.EndTime.Sub(data.StartTime)
	fmt.Fprintf(w, "%-12s %s", "Total:", formatDuration(totalTime))
	if data.Result != nil && data.Result.Click != nil && totalTime > 0 {
		audioDuration := time.Duration(data.Result.Click.Duration * float64(time.Second))
		fmt.Fprintf(w, " (%.0fx real-time)", float64(audioDuration)/float64(totalTime))
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "")
}

// writeAnalysisSettings outputs the tuning the analysis ran with. Values
// that differ from the stock tuning carry the default as a note.
func writeAnalysisSettings(w io.Writer, result *processor.Result) {
	writeSection(w, "Analysis Settings")

	cfg := result.Config
	def := click.DefaultConfig()
	note := func(changed bool, format string, v any) string {
		if !changed {
			return ""
		}
		return "default " + fmt.Sprintf(format, v)
	}

	table := NewMetricTable("Value")
	table.AddRow("Gap threshold", []string{formatMetric(cfg.GapThresholdSeconds, 2)}, "s",
		note(cfg.GapThresholdSeconds != def.GapThresholdSeconds, "%g", def.GapThresholdSeconds))
	table.AddRow("Minimum section", []string{formatMetric(cfg.MinSectionLengthSeconds, 1)}, "s",
		note(cfg.MinSectionLengthSeconds != def.MinSectionLengthSeconds, "%g", def.MinSectionLengthSeconds))
	table.AddRow("BPM change threshold", []string{fmt.Sprintf("%d", cfg.BPMChangeThreshold)}, "BPM",
		note(cfg.BPMChangeThreshold != def.BPMChangeThreshold, "%d", def.BPMChangeThreshold))
	table.AddRow("Peak distance", []string{formatMetric(cfg.MinPeakDistance, 3)}, "s",
		note(cfg.MinPeakDistance != def.MinPeakDistance, "%g", def.MinPeakDistance))
	table.AddRow("Peak prominence", []string{formatMetric(cfg.PeakProminence, 4)}, "",
		note(cfg.PeakProminence != def.PeakProminence, "%g", def.PeakProminence))
	table.AddRow("Novelty window", []string{formatMetric(cfg.NoveltyWindow, 3)}, "s",
		note(cfg.NoveltyWindow != def.NoveltyWindow, "%g", def.NoveltyWindow))
	table.AddRow("Tempo window", []string{formatMetric(cfg.BPMWindowSeconds, 1)}, "s",
		note(cfg.BPMWindowSeconds != def.BPMWindowSeconds, "%g", def.BPMWindowSeconds))
	table.AddRow("Tempo range", []string{fmt.Sprintf("%d-%d", cfg.MinBPM, cfg.MaxBPM)}, "BPM",
		note(cfg.MinBPM != def.MinBPM || cfg.MaxBPM != def.MaxBPM, "%s", fmt.Sprintf("%d-%d", def.MinBPM, def.MaxBPM)))
	fmt.Fprint(w, table.String())

	sampleRate := 0
	if result.Click != nil {
		sampleRate = result.Click.SampleRate
	}
	filters := click.ActiveFilters(cfg.Prefilter, sampleRate)
	if len(filters) == 0 {
		fmt.Fprintln(w, "Prefilter: disabled")
	} else {
		names := make([]string, len(filters))
		for i, id := range filters {
			names[i] = describeFilter(id, cfg.Prefilter)
		}
		fmt.Fprintf(w, "Prefilter: %s\n", strings.Join(names, ", "))
	}
	if result.Hum != nil {
		fmt.Fprintf(w, "Mains: %s\n", result.Hum)
	}
	fmt.Fprintln(w, "")
}

func describeFilter(id click.FilterID, p click.PrefilterConfig) string {
	switch id {
	case click.FilterHighpass:
		return fmt.Sprintf("highpass %g Hz (order %d)", p.LowHz, p.Order)
	case click.FilterLowpass:
		return fmt.Sprintf("lowpass %g Hz (order %d)", p.HighHz, p.Order)
	case click.FilterHumNotch:
		hz := p.HumHz
		if hz <= 0 {
			hz = mains.DefaultHz
		}
		return fmt.Sprintf("hum notch %g Hz", hz)
	default:
		return string(id)
	}
}

// writeDetectionSummary outputs how the onsets became sections.
func writeDetectionSummary(w io.Writer, a *click.Analysis) {
	writeSection(w, "Detection")
	fmt.Fprintf(w, "Clicks:          %d\n", len(a.Onsets))
	fmt.Fprintf(w, "Click regions:   %d\n", a.Regions)
	if a.SubRegions != a.Regions {
		fmt.Fprintf(w, "After tempo split: %d\n", a.SubRegions)
	}
	if a.Merged > 0 {
		fmt.Fprintf(w, "Merged:          %d\n", a.Merged)
	}
	fmt.Fprintf(w, "Sections:        %d (%d songs)\n", len(a.Sections), a.SongCount())
	fmt.Fprintln(w, "")
}

// writeSectionTable outputs one row per section. Songs are compared with
// the previous song and with the tempo map windows they span.
func writeSectionTable(w io.Writer, a *click.Analysis, cfg click.Config) {
	writeSection(w, "Sections")
	if len(a.Sections) == 0 {
		fmt.Fprintln(w, "No sections")
		fmt.Fprintln(w, "")
		return
	}

	table := NewMetricTable("Type", "Start", "Duration", "BPM", "Change")
	prevBPM := 0
	for _, s := range a.Sections {
		change := ""
		if s.Type == click.Song && s.HasBPM() && prevBPM > 0 {
			change = formatMetricSigned(float64(s.BPM-prevBPM), 0)
		}
		if s.Type == click.Song && s.HasBPM() {
			prevBPM = s.BPM
		}
		table.AddRow(s.Name(), []string{
			s.Type.String(),
			session.FormatHMS(s.StartSeconds(a.SampleRate)),
			formatMetric(s.Duration(a.SampleRate), 1),
			formatBPM(s.BPM),
			change,
		}, "", tempoSpread(s, a.TempoMap, cfg.BPMChangeThreshold))
	}
	fmt.Fprint(w, table.String())
	fmt.Fprintln(w, "")
}

// tempoSpread describes the windowed tempo range inside a song when it
// varies by more than threshold.
func tempoSpread(s click.Section, points []click.TempoPoint, threshold int) string {
	if s.Type != click.Song {
		return ""
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		if !p.OK || p.StartSample < s.StartSample || p.EndSample > s.EndSample {
			continue
		}
		lo = math.Min(lo, p.BPM)
		hi = math.Max(hi, p.BPM)
	}
	if math.IsInf(lo, 0) || hi-lo <= float64(threshold) {
		return ""
	}
	return fmt.Sprintf("tempo varies %.0f-%.0f BPM", lo, hi)
}

// writeTempoMap outputs the windowed tempo estimates.
func writeTempoMap(w io.Writer, a *click.Analysis) {
	if len(a.TempoMap) == 0 {
		return
	}
	writeSection(w, "Tempo Map")

	table := NewMetricTable("End", "Clicks", "BPM")
	for _, p := range a.TempoMap {
		bpm := math.NaN()
		if p.OK {
			bpm = p.BPM
		}
		start := float64(p.StartSample) / float64(a.SampleRate)
		end := float64(p.EndSample) / float64(a.SampleRate)
		table.AddRow(session.FormatHMS(start), []string{
			session.FormatHMS(end),
			fmt.Sprintf("%d", p.Onsets),
			formatMetric(bpm, 1),
		}, "", "")
	}
	fmt.Fprint(w, table.String())
	fmt.Fprintln(w, "")
}

// writeOutputs lists the session file, split files and published objects.
func writeOutputs(w io.Writer, result *processor.Result) {
	if result.SessionPath == "" {
		return
	}
	writeSection(w, "Output")
	fmt.Fprintf(w, "Session file: %s\n", result.SessionPath)
	for _, out := range result.Outputs {
		tag := ""
		if out.Tagged {
			tag = fmt.Sprintf(" [TBPM %d]", out.Section.BPM)
		}
		fmt.Fprintf(w, "  %s%s\n", out.Path, tag)
	}
	if len(result.Published) > 0 {
		fmt.Fprintf(w, "Published: %d objects\n", len(result.Published))
	}
	fmt.Fprintln(w, "")
}

// writeTips outputs the recording tips, wrapped for a plain-text log.
func writeTips(w io.Writer, tips []RecordingTip) {
	if len(tips) == 0 {
		return
	}
	writeSection(w, "Tips")
	for i, tip := range tips {
		fmt.Fprintf(w, "%d. %s\n", i+1, wrapText(tip.Message, 72, "   "))
	}
	fmt.Fprintln(w, "")
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60

	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}

// channelName returns a human-readable channel name
func channelName(channels int) string {
	switch channels {
	case 1:
		return "mono"
	case 2:
		return "stereo"
	default:
		return fmt.Sprintf("%d channels", channels)
	}
}
