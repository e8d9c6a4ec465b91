package logging

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/linuxmatters/clicksplit/internal/audio"
	"github.com/linuxmatters/clicksplit/internal/click"
	"github.com/linuxmatters/clicksplit/internal/session"
)

// DisplayAnalysisResults prints the section list to the console. Used when
// no output directory is given, for a quick look before splitting.
func DisplayAnalysisResults(w io.Writer, clickPath string, metadata *audio.Metadata, a *click.Analysis, cfg click.Config) {
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "ANALYSIS: %s\n", filepath.Base(clickPath))
	fmt.Fprintln(w, strings.Repeat("=", 70))

	if metadata != nil {
		fmt.Fprintf(w, "Duration:    %s\n", formatDurationHMS(metadata.Duration))
		fmt.Fprintf(w, "Sample Rate: %d Hz\n", metadata.SampleRate)
		fmt.Fprintf(w, "Channels:    %s\n", channelName(metadata.Channels))
		fmt.Fprintln(w)
	}
	if a == nil {
		return
	}

	writeAnalysisSection(w, "DETECTION")
	fmt.Fprintf(w, "  Clicks:         %d\n", len(a.Onsets))
	fmt.Fprintf(w, "  Regions:        %d\n", a.Regions)
	fmt.Fprintf(w, "  Sections:       %d (%d songs)\n", len(a.Sections), a.SongCount())
	fmt.Fprintln(w)

	writeAnalysisSection(w, "SECTIONS")
	if len(a.Sections) == 0 {
		fmt.Fprintln(w, "  No sections")
	}
	for _, s := range a.Sections {
		bpm := ""
		if s.HasBPM() {
			bpm = fmt.Sprintf("  %d BPM", s.BPM)
		}
		fmt.Fprintf(w, "  %s  %-8s  %s  %8s%s\n",
			s.Name(), s.Type, session.FormatHMS(s.StartSeconds(a.SampleRate)),
			formatDurationHMS(s.Duration(a.SampleRate)), bpm)
	}
	fmt.Fprintln(w)

	tips := GenerateRecordingTips(a, cfg)
	if len(tips) == 0 {
		return
	}
	writeAnalysisSection(w, "TIPS")
	for _, tip := range tips {
		fmt.Fprintf(w, "  * %s\n", wrapText(tip.Message, 66, "    "))
	}
}

// writeAnalysisSection writes a section header for analysis output.
func writeAnalysisSection(w io.Writer, title string) {
	fmt.Fprintln(w, title)
}

// formatDurationHMS formats seconds as "Xh Ym Zs" or "Ym Zs" or "Z.Xs".
func formatDurationHMS(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}

	totalSeconds := int(seconds)
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	secs := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
	}
	return fmt.Sprintf("%dm %ds", minutes, secs)
}
