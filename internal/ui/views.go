package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/linuxmatters/clicksplit/internal/click"
	"github.com/linuxmatters/clicksplit/internal/processor"
	"github.com/linuxmatters/clicksplit/internal/session"
)

// renderProcessingView renders the main processing view
func renderProcessingView(m Model) string {
	var b strings.Builder

	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")

	b.WriteString(renderStageList(m))
	b.WriteString("\n\n")

	b.WriteString(renderOverallProgress(m))

	return b.String()
}

// renderHeader renders the application header
func renderHeader(m Model) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#A40000")).
		Render("Clicksplit 🥁 - Click Track Section Splitter")

	detail := fmt.Sprintf("Click: %s", filepath.Base(m.ClickPath))
	if len(m.Tracks) > 0 {
		detail += fmt.Sprintf(" | %d track(s)", len(m.Tracks))
	}
	subtitle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Italic(true).
		Render(detail)

	return title + "\n" + subtitle
}

// renderStageList renders the pipeline stages with their status
func renderStageList(m Model) string {
	var b strings.Builder

	for _, stage := range m.Stages {
		b.WriteString(renderStageEntry(stage, m.Analysis))
		b.WriteString("\n")
	}

	return b.String()
}

// renderStageEntry renders a single stage line
func renderStageEntry(stage StageProgress, analysis *click.Analysis) string {
	switch stage.Status {
	case StatusComplete:
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Render("✓")
		summary := ""
		if stage.Stage == processor.StageAnalysing && analysis != nil {
			summary = fmt.Sprintf("\n   %d clicks | %d sections | %d songs",
				len(analysis.Onsets), len(analysis.Sections), analysis.SongCount())
		}
		return fmt.Sprintf(" %s %s (%.1fs)%s", icon, stage.Name, stage.ElapsedTime.Seconds(), summary)

	case StatusActive:
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Render("⚙")
		return fmt.Sprintf(" %s %s\n%s", icon, stage.Name, renderStageDetails(stage))

	case StatusError:
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000")).Render("✗")
		return fmt.Sprintf(" %s %s", icon, stage.Name)

	default:
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render("○")
		return fmt.Sprintf(" %s %s", icon, stage.Name)
	}
}

// renderStageDetails renders detailed progress for the active stage
func renderStageDetails(stage StageProgress) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#A40000")).
		Padding(0, 1).
		Width(60)

	var content strings.Builder

	content.WriteString(renderProgressBar(stage.Progress, 40))
	content.WriteString("\n\n")

	elapsed := stage.ElapsedTime.Seconds()
	var remaining float64
	if stage.Progress > 0 {
		remaining = (elapsed / stage.Progress) - elapsed
	}
	fmt.Fprintf(&content, "⏱  Elapsed: %.1fs | Remaining: ~%.1fs", elapsed, remaining)

	return box.Render(content.String())
}

// renderProgressBar renders a progress bar
func renderProgressBar(progress float64, width int) string {
	progress = min(max(progress, 0), 1)
	filled := int(progress * float64(width))
	empty := width - filled

	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	percentage := int(progress * 100)

	return fmt.Sprintf("%s %d%%", bar, percentage)
}

// renderOverallProgress renders the overall progress footer
func renderOverallProgress(m Model) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#888888")).
		Padding(0, 1).
		Width(60)

	var content string
	if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Stages) {
		content = fmt.Sprintf("Stage %d of %d: %s",
			m.CurrentIndex+1, len(m.Stages), m.Stages[m.CurrentIndex].Name)
	} else {
		content = fmt.Sprintf("Waiting to start %d stage(s)", len(m.Stages))
	}

	return box.Render(content)
}

// renderCompletionSummary renders the final completion summary
func renderCompletionSummary(m Model) string {
	var b strings.Builder

	if m.Error != nil {
		header := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A40000")).
			Render("✗ Session Failed")
		b.WriteString(header)
		b.WriteString("\n\n")
		b.WriteString(renderStageList(m))
		fmt.Fprintf(&b, "\n   Error: %v\n", m.Error)
		return b.String()
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00AA00")).
		Render("✨ Session Complete!")
	b.WriteString(header)
	b.WriteString("\n\n")

	if m.Analysis != nil {
		for _, s := range m.Analysis.Sections {
			b.WriteString(renderSectionLine(s, m.Analysis.SampleRate))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", 60))
	b.WriteString("\n")
	if r := m.Result; r != nil {
		if r.SessionPath != "" {
			fmt.Fprintf(&b, "Session file: %s\n", r.SessionPath)
		}
		if len(r.Outputs) > 0 {
			fmt.Fprintf(&b, "Split %d file(s) into %s\n", len(r.Outputs), m.OutputDir)
		}
		if len(r.Published) > 0 {
			fmt.Fprintf(&b, "Published %d object(s)\n", len(r.Published))
		}
		fmt.Fprintf(&b, "Finished in %.1fs\n", r.Elapsed.Seconds())
	}

	return b.String()
}

// renderSectionLine renders one section of the completion summary
func renderSectionLine(s click.Section, sampleRate int) string {
	icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render("💬")
	tempo := ""
	if s.Type == click.Song {
		icon = lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000")).Render("♪")
		tempo = "no tempo"
		if s.HasBPM() {
			tempo = fmt.Sprintf("%d BPM", s.BPM)
		}
	}

	return fmt.Sprintf(" %s %s  %-8s  %s  %s  %s",
		icon, s.Name(), s.Type,
		session.FormatHMS(s.StartSeconds(sampleRate)),
		session.FormatHMS(s.Duration(sampleRate)),
		tempo)
}
