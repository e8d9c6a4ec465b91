package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/linuxmatters/clicksplit/internal/processor"
)

// Spinner frames for indeterminate progress
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// AnalysisModel is the Bubbletea model for analysis-only runs, used when
// no output directory is given. The section list is printed after the
// program exits so it stays in the scrollback.
type AnalysisModel struct {
	FileName string
	FilePath string

	Stage     int
	StageName string
	Progress  float64 // 0.0 to 1.0 within the stage
	StartTime time.Time

	spinnerIndex int

	// Populated when complete
	Result *processor.Result
	Error  error
	Done   bool

	Width  int
	Height int
}

// AnalysisStartMsg signals analysis has started
type AnalysisStartMsg struct {
	FileName string
	FilePath string
}

// AnalysisProgressMsg signals a progress update
type AnalysisProgressMsg struct {
	Stage     int
	StageName string
	Progress  float64
}

// AnalysisCompleteMsg signals analysis has completed
type AnalysisCompleteMsg struct {
	Result *processor.Result
	Error  error
}

// tickMsg drives the spinner and elapsed timers
type tickMsg time.Time

// NewAnalysisModel creates a new analysis UI model
func NewAnalysisModel() AnalysisModel {
	return AnalysisModel{
		StartTime: time.Now(),
	}
}

// Init starts the spinner
func (m AnalysisModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages and updates the model
func (m AnalysisModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if s := msg.String(); s == "q" || s == "ctrl+c" {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height

	case tickMsg:
		if m.Done {
			return m, nil
		}
		m.spinnerIndex = (m.spinnerIndex + 1) % len(spinnerFrames)
		return m, tickCmd()

	case AnalysisStartMsg:
		m.FileName = filepath.Base(msg.FilePath)
		m.FilePath = msg.FilePath
		m.StartTime = time.Now()

	case AnalysisProgressMsg:
		m.Stage, m.StageName, m.Progress = msg.Stage, msg.StageName, msg.Progress

	case AnalysisCompleteMsg:
		m.Result, m.Error, m.Done = msg.Result, msg.Error, true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI
func (m AnalysisModel) View() string {
	if m.Width == 0 {
		return "Initializing..."
	}

	var b strings.Builder

	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A40000")).Render("Clicksplit")
	mode := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true).Render("Analysis Mode")
	b.WriteString(title + " " + mode + "\n\n")

	if m.FileName == "" {
		b.WriteString("Waiting...")
		return b.String()
	}
	if m.Done {
		return b.String()
	}

	label := m.StageName
	if label == "" {
		label = processor.StageName(processor.StageLoading)
	}
	file := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true).Render(m.FileName)
	fmt.Fprintf(&b, "%s: %s\n\n", label, file)

	spinner := lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000")).Render(spinnerFrames[m.spinnerIndex])
	elapsed := time.Since(m.StartTime)

	// Loading reports real progress; detection runs as one step
	if m.Stage == processor.StageLoading && m.Progress > 0 && m.Progress < 1 {
		fmt.Fprintf(&b, "%s %s\n", spinner, renderAnalysisProgressBar(m.Progress, 40, elapsed))
	} else {
		fmt.Fprintf(&b, "%s Detecting clicks... [%s]\n", spinner, formatElapsed(elapsed))
	}

	return b.String()
}

// renderAnalysisProgressBar renders a thin progress bar with percentage and elapsed time
func renderAnalysisProgressBar(progress float64, width int, elapsed time.Duration) string {
	filled := int(progress * float64(width))

	done := lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000")).Render(strings.Repeat("━", filled))
	todo := lipgloss.NewStyle().Foreground(lipgloss.Color("#444444")).Render(strings.Repeat("━", width-filled))

	return fmt.Sprintf("%s%s %3d%% [%s]", done, todo, int(progress*100), formatElapsed(elapsed))
}

// formatElapsed formats elapsed time as MM:SS or HH:MM:SS
func formatElapsed(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	h, mins, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, mins, s)
	}
	return fmt.Sprintf("%02d:%02d", mins, s)
}
