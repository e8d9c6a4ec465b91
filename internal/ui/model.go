// Package ui provides the Bubbletea terminal user interface for clicksplit
package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/linuxmatters/clicksplit/internal/click"
	"github.com/linuxmatters/clicksplit/internal/processor"
)

// StageStatus represents the state of a single pipeline stage
type StageStatus int

const (
	StatusQueued StageStatus = iota
	StatusActive
	StatusComplete
	StatusError
)

// StageProgress tracks progress for a single pipeline stage
type StageProgress struct {
	Stage  int
	Name   string
	Status StageStatus

	Progress    float64 // 0.0 to 1.0
	StartTime   time.Time
	ElapsedTime time.Duration
}

// Model is the Bubbletea model for a splitting session
type Model struct {
	ClickPath string
	Tracks    []string
	OutputDir string

	// Stages that will run, in order
	Stages       []StageProgress
	CurrentIndex int

	// Populated as the session advances
	Analysis *click.Analysis
	Result   *processor.Result
	Error    error

	StartTime time.Time
	Done      bool
	Cancelled bool

	// Terminal dimensions
	Width  int
	Height int

	log *zap.Logger
}

// NewModel creates a UI model for one session. Splitting and publishing
// stages are only shown when the session will run them.
func NewModel(clickPath string, tracks []string, outputDir string, publishing bool, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}
	stages := []int{processor.StageLoading, processor.StageAnalysing}
	if outputDir != "" && len(tracks) > 0 {
		stages = append(stages, processor.StageSplitting)
	}
	if outputDir != "" && publishing {
		stages = append(stages, processor.StagePublishing)
	}

	progress := make([]StageProgress, len(stages))
	for i, stage := range stages {
		progress[i] = StageProgress{
			Stage:  stage,
			Name:   processor.StageName(stage),
			Status: StatusQueued,
		}
	}

	return Model{
		ClickPath:    clickPath,
		Tracks:       tracks,
		OutputDir:    outputDir,
		Stages:       progress,
		CurrentIndex: -1, // nothing running yet
		StartTime:    time.Now(),
		log:          log,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.Cancelled = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case tickMsg:
		if m.Done {
			return m, nil
		}
		if m.CurrentIndex >= 0 {
			m.Stages[m.CurrentIndex].ElapsedTime = time.Since(m.Stages[m.CurrentIndex].StartTime)
		}
		return m, tickCmd()

	case ProgressMsg:
		idx := m.stageIndex(msg.Stage)
		if idx < 0 {
			m.log.Debug("progress for an unplanned stage", zap.Int("stage", msg.Stage))
			return m, nil
		}
		// Earlier stages are finished once a later one reports
		for i := 0; i < idx; i++ {
			m.Stages[i].Status = StatusComplete
			m.Stages[i].Progress = 1
		}
		if idx != m.CurrentIndex {
			m.log.Debug("stage transition", zap.String("stage", msg.StageName))
		}
		m.CurrentIndex = idx
		m.Stages[idx] = updateStageProgress(m.Stages[idx], msg)
		if msg.Analysis != nil {
			m.Analysis = msg.Analysis
		}

	case SessionCompleteMsg:
		m.Done = true
		m.Result = msg.Result
		m.Error = msg.Error
		if msg.Result != nil && msg.Result.Analysis != nil {
			m.Analysis = msg.Result.Analysis
		}
		for i := range m.Stages {
			switch {
			case msg.Error != nil && i == m.CurrentIndex:
				m.Stages[i].Status = StatusError
			case msg.Error == nil:
				m.Stages[i].Status = StatusComplete
				m.Stages[i].Progress = 1
			}
		}
		m.log.Debug("session complete", zap.Error(msg.Error))
		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if m.Width == 0 {
		return fmt.Sprintf("Initializing...\nStages: %d\n", len(m.Stages))
	}

	if m.Done {
		return renderCompletionSummary(m)
	}

	return renderProcessingView(m)
}

func (m Model) stageIndex(stage int) int {
	for i, s := range m.Stages {
		if s.Stage == stage {
			return i
		}
	}
	return -1
}

// updateStageProgress updates a StageProgress based on a ProgressMsg
func updateStageProgress(sp StageProgress, msg ProgressMsg) StageProgress {
	if sp.Status == StatusQueued {
		sp.StartTime = time.Now()
	}

	sp.Status = StatusActive
	sp.Progress = msg.Progress
	sp.ElapsedTime = time.Since(sp.StartTime)
	if msg.Progress >= 1 {
		sp.Status = StatusComplete
	}

	return sp
}
