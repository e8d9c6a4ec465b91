package ui

import (
	"github.com/linuxmatters/clicksplit/internal/click"
	"github.com/linuxmatters/clicksplit/internal/processor"
)

// ProgressMsg represents a progress update from the processor
type ProgressMsg struct {
	Stage     int     // processor.StageLoading .. processor.StagePublishing
	StageName string  // "Loading", "Analysing", ...
	Progress  float64 // 0.0 to 1.0
	Analysis  *click.Analysis
}

// SessionCompleteMsg indicates the session has finished, successfully or not
type SessionCompleteMsg struct {
	Result *processor.Result
	Error  error
}
