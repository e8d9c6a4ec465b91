package click

import "errors"

// Input and configuration errors. Detection and estimation degradations
// (no onsets, no tempo) are never reported through these.
var (
	ErrEmptyWaveform     = errors.New("waveform is empty")
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	ErrNonFiniteSample   = errors.New("waveform contains a non-finite sample")
	ErrInvalidConfig     = errors.New("invalid click analysis configuration")
)
