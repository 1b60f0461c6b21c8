package model

import "fmt"

// Severity tells the orchestrator whether a stage failure ends the run.
type Severity int

const (
	// SeverityRecoverable failures are logged and the run continues degraded.
	SeverityRecoverable Severity = iota
	// SeverityFatal failures move the run to FAILED.
	SeverityFatal
)

// StageError wraps a stage failure with the severity the orchestrator
// transitions on, so the decision is made once at the failure site.
type StageError struct {
	Stage    string
	Severity Severity
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Fatal wraps err as a run-ending failure in the named stage.
func Fatal(stage string, err error) *StageError {
	return &StageError{Stage: stage, Severity: SeverityFatal, Err: err}
}

// Recoverable wraps err as a degradation the run survives.
func Recoverable(stage string, err error) *StageError {
	return &StageError{Stage: stage, Severity: SeverityRecoverable, Err: err}
}
