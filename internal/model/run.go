package model

import "time"

// RunStatus is the terminal state of a pipeline run.
type RunStatus string

const (
	StatusSuccess RunStatus = "SUCCESS"
	StatusFailed  RunStatus = "FAILED"
)

// PipelineRun is one row of the append-only run audit log.
type PipelineRun struct {
	RunID         int64
	RunTimestamp  string
	Status        RunStatus
	MarketRecords int
	NewsRecords   int
	ErrorMessage  string
}

// DatabaseStats holds total row counts per table plus the storage location.
type DatabaseStats struct {
	MarketRecords int
	NewsRecords   int
	PipelineRuns  int
	DatabasePath  string
}

// RunSummary is returned by every pipeline execution, success or failure.
type RunSummary struct {
	RunID           string
	Status          RunStatus
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
	MarketProcessed int
	NewsProcessed   int
	ReportPath      string
	CSVExports      []string
	Stats           DatabaseStats
	ErrorMessage    string
}
