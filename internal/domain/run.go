package domain

import "time"

// RunStatus enumerates processing-run outcomes.
type RunStatus string

const (
	RunStatusRunning               RunStatus = "running"
	RunStatusCompleted             RunStatus = "completed"
	RunStatusCompletedNoNewContent RunStatus = "completed_no_new_content"
	// RunStatusFailed is never written by the pipeline itself; a run that
	// died mid-flight stays in "running" and is detectable as orphaned.
	RunStatusFailed RunStatus = "failed"
)

// Terminal reports whether the status closes the run.
func (s RunStatus) Terminal() bool {
	return s == RunStatusCompleted || s == RunStatusCompletedNoNewContent || s == RunStatusFailed
}

// RunCounters are written once, at the terminal transition.
type RunCounters struct {
	NewSearchResults  int
	NewTweets         int
	DuplicatesSkipped int
	ContentGenerated  int
}

// ProcessingRun is the audit record of one skill's pipeline pass.
type ProcessingRun struct {
	ID          int64
	RunDate     string
	SessionID   int64
	StartedAt   time.Time
	CompletedAt *time.Time
	Status      RunStatus
	Counters    RunCounters
}
