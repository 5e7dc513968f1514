package types

import "time"

// Job status constants
const (
	StatusProcessing = "processing"
	StatusDone       = "done"
	StatusError      = "error"
)

// Transcription mode constants
const (
	ModeAPI   = "api"
	ModeLocal = "local"
)

// JobSnapshot is the poller-facing view of an async transcription job.
type JobSnapshot struct {
	ID        string    `json:"jobId"`
	Status    string    `json:"status"`
	Progress  int       `json:"progress"`
	Result    string    `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// HistoryRecord is one finished transcription in the history store.
type HistoryRecord struct {
	JobID      string    `json:"job_id"`
	Mode       string    `json:"mode"`
	Characters int       `json:"characters"`
	Duration   float64   `json:"duration_seconds"`
	LocalPath  string    `json:"local_path,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
