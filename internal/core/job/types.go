package job

import "time"

type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Job is one submitted conversion and its tracked state. OutputPath is set
// once at submission; Error is present only for failed jobs.
type Job struct {
	ID         string
	Status     Status
	Progress   int
	OutputPath string
	Error      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Terminal reports whether the job has finished, successfully or not.
func (j Job) Terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}
