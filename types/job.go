package types

import "time"

// JobStatus is the server-reported lifecycle stage of a job.
// The client never advances a job's status locally.
type JobStatus string

// job statuses
const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobSuccess   JobStatus = "success"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// Terminal reports whether the job can no longer change
func (s JobStatus) Terminal() bool {
	switch s {
	case JobCompleted, JobSuccess, JobFailed, JobCancelled:
		return true
	default:
		return false
	}
}

// Active reports whether the job is still queued or running
func (s JobStatus) Active() bool {
	return s == JobQueued || s == JobRunning
}

// JobAction is what the job does
type JobAction string

// job actions
const (
	ActionInstall   JobAction = "install"
	ActionUninstall JobAction = "uninstall"
	ActionEnable    JobAction = "enable"
	ActionDisable   JobAction = "disable"
	ActionUpdate    JobAction = "update"
	ActionBackup    JobAction = "backup"
	ActionRestore   JobAction = "restore"
	ActionMigrate   JobAction = "migrate"
)

// JobLogLine is one line of a job's own log
type JobLogLine struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// Job is a server-tracked asynchronous operation
type Job struct {
	ID          string       `json:"id"`
	Action      JobAction    `json:"action"`
	Target      string       `json:"target"`
	Status      JobStatus    `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	StartedAt   *time.Time   `json:"startedAt,omitempty"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
	Error       string       `json:"error,omitempty"`
	Logs        []JobLogLine `json:"logs,omitempty"`
}
