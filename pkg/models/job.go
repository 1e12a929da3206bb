package models

import "time"

// JobStatus is the lifecycle state of a scheduled continuation.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// DefaultMaxAttempts bounds retries of a resumed continuation. The first
// inline run of an execution is never retried; only scheduled resumes are,
// because those tend to fail on transient provider outages rather than on
// workflow configuration.
const DefaultMaxAttempts = 3

// Job is a durable continuation persisted when a wait action pauses an
// execution. RemainingActions is the suffix of the execution's action
// snapshot still to run; BaseIndex is the absolute index of its first action,
// so resumed runs keep the execution's step bookkeeping correct. A chain of
// jobs models one logical suspended execution: resuming across another wait
// completes this job and creates the next one with fresh attempts.
type Job struct {
	ID               string         `json:"id"`
	ExecutionID      string         `json:"execution_id"`
	WorkflowID       string         `json:"workflow_id"`
	RemainingActions []ActionSpec   `json:"remaining_actions"`
	BaseIndex        int            `json:"base_index"`
	Context          map[string]any `json:"context"`
	ScheduledFor     time.Time      `json:"scheduled_for"`
	Status           JobStatus      `json:"status"`
	Attempts         int            `json:"attempts"`
	MaxAttempts      int            `json:"max_attempts"`
	LastError        string         `json:"last_error,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// NewJob creates a pending job due at scheduledFor.
func NewJob(id string, execution *Execution, remaining []ActionSpec, baseIndex int, scheduledFor time.Time) *Job {
	now := time.Now().UTC()

	return &Job{
		ID:               id,
		ExecutionID:      execution.ID,
		WorkflowID:       execution.WorkflowID,
		RemainingActions: remaining,
		BaseIndex:        baseIndex,
		Context:          execution.Context,
		ScheduledFor:     scheduledFor,
		Status:           JobStatusPending,
		MaxAttempts:      DefaultMaxAttempts,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// IsDue reports whether the job is eligible for a poller tick at now.
func (j *Job) IsDue(now time.Time) bool {
	return j.Status == JobStatusPending &&
		!j.ScheduledFor.After(now) &&
		j.Attempts < j.MaxAttempts
}

// Exhausted reports whether the retry budget is spent.
func (j *Job) Exhausted() bool {
	return j.Attempts >= j.MaxAttempts
}
