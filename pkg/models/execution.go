package models

import "time"

// ExecutionStatus is the lifecycle state of an Execution.
type ExecutionStatus string

const (
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

// Execution is one firing of a workflow. Actions is the snapshot captured at
// dispatch time; CurrentActionIndex always holds the absolute index of the
// step executing or about to execute, whether the run is inline or resumed
// from a job, and never decreases. It is the audit trail's source of truth.
type Execution struct {
	ID                 string          `json:"id"`
	WorkflowID         string          `json:"workflow_id"`
	Trigger            TriggerKind     `json:"trigger"`
	Context            map[string]any  `json:"context"`
	Actions            []ActionSpec    `json:"actions"`
	CurrentActionIndex int             `json:"current_action_index"`
	Status             ExecutionStatus `json:"status"`
	ErrorMessage       string          `json:"error_message,omitempty"`
	FailedActionIndex  *int            `json:"failed_action_index,omitempty"`
	StartedAt          time.Time       `json:"started_at"`
	CompletedAt        *time.Time      `json:"completed_at,omitempty"`
}

// NewExecution creates a running execution at step zero with the given
// context and action snapshot.
func NewExecution(id, workflowID string, trigger TriggerKind, context map[string]any, actions []ActionSpec) *Execution {
	return &Execution{
		ID:         id,
		WorkflowID: workflowID,
		Trigger:    trigger,
		Context:    context,
		Actions:    actions,
		Status:     ExecutionStatusRunning,
		StartedAt:  time.Now().UTC(),
	}
}

// MarkCompleted transitions the execution to its successful terminal state.
func (e *Execution) MarkCompleted() {
	now := time.Now().UTC()
	e.Status = ExecutionStatusCompleted
	e.CompletedAt = &now
}

// MarkFailed transitions the execution to its failed terminal state,
// recording the failing step for the audit trail.
func (e *Execution) MarkFailed(actionIndex int, message string) {
	now := time.Now().UTC()
	e.Status = ExecutionStatusFailed
	e.ErrorMessage = message
	e.FailedActionIndex = &actionIndex
	e.CompletedAt = &now
}

// ExecutionContext packages the fields an action executor may read.
func (e *Execution) ExecutionContext() ExecutionContext {
	return ExecutionContext{
		ExecutionID: e.ID,
		WorkflowID:  e.WorkflowID,
		Trigger:     e.Trigger,
		Context:     e.Context,
	}
}
