// Package events defines the domain events the engine consumes and the
// execution lifecycle events it publishes for audit.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/coverly/automation/pkg/models"
)

type EventType string

// Topic is the single bus topic all engine events travel on.
const Topic = "coverly.automation.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Domain events, published by whatever mutates CRM entities.
	LeadCreatedEvent          EventType = "lead.created"
	LeadStatusChangedEvent    EventType = "lead.status_changed"
	AppointmentScheduledEvent EventType = "appointment.scheduled"
	PolicyRenewalDueEvent     EventType = "policy.renewal_due"

	// Execution lifecycle events, published by the engine.
	ExecutionStartedEvent   EventType = "execution.started"
	ExecutionCompletedEvent EventType = "execution.completed"
	ExecutionFailedEvent    EventType = "execution.failed"
	ExecutionPausedEvent    EventType = "execution.paused"
	JobScheduledEvent       EventType = "job.scheduled"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func NewBaseEvent(eventType EventType) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}

// TriggerKind maps a domain event type onto the workflow trigger vocabulary.
// The second return is false for lifecycle events, which never dispatch
// workflows.
func (t EventType) TriggerKind() (models.TriggerKind, bool) {
	switch t {
	case LeadCreatedEvent:
		return models.TriggerLeadCreated, true
	case LeadStatusChangedEvent:
		return models.TriggerLeadStatusChanged, true
	case AppointmentScheduledEvent:
		return models.TriggerAppointmentScheduled, true
	case PolicyRenewalDueEvent:
		return models.TriggerPolicyRenewalDue, true
	default:
		return "", false
	}
}

type LeadCreated struct {
	BaseEvent

	LeadID string `json:"lead_id"`
}

func (e LeadCreated) GetType() EventType { return LeadCreatedEvent }

type LeadStatusChanged struct {
	BaseEvent

	LeadID         string `json:"lead_id"`
	PreviousStatus string `json:"previous_status"`
	NewStatus      string `json:"new_status"`
}

func (e LeadStatusChanged) GetType() EventType { return LeadStatusChangedEvent }

type AppointmentScheduled struct {
	BaseEvent

	AppointmentID string `json:"appointment_id"`
}

func (e AppointmentScheduled) GetType() EventType { return AppointmentScheduledEvent }

type PolicyRenewalDue struct {
	BaseEvent

	PolicyID    string    `json:"policy_id"`
	RenewalDate time.Time `json:"renewal_date"`
}

func (e PolicyRenewalDue) GetType() EventType { return PolicyRenewalDueEvent }

type ExecutionStarted struct {
	BaseEvent

	ExecutionID string             `json:"execution_id"`
	WorkflowID  string             `json:"workflow_id"`
	Trigger     models.TriggerKind `json:"trigger"`
}

func (e ExecutionStarted) GetType() EventType { return ExecutionStartedEvent }

type ExecutionCompleted struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
	WorkflowID  string `json:"workflow_id"`
}

func (e ExecutionCompleted) GetType() EventType { return ExecutionCompletedEvent }

type ExecutionFailed struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
	WorkflowID  string `json:"workflow_id"`
	ActionIndex int    `json:"action_index"`
	Error       string `json:"error"`
}

func (e ExecutionFailed) GetType() EventType { return ExecutionFailedEvent }

type ExecutionPaused struct {
	BaseEvent

	ExecutionID  string    `json:"execution_id"`
	WorkflowID   string    `json:"workflow_id"`
	JobID        string    `json:"job_id"`
	ResumeAt     time.Time `json:"resume_at"`
	ResumeAction int       `json:"resume_action"`
}

func (e ExecutionPaused) GetType() EventType { return ExecutionPausedEvent }

type JobScheduled struct {
	BaseEvent

	JobID        string    `json:"job_id"`
	ExecutionID  string    `json:"execution_id"`
	ScheduledFor time.Time `json:"scheduled_for"`
}

func (e JobScheduled) GetType() EventType { return JobScheduledEvent }
