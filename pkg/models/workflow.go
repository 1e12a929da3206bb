// Package models defines the core domain models for the automation workflow engine.
package models

import "time"

// TriggerKind identifies the domain event a workflow subscribes to.
type TriggerKind string

const (
	TriggerLeadCreated          TriggerKind = "lead.created"
	TriggerLeadStatusChanged    TriggerKind = "lead.status_changed"
	TriggerAppointmentScheduled TriggerKind = "appointment.scheduled"
	TriggerPolicyRenewalDue     TriggerKind = "policy.renewal_due"
)

// TriggerKinds lists every trigger the engine dispatches on.
func TriggerKinds() []TriggerKind {
	return []TriggerKind{
		TriggerLeadCreated,
		TriggerLeadStatusChanged,
		TriggerAppointmentScheduled,
		TriggerPolicyRenewalDue,
	}
}

// WorkflowDefinition is an operator-authored automation: a trigger plus an
// ordered list of actions. The engine treats definitions as read-only; the
// dispatcher snapshots Actions into each Execution, so edits never affect
// in-flight runs.
type WorkflowDefinition struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"       validate:"required,min=3"`
	Trigger   TriggerKind  `json:"trigger"    validate:"required,oneof=lead.created lead.status_changed appointment.scheduled policy.renewal_due"`
	Actions   []ActionSpec `json:"actions"    validate:"required,min=1,dive"`
	IsActive  bool         `json:"is_active"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
