package models

// ActionKind identifies one of the built-in action executors.
type ActionKind string

const (
	ActionWait          ActionKind = "wait"
	ActionSendSMS       ActionKind = "send_sms"
	ActionSendEmail     ActionKind = "send_email"
	ActionAddTag        ActionKind = "add_tag"
	ActionAssignToAgent ActionKind = "assign_to_agent"
	ActionUpdateStatus  ActionKind = "update_status"
	ActionCreateTask    ActionKind = "create_task"
	ActionSendWebhook   ActionKind = "send_webhook"
)

// ActionSpec is one step of a workflow. Details is a raw template string whose
// meaning depends on Kind: a duration phrase for wait, "Subject: ...\nbody" for
// send_email, a "URL: ..." line for send_webhook, plain text elsewhere. Details
// is rendered against the trigger context before the executor sees it.
type ActionSpec struct {
	ID         string      `json:"id"`
	Kind       ActionKind  `json:"kind"       validate:"required,oneof=wait send_sms send_email add_tag assign_to_agent update_status create_task send_webhook"`
	Details    string      `json:"details"`
	Conditions []Condition `json:"conditions,omitempty" validate:"omitempty,dive"`
}
