// Package crm defines the engine's view of the CRM entity store and the
// messaging transports. The engine does not own these schemas; it reads
// entity snapshots to assemble trigger contexts and invokes the mutation
// methods from action executors.
package crm

import (
	"context"
	"time"
)

type Lead struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Source    string    `json:"source"`
	Status    string    `json:"status"`
	ContactID string    `json:"contact_id,omitempty"`
	AgentID   string    `json:"agent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Appointment struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Location  string    `json:"location,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	ContactID string    `json:"contact_id,omitempty"`
	LeadID    string    `json:"lead_id,omitempty"`
}

type Policy struct {
	ID          string    `json:"id"`
	Number      string    `json:"number"`
	Type        string    `json:"type"`
	Premium     float64   `json:"premium"`
	RenewalDate time.Time `json:"renewal_date"`
	Status      string    `json:"status"`
	ContactID   string    `json:"contact_id,omitempty"`
}

type Agent struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	LeadID      string    `json:"lead_id,omitempty"`
	ContactID   string    `json:"contact_id,omitempty"`
	DueAt       time.Time `json:"due_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store is the CRM entity collaborator. Lookups return ErrNotFound-style
// errors from the implementing store when the entity does not exist;
// mutations are expected to be idempotent where noted.
type Store interface {
	Lead(ctx context.Context, id string) (*Lead, error)
	Contact(ctx context.Context, id string) (*Contact, error)
	Appointment(ctx context.Context, id string) (*Appointment, error)
	Policy(ctx context.Context, id string) (*Policy, error)
	Agents(ctx context.Context) ([]*Agent, error)
	PoliciesDueForRenewal(ctx context.Context, within time.Duration) ([]*Policy, error)

	UpdateLeadStatus(ctx context.Context, leadID, status string) error
	AssignLead(ctx context.Context, leadID, agentID string) error
	// AddContactTag appends a tag to the contact's tag set; adding a tag the
	// contact already carries is a no-op.
	AddContactTag(ctx context.Context, contactID, tag string) error
	CreateTask(ctx context.Context, task *Task) error
}

// SMSSender delivers SMS messages. Implementations wrap the agency's
// provider; a send failure returns a descriptive error and the engine applies
// its own retry policy.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// EmailSender delivers email on behalf of the acting user.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}
