// Package testutil provides in-memory CRM fakes and test data builders.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coverly/automation/pkg/crm"
	"github.com/coverly/automation/pkg/models"
)

// FakeStore is a stateful in-memory crm.Store. Mutations are recorded so
// tests can assert on side effects.
type FakeStore struct {
	mu           sync.Mutex
	Leads        map[string]*crm.Lead
	Contacts     map[string]*crm.Contact
	Appointments map[string]*crm.Appointment
	Policies     map[string]*crm.Policy
	AgentList    []*crm.Agent
	Tasks        []*crm.Task

	StatusUpdates []string // "leadID:status"
	Assignments   []string // "leadID:agentID"
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		Leads:        make(map[string]*crm.Lead),
		Contacts:     make(map[string]*crm.Contact),
		Appointments: make(map[string]*crm.Appointment),
		Policies:     make(map[string]*crm.Policy),
	}
}

func (s *FakeStore) Lead(_ context.Context, id string) (*crm.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.Leads[id]
	if !ok {
		return nil, fmt.Errorf("lead %s not found", id)
	}

	return lead, nil
}

func (s *FakeStore) Contact(_ context.Context, id string) (*crm.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contact, ok := s.Contacts[id]
	if !ok {
		return nil, fmt.Errorf("contact %s not found", id)
	}

	return contact, nil
}

func (s *FakeStore) Appointment(_ context.Context, id string) (*crm.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	appointment, ok := s.Appointments[id]
	if !ok {
		return nil, fmt.Errorf("appointment %s not found", id)
	}

	return appointment, nil
}

func (s *FakeStore) Policy(_ context.Context, id string) (*crm.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	policy, ok := s.Policies[id]
	if !ok {
		return nil, fmt.Errorf("policy %s not found", id)
	}

	return policy, nil
}

func (s *FakeStore) Agents(_ context.Context) ([]*crm.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]*crm.Agent(nil), s.AgentList...), nil
}

func (s *FakeStore) PoliciesDueForRenewal(_ context.Context, within time.Duration) ([]*crm.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(within)

	var due []*crm.Policy

	for _, policy := range s.Policies {
		if !policy.RenewalDate.After(cutoff) {
			due = append(due, policy)
		}
	}

	return due, nil
}

func (s *FakeStore) UpdateLeadStatus(_ context.Context, leadID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.Leads[leadID]
	if !ok {
		return fmt.Errorf("lead %s not found", leadID)
	}

	lead.Status = status
	s.StatusUpdates = append(s.StatusUpdates, leadID+":"+status)

	return nil
}

func (s *FakeStore) AssignLead(_ context.Context, leadID, agentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.Leads[leadID]
	if !ok {
		return fmt.Errorf("lead %s not found", leadID)
	}

	lead.AgentID = agentID
	s.Assignments = append(s.Assignments, leadID+":"+agentID)

	return nil
}

func (s *FakeStore) AddContactTag(_ context.Context, contactID, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contact, ok := s.Contacts[contactID]
	if !ok {
		return fmt.Errorf("contact %s not found", contactID)
	}

	for _, existing := range contact.Tags {
		if existing == tag {
			return nil
		}
	}

	contact.Tags = append(contact.Tags, tag)

	return nil
}

func (s *FakeStore) CreateTask(_ context.Context, task *crm.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Tasks = append(s.Tasks, task)

	return nil
}

// SentSMS records one delivered SMS.
type SentSMS struct {
	To   string
	Body string
}

// FakeSMSSender records sends and optionally fails each one.
type FakeSMSSender struct {
	mu   sync.Mutex
	Sent []SentSMS
	Err  error
}

func (f *FakeSMSSender) SendSMS(_ context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return f.Err
	}

	f.Sent = append(f.Sent, SentSMS{To: to, Body: body})

	return nil
}

// SentEmail records one delivered email.
type SentEmail struct {
	To      string
	Subject string
	Body    string
}

// FakeEmailSender records sends and optionally fails each one.
type FakeEmailSender struct {
	mu   sync.Mutex
	Sent []SentEmail
	Err  error
}

func (f *FakeEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return f.Err
	}

	f.Sent = append(f.Sent, SentEmail{To: to, Subject: subject, Body: body})

	return nil
}

// CreateTestLead builds a lead with sensible defaults that overrides can
// adjust.
func CreateTestLead(overrides ...func(*crm.Lead)) *crm.Lead {
	lead := &crm.Lead{
		ID:        uuid.New().String(),
		Name:      "Ana Alvarez",
		Email:     "ana@example.com",
		Phone:     "555-0101",
		Source:    "Web Form",
		Status:    "New",
		CreatedAt: time.Now().UTC(),
	}

	for _, override := range overrides {
		override(lead)
	}

	return lead
}

// CreateTestWorkflow builds an active workflow definition on the lead.created
// trigger.
func CreateTestWorkflow(actions []models.ActionSpec, overrides ...func(*models.WorkflowDefinition)) *models.WorkflowDefinition {
	if len(actions) == 0 {
		actions = []models.ActionSpec{
			{ID: "a1", Kind: models.ActionUpdateStatus, Details: "Contacted"},
		}
	}

	workflow := &models.WorkflowDefinition{
		ID:        uuid.New().String(),
		Name:      "Test Workflow",
		Trigger:   models.TriggerLeadCreated,
		Actions:   actions,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	for _, override := range overrides {
		override(workflow)
	}

	return workflow
}
