package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore is a Store backed by JSON documents in a directory, one file per
// collection (leads.json, contacts.json, appointments.json, policies.json,
// agents.json, tasks.json). It exists for local development and demos; the
// production engine embeds the agency CRM's own store.
type FileStore struct {
	dir string

	mu           sync.Mutex
	leads        map[string]*Lead
	contacts     map[string]*Contact
	appointments map[string]*Appointment
	policies     map[string]*Policy
	agents       []*Agent
	tasks        []*Task
}

// NewFileStore loads the collections present in dir. Missing files are empty
// collections.
func NewFileStore(dir string) (*FileStore, error) {
	s := &FileStore{
		dir:          dir,
		leads:        make(map[string]*Lead),
		contacts:     make(map[string]*Contact),
		appointments: make(map[string]*Appointment),
		policies:     make(map[string]*Policy),
	}

	var (
		leads        []*Lead
		contacts     []*Contact
		appointments []*Appointment
		policies     []*Policy
	)

	err := s.loadCollections(map[string]any{
		"leads.json":        &leads,
		"contacts.json":     &contacts,
		"appointments.json": &appointments,
		"policies.json":     &policies,
		"agents.json":       &s.agents,
		"tasks.json":        &s.tasks,
	})
	if err != nil {
		return nil, err
	}

	for _, lead := range leads {
		s.leads[lead.ID] = lead
	}

	for _, contact := range contacts {
		s.contacts[contact.ID] = contact
	}

	for _, appointment := range appointments {
		s.appointments[appointment.ID] = appointment
	}

	for _, policy := range policies {
		s.policies[policy.ID] = policy
	}

	return s, nil
}

func (s *FileStore) loadCollections(collections map[string]any) error {
	for name, target := range collections {
		path := filepath.Join(s.dir, name)

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}

			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		err = json.Unmarshal(data, target)
		if err != nil {
			return fmt.Errorf("failed to unmarshal %s: %w", path, err)
		}
	}

	return nil
}

func (s *FileStore) Lead(_ context.Context, id string) (*Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[id]
	if !ok {
		return nil, fmt.Errorf("lead %s not found", id)
	}

	return lead, nil
}

func (s *FileStore) Contact(_ context.Context, id string) (*Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contact, ok := s.contacts[id]
	if !ok {
		return nil, fmt.Errorf("contact %s not found", id)
	}

	return contact, nil
}

func (s *FileStore) Appointment(_ context.Context, id string) (*Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	appointment, ok := s.appointments[id]
	if !ok {
		return nil, fmt.Errorf("appointment %s not found", id)
	}

	return appointment, nil
}

func (s *FileStore) Policy(_ context.Context, id string) (*Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	policy, ok := s.policies[id]
	if !ok {
		return nil, fmt.Errorf("policy %s not found", id)
	}

	return policy, nil
}

func (s *FileStore) Agents(_ context.Context) ([]*Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]*Agent(nil), s.agents...), nil
}

func (s *FileStore) PoliciesDueForRenewal(_ context.Context, within time.Duration) ([]*Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(within)

	var due []*Policy

	for _, policy := range s.policies {
		if !policy.RenewalDate.After(cutoff) {
			due = append(due, policy)
		}
	}

	return due, nil
}

func (s *FileStore) UpdateLeadStatus(_ context.Context, leadID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[leadID]
	if !ok {
		return fmt.Errorf("lead %s not found", leadID)
	}

	lead.Status = status

	return s.persistLeads()
}

func (s *FileStore) AssignLead(_ context.Context, leadID, agentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[leadID]
	if !ok {
		return fmt.Errorf("lead %s not found", leadID)
	}

	lead.AgentID = agentID

	return s.persistLeads()
}

func (s *FileStore) AddContactTag(_ context.Context, contactID, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contact, ok := s.contacts[contactID]
	if !ok {
		return fmt.Errorf("contact %s not found", contactID)
	}

	for _, existing := range contact.Tags {
		if existing == tag {
			return nil
		}
	}

	contact.Tags = append(contact.Tags, tag)

	contacts := make([]*Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		contacts = append(contacts, c)
	}

	return s.persistCollection("contacts.json", contacts)
}

func (s *FileStore) CreateTask(_ context.Context, task *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = append(s.tasks, task)

	return s.persistCollection("tasks.json", s.tasks)
}

func (s *FileStore) persistLeads() error {
	leads := make([]*Lead, 0, len(s.leads))
	for _, lead := range s.leads {
		leads = append(leads, lead)
	}

	return s.persistCollection("leads.json", leads)
}

func (s *FileStore) persistCollection(name string, collection any) error {
	data, err := json.MarshalIndent(collection, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)

	err = os.WriteFile(path, data, 0o600)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
