package crm

import (
	"context"
	"fmt"
	"time"

	"github.com/coverly/automation/pkg/models"
)

// Times in trigger contexts are RFC3339 strings so the context survives JSON
// persistence without a schema.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// BuildTriggerContext loads the triggering entity (and its directly related
// records) and assembles the nested context map for one trigger firing. The
// shape is fixed per trigger kind; every template variable and condition
// field resolves against it. An entity lookup failure aborts the whole
// dispatch since there is nothing to act on.
func BuildTriggerContext(ctx context.Context, store Store, trigger models.TriggerKind, entityID string) (map[string]any, error) {
	switch trigger {
	case models.TriggerLeadCreated, models.TriggerLeadStatusChanged:
		return buildLeadContext(ctx, store, entityID)
	case models.TriggerAppointmentScheduled:
		return buildAppointmentContext(ctx, store, entityID)
	case models.TriggerPolicyRenewalDue:
		return buildPolicyContext(ctx, store, entityID)
	default:
		return nil, fmt.Errorf("unsupported trigger kind %q", trigger)
	}
}

// ContextPrefixes returns the variable names a template may reference for a
// trigger kind. Entries ending in a dot are prefixes; bare entries match
// exactly. Used by authoring-time validation.
func ContextPrefixes(trigger models.TriggerKind) []string {
	switch trigger {
	case models.TriggerLeadCreated:
		return []string{"lead.", "leadId", "contact.", "contactId"}
	case models.TriggerLeadStatusChanged:
		return []string{"lead.", "leadId", "contact.", "contactId", "previousStatus"}
	case models.TriggerAppointmentScheduled:
		return []string{"appointment.", "appointmentId", "lead.", "leadId", "contact.", "contactId"}
	case models.TriggerPolicyRenewalDue:
		return []string{"policy.", "policyId", "contact.", "contactId"}
	default:
		return nil
	}
}

func buildLeadContext(ctx context.Context, store Store, leadID string) (map[string]any, error) {
	lead, err := store.Lead(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lead %s: %w", leadID, err)
	}

	triggerCtx := map[string]any{
		"leadId": lead.ID,
		"lead":   leadFields(lead),
	}

	attachContact(ctx, store, triggerCtx, lead.ContactID)

	return triggerCtx, nil
}

func buildAppointmentContext(ctx context.Context, store Store, appointmentID string) (map[string]any, error) {
	appointment, err := store.Appointment(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointment %s: %w", appointmentID, err)
	}

	triggerCtx := map[string]any{
		"appointmentId": appointment.ID,
		"appointment": map[string]any{
			"id":        appointment.ID,
			"title":     appointment.Title,
			"startTime": formatTime(appointment.StartTime),
			"endTime":   formatTime(appointment.EndTime),
			"location":  appointment.Location,
			"notes":     appointment.Notes,
		},
	}

	if appointment.LeadID != "" {
		if lead, err := store.Lead(ctx, appointment.LeadID); err == nil {
			triggerCtx["leadId"] = lead.ID
			triggerCtx["lead"] = leadFields(lead)
		}
	}

	attachContact(ctx, store, triggerCtx, appointment.ContactID)

	return triggerCtx, nil
}

func buildPolicyContext(ctx context.Context, store Store, policyID string) (map[string]any, error) {
	policy, err := store.Policy(ctx, policyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy %s: %w", policyID, err)
	}

	triggerCtx := map[string]any{
		"policyId": policy.ID,
		"policy": map[string]any{
			"id":          policy.ID,
			"number":      policy.Number,
			"type":        policy.Type,
			"premium":     policy.Premium,
			"renewalDate": formatTime(policy.RenewalDate),
			"status":      policy.Status,
		},
	}

	attachContact(ctx, store, triggerCtx, policy.ContactID)

	return triggerCtx, nil
}

func leadFields(lead *Lead) map[string]any {
	return map[string]any{
		"id":        lead.ID,
		"name":      lead.Name,
		"email":     lead.Email,
		"phone":     lead.Phone,
		"source":    lead.Source,
		"status":    lead.Status,
		"createdAt": formatTime(lead.CreatedAt),
	}
}

// attachContact adds contact fields when the related contact loads. A contact
// lookup failure is not fatal: the context simply lacks contact data and any
// action that needs it fails on its own terms.
func attachContact(ctx context.Context, store Store, triggerCtx map[string]any, contactID string) {
	if contactID == "" {
		return
	}

	contact, err := store.Contact(ctx, contactID)
	if err != nil {
		return
	}

	tags := make([]any, 0, len(contact.Tags))
	for _, tag := range contact.Tags {
		tags = append(tags, tag)
	}

	triggerCtx["contactId"] = contact.ID
	triggerCtx["contact"] = map[string]any{
		"id":    contact.ID,
		"name":  contact.Name,
		"email": contact.Email,
		"phone": contact.Phone,
		"tags":  tags,
	}
}
