package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	ctx := map[string]any{
		"lead": map[string]any{
			"name":  "Ana",
			"score": float64(75),
			"address": map[string]any{
				"city": "Austin",
			},
			"email": nil,
		},
		"contactId": "contact-1",
	}

	tests := []struct {
		name     string
		path     string
		expected any
		found    bool
	}{
		{name: "top level", path: "contactId", expected: "contact-1", found: true},
		{name: "nested", path: "lead.name", expected: "Ana", found: true},
		{name: "deeply nested", path: "lead.address.city", expected: "Austin", found: true},
		{name: "number", path: "lead.score", expected: float64(75), found: true},
		{name: "missing segment", path: "lead.phone", found: false},
		{name: "missing root", path: "policy.number", found: false},
		{name: "through non-map", path: "lead.name.first", found: false},
		{name: "nil value", path: "lead.email", found: false},
		{name: "empty path", path: "", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, ok := ResolvePath(ctx, tt.path)
			assert.Equal(t, tt.found, ok)

			if tt.found {
				assert.Equal(t, tt.expected, value)
			}
		})
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{name: "string", value: "hello", expected: "hello"},
		{name: "whole float", value: float64(42), expected: "42"},
		{name: "fractional float", value: 3.5, expected: "3.5"},
		{name: "large float stays plain", value: float64(1000000), expected: "1000000"},
		{name: "bool", value: true, expected: "true"},
		{name: "nil", value: nil, expected: ""},
		{name: "int", value: 7, expected: "7"},
		{name: "map", value: map[string]any{"a": "b"}, expected: `{"a":"b"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Stringify(tt.value))
		})
	}
}

func TestExecution_Lifecycle(t *testing.T) {
	actions := []ActionSpec{
		{ID: "a1", Kind: ActionSendSMS, Details: "Hi {{lead.name}}"},
		{ID: "a2", Kind: ActionAddTag, Details: "new-lead"},
	}
	ctx := map[string]any{"lead": map[string]any{"name": "Ana"}}

	execution := NewExecution("exec-1", "wf-1", TriggerLeadCreated, ctx, actions)

	assert.Equal(t, ExecutionStatusRunning, execution.Status)
	assert.Equal(t, 0, execution.CurrentActionIndex)
	assert.Nil(t, execution.FailedActionIndex)

	execution.MarkFailed(1, "no phone on record")

	assert.Equal(t, ExecutionStatusFailed, execution.Status)
	assert.Equal(t, "no phone on record", execution.ErrorMessage)
	require.NotNil(t, execution.FailedActionIndex)
	assert.Equal(t, 1, *execution.FailedActionIndex)
	require.NotNil(t, execution.CompletedAt)
}

func TestExecution_ExecutionContext(t *testing.T) {
	ctx := map[string]any{"leadId": "lead-1"}
	execution := NewExecution("exec-1", "wf-1", TriggerLeadCreated, ctx, nil)

	execCtx := execution.ExecutionContext()

	assert.Equal(t, "exec-1", execCtx.ExecutionID)
	assert.Equal(t, "wf-1", execCtx.WorkflowID)
	assert.Equal(t, TriggerLeadCreated, execCtx.Trigger)
	assert.Equal(t, ctx, execCtx.Context)
}

func TestJob_IsDue(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name     string
		job      Job
		expected bool
	}{
		{
			name:     "pending and past due",
			job:      Job{Status: JobStatusPending, ScheduledFor: now.Add(-time.Minute), MaxAttempts: 3},
			expected: true,
		},
		{
			name:     "exactly due",
			job:      Job{Status: JobStatusPending, ScheduledFor: now, MaxAttempts: 3},
			expected: true,
		},
		{
			name:     "not yet due",
			job:      Job{Status: JobStatusPending, ScheduledFor: now.Add(time.Minute), MaxAttempts: 3},
			expected: false,
		},
		{
			name:     "processing is not due",
			job:      Job{Status: JobStatusProcessing, ScheduledFor: now.Add(-time.Minute), MaxAttempts: 3},
			expected: false,
		},
		{
			name:     "attempts exhausted",
			job:      Job{Status: JobStatusPending, ScheduledFor: now.Add(-time.Minute), Attempts: 3, MaxAttempts: 3},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.job.IsDue(now))
		})
	}
}

func TestNewJob_CarriesExecutionContext(t *testing.T) {
	ctx := map[string]any{"lead": map[string]any{"name": "Ana", "score": float64(75)}}
	actions := []ActionSpec{
		{ID: "a1", Kind: ActionWait, Details: "10 minutes"},
		{ID: "a2", Kind: ActionSendEmail, Details: "Subject: Hello\nBody"},
	}
	execution := NewExecution("exec-1", "wf-1", TriggerLeadCreated, ctx, actions)

	due := time.Now().UTC().Add(10 * time.Minute)
	job := NewJob("job-1", execution, actions[1:], 1, due)

	assert.Equal(t, "exec-1", job.ExecutionID)
	assert.Equal(t, "wf-1", job.WorkflowID)
	assert.Equal(t, 1, job.BaseIndex)
	assert.Equal(t, actions[1:], job.RemainingActions)
	assert.Equal(t, ctx, job.Context)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, DefaultMaxAttempts, job.MaxAttempts)
	assert.Equal(t, due, job.ScheduledFor)
}

func TestJob_ContextRoundTripsJSON(t *testing.T) {
	job := Job{
		ID: "job-1",
		Context: map[string]any{
			"lead": map[string]any{
				"name":  "Ana",
				"score": float64(75),
				"email": nil,
				"tags":  []any{"vip", "renewal"},
			},
		},
	}

	encoded, err := json.Marshal(job)
	require.NoError(t, err)

	var decoded Job
	require.NoError(t, json.Unmarshal(encoded, &decoded))

	assert.Equal(t, job.Context, decoded.Context)
}

func TestValidateDefinitionJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{
			name: "valid definition",
			raw: `{
				"name": "Welcome new leads",
				"trigger": "lead.created",
				"is_active": true,
				"actions": [
					{"id": "a1", "kind": "send_sms", "details": "Hi {{lead.name}}"},
					{"id": "a2", "kind": "wait", "details": "10 minutes"}
				]
			}`,
			wantErr: false,
		},
		{
			name:    "missing trigger",
			raw:     `{"name": "No trigger", "actions": [{"kind": "add_tag", "details": "x"}]}`,
			wantErr: true,
		},
		{
			name:    "unknown trigger",
			raw:     `{"name": "Bad trigger", "trigger": "lead.deleted", "actions": [{"kind": "add_tag"}]}`,
			wantErr: true,
		},
		{
			name:    "unknown action kind",
			raw:     `{"name": "Bad action", "trigger": "lead.created", "actions": [{"kind": "send_fax"}]}`,
			wantErr: true,
		},
		{
			name:    "empty actions",
			raw:     `{"name": "No actions", "trigger": "lead.created", "actions": []}`,
			wantErr: true,
		},
		{
			name: "bad condition operator",
			raw: `{
				"name": "Bad condition",
				"trigger": "lead.created",
				"actions": [{"kind": "add_tag", "details": "x", "conditions": [{"field": "lead.status", "operator": "matches", "value": "New"}]}]
			}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDefinitionJSON([]byte(tt.raw))

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
