package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
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
		input    string
		expected string
	}{
		{
			name:     "no tokens is identity",
			input:    "Hello there, welcome aboard!",
			expected: "Hello there, welcome aboard!",
		},
		{
			name:     "single token",
			input:    "Hi {{lead.name}}!",
			expected: "Hi Ana!",
		},
		{
			name:     "top-level token",
			input:    "contact: {{contactId}}",
			expected: "contact: contact-1",
		},
		{
			name:     "multiple tokens",
			input:    "{{lead.name}} from {{lead.address.city}}",
			expected: "Ana from Austin",
		},
		{
			name:     "number stringified without exponent",
			input:    "score={{lead.score}}",
			expected: "score=75",
		},
		{
			name:     "unknown path left untouched",
			input:    "Hi {{x.y}}",
			expected: "Hi {{x.y}}",
		},
		{
			name:     "nil value left untouched",
			input:    "email: {{lead.email}}",
			expected: "email: {{lead.email}}",
		},
		{
			name:     "whitespace inside braces",
			input:    "Hi {{ lead.name }}",
			expected: "Hi Ana",
		},
		{
			name:     "mixed resolved and unresolved",
			input:    "{{lead.name}} / {{lead.phone}}",
			expected: "Ana / {{lead.phone}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Render(tt.input, ctx))
		})
	}
}

func TestRender_EmptyContext(t *testing.T) {
	assert.Equal(t, "Hi {{x.y}}", Render("Hi {{x.y}}", map[string]any{}))
	assert.Equal(t, "Hi {{x.y}}", Render("Hi {{x.y}}", nil))
}

func TestValidate(t *testing.T) {
	allowed := []string{"lead.", "contact.", "contactId", "leadId"}

	tests := []struct {
		name       string
		input      string
		valid      bool
		errorCount int
	}{
		{
			name:  "all variables known",
			input: "Hi {{lead.name}}, your contact is {{contactId}}",
			valid: true,
		},
		{
			name:  "no variables",
			input: "plain text",
			valid: true,
		},
		{
			name:       "unknown prefix",
			input:      "Hi {{appointment.title}}",
			valid:      false,
			errorCount: 1,
		},
		{
			name:       "one error per occurrence",
			input:      "{{policy.number}} and {{policy.number}} again",
			valid:      false,
			errorCount: 2,
		},
		{
			name:       "bare prefix name without dot is not a prefix match",
			input:      "{{lead}}",
			valid:      false,
			errorCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input, allowed)
			assert.Equal(t, tt.valid, result.Valid)
			assert.Len(t, result.Errors, tt.errorCount)
		})
	}
}

func TestVariables(t *testing.T) {
	paths := Variables("{{lead.name}} {{contactId}} {{lead.name}}")
	assert.Equal(t, []string{"lead.name", "contactId"}, paths)
}
