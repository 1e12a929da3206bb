package models

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// definitionSchema is the JSON Schema applied to raw workflow definition
// documents before they are decoded. It catches shape errors (wrong types,
// unknown kinds) early, so the struct-level validation only sees well-formed
// input.
var definitionSchema = map[string]any{
	"type":     "object",
	"required": []any{"name", "trigger", "actions"},
	"properties": map[string]any{
		"id":   map[string]any{"type": "string"},
		"name": map[string]any{"type": "string", "minLength": 3},
		"trigger": map[string]any{
			"type": "string",
			"enum": []any{
				string(TriggerLeadCreated),
				string(TriggerLeadStatusChanged),
				string(TriggerAppointmentScheduled),
				string(TriggerPolicyRenewalDue),
			},
		},
		"is_active": map[string]any{"type": "boolean"},
		"actions": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []any{"kind"},
				"properties": map[string]any{
					"id": map[string]any{"type": "string"},
					"kind": map[string]any{
						"type": "string",
						"enum": []any{
							string(ActionWait),
							string(ActionSendSMS),
							string(ActionSendEmail),
							string(ActionAddTag),
							string(ActionAssignToAgent),
							string(ActionUpdateStatus),
							string(ActionCreateTask),
							string(ActionSendWebhook),
						},
					},
					"details": map[string]any{"type": "string"},
					"conditions": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type":     "object",
							"required": []any{"field", "operator"},
							"properties": map[string]any{
								"field": map[string]any{"type": "string", "minLength": 1},
								"operator": map[string]any{
									"type": "string",
									"enum": []any{
										string(OperatorEquals),
										string(OperatorNotEquals),
										string(OperatorContains),
										string(OperatorGreaterThan),
										string(OperatorLessThan),
									},
								},
								"value": map[string]any{"type": "string"},
							},
						},
					},
				},
			},
		},
	},
}

// ValidateDefinitionJSON checks a raw workflow definition document against
// the definition schema.
func ValidateDefinitionJSON(raw []byte) error {
	schemaLoader := gojsonschema.NewGoLoader(definitionSchema)
	documentLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate workflow definition: %w", err)
	}

	if !result.Valid() {
		descriptions := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			descriptions = append(descriptions, desc.String())
		}

		return fmt.Errorf("invalid workflow definition: %s", strings.Join(descriptions, "; "))
	}

	return nil
}
