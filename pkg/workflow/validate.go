package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/coverly/automation/pkg/actions/sendwebhook"
	"github.com/coverly/automation/pkg/crm"
	"github.com/coverly/automation/pkg/models"
	"github.com/coverly/automation/pkg/template"
)

var validate = validator.New()

// ValidateDefinition checks a workflow definition at authoring time: struct
// constraints, template variables against the trigger's context shape, wait
// durations and webhook URL lines. Execution never calls this; a stored
// definition that has drifted still dispatches, degrading per-action.
func ValidateDefinition(definition *models.WorkflowDefinition) error {
	err := validate.Struct(definition)
	if err != nil {
		return fmt.Errorf("invalid workflow definition: %w", err)
	}

	prefixes := crm.ContextPrefixes(definition.Trigger)

	var errs []error

	for i, action := range definition.Actions {
		result := template.Validate(action.Details, prefixes)
		for _, problem := range result.Errors {
			errs = append(errs, fmt.Errorf("action %d (%s): %s for trigger %s",
				i, action.Kind, problem, definition.Trigger))
		}

		err := validateDetails(action)
		if err != nil {
			errs = append(errs, fmt.Errorf("action %d (%s): %w", i, action.Kind, err))
		}
	}

	return errors.Join(errs...)
}

// validateDetails applies the per-kind conventions encoded in the details
// text.
func validateDetails(action models.ActionSpec) error {
	switch action.Kind {
	case models.ActionWait:
		if models.ParseWaitDuration(action.Details) <= 0 {
			return fmt.Errorf("no parseable duration in %q", action.Details)
		}
	case models.ActionSendWebhook:
		return validateWebhookURL(action.Details)
	}

	return nil
}

// validateWebhookURL requires a URL: line. A URL that is itself templated
// can only be checked at execution time, so tokens get a pass here.
func validateWebhookURL(details string) error {
	_, err := sendwebhook.ExtractURL(details)
	if err == nil {
		return nil
	}

	if errors.Is(err, sendwebhook.ErrInvalidURL) && strings.Contains(details, "{{") {
		return nil
	}

	return err
}
