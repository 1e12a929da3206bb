// Package addtag appends a literal tag to the contact linked to the trigger.
package addtag

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/coverly/automation/pkg/crm"
	"github.com/coverly/automation/pkg/models"
)

type Action struct {
	tag   string
	store crm.Store
}

func (a *Action) Execute(ctx context.Context, execCtx models.ExecutionContext, logger *slog.Logger) error {
	logger = logger.With("action_kind", models.ActionAddTag)

	tag := strings.TrimSpace(a.tag)
	if tag == "" {
		return errors.New("empty tag")
	}

	contactID := models.StringAt(execCtx.Context, "contactId")
	if contactID == "" {
		return errors.New("no contact id in trigger context")
	}

	err := a.store.AddContactTag(ctx, contactID, tag)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "tag added", "contact_id", contactID, "tag", tag)

	return nil
}
