// Package updatestatus moves the triggering lead to the status named in the
// rendered details.
package updatestatus

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/coverly/automation/pkg/crm"
	"github.com/coverly/automation/pkg/models"
)

type Action struct {
	status string
	store  crm.Store
}

func (a *Action) Execute(ctx context.Context, execCtx models.ExecutionContext, logger *slog.Logger) error {
	logger = logger.With("action_kind", models.ActionUpdateStatus)

	status := strings.TrimSpace(a.status)
	if status == "" {
		return errors.New("empty status")
	}

	leadID := models.StringAt(execCtx.Context, "leadId")
	if leadID == "" {
		return errors.New("no lead id in trigger context")
	}

	err := a.store.UpdateLeadStatus(ctx, leadID, status)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "lead status updated", "lead_id", leadID, "status", status)

	return nil
}
