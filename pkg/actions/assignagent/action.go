// Package assignagent reassigns the triggering lead to the agent named in
// the rendered details, matched case-insensitively.
package assignagent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/coverly/automation/pkg/crm"
	"github.com/coverly/automation/pkg/models"
)

type Action struct {
	agentName string
	store     crm.Store
}

func (a *Action) Execute(ctx context.Context, execCtx models.ExecutionContext, logger *slog.Logger) error {
	logger = logger.With("action_kind", models.ActionAssignToAgent)

	name := strings.TrimSpace(a.agentName)
	if name == "" {
		return errors.New("empty agent name")
	}

	leadID := models.StringAt(execCtx.Context, "leadId")
	if leadID == "" {
		return errors.New("no lead id in trigger context")
	}

	agents, err := a.store.Agents(ctx)
	if err != nil {
		return fmt.Errorf("failed to list agents: %w", err)
	}

	var agent *crm.Agent

	for _, candidate := range agents {
		if strings.EqualFold(candidate.Name, name) {
			agent = candidate

			break
		}
	}

	if agent == nil {
		return fmt.Errorf("agent %q not found", name)
	}

	err = a.store.AssignLead(ctx, leadID, agent.ID)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "lead reassigned", "lead_id", leadID, "agent_id", agent.ID)

	return nil
}
