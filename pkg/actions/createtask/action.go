// Package createtask records a follow-up task against the triggering lead or
// contact. The first line of the rendered details becomes the task title and
// the remainder the description.
package createtask

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coverly/automation/pkg/crm"
	"github.com/coverly/automation/pkg/models"
)

// defaultDue is how far out a workflow-created task is due when the details
// carry no schedule of their own.
const defaultDue = 24 * time.Hour

type Action struct {
	details string
	store   crm.Store
	now     func() time.Time
}

func (a *Action) Execute(ctx context.Context, execCtx models.ExecutionContext, logger *slog.Logger) error {
	logger = logger.With("action_kind", models.ActionCreateTask)

	title, description := splitTitle(a.details)
	if title == "" {
		return errors.New("empty task title")
	}

	now := a.now()

	task := &crm.Task{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		LeadID:      models.StringAt(execCtx.Context, "leadId"),
		ContactID:   models.StringAt(execCtx.Context, "contactId"),
		DueAt:       now.Add(defaultDue),
		CreatedAt:   now,
	}

	err := a.store.CreateTask(ctx, task)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "task created", "task_id", task.ID, "title", task.Title, "due_at", task.DueAt)

	return nil
}

// splitTitle separates the first non-empty line from the rest of the
// details.
func splitTitle(details string) (title, description string) {
	title, description, found := strings.Cut(strings.TrimSpace(details), "\n")
	title = strings.TrimSpace(title)

	if !found {
		return title, ""
	}

	return title, strings.TrimSpace(description)
}
