package protocol

import (
	"context"
	"log/slog"

	"github.com/coverly/automation/pkg/models"
)

// Action is a single executable workflow step. Details have already been
// rendered against the execution context by the time Create is called.
type Action interface {
	Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) error
}

// ActionFactory builds executors for one action kind.
type ActionFactory interface {
	Create(details string) (Action, error)
	Kind() models.ActionKind
}
