// Package persistence provides the storage abstraction for workflow
// definitions, executions and scheduled jobs.
package persistence

import (
	"context"
	"time"

	"github.com/coverly/automation/pkg/models"
)

type Persistence interface {
	WorkflowRepository() WorkflowRepository
	ExecutionRepository() ExecutionRepository
	JobRepository() JobRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// WorkflowRepository stores workflow definitions.
type WorkflowRepository interface {
	GetAll(ctx context.Context) ([]*models.WorkflowDefinition, error)
	GetByID(ctx context.Context, id string) (*models.WorkflowDefinition, error)
	// ListActiveByTrigger returns the active definitions bound to the given
	// trigger, the set the dispatcher fans a firing out to.
	ListActiveByTrigger(ctx context.Context, trigger models.TriggerKind) ([]*models.WorkflowDefinition, error)
	Save(ctx context.Context, workflow *models.WorkflowDefinition) error
	Delete(ctx context.Context, id string) error
}

// ExecutionRepository stores the audit trail of workflow runs.
type ExecutionRepository interface {
	Save(ctx context.Context, execution *models.Execution) error
	GetByID(ctx context.Context, id string) (*models.Execution, error)
}

// JobRepository stores durable continuations created at Wait actions.
type JobRepository interface {
	Save(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id string) (*models.Job, error)
	// DueJobs returns pending jobs whose scheduled_for is at or before the
	// given instant.
	DueJobs(ctx context.Context, before time.Time) ([]*models.Job, error)
	// Claim atomically moves a pending job to processing, consuming one
	// retry attempt, and returns it.
	// A job that is missing returns ErrJobNotFound; a job that is not
	// pending returns ErrJobNotClaimable, which is how two pollers racing
	// on the same job resolve to a single winner.
	Claim(ctx context.Context, id string) (*models.Job, error)
}
