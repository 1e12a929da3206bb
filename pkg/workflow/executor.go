// Package workflow contains the execution engine: the dispatcher that starts
// workflows off domain events, the executor loop they share with the
// scheduler, and the poller that resumes paused executions from persisted
// jobs.
package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/coverly/automation/pkg/models"
	"github.com/coverly/automation/pkg/otelhelper"
	"github.com/coverly/automation/pkg/registry"
	"github.com/coverly/automation/pkg/template"
)

// OutcomeStatus is how one run of the action loop ended.
type OutcomeStatus string

const (
	// OutcomeCompleted means every action in the slice ran or was skipped.
	OutcomeCompleted OutcomeStatus = "completed"
	// OutcomePaused means a wait action produced a job; the actions after
	// it have not run.
	OutcomePaused OutcomeStatus = "paused"
	// OutcomeFailed means an action returned an error.
	OutcomeFailed OutcomeStatus = "failed"
)

// Outcome reports how RunFrom ended. The executor never persists anything;
// the caller applies the outcome to the execution and job records, because
// the inline and resumed paths treat failures differently.
type Outcome struct {
	Status OutcomeStatus

	// Job is the continuation to persist when Status is OutcomePaused.
	Job *models.Job

	// FailedIndex and Err describe the failing step when Status is
	// OutcomeFailed.
	FailedIndex int
	Err         error
}

// Executor runs a slice of actions against an execution. It is shared by the
// dispatcher (inline run from step zero) and the scheduler (resumed run from
// a job's base index), so pause and skip semantics cannot drift between the
// two paths.
type Executor struct {
	registry *registry.Registry
	logger   *slog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

func NewExecutor(reg *registry.Registry, logger *slog.Logger, tracer trace.Tracer) *Executor {
	if tracer == nil {
		tracer = otel.Tracer("coverly-engine")
	}

	return &Executor{
		registry: reg,
		logger:   logger,
		tracer:   tracer,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// RunFrom executes actions, whose first element sits at absolute index
// startIndex in the execution's snapshot. It advances
// execution.CurrentActionIndex as it goes and mutates nothing else.
func (e *Executor) RunFrom(ctx context.Context, execution *models.Execution, actions []models.ActionSpec, startIndex int) Outcome {
	logger := e.logger.With(
		"module", "workflow_executor",
		"execution_id", execution.ID,
		"workflow_id", execution.WorkflowID,
	)

	for offset, spec := range actions {
		index := startIndex + offset
		execution.CurrentActionIndex = index

		outcome, done := e.runAction(ctx, logger, execution, actions, spec, index, offset)
		if done {
			return outcome
		}
	}

	return Outcome{Status: OutcomeCompleted}
}

// runAction executes one step. done is true when the loop should stop with
// the returned outcome.
func (e *Executor) runAction(ctx context.Context, logger *slog.Logger, execution *models.Execution, actions []models.ActionSpec, spec models.ActionSpec, index, offset int) (Outcome, bool) {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.action",
		attribute.String(otelhelper.ExecutionIDKey, execution.ID),
		attribute.String(otelhelper.WorkflowIDKey, execution.WorkflowID),
		attribute.String(otelhelper.ActionIDKey, spec.ID),
		attribute.String(otelhelper.ActionKindKey, string(spec.Kind)),
		attribute.Int(otelhelper.ActionIndexKey, index),
	)
	defer span.End()

	logger = logger.With("action_id", spec.ID, "action_index", index)

	if !models.EvaluateConditions(spec.Conditions, execution.Context) {
		logger.DebugContext(ctx, "conditions not met, skipping action")

		return Outcome{}, false
	}

	details := template.Render(spec.Details, execution.Context)

	if spec.Kind == models.ActionWait {
		return e.runWait(ctx, logger, execution, actions, details, index, offset)
	}

	action, err := e.registry.CreateAction(spec.Kind, details)
	if err != nil {
		otelhelper.SetError(span, err)

		return Outcome{Status: OutcomeFailed, FailedIndex: index, Err: err}, true
	}

	err = action.Execute(ctx, execution.ExecutionContext(), logger)
	if err != nil {
		otelhelper.SetError(span, err)
		logger.ErrorContext(ctx, "action failed", "error", err)

		return Outcome{Status: OutcomeFailed, FailedIndex: index, Err: err}, true
	}

	return Outcome{}, false
}

// runWait pauses the execution by packaging the actions after the wait into
// a pending job. A wait whose rendered details carry no parseable duration
// is a no-op.
func (e *Executor) runWait(ctx context.Context, logger *slog.Logger, execution *models.Execution, actions []models.ActionSpec, details string, index, offset int) (Outcome, bool) {
	duration := models.ParseWaitDuration(details)
	if duration <= 0 {
		logger.WarnContext(ctx, "wait has no parseable duration, continuing", "details", details)

		return Outcome{}, false
	}

	remaining := actions[offset+1:]
	job := models.NewJob(uuid.New().String(), execution, remaining, index+1, e.now().Add(duration))

	// The wait itself is done; the next step owns the index.
	execution.CurrentActionIndex = index + 1

	logger.InfoContext(ctx, "execution paused",
		"job_id", job.ID,
		"scheduled_for", job.ScheduledFor,
		"remaining_actions", len(remaining),
	)

	return Outcome{Status: OutcomePaused, Job: job}, true
}
