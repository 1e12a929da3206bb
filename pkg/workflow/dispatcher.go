package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/coverly/automation/pkg/crm"
	"github.com/coverly/automation/pkg/eventbus"
	"github.com/coverly/automation/pkg/events"
	"github.com/coverly/automation/pkg/models"
	"github.com/coverly/automation/pkg/persistence"
)

// Dispatcher reacts to domain events: it fans a trigger firing out to every
// active workflow bound to that trigger, snapshots the action list into a
// fresh execution, and runs it inline until the first wait, completion or
// failure. Failures in one workflow never affect the others triggered by the
// same firing.
type Dispatcher struct {
	persistence persistence.Persistence
	store       crm.Store
	executor    *Executor
	publisher   eventbus.EventPublisher
	logger      *slog.Logger
}

func NewDispatcher(p persistence.Persistence, store crm.Store, executor *Executor, publisher eventbus.EventPublisher, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		persistence: p,
		store:       store,
		executor:    executor,
		publisher:   publisher,
		logger:      logger.With("module", "workflow_dispatcher"),
	}
}

// RegisterHandlers subscribes the dispatcher to the domain events that map
// onto workflow triggers.
func (d *Dispatcher) RegisterHandlers(bus eventbus.EventSubscriber) error {
	handlers := map[events.EventType]eventbus.EventHandler{
		events.LeadCreatedEvent:          d.handleLeadCreated,
		events.LeadStatusChangedEvent:    d.handleLeadStatusChanged,
		events.AppointmentScheduledEvent: d.handleAppointmentScheduled,
		events.PolicyRenewalDueEvent:     d.handlePolicyRenewalDue,
	}

	for eventType, handler := range handlers {
		err := bus.Handle(eventType, handler)
		if err != nil {
			return fmt.Errorf("failed to register handler for %s: %w", eventType, err)
		}
	}

	return nil
}

func (d *Dispatcher) handleLeadCreated(ctx context.Context, event any) error {
	leadCreated, ok := event.(*events.LeadCreated)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}

	return d.dispatchEvent(ctx, leadCreated, leadCreated.LeadID, nil)
}

func (d *Dispatcher) handleLeadStatusChanged(ctx context.Context, event any) error {
	statusChanged, ok := event.(*events.LeadStatusChanged)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}

	// The context carries the prior status; the lead snapshot already holds
	// the new one.
	return d.dispatchEvent(ctx, statusChanged, statusChanged.LeadID, map[string]any{
		"previousStatus": statusChanged.PreviousStatus,
	})
}

func (d *Dispatcher) handleAppointmentScheduled(ctx context.Context, event any) error {
	scheduled, ok := event.(*events.AppointmentScheduled)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}

	return d.dispatchEvent(ctx, scheduled, scheduled.AppointmentID, nil)
}

func (d *Dispatcher) handlePolicyRenewalDue(ctx context.Context, event any) error {
	renewalDue, ok := event.(*events.PolicyRenewalDue)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}

	return d.dispatchEvent(ctx, renewalDue, renewalDue.PolicyID, nil)
}

// dispatchEvent maps the event type onto its workflow trigger and dispatches.
func (d *Dispatcher) dispatchEvent(ctx context.Context, event eventbus.Event, entityID string, extras map[string]any) error {
	trigger, ok := event.GetType().TriggerKind()
	if !ok {
		return fmt.Errorf("event %s does not dispatch workflows", event.GetType())
	}

	return d.Dispatch(ctx, trigger, entityID, extras)
}

// Dispatch starts every active workflow bound to trigger for the entity that
// fired it. extras are merged over the assembled trigger context (used for
// event-only data such as a lead's previous status).
func (d *Dispatcher) Dispatch(ctx context.Context, trigger models.TriggerKind, entityID string, extras map[string]any) error {
	logger := d.logger.With("trigger", trigger, "entity_id", entityID)

	workflows, err := d.persistence.WorkflowRepository().ListActiveByTrigger(ctx, trigger)
	if err != nil {
		return fmt.Errorf("failed to list workflows for trigger %s: %w", trigger, err)
	}

	if len(workflows) == 0 {
		logger.DebugContext(ctx, "no active workflows for trigger")

		return nil
	}

	triggerCtx, err := crm.BuildTriggerContext(ctx, d.store, trigger, entityID)
	if err != nil {
		return fmt.Errorf("failed to build trigger context: %w", err)
	}

	for key, value := range extras {
		triggerCtx[key] = value
	}

	for _, definition := range workflows {
		err := d.dispatchOne(ctx, definition, trigger, triggerCtx)
		if err != nil {
			// Isolation: one workflow's dispatch failure must not starve
			// the rest of the firing.
			logger.ErrorContext(ctx, "workflow dispatch failed",
				"workflow_id", definition.ID, "error", err)
		}
	}

	return nil
}

// dispatchOne creates the execution with its action snapshot, runs it inline
// and persists the outcome. Each workflow gets its own copy of the trigger
// context so actions of parallel firings cannot observe each other's data.
func (d *Dispatcher) dispatchOne(ctx context.Context, definition *models.WorkflowDefinition, trigger models.TriggerKind, triggerCtx map[string]any) error {
	execCtx := make(map[string]any, len(triggerCtx))
	for key, value := range triggerCtx {
		execCtx[key] = value
	}

	execution := models.NewExecution(uuid.New().String(), definition.ID, trigger, execCtx, definition.Actions)

	err := d.persistence.ExecutionRepository().Save(ctx, execution)
	if err != nil {
		return fmt.Errorf("failed to save execution: %w", err)
	}

	d.publish(ctx, execution.ID, &events.ExecutionStarted{
		BaseEvent:   events.NewBaseEvent(events.ExecutionStartedEvent),
		ExecutionID: execution.ID,
		WorkflowID:  execution.WorkflowID,
		Trigger:     trigger,
	})

	outcome := d.executor.RunFrom(ctx, execution, execution.Actions, 0)

	return d.applyOutcome(ctx, execution, outcome)
}

// applyOutcome persists the inline run's result. An inline failure is
// terminal: only resumed continuations get a retry budget.
func (d *Dispatcher) applyOutcome(ctx context.Context, execution *models.Execution, outcome Outcome) error {
	switch outcome.Status {
	case OutcomeCompleted:
		execution.MarkCompleted()

		err := d.persistence.ExecutionRepository().Save(ctx, execution)
		if err != nil {
			return fmt.Errorf("failed to save completed execution: %w", err)
		}

		d.publish(ctx, execution.ID, &events.ExecutionCompleted{
			BaseEvent:   events.NewBaseEvent(events.ExecutionCompletedEvent),
			ExecutionID: execution.ID,
			WorkflowID:  execution.WorkflowID,
		})

	case OutcomePaused:
		err := d.persistence.ExecutionRepository().Save(ctx, execution)
		if err != nil {
			return fmt.Errorf("failed to save paused execution: %w", err)
		}

		err = d.persistence.JobRepository().Save(ctx, outcome.Job)
		if err != nil {
			return fmt.Errorf("failed to save job: %w", err)
		}

		d.publish(ctx, execution.ID, &events.ExecutionPaused{
			BaseEvent:    events.NewBaseEvent(events.ExecutionPausedEvent),
			ExecutionID:  execution.ID,
			WorkflowID:   execution.WorkflowID,
			JobID:        outcome.Job.ID,
			ResumeAt:     outcome.Job.ScheduledFor,
			ResumeAction: outcome.Job.BaseIndex,
		})

	case OutcomeFailed:
		execution.MarkFailed(outcome.FailedIndex, outcome.Err.Error())

		err := d.persistence.ExecutionRepository().Save(ctx, execution)
		if err != nil {
			return fmt.Errorf("failed to save failed execution: %w", err)
		}

		d.publish(ctx, execution.ID, &events.ExecutionFailed{
			BaseEvent:   events.NewBaseEvent(events.ExecutionFailedEvent),
			ExecutionID: execution.ID,
			WorkflowID:  execution.WorkflowID,
			ActionIndex: outcome.FailedIndex,
			Error:       outcome.Err.Error(),
		})
	}

	return nil
}

func (d *Dispatcher) publish(ctx context.Context, key string, event eventbus.Event) {
	if d.publisher == nil {
		return
	}

	err := d.publisher.Publish(ctx, key, event)
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to publish lifecycle event",
			"event_type", event.GetType(), "error", err)
	}
}
