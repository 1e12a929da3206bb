package workflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coverly/automation/pkg/eventbus"
	"github.com/coverly/automation/pkg/events"
	"github.com/coverly/automation/pkg/models"
	"github.com/coverly/automation/pkg/testutil"
)

func TestDispatch_RunsActionsInOrder(t *testing.T) {
	e := newEngine(t)
	e.seedLead(t, "lead-1")

	e.saveWorkflow(t, testutil.CreateTestWorkflow([]models.ActionSpec{
		{ID: "a1", Kind: models.ActionSendSMS, Details: "Welcome {{lead.name}}!"},
		{ID: "a2", Kind: models.ActionUpdateStatus, Details: "Contacted"},
	}))

	require.NoError(t, e.dispatcher.Dispatch(context.Background(), models.TriggerLeadCreated, "lead-1", nil))

	require.Len(t, e.sms.Sent, 1)
	assert.Equal(t, "555-0101", e.sms.Sent[0].To)
	assert.Equal(t, "Welcome Ana Alvarez!", e.sms.Sent[0].Body)
	assert.Equal(t, []string{"lead-1:Contacted"}, e.store.StatusUpdates)

	execution := e.execution(t, e.publisher.executionID(t))
	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	assert.NotNil(t, execution.CompletedAt)
}

func TestDispatch_SkipsActionWhenConditionUnmet(t *testing.T) {
	e := newEngine(t)
	e.seedLead(t, "lead-1")

	e.saveWorkflow(t, testutil.CreateTestWorkflow([]models.ActionSpec{
		{ID: "a1", Kind: models.ActionSendSMS, Details: "Only for referrals", Conditions: []models.Condition{
			{Field: "lead.source", Operator: models.OperatorEquals, Value: "Referral"},
		}},
		{ID: "a2", Kind: models.ActionUpdateStatus, Details: "Contacted"},
	}))

	require.NoError(t, e.dispatcher.Dispatch(context.Background(), models.TriggerLeadCreated, "lead-1", nil))

	assert.Empty(t, e.sms.Sent)
	assert.Equal(t, []string{"lead-1:Contacted"}, e.store.StatusUpdates)
	assert.Equal(t, models.ExecutionStatusCompleted, e.execution(t, e.publisher.executionID(t)).Status)
}

func TestDispatch_InlineFailureIsTerminal(t *testing.T) {
	e := newEngine(t)
	e.seedLead(t, "lead-1")
	e.sms.Err = errors.New("provider down")

	e.saveWorkflow(t, testutil.CreateTestWorkflow([]models.ActionSpec{
		{ID: "a1", Kind: models.ActionCreateTask, Details: "Call the lead"},
		{ID: "a2", Kind: models.ActionSendSMS, Details: "hi"},
		{ID: "a3", Kind: models.ActionUpdateStatus, Details: "Contacted"},
	}))

	require.NoError(t, e.dispatcher.Dispatch(context.Background(), models.TriggerLeadCreated, "lead-1", nil))

	execution := e.execution(t, e.publisher.executionID(t))
	assert.Equal(t, models.ExecutionStatusFailed, execution.Status)
	require.NotNil(t, execution.FailedActionIndex)
	assert.Equal(t, 1, *execution.FailedActionIndex)
	assert.Contains(t, execution.ErrorMessage, "provider down")

	// The step after the failure never ran, and no retry job exists.
	assert.Empty(t, e.store.StatusUpdates)

	jobs, err := e.persistence.JobRepository().DueJobs(context.Background(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestDispatch_WaitCreatesJobWithRemainingActions(t *testing.T) {
	e := newEngine(t)
	e.seedLead(t, "lead-1")

	e.saveWorkflow(t, testutil.CreateTestWorkflow([]models.ActionSpec{
		{ID: "a1", Kind: models.ActionSendSMS, Details: "Welcome!"},
		{ID: "a2", Kind: models.ActionWait, Details: "2 days"},
		{ID: "a3", Kind: models.ActionUpdateStatus, Details: "Contacted"},
	}))

	start := time.Now().UTC()
	require.NoError(t, e.dispatcher.Dispatch(context.Background(), models.TriggerLeadCreated, "lead-1", nil))

	require.Len(t, e.sms.Sent, 1)
	assert.Empty(t, e.store.StatusUpdates)

	execution := e.execution(t, e.publisher.executionID(t))
	assert.Equal(t, models.ExecutionStatusRunning, execution.Status)
	assert.Equal(t, 2, execution.CurrentActionIndex)

	job := e.pendingJob(t)
	assert.Equal(t, execution.ID, job.ExecutionID)
	assert.Equal(t, 2, job.BaseIndex)
	require.Len(t, job.RemainingActions, 1)
	assert.Equal(t, models.ActionUpdateStatus, job.RemainingActions[0].Kind)
	assert.WithinDuration(t, start.Add(48*time.Hour), job.ScheduledFor, 5*time.Second)
}

func TestDispatch_UnparseableWaitIsNoOp(t *testing.T) {
	e := newEngine(t)
	e.seedLead(t, "lead-1")

	e.saveWorkflow(t, testutil.CreateTestWorkflow([]models.ActionSpec{
		{ID: "a1", Kind: models.ActionWait, Details: "until the cows come home"},
		{ID: "a2", Kind: models.ActionUpdateStatus, Details: "Contacted"},
	}))

	require.NoError(t, e.dispatcher.Dispatch(context.Background(), models.TriggerLeadCreated, "lead-1", nil))

	assert.Equal(t, []string{"lead-1:Contacted"}, e.store.StatusUpdates)
	assert.Equal(t, models.ExecutionStatusCompleted, e.execution(t, e.publisher.executionID(t)).Status)
}

func TestDispatch_WorkflowIsolation(t *testing.T) {
	e := newEngine(t)
	e.seedLead(t, "lead-1")
	e.sms.Err = errors.New("provider down")

	e.saveWorkflow(t, testutil.CreateTestWorkflow([]models.ActionSpec{
		{ID: "a1", Kind: models.ActionSendSMS, Details: "hi"},
	}))
	e.saveWorkflow(t, testutil.CreateTestWorkflow([]models.ActionSpec{
		{ID: "a1", Kind: models.ActionUpdateStatus, Details: "Contacted"},
	}, func(w *models.WorkflowDefinition) { w.Name = "Status Workflow" }))

	require.NoError(t, e.dispatcher.Dispatch(context.Background(), models.TriggerLeadCreated, "lead-1", nil))

	var completed, failed int

	for _, event := range e.publisher.published {
		switch event.(type) {
		case *events.ExecutionCompleted:
			completed++
		case *events.ExecutionFailed:
			failed++
		}
	}

	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, failed)
}

func TestDispatch_StatusChangedCarriesPreviousStatus(t *testing.T) {
	e := newEngine(t)
	e.seedLead(t, "lead-1")
	e.store.Leads["lead-1"].Status = "Quoted"

	e.saveWorkflow(t, testutil.CreateTestWorkflow([]models.ActionSpec{
		{ID: "a1", Kind: models.ActionSendSMS, Details: "Moved from {{previousStatus}} to {{lead.status}}"},
	}, func(w *models.WorkflowDefinition) { w.Trigger = models.TriggerLeadStatusChanged }))

	require.NoError(t, e.dispatcher.Dispatch(context.Background(), models.TriggerLeadStatusChanged, "lead-1",
		map[string]any{"previousStatus": "New"}))

	require.Len(t, e.sms.Sent, 1)
	assert.Equal(t, "Moved from New to Quoted", e.sms.Sent[0].Body)
}

func TestDispatch_NoActiveWorkflowsDoesNothing(t *testing.T) {
	e := newEngine(t)
	e.seedLead(t, "lead-1")

	e.saveWorkflow(t, testutil.CreateTestWorkflow(nil, func(w *models.WorkflowDefinition) {
		w.IsActive = false
	}))

	require.NoError(t, e.dispatcher.Dispatch(context.Background(), models.TriggerLeadCreated, "lead-1", nil))

	assert.Empty(t, e.publisher.published)
}

// handlerRecorder captures the handlers a dispatcher registers so tests can
// deliver events to them directly.
type handlerRecorder struct {
	handlers map[events.EventType]eventbus.EventHandler
}

func (r *handlerRecorder) Handle(eventType events.EventType, handler eventbus.EventHandler) error {
	r.handlers[eventType] = handler

	return nil
}

func (r *handlerRecorder) Subscribe(context.Context) error { return nil }

func TestRegisterHandlers_RoutesEventsToTriggers(t *testing.T) {
	e := newEngine(t)
	e.seedLead(t, "lead-1")
	e.store.Leads["lead-1"].Status = "Quoted"

	e.saveWorkflow(t, testutil.CreateTestWorkflow([]models.ActionSpec{
		{ID: "a1", Kind: models.ActionSendSMS, Details: "Moved from {{previousStatus}} to {{lead.status}}"},
	}, func(w *models.WorkflowDefinition) { w.Trigger = models.TriggerLeadStatusChanged }))

	recorder := &handlerRecorder{handlers: make(map[events.EventType]eventbus.EventHandler)}
	require.NoError(t, e.dispatcher.RegisterHandlers(recorder))
	require.Len(t, recorder.handlers, 4)

	handler := recorder.handlers[events.LeadStatusChangedEvent]
	require.NotNil(t, handler)

	require.NoError(t, handler(context.Background(), &events.LeadStatusChanged{
		BaseEvent:      events.NewBaseEvent(events.LeadStatusChangedEvent),
		LeadID:         "lead-1",
		PreviousStatus: "New",
	}))

	require.Len(t, e.sms.Sent, 1)
	assert.Equal(t, "Moved from New to Quoted", e.sms.Sent[0].Body)

	// A payload that does not match the registered type is rejected.
	err := handler(context.Background(), &events.LeadCreated{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected event payload")
}
