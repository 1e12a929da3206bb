package workflow_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/coverly/automation/pkg/actions/addtag"
	"github.com/coverly/automation/pkg/actions/assignagent"
	"github.com/coverly/automation/pkg/actions/createtask"
	"github.com/coverly/automation/pkg/actions/sendemail"
	"github.com/coverly/automation/pkg/actions/sendsms"
	"github.com/coverly/automation/pkg/actions/sendwebhook"
	"github.com/coverly/automation/pkg/actions/updatestatus"
	"github.com/coverly/automation/pkg/crm"
	"github.com/coverly/automation/pkg/eventbus"
	"github.com/coverly/automation/pkg/events"
	"github.com/coverly/automation/pkg/models"
	"github.com/coverly/automation/pkg/persistence/file"
	"github.com/coverly/automation/pkg/registry"
	"github.com/coverly/automation/pkg/testutil"
	"github.com/coverly/automation/pkg/workflow"
)

// capturePublisher records lifecycle events so tests can follow execution
// and job identifiers.
type capturePublisher struct {
	published []eventbus.Event
}

func (c *capturePublisher) Publish(_ context.Context, _ string, event eventbus.Event) error {
	c.published = append(c.published, event)

	return nil
}

func (c *capturePublisher) executionID(t *testing.T) string {
	t.Helper()

	for _, event := range c.published {
		if started, ok := event.(*events.ExecutionStarted); ok {
			return started.ExecutionID
		}
	}

	t.Fatal("no ExecutionStarted event published")

	return ""
}

type engine struct {
	store       *testutil.FakeStore
	sms         *testutil.FakeSMSSender
	email       *testutil.FakeEmailSender
	dataDir     string
	persistence *file.Persistence
	dispatcher  *workflow.Dispatcher
	scheduler   *workflow.Scheduler
	publisher   *capturePublisher
}

func newEngine(t *testing.T) *engine {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	store := testutil.NewFakeStore()
	sms := &testutil.FakeSMSSender{}
	email := &testutil.FakeEmailSender{}

	reg := registry.NewRegistry(logger)
	reg.RegisterAction(sendsms.NewFactory(sms))
	reg.RegisterAction(sendemail.NewFactory(email))
	reg.RegisterAction(addtag.NewFactory(store))
	reg.RegisterAction(assignagent.NewFactory(store))
	reg.RegisterAction(updatestatus.NewFactory(store))
	reg.RegisterAction(createtask.NewFactory(store))
	reg.RegisterAction(sendwebhook.NewFactory(nil))

	dataDir := t.TempDir()
	p := file.NewPersistence(dataDir)
	publisher := &capturePublisher{}
	executor := workflow.NewExecutor(reg, logger, nil)

	return &engine{
		store:       store,
		sms:         sms,
		email:       email,
		dataDir:     dataDir,
		persistence: p,
		dispatcher:  workflow.NewDispatcher(p, store, executor, publisher, logger),
		scheduler:   workflow.NewScheduler(p, executor, publisher, logger, time.Minute),
		publisher:   publisher,
	}
}

func (e *engine) seedLead(t *testing.T, id string) {
	t.Helper()

	e.store.Leads[id] = testutil.CreateTestLead(func(l *crm.Lead) {
		l.ID = id
		l.Phone = "555-0101"
	})
}

func (e *engine) saveWorkflow(t *testing.T, definition *models.WorkflowDefinition) {
	t.Helper()

	require.NoError(t, e.persistence.WorkflowRepository().Save(context.Background(), definition))
}

func (e *engine) execution(t *testing.T, id string) *models.Execution {
	t.Helper()

	execution, err := e.persistence.ExecutionRepository().GetByID(context.Background(), id)
	require.NoError(t, err)

	return execution
}

// pendingJob returns the single pending job, however far out it is
// scheduled.
func (e *engine) pendingJob(t *testing.T) *models.Job {
	t.Helper()

	horizon := time.Now().UTC().Add(365 * 24 * time.Hour)

	jobs, err := e.persistence.JobRepository().DueJobs(context.Background(), horizon)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	return jobs[0]
}

// makeDue rewinds the job's schedule so the next tick picks it up.
func (e *engine) makeDue(t *testing.T, job *models.Job) {
	t.Helper()

	job.ScheduledFor = time.Now().UTC().Add(-time.Minute)
	require.NoError(t, e.persistence.JobRepository().Save(context.Background(), job))
}
