package updatestatus_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coverly/automation/pkg/actions/updatestatus"
	"github.com/coverly/automation/pkg/crm"
	"github.com/coverly/automation/pkg/models"
	"github.com/coverly/automation/pkg/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestAction_UpdatesLeadStatus(t *testing.T) {
	store := testutil.NewFakeStore()
	store.Leads["lead-1"] = testutil.CreateTestLead(func(l *crm.Lead) { l.ID = "lead-1" })

	factory := updatestatus.NewFactory(store)

	action, err := factory.Create("  Contacted  ")
	require.NoError(t, err)

	err = action.Execute(context.Background(), models.ExecutionContext{
		Context: map[string]any{"leadId": "lead-1"},
	}, testLogger())
	require.NoError(t, err)

	assert.Equal(t, "Contacted", store.Leads["lead-1"].Status)
	assert.Equal(t, []string{"lead-1:Contacted"}, store.StatusUpdates)
}

func TestAction_MissingLeadIDFails(t *testing.T) {
	factory := updatestatus.NewFactory(testutil.NewFakeStore())

	action, err := factory.Create("Contacted")
	require.NoError(t, err)

	err = action.Execute(context.Background(), models.ExecutionContext{
		Context: map[string]any{},
	}, testLogger())

	assert.Error(t, err)
}

func TestAction_EmptyStatusFails(t *testing.T) {
	factory := updatestatus.NewFactory(testutil.NewFakeStore())

	action, err := factory.Create("   ")
	require.NoError(t, err)

	err = action.Execute(context.Background(), models.ExecutionContext{
		Context: map[string]any{"leadId": "lead-1"},
	}, testLogger())

	assert.ErrorContains(t, err, "empty status")
}
