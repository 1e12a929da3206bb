package sendsms_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coverly/automation/pkg/actions/sendsms"
	"github.com/coverly/automation/pkg/models"
	"github.com/coverly/automation/pkg/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func execContext(ctx map[string]any) models.ExecutionContext {
	return models.ExecutionContext{
		ExecutionID: "exec-1",
		WorkflowID:  "wf-1",
		Trigger:     models.TriggerLeadCreated,
		Context:     ctx,
	}
}

func TestFactory(t *testing.T) {
	factory := sendsms.NewFactory(&testutil.FakeSMSSender{})
	assert.Equal(t, models.ActionSendSMS, factory.Kind())

	action, err := factory.Create("Hi Ana")
	require.NoError(t, err)
	assert.NotNil(t, action)
}

func TestAction_SendsToLeadPhone(t *testing.T) {
	sender := &testutil.FakeSMSSender{}
	factory := sendsms.NewFactory(sender)

	action, err := factory.Create("Welcome Ana!")
	require.NoError(t, err)

	err = action.Execute(context.Background(), execContext(map[string]any{
		"lead": map[string]any{"phone": "555-0101"},
	}), testLogger())
	require.NoError(t, err)

	require.Len(t, sender.Sent, 1)
	assert.Equal(t, "555-0101", sender.Sent[0].To)
	assert.Equal(t, "Welcome Ana!", sender.Sent[0].Body)
}

func TestAction_FallsBackToContactPhone(t *testing.T) {
	sender := &testutil.FakeSMSSender{}
	factory := sendsms.NewFactory(sender)

	action, err := factory.Create("hello")
	require.NoError(t, err)

	err = action.Execute(context.Background(), execContext(map[string]any{
		"lead":    map[string]any{"name": "Ana"},
		"contact": map[string]any{"phone": "555-0202"},
	}), testLogger())
	require.NoError(t, err)

	require.Len(t, sender.Sent, 1)
	assert.Equal(t, "555-0202", sender.Sent[0].To)
}

func TestAction_MissingPhoneFails(t *testing.T) {
	sender := &testutil.FakeSMSSender{}
	factory := sendsms.NewFactory(sender)

	action, err := factory.Create("hello")
	require.NoError(t, err)

	err = action.Execute(context.Background(), execContext(map[string]any{
		"lead": map[string]any{"name": "Ana"},
	}), testLogger())

	assert.Error(t, err)
	assert.Empty(t, sender.Sent)
}

func TestAction_NilTransportFails(t *testing.T) {
	factory := sendsms.NewFactory(nil)

	action, err := factory.Create("hello")
	require.NoError(t, err)

	err = action.Execute(context.Background(), execContext(map[string]any{
		"lead": map[string]any{"phone": "555-0101"},
	}), testLogger())

	assert.Error(t, err)
}

func TestAction_ProviderErrorPropagates(t *testing.T) {
	sender := &testutil.FakeSMSSender{Err: errors.New("provider outage")}
	factory := sendsms.NewFactory(sender)

	action, err := factory.Create("hello")
	require.NoError(t, err)

	err = action.Execute(context.Background(), execContext(map[string]any{
		"lead": map[string]any{"phone": "555-0101"},
	}), testLogger())

	assert.ErrorContains(t, err, "provider outage")
}
