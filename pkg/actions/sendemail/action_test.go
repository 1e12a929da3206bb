package sendemail_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coverly/automation/pkg/actions/sendemail"
	"github.com/coverly/automation/pkg/models"
	"github.com/coverly/automation/pkg/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func execContext(ctx map[string]any) models.ExecutionContext {
	return models.ExecutionContext{ExecutionID: "exec-1", WorkflowID: "wf-1", Context: ctx}
}

func TestAction_ParsesSubjectConvention(t *testing.T) {
	sender := &testutil.FakeEmailSender{}
	factory := sendemail.NewFactory(sender)

	action, err := factory.Create("Subject: Welcome aboard\nThanks for reaching out, Ana.")
	require.NoError(t, err)

	err = action.Execute(context.Background(), execContext(map[string]any{
		"lead": map[string]any{"email": "ana@example.com"},
	}), testLogger())
	require.NoError(t, err)

	require.Len(t, sender.Sent, 1)
	assert.Equal(t, "ana@example.com", sender.Sent[0].To)
	assert.Equal(t, "Welcome aboard", sender.Sent[0].Subject)
	assert.Equal(t, "Thanks for reaching out, Ana.", sender.Sent[0].Body)
}

func TestAction_SubjectOnlyDetails(t *testing.T) {
	sender := &testutil.FakeEmailSender{}
	factory := sendemail.NewFactory(sender)

	action, err := factory.Create("Subject: Just a subject")
	require.NoError(t, err)

	err = action.Execute(context.Background(), execContext(map[string]any{
		"lead": map[string]any{"email": "ana@example.com"},
	}), testLogger())
	require.NoError(t, err)

	require.Len(t, sender.Sent, 1)
	assert.Equal(t, "Just a subject", sender.Sent[0].Subject)
	assert.Empty(t, sender.Sent[0].Body)
}

func TestAction_NoSubjectLineUsesDefault(t *testing.T) {
	sender := &testutil.FakeEmailSender{}
	factory := sendemail.NewFactory(sender)

	action, err := factory.Create("plain body text")
	require.NoError(t, err)

	err = action.Execute(context.Background(), execContext(map[string]any{
		"contact": map[string]any{"email": "contact@example.com"},
	}), testLogger())
	require.NoError(t, err)

	require.Len(t, sender.Sent, 1)
	assert.Equal(t, "contact@example.com", sender.Sent[0].To)
	assert.NotEmpty(t, sender.Sent[0].Subject)
	assert.Equal(t, "plain body text", sender.Sent[0].Body)
}

func TestAction_MissingEmailFails(t *testing.T) {
	sender := &testutil.FakeEmailSender{}
	factory := sendemail.NewFactory(sender)

	action, err := factory.Create("Subject: X\nbody")
	require.NoError(t, err)

	err = action.Execute(context.Background(), execContext(map[string]any{
		"lead": map[string]any{"name": "Ana"},
	}), testLogger())

	assert.Error(t, err)
	assert.Empty(t, sender.Sent)
}

func TestAction_NilTransportFails(t *testing.T) {
	factory := sendemail.NewFactory(nil)

	action, err := factory.Create("Subject: X\nbody")
	require.NoError(t, err)

	err = action.Execute(context.Background(), execContext(map[string]any{
		"lead": map[string]any{"email": "ana@example.com"},
	}), testLogger())

	assert.Error(t, err)
}
