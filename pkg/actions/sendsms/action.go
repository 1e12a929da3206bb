// Package sendsms delivers a rendered message to the lead's or contact's
// phone number.
package sendsms

import (
	"context"
	"errors"
	"log/slog"

	"github.com/coverly/automation/pkg/crm"
	"github.com/coverly/automation/pkg/models"
)

type Action struct {
	body   string
	sender crm.SMSSender
}

func (a *Action) Execute(ctx context.Context, execCtx models.ExecutionContext, logger *slog.Logger) error {
	logger = logger.With("action_kind", models.ActionSendSMS)

	if a.sender == nil {
		return errors.New("sms transport not configured")
	}

	phone := models.StringAt(execCtx.Context, "lead.phone")
	if phone == "" {
		phone = models.StringAt(execCtx.Context, "contact.phone")
	}

	if phone == "" {
		return errors.New("no phone number in trigger context")
	}

	err := a.sender.SendSMS(ctx, phone, a.body)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "SMS sent", "to", phone)

	return nil
}
