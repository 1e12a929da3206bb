// Package sendemail delivers a rendered message to the lead's or contact's
// email address. Details follow the "Subject: <subject>\n<body>" convention
// carried over from existing workflow data; text without a Subject line is
// sent with a default subject.
package sendemail

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/coverly/automation/pkg/crm"
	"github.com/coverly/automation/pkg/models"
)

const defaultSubject = "Message from your insurance agency"

type Action struct {
	details string
	sender  crm.EmailSender
}

func (a *Action) Execute(ctx context.Context, execCtx models.ExecutionContext, logger *slog.Logger) error {
	logger = logger.With("action_kind", models.ActionSendEmail)

	if a.sender == nil {
		return errors.New("email transport not configured")
	}

	to := models.StringAt(execCtx.Context, "lead.email")
	if to == "" {
		to = models.StringAt(execCtx.Context, "contact.email")
	}

	if to == "" {
		return errors.New("no email address in trigger context")
	}

	subject, body := splitSubject(a.details)

	err := a.sender.SendEmail(ctx, to, subject, body)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "email sent", "to", to, "subject", subject)

	return nil
}

func splitSubject(details string) (string, string) {
	first, rest, found := strings.Cut(details, "\n")
	if found {
		if subject, ok := strings.CutPrefix(first, "Subject:"); ok {
			return strings.TrimSpace(subject), rest
		}
	} else if subject, ok := strings.CutPrefix(details, "Subject:"); ok {
		return strings.TrimSpace(subject), ""
	}

	return defaultSubject, details
}
