package sendemail

import (
	"github.com/coverly/automation/pkg/crm"
	"github.com/coverly/automation/pkg/models"
	"github.com/coverly/automation/pkg/protocol"
)

type Factory struct {
	sender crm.EmailSender
}

func NewFactory(sender crm.EmailSender) *Factory {
	return &Factory{sender: sender}
}

func (*Factory) Kind() models.ActionKind {
	return models.ActionSendEmail
}

func (f *Factory) Create(details string) (protocol.Action, error) {
	return &Action{details: details, sender: f.sender}, nil
}
