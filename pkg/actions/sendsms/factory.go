package sendsms

import (
	"github.com/coverly/automation/pkg/crm"
	"github.com/coverly/automation/pkg/models"
	"github.com/coverly/automation/pkg/protocol"
)

type Factory struct {
	sender crm.SMSSender
}

// NewFactory wires the SMS transport. A nil sender is allowed at construction
// and reported as a configuration error at execution time, so a misconfigured
// deployment fails visibly in the execution audit trail.
func NewFactory(sender crm.SMSSender) *Factory {
	return &Factory{sender: sender}
}

func (*Factory) Kind() models.ActionKind {
	return models.ActionSendSMS
}

func (f *Factory) Create(details string) (protocol.Action, error) {
	return &Action{body: details, sender: f.sender}, nil
}
