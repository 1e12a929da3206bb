package sendwebhook

import (
	"net/http"

	"github.com/coverly/automation/pkg/models"
	"github.com/coverly/automation/pkg/protocol"
)

type Factory struct {
	client *http.Client
}

// NewFactory builds webhook actions sharing one HTTP client. A nil client
// gets a default with a 30s timeout.
func NewFactory(client *http.Client) *Factory {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	return &Factory{client: client}
}

func (*Factory) Kind() models.ActionKind {
	return models.ActionSendWebhook
}

func (f *Factory) Create(details string) (protocol.Action, error) {
	return &Action{details: details, client: f.client}, nil
}
