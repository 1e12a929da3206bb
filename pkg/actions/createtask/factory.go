package createtask

import (
	"time"

	"github.com/coverly/automation/pkg/crm"
	"github.com/coverly/automation/pkg/models"
	"github.com/coverly/automation/pkg/protocol"
)

type Factory struct {
	store crm.Store
}

func NewFactory(store crm.Store) *Factory {
	return &Factory{store: store}
}

func (*Factory) Kind() models.ActionKind {
	return models.ActionCreateTask
}

func (f *Factory) Create(details string) (protocol.Action, error) {
	return &Action{details: details, store: f.store, now: func() time.Time { return time.Now().UTC() }}, nil
}
