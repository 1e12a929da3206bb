package addtag

import (
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
	return models.ActionAddTag
}

func (f *Factory) Create(details string) (protocol.Action, error) {
	return &Action{tag: details, store: f.store}, nil
}
