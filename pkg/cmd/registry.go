// Package cmd provides common initialization for command-line entry points.
package cmd

import (
	"log/slog"
	"net/http"

	"github.com/coverly/automation/pkg/actions/addtag"
	"github.com/coverly/automation/pkg/actions/assignagent"
	"github.com/coverly/automation/pkg/actions/createtask"
	"github.com/coverly/automation/pkg/actions/sendemail"
	"github.com/coverly/automation/pkg/actions/sendsms"
	"github.com/coverly/automation/pkg/actions/sendwebhook"
	"github.com/coverly/automation/pkg/actions/updatestatus"
	"github.com/coverly/automation/pkg/crm"
	"github.com/coverly/automation/pkg/registry"
)

// NewRegistry builds the action registry with every built-in executor wired
// to its collaborators. sms and email may be nil when no provider is
// configured; the respective actions then fail with a configuration error
// at execution time.
func NewRegistry(logger *slog.Logger, store crm.Store, sms crm.SMSSender, email crm.EmailSender, httpClient *http.Client) *registry.Registry {
	reg := registry.NewRegistry(logger)

	reg.RegisterAction(sendsms.NewFactory(sms))
	reg.RegisterAction(sendemail.NewFactory(email))
	reg.RegisterAction(addtag.NewFactory(store))
	reg.RegisterAction(assignagent.NewFactory(store))
	reg.RegisterAction(updatestatus.NewFactory(store))
	reg.RegisterAction(createtask.NewFactory(store))
	reg.RegisterAction(sendwebhook.NewFactory(httpClient))

	return reg
}
