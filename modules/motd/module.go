// Package motd logs a message of the day once Core is up.
package motd

import (
	"context"
	"fmt"

	"github.com/vk/lamphost/internal/ctxlog"
	"github.com/vk/lamphost/internal/managers/builtin"
	"github.com/vk/lamphost/internal/plugin"
	"github.com/vk/lamphost/modules/core"
)

// Name of the plugin.
const Name = "Motd"

// DefaultMessage is used when the descriptor carries no "message" metadata.
const DefaultMessage = "Welcome to lamphost."

// Plugin announces Message when enabled.
type Plugin struct {
	Message string
}

var _ plugin.Plugin = (*Plugin)(nil)

// Definition returns the builtin definition of the plugin.
func Definition() builtin.Definition {
	desc := plugin.Descriptor{
		Name:        Name,
		Version:     "1.0.0",
		Description: "Logs a message of the day.",
		Depend:      []string{core.Name},
		Metadata:    map[string]string{"message": DefaultMessage},
	}
	return builtin.Definition{
		Descriptor: desc,
		Factory:    func() plugin.Plugin { return New(desc) },
	}
}

// New builds the plugin from desc, reading the "message" metadata key.
func New(desc plugin.Descriptor) *Plugin {
	msg := desc.Metadata["message"]
	if msg == "" {
		msg = DefaultMessage
	}
	return &Plugin{Message: msg}
}

func (p *Plugin) OnInitialize(context.Context) error {
	if p.Message == "" {
		return fmt.Errorf("message of the day is empty")
	}
	return nil
}

func (p *Plugin) OnEnable(ctx context.Context) error {
	ctxlog.FromContext(ctx).Info(p.Message)
	return nil
}

func (p *Plugin) OnDisable(context.Context) error {
	return nil
}
