// Package core is the base plugin every other sample plugin builds on.
package core

import (
	"context"
	"sync/atomic"

	"github.com/vk/lamphost/internal/ctxlog"
	"github.com/vk/lamphost/internal/managers/builtin"
	"github.com/vk/lamphost/internal/plugin"
)

// Name is the plugin name other plugins depend on.
const Name = "Core"

// Plugin tracks whether the core services are up.
type Plugin struct {
	ready atomic.Bool
}

var _ plugin.Plugin = (*Plugin)(nil)

// Definition returns the builtin definition of the plugin.
func Definition() builtin.Definition {
	return builtin.Definition{
		Descriptor: plugin.Descriptor{
			Name:        Name,
			Version:     "1.0.0",
			Description: "Shared services for the bundled plugins.",
			Authors:     []string{"lamphost"},
		},
		Factory: func() plugin.Plugin { return &Plugin{} },
	}
}

func (p *Plugin) OnInitialize(ctx context.Context) error {
	ctxlog.FromContext(ctx).Debug("Core services prepared.")
	return nil
}

func (p *Plugin) OnEnable(ctx context.Context) error {
	p.ready.Store(true)
	ctxlog.FromContext(ctx).Info("Core services ready.")
	return nil
}

func (p *Plugin) OnDisable(ctx context.Context) error {
	p.ready.Store(false)
	ctxlog.FromContext(ctx).Info("Core services stopped.")
	return nil
}

// Ready reports whether the plugin is enabled.
func (p *Plugin) Ready() bool {
	return p.ready.Load()
}
