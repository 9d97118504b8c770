package lifecycle

import (
	"context"

	"github.com/vk/lamphost/internal/ctxlog"
	"github.com/vk/lamphost/internal/plugin"
)

// Disable takes an Enabled handle down, disabling every plugin that
// hard-depends on it first. The handle always ends Disabled, even when its
// OnDisable callback fails. Any other state is a no-op.
func (e *Engine) Disable(ctx context.Context, h plugin.Handle) {
	e.disable(ctx, h, &walk{})
}

func (e *Engine) disable(ctx context.Context, h plugin.Handle, w *walk) {
	if h.State() != plugin.Enabled || w.index(h) >= 0 {
		return
	}
	logger := ctxlog.FromContext(ctx).With("plugin", h.Name())

	w.push(h)
	defer w.pop()

	for _, dependent := range e.registry.Dependents(h.Name()) {
		if dependent.State() == plugin.Enabled {
			logger.Debug("Disabling dependent first.", "dependent", dependent.Name())
		}
		e.disable(ctx, dependent, w)
	}

	if err := invoke(ctx, h, h.OnDisable); err != nil {
		e.report(ctx, withPlugin(h, callbackFailed(h, "disable", err)))
	}
	h.SetState(plugin.Disabled)
	logger.Info("Plugin disabled.", "version", h.Version())
}

func withPlugin(h plugin.Handle, d Diagnostic) Diagnostic {
	d.Plugin = h.Name()
	d.Version = h.Version()
	return d
}
