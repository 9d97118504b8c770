package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vk/lamphost/internal/ctxlog"
	"github.com/vk/lamphost/internal/plugin"
)

// Enable brings an Initialized or Disabled handle to Enabled, enabling its
// dependencies first. Any other state is a no-op. On failure h is left
// Disabled.
func (e *Engine) Enable(ctx context.Context, h plugin.Handle) {
	if e.enableRoot(ctx, h) {
		e.fail(ctx, h, plugin.Disabled, tooDeep(h, e.maxDepth))
	}
}

// enableRoot runs one enable walk from h and reports whether the depth guard
// cut it short before h was enabled.
func (e *Engine) enableRoot(ctx context.Context, h plugin.Handle) bool {
	w := &walk{}
	e.enable(ctx, h, w)
	return w.truncated && h.State() != plugin.Enabled
}

func (e *Engine) enable(ctx context.Context, h plugin.Handle, w *walk) {
	if !h.State().Enableable() {
		return
	}
	if w.depth() >= e.maxDepth {
		w.truncated = true
		return
	}
	logger := ctxlog.FromContext(ctx).With("plugin", h.Name())

	w.push(h)
	defer w.pop()

	for _, name := range h.Dependencies() {
		dep, ok := e.registry.FindHandle(name)
		if !ok || dep.State() == plugin.Unloaded || dep.State() == plugin.Loaded {
			e.fail(ctx, h, plugin.Disabled, Diagnostic{
				Kind:       MissingStateForEnable,
				Level:      slog.LevelWarn,
				Dependency: name,
				Message:    fmt.Sprintf("%s v%s is missing dependency %s, disabling", h.Name(), h.Version(), name),
			})
			return
		}
		if d, bad := e.checkEdge(h, dep, w, "dependency"); bad {
			e.fail(ctx, h, plugin.Disabled, d)
			return
		}
		if dep.State() != plugin.Enabled {
			e.enable(ctx, dep, w)
		}
		if dep.State() != plugin.Enabled {
			if w.truncated {
				return
			}
			e.fail(ctx, h, plugin.Disabled, Diagnostic{
				Kind:       MissingStateForEnable,
				Level:      slog.LevelWarn,
				Dependency: dep.Name(),
				Message:    fmt.Sprintf("%s v%s depends on %s, which is %s, disabling", h.Name(), h.Version(), dep.Name(), dep.State()),
			})
			return
		}
	}

	for _, name := range h.SoftDependencies() {
		dep, ok := e.registry.FindHandle(name)
		if !ok {
			// Initialize already reported it as unresolvable.
			logger.Debug("Skipping missing soft dependency.", "dependency", name)
			continue
		}
		if d, bad := e.checkEdge(h, dep, w, "soft dependency"); bad {
			e.fail(ctx, h, plugin.Disabled, d)
			return
		}
		if dep.State() != plugin.Enabled {
			e.enable(ctx, dep, w)
			w.truncated = false
		}
	}

	if err := invoke(ctx, h, h.OnEnable); err != nil {
		e.fail(ctx, h, plugin.Disabled, callbackFailed(h, "enable", err))
		return
	}
	h.SetState(plugin.Enabled)
	logger.Info("Plugin enabled.", "version", h.Version())
}

// checkEdge rejects self references, two-plugin loops and longer cycles
// through the current chain. label names the edge kind in messages.
func (e *Engine) checkEdge(h, dep plugin.Handle, w *walk, label string) (Diagnostic, bool) {
	switch {
	case plugin.SameName(dep.Name(), h.Name()):
		return Diagnostic{
			Kind:       SelfDependency,
			Level:      slog.LevelWarn,
			Dependency: dep.Name(),
			Message:    fmt.Sprintf("%s v%s lists itself as a %s, disabling", h.Name(), h.Version(), label),
		}, true
	case dep.DependsOn(h.Name()) || dep.SoftDependsOn(h.Name()):
		return Diagnostic{
			Kind:       MutualDependency,
			Level:      slog.LevelWarn,
			Dependency: dep.Name(),
			Path:       []string{h.Name(), dep.Name(), h.Name()},
			Message: fmt.Sprintf("%s v%s could not be enabled because its %s %q depends on it (both plugins depend on each other)",
				h.Name(), h.Version(), label, dep.Name()),
		}, true
	case w.index(dep) >= 0:
		path := w.cycle(dep)
		return Diagnostic{
			Kind:       CircularDependency,
			Level:      slog.LevelWarn,
			Dependency: dep.Name(),
			Path:       path,
			Message: fmt.Sprintf("%s v%s could not be enabled because it is part of a dependency cycle: %s",
				h.Name(), h.Version(), strings.Join(path, " -> ")),
		}, true
	}
	return Diagnostic{}, false
}
