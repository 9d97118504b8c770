package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vk/lamphost/internal/ctxlog"
	"github.com/vk/lamphost/internal/dag"
	"github.com/vk/lamphost/internal/plugin"
)

// Check analyses the registry without changing any state: shadowed names,
// unknown hard dependencies, self references and dependency cycles of any
// length. It returns the findings in registry order, cycles last.
func (e *Engine) Check(ctx context.Context) []Diagnostic {
	ctxlog.FromContext(ctx).Info("Checking plugins...", "plugins", len(e.registry.Handles()))
	var out []Diagnostic

	for _, dup := range e.registry.Duplicates() {
		out = append(out, withPlugin(dup, Diagnostic{
			Kind:    DuplicatePlugin,
			Level:   slog.LevelWarn,
			Message: fmt.Sprintf("%s v%s from %s is shadowed by another plugin with the same name", dup.Name(), dup.Version(), managerName(dup)),
		}))
	}

	for _, h := range e.registry.Handles() {
		if canonical, _ := e.registry.FindHandle(h.Name()); canonical != h {
			continue
		}
		if h.State() == plugin.Unloaded {
			out = append(out, withPlugin(h, Diagnostic{
				Kind:    DiscoveryFailed,
				Level:   slog.LevelError,
				Message: fmt.Sprintf("%s v%s could not be loaded", h.Name(), h.Version()),
			}))
		}
		for _, name := range h.Dependencies() {
			if plugin.SameName(name, h.Name()) {
				out = append(out, selfReference(h, "dependency"))
				continue
			}
			if _, ok := e.registry.FindHandle(name); !ok {
				out = append(out, withPlugin(h, Diagnostic{
					Kind:       MissingHardDependency,
					Level:      slog.LevelWarn,
					Dependency: name,
					Message:    fmt.Sprintf("%s v%s is missing dependency %s", h.Name(), h.Version(), name),
				}))
			}
		}
		for _, name := range h.SoftDependencies() {
			if plugin.SameName(name, h.Name()) {
				out = append(out, selfReference(h, "soft dependency"))
				continue
			}
			if _, ok := e.registry.FindHandle(name); !ok {
				out = append(out, withPlugin(h, Diagnostic{
					Kind:       UnresolvableSoftDependency,
					Level:      slog.LevelDebug,
					Dependency: name,
					Message:    fmt.Sprintf("%s v%s soft dependency %s is not installed", h.Name(), h.Version(), name),
				}))
			}
		}
	}

	for _, path := range e.registry.Graph().Cycles() {
		kind := CircularDependency
		if len(path) == 3 {
			kind = MutualDependency
		}
		h, _ := e.registry.FindHandle(path[0])
		out = append(out, withPlugin(h, Diagnostic{
			Kind:       kind,
			Level:      slog.LevelWarn,
			Dependency: path[1],
			Path:       path,
			Message:    fmt.Sprintf("dependency cycle: %s", strings.Join(path, " -> ")),
			Err:        &dag.CycleError{Path: path},
		}))
	}

	return out
}

func selfReference(h plugin.Handle, label string) Diagnostic {
	return withPlugin(h, Diagnostic{
		Kind:       SelfDependency,
		Level:      slog.LevelWarn,
		Dependency: h.Name(),
		Message:    fmt.Sprintf("%s v%s lists itself as a %s", h.Name(), h.Version(), label),
	})
}
