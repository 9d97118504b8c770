package lifecycle

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vk/lamphost/internal/ctxlog"
	"github.com/vk/lamphost/internal/plugin"
)

// Initialize brings h to Initialized, initializing its dependencies first.
// It is a no-op for a handle that is already initialized (or further along)
// and for an Unloaded handle. On failure h is left Loaded.
func (e *Engine) Initialize(ctx context.Context, h plugin.Handle) {
	if e.initRoot(ctx, h) {
		e.fail(ctx, h, plugin.Loaded, tooDeep(h, e.maxDepth))
	}
}

// initRoot runs one initialize walk from h and reports whether the depth
// guard cut it short before h was initialized.
func (e *Engine) initRoot(ctx context.Context, h plugin.Handle) bool {
	w := &walk{}
	e.initialize(ctx, h, w)
	e.settle(ctx, w)
	return w.truncated && !h.State().Initialized()
}

func (e *Engine) initialize(ctx context.Context, h plugin.Handle, w *walk) {
	if h.State().Initialized() || h.State() == plugin.Unloaded {
		return
	}
	if w.depth() >= e.maxDepth {
		w.truncated = true
		return
	}
	logger := ctxlog.FromContext(ctx).With("plugin", h.Name())

	w.push(h)
	defer w.pop()

	deferred := false
	for _, name := range h.Dependencies() {
		dep, ok := e.registry.FindHandle(name)
		if !ok || dep.State() == plugin.Unloaded {
			e.fail(ctx, h, plugin.Loaded, Diagnostic{
				Kind:       MissingHardDependency,
				Level:      slog.LevelWarn,
				Dependency: name,
				Message:    fmt.Sprintf("%s v%s is missing dependency %s, not initializing", h.Name(), h.Version(), name),
			})
			return
		}
		// Self references and cycles cannot be ordered here; enabling the
		// handle reports them and leaves every member disabled.
		if w.index(dep) >= 0 {
			logger.Debug("Deferring cyclic dependency to enable.", "dependency", dep.Name())
			deferred = true
			continue
		}
		if !dep.State().Initialized() {
			e.initialize(ctx, dep, w)
		}
		if !dep.State().Initialized() {
			if w.truncated {
				return
			}
			e.fail(ctx, h, plugin.Loaded, Diagnostic{
				Kind:       MissingHardDependency,
				Level:      slog.LevelWarn,
				Dependency: dep.Name(),
				Message:    fmt.Sprintf("%s v%s depends on %s, which failed to initialize", h.Name(), h.Version(), dep.Name()),
			})
			return
		}
	}

	// A deferred edge leads back up the walk, so the rest of the cycle is
	// not initialized yet. It must at least be able to initialize.
	if deferred {
		if name, bad := e.unresolvedHard(h); bad {
			e.fail(ctx, h, plugin.Loaded, Diagnostic{
				Kind:       MissingHardDependency,
				Level:      slog.LevelWarn,
				Dependency: name,
				Message:    fmt.Sprintf("%s v%s reaches missing dependency %s through a dependency cycle, not initializing", h.Name(), h.Version(), name),
			})
			return
		}
	}

	for _, name := range h.SoftDependencies() {
		dep, ok := e.registry.FindHandle(name)
		if !ok || dep.State() == plugin.Unloaded {
			e.report(ctx, withPlugin(h, Diagnostic{
				Kind:       UnresolvableSoftDependency,
				Level:      slog.LevelDebug,
				Dependency: name,
				Message:    fmt.Sprintf("%s v%s soft dependency %s is not available, skipping", h.Name(), h.Version(), name),
			}))
			continue
		}
		if w.index(dep) >= 0 {
			logger.Debug("Deferring cyclic soft dependency to enable.", "dependency", dep.Name())
			continue
		}
		if !dep.State().Initialized() {
			e.initialize(ctx, dep, w)
			// A soft branch cut by the depth guard does not block h.
			w.truncated = false
		}
	}

	if err := invoke(ctx, h, h.OnInitialize); err != nil {
		e.fail(ctx, h, plugin.Loaded, callbackFailed(h, "initialize", err))
		return
	}
	h.SetState(plugin.Initialized)
	w.initialized = append(w.initialized, h)
	logger.Info("Plugin initialized.", "version", h.Version())
}

// unresolvedHard follows every hard dependency reachable from h and returns
// the first name that is not installed or failed to load.
func (e *Engine) unresolvedHard(h plugin.Handle) (string, bool) {
	seen := map[plugin.Handle]bool{h: true}
	queue := []plugin.Handle{h}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, name := range cur.Dependencies() {
			dep, ok := e.registry.FindHandle(name)
			if !ok || dep.State() == plugin.Unloaded {
				return name, true
			}
			if !seen[dep] {
				seen[dep] = true
				queue = append(queue, dep)
			}
		}
	}
	return "", false
}

// settle moves back to Loaded every handle the walk initialized whose hard
// dependency did not end up initialized. That happens when a cycle member
// further up the walk failed after the rest of the cycle went ahead.
func (e *Engine) settle(ctx context.Context, w *walk) {
	for changed := true; changed; {
		changed = false
		for _, h := range w.initialized {
			if h.State() != plugin.Initialized {
				continue
			}
			for _, name := range h.Dependencies() {
				if dep, ok := e.registry.FindHandle(name); ok && dep.State().Initialized() {
					continue
				}
				e.fail(ctx, h, plugin.Loaded, Diagnostic{
					Kind:       MissingHardDependency,
					Level:      slog.LevelWarn,
					Dependency: name,
					Message:    fmt.Sprintf("%s v%s depends on %s, which failed to initialize, reverting", h.Name(), h.Version(), name),
				})
				changed = true
				break
			}
		}
	}
}

func tooDeep(h plugin.Handle, limit int) Diagnostic {
	return Diagnostic{
		Kind:    DependencyChainTooDeep,
		Level:   slog.LevelWarn,
		Message: fmt.Sprintf("%s v%s has a dependency chain deeper than %d, giving up", h.Name(), h.Version(), limit),
	}
}

func callbackFailed(h plugin.Handle, event string, err error) Diagnostic {
	return Diagnostic{
		Kind:    CallbackFailed,
		Level:   slog.LevelError,
		Message: fmt.Sprintf("%s v%s failed to %s: %v", h.Name(), h.Version(), event, err),
		Err:     err,
	}
}
