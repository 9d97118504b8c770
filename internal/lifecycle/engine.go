package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/vk/lamphost/internal/ctxlog"
	"github.com/vk/lamphost/internal/plugin"
	"github.com/vk/lamphost/internal/registry"
)

// DefaultMaxDepth bounds how deep a single transition may recurse.
const DefaultMaxDepth = 64

// Engine drives the handles of one registry through their lifecycle.
type Engine struct {
	registry  *registry.Registry
	reporters []Reporter
	maxDepth  int
}

// Option configures an Engine.
type Option func(*Engine)

// WithReporter adds a sink that receives every diagnostic.
func WithReporter(r Reporter) Option {
	return func(e *Engine) {
		if r != nil {
			e.reporters = append(e.reporters, r)
		}
	}
}

// WithMaxDepth sets the recursion guard. Values below 1 are ignored.
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		if n >= 1 {
			e.maxDepth = n
		}
	}
}

// New creates an engine over reg.
func New(reg *registry.Registry, opts ...Option) *Engine {
	e := &Engine{registry: reg, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the registry the engine drives.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// LoadAll asks every manager to discover its plugins, then shadows duplicate
// names. A failing manager is reported and the others still load.
func (e *Engine) LoadAll(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Loading plugins...", "managers", len(e.registry.Managers()))

	for _, m := range e.registry.Managers() {
		if err := m.Discover(ctx); err != nil {
			e.report(ctx, Diagnostic{
				Kind:    DiscoveryFailed,
				Level:   slog.LevelError,
				Message: fmt.Sprintf("manager %s failed to discover plugins: %v", m.Name(), err),
				Err:     err,
			})
		}
		logger.Debug("Manager discovery finished.", "manager", m.Name(), "plugins", len(m.Handles()))
	}

	for _, dup := range e.registry.Duplicates() {
		winner, _ := e.registry.FindHandle(dup.Name())
		e.report(ctx, Diagnostic{
			Kind:    DuplicatePlugin,
			Level:   slog.LevelWarn,
			Plugin:  dup.Name(),
			Version: dup.Version(),
			Message: fmt.Sprintf("%s v%s from %s is shadowed by %s v%s from %s and will not be loaded",
				dup.Name(), dup.Version(), managerName(dup), winner.Name(), winner.Version(), managerName(winner)),
		})
		dup.SetState(plugin.Unloaded)
	}

	logger.Info("Plugins loaded.", "count", len(e.registry.Handles()))
}

// InitAll initializes every handle in registration order. Walks cut short by
// the depth guard are retried once later entries have initialized part of
// their chain, so the outcome does not depend on registration order.
func (e *Engine) InitAll(ctx context.Context) {
	ctxlog.FromContext(ctx).Info("Initializing plugins...")
	cut := retryCut(e.registry.Handles(), func(h plugin.Handle) bool {
		return e.initRoot(ctx, h)
	})
	for _, h := range cut {
		e.fail(ctx, h, plugin.Loaded, tooDeep(h, e.maxDepth))
	}
}

// EnableAll enables every handle in registration order, retrying walks cut
// short by the depth guard the way InitAll does.
func (e *Engine) EnableAll(ctx context.Context) {
	ctxlog.FromContext(ctx).Info("Enabling plugins...")
	cut := retryCut(e.registry.Handles(), func(h plugin.Handle) bool {
		return e.enableRoot(ctx, h)
	})
	for _, h := range cut {
		e.fail(ctx, h, plugin.Disabled, tooDeep(h, e.maxDepth))
	}
}

// retryCut runs step over handles, then again over the ones it reported as
// cut short, until a round makes no progress. It returns the handles still
// cut short.
func retryCut(handles []plugin.Handle, step func(plugin.Handle) bool) []plugin.Handle {
	for len(handles) > 0 {
		var cut []plugin.Handle
		for _, h := range handles {
			if step(h) {
				cut = append(cut, h)
			}
		}
		if len(cut) == len(handles) {
			return cut
		}
		handles = cut
	}
	return nil
}

// DisableAll disables every enabled handle, dependents before dependencies.
func (e *Engine) DisableAll(ctx context.Context) {
	ctxlog.FromContext(ctx).Info("Disabling plugins...")
	for _, h := range e.registry.Handles() {
		e.Disable(ctx, h)
	}
}

// Status is a point-in-time view of one handle.
type Status struct {
	Name       string       `json:"name"`
	Version    string       `json:"version"`
	Manager    string       `json:"manager"`
	State      plugin.State `json:"state"`
	Depend     []string     `json:"depend,omitempty"`
	SoftDepend []string     `json:"softdepend,omitempty"`
}

// Snapshot returns the status of every handle in registration order.
func (e *Engine) Snapshot() []Status {
	handles := e.registry.Handles()
	out := make([]Status, 0, len(handles))
	for _, h := range handles {
		out = append(out, Status{
			Name:       h.Name(),
			Version:    h.Version(),
			Manager:    managerName(h),
			State:      h.State(),
			Depend:     h.Dependencies(),
			SoftDepend: h.SoftDependencies(),
		})
	}
	return out
}

func (e *Engine) report(ctx context.Context, d Diagnostic) {
	attrs := []any{"kind", string(d.Kind)}
	if d.Plugin != "" {
		attrs = append(attrs, "plugin", d.Plugin, "version", d.Version)
	}
	if d.Dependency != "" {
		attrs = append(attrs, "dependency", d.Dependency)
	}
	if len(d.Path) > 0 {
		attrs = append(attrs, "path", d.Path)
	}
	if d.Err != nil {
		attrs = append(attrs, "error", d.Err)
	}
	ctxlog.FromContext(ctx).Log(ctx, d.Level, d.Message, attrs...)

	for _, r := range e.reporters {
		r.Report(ctx, d)
	}
}

// fail reports d for h and forces h into state.
func (e *Engine) fail(ctx context.Context, h plugin.Handle, state plugin.State, d Diagnostic) {
	d.Plugin = h.Name()
	d.Version = h.Version()
	e.report(ctx, d)

	if prev := h.State(); prev != state {
		ctxlog.FromContext(ctx).Debug("Forcing plugin state.", "plugin", h.Name(), "from", prev.String(), "to", state.String())
	}
	h.SetState(state)
}

// invoke runs a callback of h with a logger scoped to h, turning a panic into
// an error.
func invoke(ctx context.Context, h plugin.Handle, fn func(context.Context) error) (err error) {
	ctx, _ = ctxlog.With(ctx, "plugin", h.Name())
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}

func managerName(h plugin.Handle) string {
	if h.Manager() == nil {
		return ""
	}
	return h.Manager().Name()
}

// walk is the chain of handles a single transition is currently resolving.
type walk struct {
	path []plugin.Handle
	// initialized lists the handles this walk brought to Initialized.
	initialized []plugin.Handle
	// truncated is set when the depth guard stopped the walk.
	truncated bool
}

func (w *walk) push(h plugin.Handle) { w.path = append(w.path, h) }
func (w *walk) pop() { w.path = w.path[:len(w.path)-1] }
func (w *walk) depth() int { return len(w.path) }

func (w *walk) index(h plugin.Handle) int {
	return slices.IndexFunc(w.path, func(p plugin.Handle) bool { return p == h })
}

// cycle returns the names from h's position on the chain back to h.
func (w *walk) cycle(h plugin.Handle) []string {
	idx := w.index(h)
	if idx < 0 {
		return nil
	}
	names := make([]string, 0, len(w.path)-idx+1)
	for _, p := range w.path[idx:] {
		names = append(names, p.Name())
	}
	return append(names, h.Name())
}
