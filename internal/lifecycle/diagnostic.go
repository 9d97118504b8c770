package lifecycle

import (
	"context"
	"log/slog"
	"sync"
)

// Kind classifies a diagnostic.
type Kind string

const (
	MissingHardDependency      Kind = "missing_hard_dependency"
	MissingStateForEnable      Kind = "missing_state_for_enable"
	SelfDependency             Kind = "self_dependency"
	MutualDependency           Kind = "mutual_dependency"
	CircularDependency         Kind = "circular_dependency"
	UnresolvableSoftDependency Kind = "unresolvable_soft_dependency"
	CallbackFailed             Kind = "callback_failed"
	DuplicatePlugin            Kind = "duplicate_plugin"
	DiscoveryFailed            Kind = "discovery_failed"
	DependencyChainTooDeep     Kind = "dependency_chain_too_deep"
)

// Diagnostic is one problem found while driving the lifecycle.
type Diagnostic struct {
	Kind    Kind
	Level   slog.Level
	Plugin  string
	Version string
	// Dependency is the dependency name involved, if any.
	Dependency string
	// Path is the dependency chain of a cycle, first and last entries equal.
	Path    []string
	Message string
	Err     error
}

// Reporter receives every diagnostic the engine emits, after it is logged.
type Reporter interface {
	Report(ctx context.Context, d Diagnostic)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ctx context.Context, d Diagnostic)

func (f ReporterFunc) Report(ctx context.Context, d Diagnostic) { f(ctx, d) }

// Recorder keeps diagnostics in memory.
type Recorder struct {
	mu    sync.Mutex
	diags []Diagnostic
}

func (r *Recorder) Report(_ context.Context, d Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diags = append(r.diags, d)
}

// Diagnostics returns everything recorded so far, in report order.
func (r *Recorder) Diagnostics() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Diagnostic, len(r.diags))
	copy(out, r.diags)
	return out
}

// ByKind returns the recorded diagnostics of one kind.
func (r *Recorder) ByKind(kind Kind) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics() {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// AtLeast returns the recorded diagnostics at or above level.
func (r *Recorder) AtLeast(level slog.Level) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics() {
		if d.Level >= level {
			out = append(out, d)
		}
	}
	return out
}

// Reset drops everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diags = nil
}
