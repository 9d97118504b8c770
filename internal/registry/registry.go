package registry

import (
	"strings"

	"github.com/vk/lamphost/internal/dag"
	"github.com/vk/lamphost/internal/plugin"
)

// Registry holds the managers of a single host instance, in registration order.
type Registry struct {
	managers []plugin.Manager
}

// New creates a registry over the given managers.
func New(managers ...plugin.Manager) *Registry {
	r := &Registry{}
	for _, m := range managers {
		r.Add(m)
	}
	return r
}

// Add appends a manager. Registering the same manager twice panics; it is a
// wiring mistake in the host, not a plugin fault.
func (r *Registry) Add(m plugin.Manager) {
	for _, existing := range r.managers {
		if existing == m || strings.EqualFold(existing.Name(), m.Name()) {
			panic("registry: manager '" + m.Name() + "' already registered")
		}
	}
	r.managers = append(r.managers, m)
}

// Managers returns the registered managers in registration order.
func (r *Registry) Managers() []plugin.Manager {
	out := make([]plugin.Manager, len(r.managers))
	copy(out, r.managers)
	return out
}

// Handles returns every handle across all managers: manager order first,
// then each manager's handle order.
func (r *Registry) Handles() []plugin.Handle {
	var out []plugin.Handle
	for _, m := range r.managers {
		out = append(out, m.Handles()...)
	}
	return out
}

// FindHandle returns the first handle whose name matches, ignoring case.
func (r *Registry) FindHandle(name string) (plugin.Handle, bool) {
	for _, m := range r.managers {
		for _, h := range m.Handles() {
			if plugin.SameName(h.Name(), name) {
				return h, true
			}
		}
	}
	return nil, false
}

// FindPlugin returns the plugin instance behind name.
func (r *Registry) FindPlugin(name string) (plugin.Plugin, bool) {
	h, ok := r.FindHandle(name)
	if !ok || h.Instance() == nil {
		return nil, false
	}
	return h.Instance(), true
}

// FindManager returns the manager that produced name.
func (r *Registry) FindManager(name string) (plugin.Manager, bool) {
	h, ok := r.FindHandle(name)
	if !ok {
		return nil, false
	}
	return h.Manager(), true
}

// Dependents returns every handle that hard-depends on name, excluding the
// handle called name itself.
func (r *Registry) Dependents(name string) []plugin.Handle {
	var out []plugin.Handle
	for _, h := range r.Handles() {
		if plugin.SameName(h.Name(), name) {
			continue
		}
		if h.DependsOn(name) {
			out = append(out, h)
		}
	}
	return out
}

// Duplicates returns the handles shadowed by an earlier handle with the same
// name. They are unreachable through FindHandle.
func (r *Registry) Duplicates() []plugin.Handle {
	seen := make(map[string]struct{})
	var out []plugin.Handle
	for _, h := range r.Handles() {
		key := strings.ToLower(h.Name())
		if _, ok := seen[key]; ok {
			out = append(out, h)
			continue
		}
		seen[key] = struct{}{}
	}
	return out
}

// Graph builds the dependency graph over the reachable handles. Both hard and
// soft edges are included; unknown names and self references are left out
// because they are reported on their own.
func (r *Registry) Graph() *dag.Graph {
	g := dag.New()
	var reachable []plugin.Handle
	for _, h := range r.Handles() {
		if canonical, _ := r.FindHandle(h.Name()); canonical != h {
			continue
		}
		g.AddNode(h.Name())
		reachable = append(reachable, h)
	}

	for _, h := range reachable {
		names := append(h.Dependencies(), h.SoftDependencies()...)
		for _, name := range names {
			dep, ok := r.FindHandle(name)
			if !ok || dep == h {
				continue
			}
			// Both names are nodes and differ, so AddEdge cannot fail.
			_ = g.AddEdge(dep.Name(), h.Name())
		}
	}
	return g
}
