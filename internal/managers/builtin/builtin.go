// Package builtin provides a plugin manager for plugins compiled into the
// host binary.
package builtin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vk/lamphost/internal/ctxlog"
	"github.com/vk/lamphost/internal/plugin"
)

// Definition pairs a descriptor with the constructor of its plugin.
type Definition struct {
	Descriptor plugin.Descriptor
	Factory    func() plugin.Plugin
}

// Manager serves a fixed set of compiled-in definitions.
type Manager struct {
	name string
	defs []Definition

	once    sync.Once
	handles []plugin.Handle
	err     error
}

var _ plugin.Manager = (*Manager)(nil)

// New creates a manager called name over defs. Nothing is instantiated until
// Discover runs.
func New(name string, defs ...Definition) *Manager {
	return &Manager{name: name, defs: defs}
}

func (m *Manager) Name() string { return m.name }

// Discover instantiates every definition once. An invalid definition or a
// nil factory result produces an Unloaded record and is reported in the
// returned error; the remaining definitions still load. Later calls return
// the first result.
func (m *Manager) Discover(ctx context.Context) error {
	m.once.Do(func() {
		logger := ctxlog.FromContext(ctx).With("manager", m.name)
		var errs []error
		for _, def := range m.defs {
			if err := def.Descriptor.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("builtin definition: %w", err))
				continue
			}

			var instance plugin.Plugin
			if def.Factory != nil {
				instance = def.Factory()
			}
			if instance == nil {
				errs = append(errs, fmt.Errorf("plugin %q has no factory", def.Descriptor.Name))
			}
			m.handles = append(m.handles, plugin.NewRecord(def.Descriptor, m, instance))
			logger.Debug("Registered builtin plugin.", "plugin", def.Descriptor.Name, "version", def.Descriptor.Version)
		}
		m.err = errors.Join(errs...)
	})
	return m.err
}

func (m *Manager) Handles() []plugin.Handle {
	out := make([]plugin.Handle, len(m.handles))
	copy(out, m.handles)
	return out
}
