// Package disk provides a plugin manager that reads plugin.hcl manifests
// from a directory tree and binds each one to a compiled entrypoint.
package disk

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/vk/lamphost/internal/ctxlog"
	"github.com/vk/lamphost/internal/fsutil"
	"github.com/vk/lamphost/internal/manifest"
	"github.com/vk/lamphost/internal/plugin"
)

// ManagerName is the name the disk manager registers under.
const ManagerName = "disk"

// Factory builds the plugin for a decoded manifest.
type Factory func(desc plugin.Descriptor) plugin.Plugin

// Factories maps a manifest's main entrypoint to its Factory.
type Factories map[string]Factory

// Manager discovers plugins below a root directory.
type Manager struct {
	root      string
	factories Factories

	discovered bool
	handles    []plugin.Handle
}

var _ plugin.Manager = (*Manager)(nil)

// New creates a manager over root.
func New(root string, factories Factories) *Manager {
	return &Manager{root: root, factories: factories}
}

func (m *Manager) Name() string { return ManagerName }

// Root returns the directory the manager scans.
func (m *Manager) Root() string { return m.root }

// Discover scans the root for manifests. A missing root yields no plugins. A
// malformed manifest aborts discovery. An entrypoint with no registered
// factory yields an Unloaded record and is reported in the returned error.
// Discover scans at most once.
func (m *Manager) Discover(ctx context.Context) error {
	if m.discovered {
		return nil
	}
	m.discovered = true
	logger := ctxlog.FromContext(ctx).With("manager", ManagerName, "root", m.root)

	if m.root == "" {
		logger.Debug("No plugins path configured, skipping disk discovery.")
		return nil
	}
	if _, err := os.Stat(m.root); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("Plugins path does not exist, skipping disk discovery.")
			return nil
		}
		return fmt.Errorf("error accessing plugins path %s: %w", m.root, err)
	}

	files, err := fsutil.FindFilesByName(m.root, manifest.FileName)
	if err != nil {
		return fmt.Errorf("failed to scan plugins path %s: %w", m.root, err)
	}
	logger.Debug("Discovered plugin manifests.", "count", len(files))

	var errs []error
	for _, file := range files {
		manifests, err := manifest.Load(ctx, file)
		if err != nil {
			return err
		}
		for _, mf := range manifests {
			var instance plugin.Plugin
			if factory, ok := m.factories[mf.Main]; ok && factory != nil {
				instance = factory(mf.Descriptor)
			}
			if instance == nil {
				errs = append(errs, fmt.Errorf("%s: plugin %q has unknown entrypoint %q", mf.Filename, mf.Descriptor.Name, mf.Main))
			}
			m.handles = append(m.handles, plugin.NewRecord(mf.Descriptor, m, instance))
			logger.Debug("Registered disk plugin.", "plugin", mf.Descriptor.Name, "main", mf.Main)
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) Handles() []plugin.Handle {
	out := make([]plugin.Handle, len(m.handles))
	copy(out, m.handles)
	return out
}
