package testutil

import (
	"context"
	"errors"

	"github.com/vk/lamphost/internal/plugin"
)

// Spec describes one fake plugin for StaticManager.
type Spec struct {
	Name       string
	Version    string
	Depend     []string
	SoftDepend []string
	// Unloaded creates the record without an instance.
	Unloaded   bool
	// Plugin overrides the FakePlugin the manager would build.
	Plugin     *FakePlugin
}

// StaticManager is a plugin.Manager over a fixed list of specs. Discover
// builds the records; before Discover the manager has no handles.
type StaticManager struct {
	ManagerName  string
	Specs        []Spec
	Journal      *Journal
	DiscoverErr  error
	handles      []plugin.Handle
	plugins      map[string]*FakePlugin
	discoverRuns int
}

var _ plugin.Manager = (*StaticManager)(nil)

// NewStaticManager creates a manager and discovers its specs right away, which
// is what most engine tests want.
func NewStaticManager(name string, journal *Journal, specs ...Spec) *StaticManager {
	m := &StaticManager{ManagerName: name, Specs: specs, Journal: journal}
	_ = m.Discover(context.Background())
	return m
}

func (m *StaticManager) Name() string { return m.ManagerName }

// Discover builds one record per spec. Calling it again rebuilds nothing.
func (m *StaticManager) Discover(context.Context) error {
	m.discoverRuns++
	if m.handles != nil {
		return m.DiscoverErr
	}
	if m.DiscoverErr != nil && errors.Is(m.DiscoverErr, ErrDiscoverNothing) {
		return m.DiscoverErr
	}

	m.plugins = make(map[string]*FakePlugin)
	m.handles = make([]plugin.Handle, 0, len(m.Specs))
	for _, s := range m.Specs {
		desc := plugin.Descriptor{
			Name:       s.Name,
			Version:    s.Version,
			Depend:     s.Depend,
			SoftDepend: s.SoftDepend,
		}
		if desc.Version == "" {
			desc.Version = "1.0"
		}

		var instance plugin.Plugin
		if !s.Unloaded {
			p := s.Plugin
			if p == nil {
				p = &FakePlugin{}
			}
			p.Name = s.Name
			if p.Journal == nil {
				p.Journal = m.Journal
			}
			m.plugins[s.Name] = p
			instance = p
		}
		m.handles = append(m.handles, plugin.NewRecord(desc, m, instance))
	}
	return m.DiscoverErr
}

func (m *StaticManager) Handles() []plugin.Handle {
	out := make([]plugin.Handle, len(m.handles))
	copy(out, m.handles)
	return out
}

// Plugin returns the fake behind name.
func (m *StaticManager) Plugin(name string) *FakePlugin {
	return m.plugins[name]
}

// DiscoverRuns reports how many times Discover was called.
func (m *StaticManager) DiscoverRuns() int {
	return m.discoverRuns
}

// ErrDiscoverNothing makes Discover fail before building any handle.
var ErrDiscoverNothing = errors.New("discovery failed before producing handles")
