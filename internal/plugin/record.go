package plugin

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// Descriptor is the static identity of a plugin as declared by its author.
type Descriptor struct {
	Name        string
	Version     string
	Description string
	Authors     []string
	Depend      []string
	SoftDepend  []string
	Metadata    map[string]string
}

// Validate checks the fields every manager relies on.
func (d *Descriptor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("plugin name must not be empty")
	}
	return nil
}

// Record is the reference Handle. It is not safe for concurrent use; the
// engine mutates it from a single control thread.
type Record struct {
	desc     Descriptor
	state    State
	manager  Manager
	instance Plugin
}

var _ Handle = (*Record)(nil)

// NewRecord builds a handle for desc owned by mgr. A nil instance yields an
// Unloaded record that can never progress.
func NewRecord(desc Descriptor, mgr Manager, instance Plugin) *Record {
	state := Loaded
	if instance == nil {
		state = Unloaded
	}
	return &Record{
		desc:     desc,
		state:    state,
		manager:  mgr,
		instance: instance,
	}
}

func (r *Record) Name() string { return r.desc.Name }
func (r *Record) Version() string { return r.desc.Version }
func (r *Record) State() State { return r.state }
func (r *Record) SetState(s State) { r.state = s }
func (r *Record) Manager() Manager { return r.manager }
func (r *Record) Instance() Plugin { return r.instance }
func (r *Record) Descriptor() Descriptor { return r.desc }

// Dependencies returns a copy of the hard dependency list.
func (r *Record) Dependencies() []string { return slices.Clone(r.desc.Depend) }

// SoftDependencies returns a copy of the soft dependency list.
func (r *Record) SoftDependencies() []string { return slices.Clone(r.desc.SoftDepend) }

func (r *Record) DependsOn(name string) bool { return containsFold(r.desc.Depend, name) }
func (r *Record) SoftDependsOn(name string) bool { return containsFold(r.desc.SoftDepend, name) }

func (r *Record) OnInitialize(ctx context.Context) error {
	if r.instance == nil {
		return errNoInstance(r.desc.Name)
	}
	return r.instance.OnInitialize(ctx)
}

func (r *Record) OnEnable(ctx context.Context) error {
	if r.instance == nil {
		return errNoInstance(r.desc.Name)
	}
	return r.instance.OnEnable(ctx)
}

func (r *Record) OnDisable(ctx context.Context) error {
	if r.instance == nil {
		return errNoInstance(r.desc.Name)
	}
	return r.instance.OnDisable(ctx)
}

func errNoInstance(name string) error {
	return fmt.Errorf("plugin %q has no instance", name)
}

func containsFold(names []string, name string) bool {
	return slices.ContainsFunc(names, func(n string) bool {
		return strings.EqualFold(n, name)
	})
}

// SameName reports whether two plugin names refer to the same plugin.
func SameName(a, b string) bool {
	return strings.EqualFold(a, b)
}
