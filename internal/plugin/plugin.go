package plugin

import "context"

// Plugin is the behaviour a loaded plugin exposes to the host. The context
// carries the host logger; lifecycle passes never cancel it.
type Plugin interface {
	OnInitialize(ctx context.Context) error
	OnEnable(ctx context.Context) error
	OnDisable(ctx context.Context) error
}

// Handle is the capability set the lifecycle engine consumes per plugin.
type Handle interface {
	Name() string
	Version() string
	State() State
	SetState(s State)

	// Dependencies returns the ordered hard dependency names.
	Dependencies() []string
	// SoftDependencies returns the ordered soft dependency names.
	SoftDependencies() []string
	// DependsOn reports whether name is a hard dependency (case-insensitive).
	DependsOn(name string) bool
	// SoftDependsOn reports whether name is a soft dependency (case-insensitive).
	SoftDependsOn(name string) bool

	OnInitialize(ctx context.Context) error
	OnEnable(ctx context.Context) error
	OnDisable(ctx context.Context) error

	Manager() Manager
	Instance() Plugin
}

// Manager is a discovery source. Discover populates the handle set once;
// Handles returns it in registration order.
type Manager interface {
	Name() string
	Discover(ctx context.Context) error
	Handles() []Handle
}
