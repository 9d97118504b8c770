package plugin

import "fmt"

// State is a plugin's position in the lifecycle.
type State int32

const (
	// Unloaded means the plugin was discovered but could not be instantiated.
	Unloaded State = iota
	// Loaded means the plugin is instantiated and waiting for initialization.
	Loaded
	// Initialized means OnInitialize ran successfully.
	Initialized
	// Enabled means OnEnable ran successfully and the plugin is live.
	Enabled
	// Disabled means the plugin was enabled once, or failed to enable.
	Disabled
)

var stateNames = [...]string{
	Unloaded:    "unloaded",
	Loaded:      "loaded",
	Initialized: "initialized",
	Enabled:     "enabled",
	Disabled:    "disabled",
}

// String implements fmt.Stringer.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int32(s))
	}
	return stateNames[s]
}

// Initialized reports whether the plugin has been through OnInitialize. A
// disabled plugin counts as initialized so it can be enabled again.
func (s State) Initialized() bool {
	return s == Initialized || s == Enabled || s == Disabled
}

// Enableable reports whether Enable may act on a plugin in this state.
func (s State) Enableable() bool {
	return s == Initialized || s == Disabled
}

// MarshalText renders the state by name so snapshots serialize readably.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
