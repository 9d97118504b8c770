// Package plugin defines the records the lifecycle engine drives.
//
// A Handle is the lifecycle-bearing record for one discovered plugin: its
// identity, its current State, the names it depends on and the callbacks the
// engine fires on each transition. Handles are produced by a Manager (one per
// discovery source) and wrap the Plugin instance the host actually runs.
//
// The engine is polymorphic over the Handle capability set only. Record is the
// reference implementation used by every manager in this repository.
package plugin
