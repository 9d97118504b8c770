// Package registry provides the central "glue" for the plugin system.
//
// The Registry owns every discovery Manager and answers the one question the
// lifecycle engine keeps asking: which handle does this dependency name refer
// to? Names are the join key across dependency references and compare
// case-insensitively; when two managers produce the same name the first
// registered handle wins and the later ones are reported by Duplicates.
//
// The registry is an explicit value handed to the engine, never process-wide
// state, so tests and hosts can run several isolated registries side by side.
package registry
