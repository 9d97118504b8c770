// Package dag models the dependency relation between plugins as a directed
// graph and finds cycles of any length in it.
//
// The lifecycle engine resolves dependencies lazily while it walks the
// registry; this package backs the read-only analysis that runs ahead of a
// walk (the `check` command) and reports every cycle with its full path.
package dag
