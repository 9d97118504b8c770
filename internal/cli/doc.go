// Package cli is responsible for the command tree, translating flags into
// the host configuration, rendering command output, and mapping failures to
// exit codes.
package cli
