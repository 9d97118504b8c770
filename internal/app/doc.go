// Package app contains the core application logic. It wires the
// configuration, logger, plugin managers, lifecycle engine, diagnostics relay
// and health server together, decoupled from any specific entrypoint like a
// CLI.
package app
