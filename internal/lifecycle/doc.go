// Package lifecycle is the orchestrator that brings every registered plugin
// through load, initialize, enable and disable.
//
// Ordering is resolved dynamically: the batch drivers walk handles in
// registration order and each transition recurses into the handles it depends
// on. Every walk tracks the chain of handles it is currently resolving, which
// catches dependency cycles of any length; the two-plugin case keeps its own
// diagnostic because it is by far the most common authoring mistake.
//
// Dependency problems are never returned as errors. They are reported as
// Diagnostics (logged through ctxlog and fanned out to Reporters) and leave
// the affected handle in a safe terminal state: Loaded when initialization
// fails, Disabled when enabling fails. Callers observe the outcome by reading
// each handle's State after the call.
//
// An Engine is not safe for concurrent use. Hosts drive it from one control
// thread and must not run discovery while a pass is in progress.
package lifecycle
