// Package manager is the driver-facing facade of the autofill engine.
//
// The page driver reports what it sees (forms, focus, typing, script
// changes, submission) and the Manager answers with suggestions and field
// writes. It owns the form cache and per-form session state, and applies
// the side effects the pure components only describe: usage updates, undo
// entries, refill scheduling, field log events and metrics.
//
// Calls are serialized by one mutex, which is also taken by refill timers
// when they fire, so every operation observes a consistent form cache.
package manager
