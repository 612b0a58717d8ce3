// Package core contains the shared data model of the agentware runtime:
// messages, agent state and its schema, hook results, loop phases and jump
// directives, invocation scope and the typed error kinds used across packages.
//
// Everything in this package is transport and provider agnostic. Model and
// tool collaborators live in their own packages and depend on core, never the
// other way around.
package core
