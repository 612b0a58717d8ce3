package core

// StateKeyMessages is the reserved base-state field holding conversation
// history. It is always present, always public, and merges by appending.
const StateKeyMessages = "messages"

// FieldSpec declares one custom state field contributed by a middleware
// schema: its seed value and whether it is visible in the invocation output.
//
// Visibility is an explicit flag. It is never inferred from the field name.
type FieldSpec struct {
	// Default seeds the field at invocation start when the caller's input
	// does not supply a value.
	Default any
	// Private fields are retained for the full invocation but stripped from
	// the value returned to the caller.
	Private bool
}

// StateSchema maps custom field names to their declarations. Field names must
// be globally unique across all middleware registered on one agent; a
// collision is a ConfigError detected at construction time.
type StateSchema map[string]FieldSpec
