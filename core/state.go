package core

import "fmt"

// StateView is a point-in-time snapshot of agent state handed to hooks.
// Hooks read from the view and return updates through a HookResult; writing
// to the view has no effect on canonical state.
type StateView map[string]any

// Messages returns the conversation history contained in the view.
func (v StateView) Messages() []Message {
	msgs, _ := v[StateKeyMessages].([]Message)
	return msgs
}

// SchemaDecl binds a middleware name to the state schema it contributes.
type SchemaDecl struct {
	Owner  string
	Schema StateSchema
}

// SchemaSet is the validated union of all schema declarations registered on
// one agent. It is built once at agent construction and shared, read-only,
// by every invocation.
type SchemaSet struct {
	specs map[string]FieldSpec
	owner map[string]string
}

// NewSchemaSet merges the given declarations, rejecting collisions with the
// reserved messages field and between middlewares. Detection happens here,
// at registration, not at runtime.
func NewSchemaSet(decls ...SchemaDecl) (*SchemaSet, error) {
	s := &SchemaSet{
		specs: map[string]FieldSpec{},
		owner: map[string]string{},
	}
	for _, d := range decls {
		for name, spec := range d.Schema {
			if name == StateKeyMessages {
				return nil, Configf("middleware %q redeclares reserved state field %q", d.Owner, StateKeyMessages)
			}
			if prev, ok := s.owner[name]; ok {
				return nil, Configf("state field %q declared by both %q and %q", name, prev, d.Owner)
			}
			s.specs[name] = spec
			s.owner[name] = d.Owner
		}
	}
	return s, nil
}

// NewStore seeds a fresh per-invocation StateStore from the caller's input.
// Input must contain the messages field; custom fields must be declared by a
// registered schema, unknown fields are rejected. Declared fields absent from
// the input are seeded with their schema defaults.
func (s *SchemaSet) NewStore(input map[string]any) (*StateStore, error) {
	rawMsgs, ok := input[StateKeyMessages]
	if !ok {
		return nil, fmt.Errorf("invocation input missing required field %q", StateKeyMessages)
	}
	msgs, ok := rawMsgs.([]Message)
	if !ok {
		return nil, fmt.Errorf("invocation input field %q must be []core.Message, got %T", StateKeyMessages, rawMsgs)
	}

	store := &StateStore{
		schemas:  s,
		messages: CopyMessages(msgs),
		fields:   map[string]any{},
	}
	for name, spec := range s.specs {
		store.fields[name] = spec.Default
	}
	for name, value := range input {
		if name == StateKeyMessages {
			continue
		}
		if _, declared := s.specs[name]; !declared {
			return nil, fmt.Errorf("invocation input contains unknown field %q", name)
		}
		store.fields[name] = value
	}
	return store, nil
}

// StateStore owns the canonical agent state of a single invocation. All
// mutations flow through Merge and AppendMessages; no other component writes
// state directly. A store belongs to exactly one invocation and is not
// shared between goroutines, so it carries no locking.
type StateStore struct {
	schemas  *SchemaSet
	messages []Message
	fields   map[string]any
}

// Messages returns a copy of the conversation history.
func (st *StateStore) Messages() []Message { return CopyMessages(st.messages) }

// Get returns the value of a custom state field.
func (st *StateStore) Get(name string) (any, bool) {
	v, ok := st.fields[name]
	return v, ok
}

// AppendMessages extends conversation history. Used by the agent loop for
// model output and tool results.
func (st *StateStore) AppendMessages(msgs ...Message) {
	st.messages = append(st.messages, msgs...)
}

// Snapshot produces the read-only view handed to hooks. The message slice is
// copied so a hook holding the view cannot observe later appends.
func (st *StateStore) Snapshot() StateView {
	view := make(StateView, len(st.fields)+1)
	view[StateKeyMessages] = CopyMessages(st.messages)
	for k, v := range st.fields {
		view[k] = v
	}
	return view
}

// Merge applies a hook's partial update on behalf of the middleware named
// owner. The messages field appends; every other field is last-write-wins.
// Writing a field outside the owner's declared schema (or the base schema)
// is a ConfigError surfaced at the first offending merge.
func (st *StateStore) Merge(owner string, update map[string]any) error {
	if len(update) == 0 {
		return nil
	}
	// Validate the whole update before mutating anything so a rejected merge
	// leaves zero state changes behind.
	for name, value := range update {
		if name == StateKeyMessages {
			if _, ok := value.([]Message); !ok {
				return Configf("middleware %q set %q to %T, want []core.Message", owner, StateKeyMessages, value)
			}
			continue
		}
		declaredBy, declared := st.schemas.owner[name]
		if !declared {
			return Configf("middleware %q set undeclared state field %q", owner, name)
		}
		if declaredBy != owner {
			return Configf("middleware %q set field %q declared by %q", owner, name, declaredBy)
		}
	}
	for name, value := range update {
		if name == StateKeyMessages {
			st.messages = append(st.messages, value.([]Message)...)
			continue
		}
		st.fields[name] = value
	}
	return nil
}

// Public projects the final invocation output: conversation history plus all
// custom fields not declared private. Private fields never appear in the
// returned mapping.
func (st *StateStore) Public() map[string]any {
	out := map[string]any{StateKeyMessages: CopyMessages(st.messages)}
	for name, value := range st.fields {
		if st.schemas.specs[name].Private {
			continue
		}
		out[name] = value
	}
	return out
}
