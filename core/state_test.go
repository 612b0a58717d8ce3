package core

import "testing"

func newTestSchemaSet(t *testing.T, decls ...SchemaDecl) *SchemaSet {
	t.Helper()
	s, err := NewSchemaSet(decls...)
	if err != nil {
		t.Fatalf("NewSchemaSet: %v", err)
	}
	return s
}

func TestSchemaSet_RejectsReservedField(t *testing.T) {
	_, err := NewSchemaSet(SchemaDecl{
		Owner:  "bad",
		Schema: StateSchema{StateKeyMessages: {}},
	})
	if err == nil {
		t.Fatal("expected error for reserved messages field")
	}
	if _, ok := err.(*ConfigError); !ok {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
}

func TestSchemaSet_RejectsCrossMiddlewareCollision(t *testing.T) {
	_, err := NewSchemaSet(
		SchemaDecl{Owner: "first", Schema: StateSchema{"mood": {}}},
		SchemaDecl{Owner: "second", Schema: StateSchema{"mood": {}}},
	)
	if err == nil {
		t.Fatal("expected error for colliding field declarations")
	}
}

func TestNewStore_SeedsDefaultsAndValidatesInput(t *testing.T) {
	s := newTestSchemaSet(t, SchemaDecl{
		Owner:  "mw",
		Schema: StateSchema{"mood": {Default: "neutral"}},
	})

	if _, err := s.NewStore(map[string]any{}); err == nil {
		t.Error("expected error when messages field is missing")
	}
	if _, err := s.NewStore(map[string]any{StateKeyMessages: "nope"}); err == nil {
		t.Error("expected error when messages field has wrong type")
	}
	if _, err := s.NewStore(map[string]any{
		StateKeyMessages: []Message{},
		"unknown":        1,
	}); err == nil {
		t.Error("expected error for unknown input field")
	}

	store, err := s.NewStore(map[string]any{StateKeyMessages: []Message{NewUserMessage("hi")}})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if v, ok := store.Get("mood"); !ok || v != "neutral" {
		t.Errorf("default not seeded, got %v", v)
	}

	store2, err := s.NewStore(map[string]any{
		StateKeyMessages: []Message{},
		"mood":           "upbeat",
	})
	if err != nil {
		t.Fatalf("NewStore with override: %v", err)
	}
	if v, _ := store2.Get("mood"); v != "upbeat" {
		t.Errorf("input should override default, got %v", v)
	}
}

func TestStateStore_MergeLastWriteWins(t *testing.T) {
	s := newTestSchemaSet(t, SchemaDecl{Owner: "mw", Schema: StateSchema{"mood": {}}})
	store, _ := s.NewStore(map[string]any{StateKeyMessages: []Message{}})

	if err := store.Merge("mw", map[string]any{"mood": "first"}); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if err := store.Merge("mw", map[string]any{"mood": "second"}); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if v, _ := store.Get("mood"); v != "second" {
		t.Errorf("expected last write to win, got %v", v)
	}
}

func TestStateStore_MergeAppendsMessages(t *testing.T) {
	s := newTestSchemaSet(t)
	store, _ := s.NewStore(map[string]any{StateKeyMessages: []Message{NewUserMessage("one")}})

	err := store.Merge("mw", map[string]any{
		StateKeyMessages: []Message{NewAssistantMessage("two"), NewAssistantMessage("three")},
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	msgs := store.Messages()
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[0].Content != "one" || msgs[1].Content != "two" || msgs[2].Content != "three" {
		t.Errorf("append order violated: %+v", msgs)
	}
}

func TestStateStore_DisjointMergesCommute(t *testing.T) {
	decls := []SchemaDecl{
		{Owner: "alpha", Schema: StateSchema{"mood": {}}},
		{Owner: "beta", Schema: StateSchema{"count": {Default: 0}}},
	}
	a := map[string]any{"mood": "upbeat"}
	b := map[string]any{"count": 9}

	s1 := newTestSchemaSet(t, decls...)
	first, _ := s1.NewStore(map[string]any{StateKeyMessages: []Message{}})
	if err := first.Merge("alpha", a); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if err := first.Merge("beta", b); err != nil {
		t.Fatalf("merge: %v", err)
	}

	s2 := newTestSchemaSet(t, decls...)
	second, _ := s2.NewStore(map[string]any{StateKeyMessages: []Message{}})
	if err := second.Merge("beta", b); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if err := second.Merge("alpha", a); err != nil {
		t.Fatalf("merge: %v", err)
	}

	for _, field := range []string{"mood", "count"} {
		v1, _ := first.Get(field)
		v2, _ := second.Get(field)
		if v1 != v2 {
			t.Errorf("disjoint merges must commute, %s: %v vs %v", field, v1, v2)
		}
	}
}

func TestStateStore_MessageAppendsAreOrderSensitive(t *testing.T) {
	a := NewAssistantMessage("a")
	b := NewAssistantMessage("b")

	s1 := newTestSchemaSet(t)
	first, _ := s1.NewStore(map[string]any{StateKeyMessages: []Message{}})
	_ = first.Merge("mw", map[string]any{StateKeyMessages: []Message{a}})
	_ = first.Merge("mw", map[string]any{StateKeyMessages: []Message{b}})

	s2 := newTestSchemaSet(t)
	second, _ := s2.NewStore(map[string]any{StateKeyMessages: []Message{}})
	_ = second.Merge("mw", map[string]any{StateKeyMessages: []Message{b}})
	_ = second.Merge("mw", map[string]any{StateKeyMessages: []Message{a}})

	m1, m2 := first.Messages(), second.Messages()
	if m1[0].Content == m2[0].Content {
		t.Error("append order must be observable in final history")
	}
}

func TestStateStore_MergeRejectsForeignAndUndeclaredFields(t *testing.T) {
	s := newTestSchemaSet(t,
		SchemaDecl{Owner: "alpha", Schema: StateSchema{"mood": {}}},
		SchemaDecl{Owner: "beta", Schema: StateSchema{"count": {Default: 0}}},
	)
	store, _ := s.NewStore(map[string]any{StateKeyMessages: []Message{}})

	if err := store.Merge("alpha", map[string]any{"count": 7}); err == nil {
		t.Error("expected error writing another middleware's field")
	}
	if err := store.Merge("alpha", map[string]any{"ghost": 1}); err == nil {
		t.Error("expected error writing undeclared field")
	}
}

func TestStateStore_RejectedMergeMutatesNothing(t *testing.T) {
	s := newTestSchemaSet(t, SchemaDecl{Owner: "mw", Schema: StateSchema{"mood": {Default: "calm"}}})
	store, _ := s.NewStore(map[string]any{StateKeyMessages: []Message{}})

	err := store.Merge("mw", map[string]any{
		"mood":  "angry",
		"ghost": true,
	})
	if err == nil {
		t.Fatal("expected merge rejection")
	}
	if v, _ := store.Get("mood"); v != "calm" {
		t.Errorf("rejected merge must not apply any field, mood = %v", v)
	}
	if len(store.Messages()) != 0 {
		t.Error("rejected merge must not touch history")
	}
}

func TestStateStore_SnapshotIsIsolated(t *testing.T) {
	s := newTestSchemaSet(t)
	store, _ := s.NewStore(map[string]any{StateKeyMessages: []Message{NewUserMessage("hi")}})

	view := store.Snapshot()
	store.AppendMessages(NewAssistantMessage("later"))

	if n := len(view.Messages()); n != 1 {
		t.Errorf("snapshot should not observe later appends, got %d messages", n)
	}
}

func TestStateStore_PublicStripsPrivateFields(t *testing.T) {
	s := newTestSchemaSet(t, SchemaDecl{
		Owner: "mw",
		Schema: StateSchema{
			"visible": {Default: "yes"},
			"hidden":  {Default: 42, Private: true},
		},
	})
	store, _ := s.NewStore(map[string]any{StateKeyMessages: []Message{}})

	out := store.Public()
	if _, ok := out["hidden"]; ok {
		t.Error("private field leaked into public output")
	}
	if out["visible"] != "yes" {
		t.Errorf("public field missing, got %v", out["visible"])
	}
	if _, ok := out[StateKeyMessages]; !ok {
		t.Error("messages must always be public")
	}
}
