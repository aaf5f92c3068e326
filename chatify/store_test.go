package chatify

import "testing"

func msg(id, content string) Message {
	return Message{ID: id, RoomID: "42", Content: content, Type: MessageTypeUser}
}

func assertOrder(t *testing.T, got []Message, ids ...string) {
	t.Helper()
	if len(got) != len(ids) {
		t.Fatalf("expected %d messages, got %d: %+v", len(ids), len(got), got)
	}
	for i, id := range ids {
		if got[i].ID != id {
			t.Fatalf("position %d: expected id %q, got %q", i, id, got[i].ID)
		}
	}
}

func TestLoadReversesHistoryPage(t *testing.T) {
	s := NewStore()
	// History pages arrive newest-first.
	s.Load("42", []Message{msg("m3", "three"), msg("m2", "two"), msg("m1", "one")})
	assertOrder(t, s.Snapshot("42"), "m1", "m2", "m3")
}

func TestLoadReplacesWholesale(t *testing.T) {
	s := NewStore()
	s.Load("42", []Message{msg("old", "x")})
	s.Load("42", []Message{msg("b", "2"), msg("a", "1")})
	assertOrder(t, s.Snapshot("42"), "a", "b")
}

func TestUpsertAppendsUnknownID(t *testing.T) {
	s := NewStore()
	if !s.Upsert("42", msg("a", "1")) {
		t.Fatal("expected append for unknown id")
	}
	if !s.Upsert("42", msg("b", "2")) {
		t.Fatal("expected append for unknown id")
	}
	assertOrder(t, s.Snapshot("42"), "a", "b")
}

func TestUpsertReplacesInPlace(t *testing.T) {
	s := NewStore()
	s.Upsert("42", msg("a", "1"))
	s.Upsert("42", msg("b", "2"))
	s.Upsert("42", msg("c", "3"))

	if s.Upsert("42", msg("b", "changed")) {
		t.Fatal("expected replace, not append")
	}
	got := s.Snapshot("42")
	assertOrder(t, got, "a", "b", "c")
	if got[1].Content != "changed" {
		t.Fatalf("expected replaced content, got %q", got[1].Content)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	s := NewStore()
	s.Upsert("42", msg("a", "1"))
	s.Upsert("42", msg("b", "2"))

	if !s.Remove("42", "a") {
		t.Fatal("expected removal of present id")
	}
	if s.Remove("42", "a") {
		t.Fatal("second remove must be a no-op")
	}
	if s.Remove("42", "never-seen") {
		t.Fatal("remove of unknown id must be a no-op")
	}
	assertOrder(t, s.Snapshot("42"), "b")
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewStore()
	s.Upsert("42", msg("a", "1"))
	snap := s.Snapshot("42")
	snap[0].Content = "mutated"
	if got, _ := s.Get("42", "a"); got.Content != "1" {
		t.Fatalf("store content changed through snapshot: %q", got.Content)
	}
}

func TestRoomsAreIndependent(t *testing.T) {
	s := NewStore()
	s.Upsert("42", msg("a", "1"))
	other := Message{ID: "a", RoomID: "7", Content: "other room"}
	s.Upsert("7", other)

	if s.Len("42") != 1 || s.Len("7") != 1 {
		t.Fatalf("expected one message per room, got %d and %d", s.Len("42"), s.Len("7"))
	}
	s.Remove("7", "a")
	if s.Len("42") != 1 {
		t.Fatal("removal in one room leaked into another")
	}
}

func TestDrop(t *testing.T) {
	s := NewStore()
	s.Upsert("42", msg("a", "1"))
	s.Drop("42")
	if s.Len("42") != 0 {
		t.Fatal("expected empty room after drop")
	}
}
