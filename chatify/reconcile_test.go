package chatify

import (
	"encoding/json"
	"testing"
)

// subscribedClient returns a client with roomID active and its three
// channel handles established, plus the handle id per event kind so
// tests can craft server frames.
func subscribedClient(t *testing.T, roomID string) (*Client, map[eventKind]string) {
	t.Helper()
	c := NewClient(DefaultConfig())
	c.subs.setActive(roomID)
	ids := make(map[eventKind]string)
	for _, f := range c.subs.establish() {
		sub, ok := c.subs.lookup(f.ID)
		if !ok {
			t.Fatalf("establish returned unregistered handle %q", f.ID)
		}
		ids[sub.kind] = f.ID
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 channel handles, got %d", len(ids))
	}
	return c, ids
}

func createdFrame(t *testing.T, subID string, m Message) Outbound {
	t.Helper()
	raw, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	return Outbound{Type: outboundMessage, Subscription: subID, Data: raw}
}

func editedFrame(t *testing.T, subID string, patch map[string]any) Outbound {
	t.Helper()
	raw, err := json.Marshal(patch)
	if err != nil {
		t.Fatal(err)
	}
	return Outbound{Type: outboundMessage, Subscription: subID, Data: raw}
}

func deletedFrame(subID, messageID string) Outbound {
	return Outbound{Type: outboundMessage, Subscription: subID, Data: json.RawMessage(messageID)}
}

func TestCreatedIsIdempotent(t *testing.T) {
	c, ids := subscribedClient(t, "42")
	created := 0
	c.OnMessageCreated(func(Message) { created++ })

	m := Message{ID: "a", RoomID: "42", Content: "hello"}
	c.handleFrame(createdFrame(t, ids[kindCreated], m))
	c.handleFrame(createdFrame(t, ids[kindCreated], m))

	assertOrder(t, c.Messages("42"), "a")
	if created != 1 {
		t.Fatalf("duplicate delivery fired callback %d times", created)
	}
}

func TestEditIsPositionalAndSetsEdited(t *testing.T) {
	c, ids := subscribedClient(t, "42")
	c.handleFrame(createdFrame(t, ids[kindCreated], Message{ID: "a", RoomID: "42", Content: "1"}))
	c.handleFrame(createdFrame(t, ids[kindCreated], Message{ID: "b", RoomID: "42", Content: "2"}))
	c.handleFrame(createdFrame(t, ids[kindCreated], Message{ID: "c", RoomID: "42", Content: "3"}))

	c.handleFrame(editedFrame(t, ids[kindEdited], map[string]any{"id": "b", "content": "x"}))

	got := c.Messages("42")
	assertOrder(t, got, "a", "b", "c")
	if got[1].Content != "x" {
		t.Fatalf("expected merged content %q, got %q", "x", got[1].Content)
	}
	if !got[1].Edited {
		t.Fatal("edit must set edited=true")
	}
	if got[0].Edited || got[2].Edited {
		t.Fatal("edit leaked onto other entries")
	}
}

func TestEditPreservesUnpatchedFields(t *testing.T) {
	c, ids := subscribedClient(t, "42")
	c.handleFrame(createdFrame(t, ids[kindCreated], Message{
		ID: "a", RoomID: "42", SenderID: "u1", SenderName: "Ada",
		Content: "original", Timestamp: "2026-08-30T10:00:00Z", Type: MessageTypeUser,
	}))

	c.handleFrame(editedFrame(t, ids[kindEdited], map[string]any{"id": "a", "content": "revised"}))

	got, ok := c.store.Get("42", "a")
	if !ok {
		t.Fatal("message vanished")
	}
	if got.Content != "revised" || got.SenderName != "Ada" || got.Timestamp != "2026-08-30T10:00:00Z" {
		t.Fatalf("partial patch damaged untouched fields: %+v", got)
	}
}

func TestOrphanPatchIsANoOp(t *testing.T) {
	c, ids := subscribedClient(t, "42")
	c.handleFrame(createdFrame(t, ids[kindCreated], Message{ID: "a", RoomID: "42", Content: "1"}))

	c.handleFrame(editedFrame(t, ids[kindEdited], map[string]any{"id": "ghost", "content": "x"}))

	got := c.Messages("42")
	assertOrder(t, got, "a")
	if got[0].Content != "1" || got[0].Edited {
		t.Fatalf("orphan patch altered the store: %+v", got[0])
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	c, ids := subscribedClient(t, "42")
	deleted := 0
	c.OnMessageDeleted(func(string, string) { deleted++ })

	c.handleFrame(createdFrame(t, ids[kindCreated], Message{ID: "a", RoomID: "42"}))
	c.handleFrame(deletedFrame(ids[kindDeleted], "a"))
	c.handleFrame(deletedFrame(ids[kindDeleted], "a"))
	c.handleFrame(deletedFrame(ids[kindDeleted], "never-observed"))

	if c.store.Len("42") != 0 {
		t.Fatalf("expected empty room, got %d entries", c.store.Len("42"))
	}
	if deleted != 1 {
		t.Fatalf("expected one delete callback, got %d", deleted)
	}
}

// A delete can beat its create across the two channels when a message
// is sent and removed in quick succession. Both orders must converge.
func TestDeleteBeforeCreateTolerated(t *testing.T) {
	c, ids := subscribedClient(t, "42")
	c.handleFrame(deletedFrame(ids[kindDeleted], "x"))
	c.handleFrame(createdFrame(t, ids[kindCreated], Message{ID: "x", RoomID: "42"}))

	// The create landed after the delete: the entry exists until the
	// server (or a later event) says otherwise. No crash, no corruption.
	assertOrder(t, c.Messages("42"), "x")
}

func TestMalformedPayloadsAreDropped(t *testing.T) {
	c, ids := subscribedClient(t, "42")
	var errs []error
	c.OnError(func(err error) { errs = append(errs, err) })

	c.handleFrame(createdFrame(t, ids[kindCreated], Message{ID: "a", RoomID: "42"}))

	c.handleFrame(Outbound{Type: outboundMessage, Subscription: ids[kindCreated], Data: json.RawMessage(`{not json`)})
	c.handleFrame(Outbound{Type: outboundMessage, Subscription: ids[kindCreated], Data: json.RawMessage(`{"content":"no id"}`)})
	c.handleFrame(Outbound{Type: outboundMessage, Subscription: ids[kindEdited], Data: json.RawMessage(`[]`)})

	assertOrder(t, c.Messages("42"), "a")
	if len(errs) != 0 {
		t.Fatalf("malformed events must not surface errors, got %v", errs)
	}
}

func TestCreatedForMismatchedRoomIgnored(t *testing.T) {
	c, ids := subscribedClient(t, "42")
	// A late echo carrying another room's id must not enter this
	// room's sequence even if it slips through an open handle.
	c.handleFrame(createdFrame(t, ids[kindCreated], Message{ID: "a", RoomID: "7", Content: "stray"}))
	if c.store.Len("42") != 0 {
		t.Fatal("event for another room reached the store")
	}
}

func TestRoomSwitchIsolation(t *testing.T) {
	c, idsA := subscribedClient(t, "A")

	// Switch focus to room B; room A's handles are released first.
	c.subs.setActive("B")
	idsB := make(map[eventKind]string)
	for _, f := range c.subs.establish() {
		if f.Type != inboundSubscribe {
			continue
		}
		sub, _ := c.subs.lookup(f.ID)
		idsB[sub.kind] = f.ID
	}

	// A created event still addressed to room A's old handle.
	c.handleFrame(createdFrame(t, idsA[kindCreated], Message{ID: "stale", RoomID: "A"}))

	if c.store.Len("A") != 0 {
		t.Fatal("event on a released handle reached room A's store")
	}
	if c.store.Len("B") != 0 {
		t.Fatal("room A's event altered room B's store")
	}

	c.handleFrame(createdFrame(t, idsB[kindCreated], Message{ID: "fresh", RoomID: "B"}))
	assertOrder(t, c.Messages("B"), "fresh")
}

func TestReconnectResubscribesOnce(t *testing.T) {
	c, _ := subscribedClient(t, "42")

	// Drop: live handles die with the connection, the room stays active.
	c.subs.invalidate()

	frames := c.subs.establish()
	subscribes := 0
	seen := make(map[string]bool)
	for _, f := range frames {
		if f.Type != inboundSubscribe {
			t.Fatalf("unexpected %s frame during replay", f.Type)
		}
		subscribes++
		if seen[f.Destination] {
			t.Fatalf("destination %q subscribed twice", f.Destination)
		}
		seen[f.Destination] = true
	}
	if subscribes != 3 {
		t.Fatalf("expected 3 subscriptions after reconnect, got %d", subscribes)
	}

	// A single delivery still produces a single entry.
	var createdID string
	for _, f := range frames {
		if sub, _ := c.subs.lookup(f.ID); sub.kind == kindCreated {
			createdID = f.ID
		}
	}
	c.handleFrame(createdFrame(t, createdID, Message{ID: "a", RoomID: "42"}))
	assertOrder(t, c.Messages("42"), "a")
}

// End-to-end merge scenario: hydration, create, edit, delete.
func TestMergeScenario(t *testing.T) {
	c, ids := subscribedClient(t, "42")

	c.store.Load("42", []Message{
		{ID: "c", RoomID: "42", Content: "3"},
		{ID: "b", RoomID: "42", Content: "2"},
		{ID: "a", RoomID: "42", Content: "1"},
	})
	assertOrder(t, c.Messages("42"), "a", "b", "c")

	c.handleFrame(createdFrame(t, ids[kindCreated], Message{ID: "d", RoomID: "42", Content: "4"}))
	assertOrder(t, c.Messages("42"), "a", "b", "c", "d")

	c.handleFrame(editedFrame(t, ids[kindEdited], map[string]any{"id": "b", "content": "x"}))
	got := c.Messages("42")
	assertOrder(t, got, "a", "b", "c", "d")
	if got[1].Content != "x" || !got[1].Edited {
		t.Fatalf("edit not merged: %+v", got[1])
	}

	c.handleFrame(deletedFrame(ids[kindDeleted], "a"))
	assertOrder(t, c.Messages("42"), "b", "c", "d")
}
