package chatify

import "testing"

func TestEstablishCreatesThreeChannels(t *testing.T) {
	r := newSubscriptionRegistry()
	r.setActive("42")
	frames := r.establish()

	if len(frames) != 3 {
		t.Fatalf("expected 3 subscribe frames, got %d", len(frames))
	}
	wantDests := map[string]bool{
		"/topic/room/42":        false,
		"/topic/room/42/edit":   false,
		"/topic/room/42/delete": false,
	}
	for _, f := range frames {
		if f.Type != inboundSubscribe {
			t.Fatalf("unexpected frame type %q", f.Type)
		}
		if f.ID == "" {
			t.Fatal("subscribe frame without handle id")
		}
		seen, known := wantDests[f.Destination]
		if !known {
			t.Fatalf("unexpected destination %q", f.Destination)
		}
		if seen {
			t.Fatalf("destination %q subscribed twice", f.Destination)
		}
		wantDests[f.Destination] = true
		if _, ok := r.lookup(f.ID); !ok {
			t.Fatalf("handle %q not routable after establish", f.ID)
		}
	}
}

func TestEstablishWithoutActiveRoom(t *testing.T) {
	r := newSubscriptionRegistry()
	if frames := r.establish(); frames != nil {
		t.Fatalf("expected no frames without an active room, got %d", len(frames))
	}
}

func TestSwitchReleasesPreviousRoomFirst(t *testing.T) {
	r := newSubscriptionRegistry()
	r.setActive("A")
	old := r.establish()

	r.setActive("B")
	frames := r.establish()

	if len(frames) != 6 {
		t.Fatalf("expected 3 unsubscribes + 3 subscribes, got %d frames", len(frames))
	}
	for i, f := range frames[:3] {
		if f.Type != inboundUnsubscribe {
			t.Fatalf("frame %d: expected unsubscribe before new subscriptions, got %q", i, f.Type)
		}
	}
	for i, f := range frames[3:] {
		if f.Type != inboundSubscribe {
			t.Fatalf("frame %d: expected subscribe, got %q", i+3, f.Type)
		}
	}
	for _, f := range old {
		if _, ok := r.lookup(f.ID); ok {
			t.Fatalf("room A handle %q still routable after switch", f.ID)
		}
	}
}

func TestReleaseClearsRouting(t *testing.T) {
	r := newSubscriptionRegistry()
	r.setActive("42")
	subs := r.establish()

	frames := r.release()
	if len(frames) != 3 {
		t.Fatalf("expected 3 unsubscribe frames, got %d", len(frames))
	}
	for _, f := range subs {
		if _, ok := r.lookup(f.ID); ok {
			t.Fatalf("handle %q still routable after release", f.ID)
		}
	}
	// Active room unchanged: release drops handles, not focus.
	if r.active() != "42" {
		t.Fatalf("release must not clear the active room, got %q", r.active())
	}
}

func TestInvalidateKeepsActiveRoom(t *testing.T) {
	r := newSubscriptionRegistry()
	r.setActive("42")
	subs := r.establish()

	r.invalidate()

	for _, f := range subs {
		if _, ok := r.lookup(f.ID); ok {
			t.Fatalf("handle %q survived invalidate", f.ID)
		}
	}
	if r.active() != "42" {
		t.Fatal("invalidate must keep the active room for replay")
	}

	// Replay after reconnect creates fresh handles, never duplicates.
	replay := r.establish()
	if len(replay) != 3 {
		t.Fatalf("expected 3 fresh subscribe frames, got %d", len(replay))
	}
	for _, f := range replay {
		if f.Type != inboundSubscribe {
			t.Fatalf("unexpected %q frame in replay", f.Type)
		}
	}
}
