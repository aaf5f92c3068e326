package chatify

import (
	"sync"

	"github.com/google/uuid"
)

type eventKind int

const (
	kindCreated eventKind = iota
	kindEdited
	kindDeleted
)

// subscription is one live channel handle: a client-generated id bound
// to a (room, event kind) topic on the server.
type subscription struct {
	id          string
	roomID      string
	kind        eventKind
	destination string
}

// subscriptionRegistry owns the channel handles for the active room.
// At most one room's handles are live at any instant; a previous
// room's handles are released before a new room's are created. The
// registry never touches the transport itself: it produces the
// subscribe/unsubscribe frames and the client sends them.
type subscriptionRegistry struct {
	mu         sync.Mutex
	activeRoom string
	live       []subscription
	byID       map[string]subscription
}

func newSubscriptionRegistry() *subscriptionRegistry {
	return &subscriptionRegistry{byID: make(map[string]subscription)}
}

// setActive records which room is logically active. The room stays
// active across disconnects so the next Connected transition can
// replay its subscriptions.
func (r *subscriptionRegistry) setActive(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activeRoom = roomID
}

func (r *subscriptionRegistry) active() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeRoom
}

// establish creates fresh handles for the active room and returns the
// frames to send: unsubscribes for any handles still live (previous
// room, or stale handles from before a reconnect), then subscribes for
// the active room's three channels. Returns nil when no room is active.
func (r *subscriptionRegistry) establish() []Inbound {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := r.releaseLocked()
	if r.activeRoom == "" {
		return frames
	}

	topics := []struct {
		kind eventKind
		dest string
	}{
		{kindCreated, topicCreated(r.activeRoom)},
		{kindEdited, topicEdited(r.activeRoom)},
		{kindDeleted, topicDeleted(r.activeRoom)},
	}
	for _, t := range topics {
		sub := subscription{
			id:          uuid.NewString(),
			roomID:      r.activeRoom,
			kind:        t.kind,
			destination: t.dest,
		}
		r.live = append(r.live, sub)
		r.byID[sub.id] = sub
		frames = append(frames, Inbound{
			Type:        inboundSubscribe,
			ID:          sub.id,
			Destination: sub.destination,
		})
	}
	return frames
}

// release drops all live handles and returns the unsubscribe frames.
func (r *subscriptionRegistry) release() []Inbound {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.releaseLocked()
}

func (r *subscriptionRegistry) releaseLocked() []Inbound {
	var frames []Inbound
	for _, sub := range r.live {
		delete(r.byID, sub.id)
		frames = append(frames, Inbound{Type: inboundUnsubscribe, ID: sub.id})
	}
	r.live = nil
	return frames
}

// invalidate drops all live handles without producing frames. Used on
// connection loss, where the server side of each handle is already gone.
// The active room is kept for replay.
func (r *subscriptionRegistry) invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.live {
		delete(r.byID, sub.id)
	}
	r.live = nil
}

// lookup resolves a server frame's subscription id to its handle.
// Unknown ids belong to released handles; their frames are dropped.
func (r *subscriptionRegistry) lookup(id string) (subscription, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.byID[id]
	return sub, ok
}
