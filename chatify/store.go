package chatify

import "sync"

// Store holds the ordered, id-deduplicated message sequence for each
// room. It is the single source of truth for rendering; only the
// reconciliation path mutates it, so consumers read via Snapshot and
// never hold references into the store.
//
// Order is arrival order: Load seeds a room oldest-first, Upsert
// appends new ids at the end and replaces known ids in place. The
// sequence is never re-sorted by timestamp.
type Store struct {
	mu    sync.RWMutex
	rooms map[string][]Message
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{rooms: make(map[string][]Message)}
}

// Load replaces the room's sequence wholesale with a history page.
// The page arrives newest-first from the history endpoint and is
// reversed here, so the stored order is chronological ascending.
// Duplicated ids within the page keep the first (newest) occurrence.
func (s *Store) Load(roomID string, newestFirst []Message) {
	seq := make([]Message, 0, len(newestFirst))
	seen := make(map[string]struct{}, len(newestFirst))
	for i := len(newestFirst) - 1; i >= 0; i-- {
		m := newestFirst[i]
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		seq = append(seq, m)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[roomID] = seq
}

// Upsert inserts or replaces a message in its room's sequence. A known
// id is replaced in place, keeping its position; an unknown id is
// appended at the end. Returns true when the message was appended.
func (s *Store) Upsert(roomID string, m Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.rooms[roomID]
	for i := range seq {
		if seq[i].ID == m.ID {
			seq[i] = m
			return false
		}
	}
	s.rooms[roomID] = append(seq, m)
	return true
}

// Get returns a copy of the message with the given id, if present.
func (s *Store) Get(roomID, id string) (Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.rooms[roomID] {
		if m.ID == id {
			return m, true
		}
	}
	return Message{}, false
}

// Remove deletes the message with the given id from the room's
// sequence. A no-op when the id is absent, which covers deletes that
// race a room switch and arrive for a never-observed message.
// Returns true when an entry was removed.
func (s *Store) Remove(roomID, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.rooms[roomID]
	for i := range seq {
		if seq[i].ID == id {
			s.rooms[roomID] = append(seq[:i], seq[i+1:]...)
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the room's current ordered sequence.
func (s *Store) Snapshot(roomID string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seq := s.rooms[roomID]
	out := make([]Message, len(seq))
	copy(out, seq)
	return out
}

// Len returns the number of messages held for a room.
func (s *Store) Len(roomID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms[roomID])
}

// Drop discards a room's sequence entirely.
func (s *Store) Drop(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, roomID)
}
