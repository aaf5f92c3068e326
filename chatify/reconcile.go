package chatify

import "encoding/json"

// Reconciliation is the merge step from (store, inbound event) to
// (store). Every apply either fully lands or is a no-op: malformed
// payloads are logged and dropped, patches for unknown ids are dropped,
// deletes for unknown ids are ignored. No event ever surfaces as an
// error to the caller and none can leave a room's sequence half-applied.
//
// Local commands never reach these methods directly; the store only
// changes when the server's own broadcast (the echo) arrives through
// a subscription channel.

func (c *Client) applyCreated(roomID string, data json.RawMessage) {
	var m Message
	if err := UnmarshalData(data, &m); err != nil || m.ID == "" {
		c.logger.Warn("dropping malformed created event", map[string]any{
			"room": roomID, "error": errString(err),
		})
		return
	}
	// A late echo for a previously active room can still arrive through
	// a not-yet-drained frame. The room scope on the payload wins.
	if m.RoomID != "" && m.RoomID != roomID {
		c.logger.Debug("ignoring created event for inactive room", map[string]any{
			"room": m.RoomID, "active": roomID,
		})
		return
	}
	if m.RoomID == "" {
		m.RoomID = roomID
	}
	// Upsert is id-keyed, so a duplicate delivery after a reconnect
	// replay is absorbed without a second entry.
	if c.store.Upsert(roomID, m) {
		c.dispatcher.fireCreated(m)
	}
}

func (c *Client) applyEdited(roomID string, data json.RawMessage) {
	var patch MessagePatch
	if err := UnmarshalData(data, &patch); err != nil || patch.ID == "" {
		c.logger.Warn("dropping malformed edited event", map[string]any{
			"room": roomID, "error": errString(err),
		})
		return
	}
	current, ok := c.store.Get(roomID, patch.ID)
	if !ok {
		// Orphan patch: nothing to merge onto. A message is never
		// synthesized from a partial record.
		c.logger.Debug("dropping edit for unknown message", map[string]any{
			"room": roomID, "id": patch.ID,
		})
		return
	}
	merged := mergePatch(current, patch)
	c.store.Upsert(roomID, merged)
	c.dispatcher.fireEdited(merged)
}

func (c *Client) applyDeleted(roomID string, data json.RawMessage) {
	id := decodeDeletedID(data)
	if id == "" {
		c.logger.Warn("dropping malformed deleted event", map[string]any{"room": roomID})
		return
	}
	if c.store.Remove(roomID, id) {
		c.dispatcher.fireDeleted(roomID, id)
	}
}

// mergePatch field-merges an edit patch onto the current record and
// marks it edited. Identity and room are never patched: a message
// belongs to one room for its lifetime.
func mergePatch(current Message, patch MessagePatch) Message {
	if patch.SenderID != nil {
		current.SenderID = *patch.SenderID
	}
	if patch.SenderName != nil {
		current.SenderName = *patch.SenderName
	}
	if patch.Content != nil {
		current.Content = *patch.Content
	}
	if patch.Timestamp != nil {
		current.Timestamp = *patch.Timestamp
	}
	if patch.Type != nil {
		current.Type = *patch.Type
	}
	current.Edited = true
	return current
}

func errString(err error) string {
	if err == nil {
		return "missing id"
	}
	return err.Error()
}
