package chatify

import (
	"encoding/json"
	"strings"
)

const (
	ProtocolVersion = 1

	inboundConnect     = "connect"
	inboundSubscribe   = "subscribe"
	inboundUnsubscribe = "unsubscribe"
	inboundSend        = "send"

	outboundConnected = "connected"
	outboundMessage   = "message"
	outboundError     = "error"
)

// MessageType distinguishes user-authored messages from server notices.
type MessageType string

const (
	MessageTypeUser   MessageType = "USER"
	MessageTypeSystem MessageType = "SYSTEM"
)

// Message is a single chat message as broadcast by the server. Identity
// is ID; every other field may change through an edit event.
type Message struct {
	ID         string      `json:"id"`
	RoomID     string      `json:"roomId"`
	SenderID   string      `json:"senderId"`
	SenderName string      `json:"senderName"`
	Content    string      `json:"content"`
	Timestamp  string      `json:"timestamp"`
	Type       MessageType `json:"type"`
	Edited     bool        `json:"edited"`
}

// MessagePatch is a partial Message carried by an edit event. The server
// may broadcast the full record or only the changed fields; ID is always
// present. Nil pointers mean "field unchanged".
type MessagePatch struct {
	ID         string       `json:"id"`
	RoomID     *string      `json:"roomId"`
	SenderID   *string      `json:"senderId"`
	SenderName *string      `json:"senderName"`
	Content    *string      `json:"content"`
	Timestamp  *string      `json:"timestamp"`
	Type       *MessageType `json:"type"`
}

// Inbound is the client -> server frame envelope.
type Inbound struct {
	Type        string `json:"type"`
	ID          string `json:"id,omitempty"`
	Destination string `json:"destination,omitempty"`
	Data        any    `json:"data,omitempty"`
}

// Outbound is the server -> client frame envelope.
type Outbound struct {
	Type         string          `json:"type"`
	Subscription string          `json:"subscription,omitempty"`
	Destination  string          `json:"destination,omitempty"`
	Data         json.RawMessage `json:"data,omitempty"`
	Error        *Error          `json:"error,omitempty"`
}

// ConnectPayload opens the session after the WebSocket handshake.
type ConnectPayload struct {
	Protocol int    `json:"protocol,omitempty"`
	Token    string `json:"token,omitempty"`
}

// SendMessagePayload publishes a new message to a room.
type SendMessagePayload struct {
	RoomID  string `json:"roomId"`
	Content string `json:"content"`
}

// EditMessagePayload requests an edit of an existing message.
type EditMessagePayload struct {
	MessageID   string `json:"messageId"`
	NewContent  string `json:"newContent"`
	RequesterID string `json:"requesterId"`
}

// Error describes a protocol error frame.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Code + ": " + e.Msg
}

// Topic destinations per room, matching the server's broadcast paths.
func topicCreated(roomID string) string { return "/topic/room/" + roomID }
func topicEdited(roomID string) string  { return "/topic/room/" + roomID + "/edit" }
func topicDeleted(roomID string) string { return "/topic/room/" + roomID + "/delete" }

// Command destinations per room.
func destSend(roomID string) string   { return "/app/chat/" + roomID }
func destEdit(roomID string) string   { return "/app/chat/" + roomID + "/edit" }
func destDelete(roomID string) string { return "/app/chat/" + roomID + "/delete" }

// UnmarshalData decodes a frame payload into target.
func UnmarshalData(data json.RawMessage, v any) error {
	return json.Unmarshal(data, v)
}

// decodeDeletedID extracts the message id from a delete-topic payload.
// The server sends the id as a raw string; tolerate a JSON-quoted string
// as well since some gateways re-encode text frames.
func decodeDeletedID(data json.RawMessage) string {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		return id
	}
	return strings.Trim(string(data), `"`)
}
