package chatify

import (
	"context"
	"strings"
)

// Commands are fire-and-forget: a nil return means the frame was
// queued, not that the server applied it. Confirmation is the echo —
// the server's own broadcast of the result, which lands in the store
// through the subscription channel like everyone else's events. The
// store is never mutated optimistically here.

// SendMessage publishes a new message to a room.
func (c *Client) SendMessage(ctx context.Context, roomID, content string) error {
	if strings.TrimSpace(content) == "" {
		return NewError(ErrorInvalidArgument, "empty message content")
	}
	if err := c.requireConnected(); err != nil {
		return err
	}
	return c.enqueue(ctx, Inbound{
		Type:        inboundSend,
		Destination: destSend(roomID),
		Data:        SendMessagePayload{RoomID: roomID, Content: content},
	})
}

// EditMessage requests an edit of an existing message. requesterID is
// the identity the server authorizes the edit against.
func (c *Client) EditMessage(ctx context.Context, roomID, messageID, newContent, requesterID string) error {
	if strings.TrimSpace(newContent) == "" {
		return NewError(ErrorInvalidArgument, "empty message content")
	}
	if messageID == "" {
		return NewError(ErrorInvalidArgument, "empty message id")
	}
	if err := c.requireConnected(); err != nil {
		return err
	}
	return c.enqueue(ctx, Inbound{
		Type:        inboundSend,
		Destination: destEdit(roomID),
		Data: EditMessagePayload{
			MessageID:   messageID,
			NewContent:  newContent,
			RequesterID: requesterID,
		},
	})
}

// DeleteMessage requests removal of a message. The delete command
// payload is the bare message id, matching the server's convention.
func (c *Client) DeleteMessage(ctx context.Context, roomID, messageID string) error {
	if messageID == "" {
		return NewError(ErrorInvalidArgument, "empty message id")
	}
	if err := c.requireConnected(); err != nil {
		return err
	}
	return c.enqueue(ctx, Inbound{
		Type:        inboundSend,
		Destination: destDelete(roomID),
		Data:        messageID,
	})
}

func (c *Client) requireConnected() error {
	if c.State() != StateConnected {
		return NewError(ErrorNotConnected, "not connected")
	}
	return nil
}
