package chatify

import (
	"context"
	"errors"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/coder/websocket"

	"github.com/chatify/chatify-sdk-go/chatify/internal"
)

// HistoryProvider supplies the initial history page for a room,
// newest-first, the way the REST collaborator delivers it. The rest
// package's Client implements this.
type HistoryProvider interface {
	RoomMessages(ctx context.Context, roomID string) ([]Message, error)
}

// Client provides the high-level SDK for a Chatify server: one
// persistent authenticated connection, per-room channel subscriptions,
// and a message store kept consistent with the server's broadcasts.
type Client struct {
	cfg        Config
	logger     Logger
	writeCh    chan Inbound
	dispatcher Dispatcher
	store      *Store
	subs       *subscriptionRegistry
	history    HistoryProvider

	mu            sync.Mutex
	state         ConnectionState
	conn          *internal.Conn
	sessionCtx    context.Context
	sessionCancel context.CancelFunc
	connCancel    context.CancelFunc
}

// NewClient constructs a client with the provided config.
// Use DefaultConfig() as a starting point and modify as needed.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:     cfg,
		logger:  noopLogger{},
		writeCh: make(chan Inbound, 16),
		store:   NewStore(),
		subs:    newSubscriptionRegistry(),
	}
}

// SetLogger overrides the logger (optional).
func (c *Client) SetLogger(l Logger) {
	if l == nil {
		return
	}
	c.logger = l
}

// SetHistoryProvider wires the REST collaborator used by HydrateRoom.
func (c *Client) SetHistoryProvider(h HistoryProvider) { c.history = h }

// OnMessageCreated registers a callback fired after a new message
// lands in the store.
func (c *Client) OnMessageCreated(fn func(Message)) { c.dispatcher.SetOnCreated(fn) }

// OnMessageEdited registers a callback fired after an edit is merged.
func (c *Client) OnMessageEdited(fn func(Message)) { c.dispatcher.SetOnEdited(fn) }

// OnMessageDeleted registers a callback fired after a message is removed.
func (c *Client) OnMessageDeleted(fn func(roomID, messageID string)) { c.dispatcher.SetOnDeleted(fn) }

// OnStateChanged registers a callback for connection state transitions.
func (c *Client) OnStateChanged(fn func(StateEvent)) { c.dispatcher.SetOnStateChanged(fn) }

// OnError registers a callback for asynchronous errors.
func (c *Client) OnError(fn func(error)) { c.dispatcher.SetOnError(fn) }

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Store returns the message store. Read-only for callers; the store is
// mutated only by the inbound event path.
func (c *Client) Store() *Store { return c.store }

// Messages returns the current ordered sequence for a room.
func (c *Client) Messages(roomID string) []Message { return c.store.Snapshot(roomID) }

// ActiveRoom returns the id of the logically active room, or "".
func (c *Client) ActiveRoom() string { return c.subs.active() }

// Connect dials the server, performs the session handshake, and starts
// the internal loops. A rejected or expired credential fails with an
// authentication error and is not retried; a network failure fails
// with a transport error.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateConnected || c.state == StateConnecting {
		c.mu.Unlock()
		return NewError(ErrorAlreadyConnected, "already connected")
	}
	c.mu.Unlock()

	if c.cfg.URL == "" {
		return NewError(ErrorInvalidConfig, "empty URL")
	}
	if err := validateCredential(c.cfg.Token); err != nil {
		c.setState(StateFailed, err)
		return err
	}

	sessionCtx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.sessionCtx = sessionCtx
	c.sessionCancel = cancel
	c.mu.Unlock()

	c.setState(StateConnecting, nil)
	if err := c.dial(ctx, sessionCtx); err != nil {
		cancel()
		c.setState(StateFailed, err)
		return err
	}
	c.setState(StateConnected, nil)
	c.resubscribe(ctx)
	return nil
}

// Disconnect tears down the connection and cancels any pending
// reconnect attempt. Idempotent. No reconnect happens until Connect is
// called again, with a possibly refreshed credential.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	sessionCancel := c.sessionCancel
	connCancel := c.connCancel
	conn := c.conn
	c.sessionCtx, c.sessionCancel, c.connCancel, c.conn = nil, nil, nil, nil
	c.mu.Unlock()

	if sessionCancel != nil {
		sessionCancel()
	}
	if connCancel != nil {
		connCancel()
	}
	c.subs.invalidate()
	c.setState(StateDisconnected, nil)
	if conn != nil {
		return conn.Close(websocket.StatusNormalClosure, "client disconnect")
	}
	return nil
}

// ActivateRoom makes roomID the focused room: the previous room's
// channel handles are released before the new room's three channels
// (created, edited, deleted events) are subscribed. While not
// connected this only records the room; subscriptions are established
// on the next Connected transition.
func (c *Client) ActivateRoom(ctx context.Context, roomID string) error {
	if roomID == "" {
		return NewError(ErrorInvalidArgument, "empty room id")
	}
	c.subs.setActive(roomID)
	if c.State() != StateConnected {
		return nil
	}
	return c.enqueueFrames(ctx, c.subs.establish())
}

// DeactivateRoom releases the active room's channel handles.
func (c *Client) DeactivateRoom(ctx context.Context) error {
	c.subs.setActive("")
	if c.State() != StateConnected {
		c.subs.invalidate()
		return nil
	}
	return c.enqueueFrames(ctx, c.subs.release())
}

// HydrateRoom seeds the room's store from the history collaborator.
// The page arrives newest-first and is stored oldest-first, so live
// created events append in chronological order behind it.
func (c *Client) HydrateRoom(ctx context.Context, roomID string) error {
	if c.history == nil {
		return NewError(ErrorInvalidConfig, "no history provider configured")
	}
	page, err := c.history.RoomMessages(ctx, roomID)
	if err != nil {
		return WrapError(ErrorTransport, "history fetch failed", err)
	}
	c.store.Load(roomID, page)
	return nil
}

// setState records a connection state transition and notifies the
// dispatcher. Same-state writes are silent: callers on racing paths
// (drop handling, reconnect) can set defensively without producing
// spurious events. The callback fires outside the lock so handlers may
// call back into the client.
func (c *Client) setState(next ConnectionState, cause error) {
	c.mu.Lock()
	old := c.state
	if old == next {
		c.mu.Unlock()
		return
	}
	c.state = next
	c.mu.Unlock()

	c.logger.Debug("connection state changed", map[string]any{
		"from": old.String(), "to": next.String(),
	})
	c.dispatcher.fireStateChanged(StateEvent{OldState: old, NewState: next, Error: cause})
}

func (c *Client) dial(ctx context.Context, sessionCtx context.Context) error {
	u, err := url.Parse(c.cfg.URL)
	if err != nil {
		return WrapError(ErrorInvalidConfig, "invalid URL", err)
	}

	dialCtx := ctx
	if c.cfg.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, c.cfg.HandshakeTimeout)
		defer cancel()
	}

	ws, _, err := websocket.Dial(dialCtx, u.String(), nil)
	if err != nil {
		return WrapError(ErrorTransport, "dial failed", err)
	}
	conn := internal.NewConn(ws, c.cfg.ReadTimeout, c.cfg.WriteTimeout)

	hello := Inbound{
		Type: inboundConnect,
		Data: ConnectPayload{Protocol: ProtocolVersion, Token: c.cfg.Token},
	}
	if err := conn.Write(dialCtx, hello); err != nil {
		_ = conn.Close(websocket.StatusInternalError, "handshake error")
		return WrapError(ErrorTransport, "handshake write failed", err)
	}

	var ack Outbound
	if err := conn.Read(dialCtx, &ack); err != nil {
		_ = conn.Close(websocket.StatusInternalError, "handshake error")
		return WrapError(ErrorTransport, "handshake read failed", err)
	}
	switch {
	case ack.Type == outboundConnected:
	case ack.Type == outboundError && ack.Error != nil:
		_ = conn.Close(websocket.StatusNormalClosure, "session rejected")
		if ack.Error.Code == "unauthorized" {
			return WrapError(ErrorAuthentication, "credential rejected", ack.Error)
		}
		return WrapError(ErrorTransport, "session rejected", ack.Error)
	default:
		_ = conn.Close(websocket.StatusProtocolError, "unexpected handshake frame")
		return NewError(ErrorTransport, "unexpected handshake frame: "+ack.Type)
	}

	connCtx, connCancel := context.WithCancel(sessionCtx)
	c.mu.Lock()
	c.conn = conn
	c.connCancel = connCancel
	c.mu.Unlock()

	go c.readLoop(connCtx, conn)
	go c.writeLoop(connCtx, conn)
	if c.cfg.PingInterval > 0 {
		go c.pingLoop(connCtx, conn)
	}
	return nil
}

// onDrop handles an unexpected connection loss: exactly one of the
// loops wins the transition out of Connected, the dead handles are
// invalidated (the active room is kept for replay), and the reconnect
// loop takes over when enabled.
func (c *Client) onDrop(cause error) {
	c.mu.Lock()
	if c.state != StateConnected {
		c.mu.Unlock()
		return
	}
	sessionCtx := c.sessionCtx
	connCancel := c.connCancel
	conn := c.conn
	c.connCancel, c.conn = nil, nil
	c.mu.Unlock()

	if sessionCtx == nil || sessionCtx.Err() != nil {
		return
	}
	if connCancel != nil {
		connCancel()
	}
	if conn != nil {
		_ = conn.Close(websocket.StatusGoingAway, "connection lost")
	}
	c.subs.invalidate()
	c.setState(StateDisconnected, cause)
	if c.cfg.AutoReconnect {
		go c.reconnectLoop(sessionCtx)
	}
}

// reconnectLoop re-dials with exponential backoff and full jitter
// until it succeeds, the credential expires, or Disconnect cancels the
// session. A successful reconnect starts from the base interval again
// on the next drop, since each drop runs a fresh loop.
func (c *Client) reconnectLoop(sessionCtx context.Context) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.ReconnectInterval
	b.MaxInterval = c.cfg.MaxReconnectDelay
	b.RandomizationFactor = 1
	b.MaxElapsedTime = 0
	b.Reset()

	for attempt := 1; ; attempt++ {
		wait := b.NextBackOff()
		c.logger.Debug("reconnect scheduled", map[string]any{
			"attempt": attempt, "delay": wait.String(),
		})
		select {
		case <-sessionCtx.Done():
			return
		case <-time.After(wait):
		}

		if err := validateCredential(c.cfg.Token); err != nil {
			c.setState(StateFailed, err)
			return
		}
		c.setState(StateConnecting, nil)
		err := c.dial(sessionCtx, sessionCtx)
		if err == nil {
			c.setState(StateConnected, nil)
			c.resubscribe(sessionCtx)
			return
		}
		if IsAuthenticationError(err) {
			c.setState(StateFailed, err)
			return
		}
		c.logger.Warn("reconnect attempt failed", map[string]any{
			"attempt": attempt, "error": err.Error(),
		})
		c.setState(StateDisconnected, err)
	}
}

// resubscribe replays the active room's subscriptions after a
// Connected transition. Subscription state is not otherwise recovered
// across reconnects.
func (c *Client) resubscribe(ctx context.Context) {
	frames := c.subs.establish()
	if err := c.enqueueFrames(ctx, frames); err != nil {
		c.logger.Warn("subscription replay failed", map[string]any{"error": err.Error()})
	}
}

func (c *Client) enqueueFrames(ctx context.Context, frames []Inbound) error {
	for _, f := range frames {
		if err := c.enqueue(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) enqueue(ctx context.Context, in Inbound) error {
	select {
	case c.writeCh <- in:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) readLoop(ctx context.Context, conn *internal.Conn) {
	for {
		var out Outbound
		if err := conn.Read(ctx, &out); err != nil {
			if isExpectedDisconnect(ctx, err) {
				return
			}
			c.logger.Warn("read loop exit", map[string]any{"error": err.Error()})
			c.onDrop(WrapError(ErrorTransport, "connection lost", err))
			return
		}
		c.handleFrame(out)
	}
}

func (c *Client) writeLoop(ctx context.Context, conn *internal.Conn) {
	for {
		select {
		case in := <-c.writeCh:
			if err := conn.Write(ctx, in); err != nil {
				if isExpectedDisconnect(ctx, err) {
					return
				}
				c.logger.Warn("write loop exit", map[string]any{"error": err.Error()})
				c.onDrop(WrapError(ErrorTransport, "write failed", err))
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) pingLoop(ctx context.Context, conn *internal.Conn) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := conn.Ping(ctx); err != nil {
				if isExpectedDisconnect(ctx, err) {
					return
				}
				c.logger.Warn("ping failed", map[string]any{"error": err.Error()})
				c.onDrop(WrapError(ErrorTransport, "heartbeat failed", err))
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// handleFrame routes one server frame. Frames for released
// subscription handles are dropped: after a room switch, a late event
// for the previous room resolves to no handle and never reaches the
// store.
func (c *Client) handleFrame(out Outbound) {
	switch out.Type {
	case outboundError:
		c.dispatcher.fireError(FromProtocolError(out.Error))
	case outboundMessage:
		sub, ok := c.subs.lookup(out.Subscription)
		if !ok {
			c.logger.Debug("dropping frame for released subscription", map[string]any{
				"subscription": out.Subscription, "destination": out.Destination,
			})
			return
		}
		switch sub.kind {
		case kindCreated:
			c.applyCreated(sub.roomID, out.Data)
		case kindEdited:
			c.applyEdited(sub.roomID, out.Data)
		case kindDeleted:
			c.applyDeleted(sub.roomID, out.Data)
		}
	}
}

func isExpectedDisconnect(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if ctx != nil && ctx.Err() != nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	default:
		return false
	}
}
