package chatify

// ConnectionState represents the current state of the server connection.
// There is one state per Client for the lifetime of a session.
type ConnectionState int

const (
	// StateDisconnected means no connection exists and none is being
	// attempted. The initial state, and the state after Disconnect or
	// an unexpected drop (before the automatic reconnect kicks in).
	StateDisconnected ConnectionState = iota

	// StateConnecting means a connect or reconnect attempt is in flight.
	StateConnecting

	// StateConnected means the session handshake completed and frames flow.
	StateConnected

	// StateFailed means the connection is permanently down for this
	// credential (rejected or expired token). Connect must be called
	// again, typically with a refreshed token.
	StateFailed
)

// String returns the string representation of a ConnectionState.
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StateEvent represents a connection state transition.
type StateEvent struct {
	OldState ConnectionState
	NewState ConnectionState
	Error    error // optional error that caused the transition
}
