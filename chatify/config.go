package chatify

import "time"

// Config controls how the SDK connects.
type Config struct {
	URL   string // WebSocket endpoint, e.g. "ws://localhost:8080/ws"
	Token string // bearer credential presented in the connect frame

	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration

	// ReadTimeout bounds a single frame read. Zero disables it; leave
	// it disabled unless the server sends heartbeat frames, otherwise
	// an idle room drops the connection. Liveness comes from
	// PingInterval instead.
	ReadTimeout time.Duration

	// PingInterval is how often a websocket-level ping probes the
	// connection. A failed ping counts as a drop. Zero disables pings.
	PingInterval time.Duration

	// AutoReconnect re-dials after an unexpected drop. Explicit
	// Disconnect always wins over a pending retry.
	AutoReconnect     bool
	ReconnectInterval time.Duration // backoff base
	MaxReconnectDelay time.Duration // backoff cap
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout:  10 * time.Second,
		WriteTimeout:      10 * time.Second,
		PingInterval:      15 * time.Second,
		AutoReconnect:     true,
		ReconnectInterval: time.Second,
		MaxReconnectDelay: 30 * time.Second,
	}
}
