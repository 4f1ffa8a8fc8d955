// Package transport implements the node-to-node byte pipe that the core
// runtime is built against: open(address) -> connection|fail,
// send(connection, frame) -> ok|fail, and a receive loop yielding inbound
// frames or connection-failure notifications. The runtime never looks past
// this interface at sockets, TLS or compression directly.
package transport

import (
	"context"
	"errors"
	"fmt"
)

// ErrConnectionClosed is returned by Send and by a Connection's read path
// once the peer has gone away, whether cleanly or not.
var ErrConnectionClosed = errors.New("transport: connection closed")

// ErrFrameTooLarge is returned when a decoded frame length exceeds
// MaxFrameSize.
var ErrFrameTooLarge = errors.New("transport: frame exceeds maximum size")

// MaxFrameSize bounds a single frame payload (16 MiB), matching the limit
// the rest of the pack's TCP client enforces.
const MaxFrameSize = 16 << 20

// Connection is one open, bidirectional pipe to a peer node. It has no
// notion of request/response framing beyond length-prefixed byte frames;
// correlating replies is the node controller's job, not transport's.
type Connection interface {
	// Send writes one frame. Safe for concurrent use with Recv, but not
	// with other concurrent Send calls on the same Connection.
	Send(frame []byte) error

	// Recv blocks for the next inbound frame. Returns ErrConnectionClosed
	// once the peer disconnects or the Connection is closed locally.
	Recv() ([]byte, error)

	// RemoteAddress is the dialed or accepted peer address, host:port.
	RemoteAddress() string

	// Close tears the connection down. Idempotent.
	Close() error
}

// Inbound pairs an accepted Connection with the address that dialed it, so
// a receive loop can report new peers without a second accept callback.
type Inbound struct {
	Conn Connection
	From string
}

// Transport is the pluggable network layer a Node is built on. Open dials
// outbound; Listen accepts inbound; both yield Connections sharing the same
// framing and optional TLS/compression configuration.
type Transport interface {
	// Open dials addr and returns an established Connection.
	Open(ctx context.Context, addr string) (Connection, error)

	// Listen binds addr and returns a channel of accepted connections,
	// closed when the Transport is closed or the bind fails terminally.
	// Accept errors that do not close the listener are not reported here;
	// implementations log and continue accepting.
	Listen(ctx context.Context, addr string) (<-chan Inbound, error)

	// Close releases any listener held by Listen. Open'd Connections are
	// unaffected and must be closed individually.
	Close() error
}

// DialError wraps a failure to establish a Connection with the address that
// was attempted, so callers (the node controller's connection table) can
// log and retry without re-parsing an opaque error string.
type DialError struct {
	Addr string
	Err  error
}

func (e *DialError) Error() string {
	return fmt.Sprintf("transport: dial %s: %v", e.Addr, e.Err)
}

func (e *DialError) Unwrap() error { return e.Err }
