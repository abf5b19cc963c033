// Package transport defines the abstract client/server message-passing
// contract the RPC runtime dispatches over. A transport is keyed by request
// ID rather than being a raw duplex byte stream: the client side sends a
// request body under a given ID and later receives a response correlated by
// that same ID; the server side is the mirror image. A concrete broker-backed
// implementation (e.g. Redis) is deliberately out of scope here — this
// package only defines the contract plus an in-memory implementation used
// for local wiring and tests.
// file: internal/transport/transport.go
package transport

import (
	"context"
	"time"
)

// MaxMessageSize bounds a single encoded message body, mirroring the
// original's transport-level message size enforcement.
const MaxMessageSize = 1024 * 1024 // 1MB

// Meta is transport-level metadata accompanying a message body, the same
// role pysoa's `meta` dict plays (at minimum carrying the serializer's
// mime_type so the receiving side knows how to decode the body).
type Meta map[string]interface{}

// ClientTransport is the send/receive contract a Client uses to dispatch a
// JobRequest to a service and collect its JobResponse, mirroring
// pysoa.client.transport.base.ClientTransport.
type ClientTransport interface {
	// SendRequestMessage sends body under requestID, expiring the request
	// for transport purposes after expiry elapses.
	SendRequestMessage(ctx context.Context, requestID int, meta Meta, body []byte, expiry time.Duration) error

	// ReceiveResponseMessage blocks for up to timeout waiting for the next
	// available response, returning a timeout *Error (ErrorTypeTimeout) if
	// nothing arrives in time. The returned requestID correlates the response to the original
	// SendRequestMessage call.
	ReceiveResponseMessage(ctx context.Context, timeout time.Duration) (requestID int, meta Meta, body []byte, err error)
}

// ServerTransport is the mirror-image contract a Server uses to receive
// requests and send back correlated responses, mirroring
// pysoa.server.transport.base.ServerTransport.
type ServerTransport interface {
	// ReceiveRequestMessage blocks until a request is available or ctx is
	// cancelled.
	ReceiveRequestMessage(ctx context.Context) (requestID int, meta Meta, body []byte, err error)

	// SendResponseMessage sends body as the response to requestID.
	SendResponseMessage(ctx context.Context, requestID int, meta Meta, body []byte) error
}

// Closer is implemented by transports that hold resources needing explicit
// release; both ClientTransport and ServerTransport implementations in this
// package satisfy it.
type Closer interface {
	Close() error
}
