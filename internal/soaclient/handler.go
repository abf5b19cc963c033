// Package soaclient implements the client-side dispatch core: a cached,
// per-service ServiceHandler bundling transport, serializer and middleware,
// and the Client that routes calls across services, fans them out in
// parallel, and supports future-style deferred results.
// file: internal/soaclient/handler.go
package soaclient

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/dkoosis/gosoa/internal/logging"
	"github.com/dkoosis/gosoa/internal/message"
	"github.com/dkoosis/gosoa/internal/middleware"
	"github.com/dkoosis/gosoa/internal/serializer"
	"github.com/dkoosis/gosoa/internal/transport"
)

// DefaultReceiveTimeout is used when a caller's context carries no deadline.
const DefaultReceiveTimeout = 5 * time.Second

// DefaultRequestExpiry bounds how long an in-flight request message is
// considered valid by the transport before it may be discarded undelivered.
const DefaultRequestExpiry = 30 * time.Second

// ServiceHandler is the cached, per-service bundle of everything needed to
// dispatch to and collect responses from one named service: its transport,
// serializer, composed middleware chain, a monotonic request counter, the
// set of request IDs still awaiting a response, and a buffer of responses
// that arrived out of order relative to the caller asking for them.
//
// Mirrors pysoa.client.client.ServiceHandler.
type ServiceHandler struct {
	ServiceName string
	transport   transport.ClientTransport
	serializer  serializer.Serializer
	logger      logging.Logger

	sendRequest middleware.ClientRequestHandler
	getResponse middleware.ClientResponseHandler

	mu                  sync.Mutex
	requestCounter      int
	outstandingRequests map[int]struct{}
	bufferedResponses   map[int]message.JobResponse
}

// NewServiceHandler constructs a ServiceHandler, composing requestMW/responseMW
// around the base transport/serializer send and receive operations in onion
// order (mirrors Client.make_middleware_stack).
func NewServiceHandler(
	serviceName string,
	t transport.ClientTransport,
	s serializer.Serializer,
	requestMW []middleware.ClientRequestMiddleware,
	responseMW []middleware.ClientResponseMiddleware,
	logger logging.Logger,
) *ServiceHandler {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	h := &ServiceHandler{
		ServiceName:         serviceName,
		transport:           t,
		serializer:          s,
		logger:              logger.WithField("service", serviceName),
		outstandingRequests: make(map[int]struct{}),
		bufferedResponses:   make(map[int]message.JobResponse),
	}

	h.sendRequest = middleware.ComposeClientRequest(requestMW, h.baseSendRequest)
	h.getResponse = middleware.ComposeClientResponse(responseMW, h.baseGetResponse)

	return h
}

// baseSendRequest encodes request and hands it to the transport, mirroring
// Client._send_request's innermost body.
func (h *ServiceHandler) baseSendRequest(ctx context.Context, requestID int, request message.JobRequest) error {
	payload := map[string]interface{}{
		"actions": encodeActions(request.Actions),
		"control": map[string]interface{}{
			"continue_on_error": request.Control.ContinueOnError,
			"switches":          request.Control.Switches,
			"correlation_id":    request.Control.CorrelationID,
			"suppress_response": request.Control.SuppressResponse,
		},
		"context": map[string]interface{}(request.Context),
	}
	body, err := h.serializer.Encode(payload)
	if err != nil {
		return errors.Wrap(err, "ServiceHandler.baseSendRequest: encode")
	}
	meta := transport.Meta{"mime_type": h.serializer.MIMEType()}
	if err := h.transport.SendRequestMessage(ctx, requestID, meta, body, DefaultRequestExpiry); err != nil {
		return errors.Wrapf(err, "ServiceHandler.baseSendRequest: service %s", h.ServiceName)
	}
	return nil
}

// baseGetResponse waits for the next available response and decodes it,
// mirroring Client._get_response's innermost body.
func (h *ServiceHandler) baseGetResponse(ctx context.Context) (int, message.JobResponse, error) {
	timeout := DefaultReceiveTimeout
	if dl, ok := ctx.Deadline(); ok {
		if remaining := time.Until(dl); remaining > 0 {
			timeout = remaining
		}
	}
	requestID, _, body, err := h.transport.ReceiveResponseMessage(ctx, timeout)
	if err != nil {
		return 0, message.JobResponse{}, errors.Wrapf(err, "ServiceHandler.baseGetResponse: service %s", h.ServiceName)
	}
	payload, err := h.serializer.Decode(body)
	if err != nil {
		return 0, message.JobResponse{}, errors.Wrap(err, "ServiceHandler.baseGetResponse: decode")
	}
	return requestID, decodeJobResponse(payload), nil
}

// NextRequestID allocates the next monotonic request ID for this handler.
func (h *ServiceHandler) NextRequestID() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requestCounter++
	return h.requestCounter
}

// Send dispatches request under requestID and marks it outstanding.
func (h *ServiceHandler) Send(ctx context.Context, requestID int, request message.JobRequest) error {
	if err := h.sendRequest(ctx, requestID, request); err != nil {
		return err
	}
	h.mu.Lock()
	h.outstandingRequests[requestID] = struct{}{}
	h.mu.Unlock()
	return nil
}

// SendOneWay dispatches request under requestID without marking it
// outstanding: nothing will ever call ResponseFor/NextResponse for it, so it
// must not make HasOutstanding report a request that will never be drained.
// Used for suppress_response sends.
func (h *ServiceHandler) SendOneWay(ctx context.Context, requestID int, request message.JobRequest) error {
	return h.sendRequest(ctx, requestID, request)
}

// HasOutstanding reports whether any requests are still awaiting a response.
func (h *ServiceHandler) HasOutstanding() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.outstandingRequests) > 0
}

// NextResponse returns the next available response for any outstanding
// request on this handler, preferring anything already buffered from an
// earlier out-of-order arrival.
func (h *ServiceHandler) NextResponse(ctx context.Context) (int, message.JobResponse, error) {
	h.mu.Lock()
	for id, resp := range h.bufferedResponses {
		delete(h.bufferedResponses, id)
		delete(h.outstandingRequests, id)
		h.mu.Unlock()
		return id, resp, nil
	}
	h.mu.Unlock()

	requestID, response, err := h.getResponse(ctx)
	if err != nil {
		return 0, message.JobResponse{}, err
	}
	h.mu.Lock()
	delete(h.outstandingRequests, requestID)
	h.mu.Unlock()
	return requestID, response, nil
}

// ResponseFor blocks until the response for the specific requestID is
// available, buffering any other out-of-order responses it encounters along
// the way for later NextResponse/ResponseFor calls.
func (h *ServiceHandler) ResponseFor(ctx context.Context, requestID int) (message.JobResponse, error) {
	h.mu.Lock()
	if resp, ok := h.bufferedResponses[requestID]; ok {
		delete(h.bufferedResponses, requestID)
		delete(h.outstandingRequests, requestID)
		h.mu.Unlock()
		return resp, nil
	}
	h.mu.Unlock()

	for {
		gotID, resp, err := h.getResponse(ctx)
		if err != nil {
			return message.JobResponse{}, err
		}
		h.mu.Lock()
		delete(h.outstandingRequests, gotID)
		h.mu.Unlock()
		if gotID == requestID {
			return resp, nil
		}
		h.mu.Lock()
		h.bufferedResponses[gotID] = resp
		h.mu.Unlock()
	}
}

func encodeActions(actions []message.ActionRequest) []map[string]interface{} {
	out := make([]map[string]interface{}, len(actions))
	for i, a := range actions {
		out[i] = map[string]interface{}{"action": a.Action, "body": a.Body}
	}
	return out
}

func decodeJobResponse(payload map[string]interface{}) message.JobResponse {
	var resp message.JobResponse
	if actionsRaw, ok := payload["actions"].([]interface{}); ok {
		for _, raw := range actionsRaw {
			if m, ok := raw.(map[string]interface{}); ok {
				resp.Actions = append(resp.Actions, decodeActionResponse(m))
			}
		}
	}
	if errsRaw, ok := payload["errors"].([]interface{}); ok {
		for _, raw := range errsRaw {
			if m, ok := raw.(map[string]interface{}); ok {
				resp.Errors = append(resp.Errors, decodeError(m))
			}
		}
	}
	if ctx, ok := payload["context"].(map[string]interface{}); ok {
		resp.Context = message.Context(ctx)
	}
	return resp
}
