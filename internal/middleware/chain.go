// Package middleware implements the onion-style composition used by both the
// client dispatch path (request/response hooks) and the server dispatch path
// (job/action hooks). Per the design this composes into four distinct hook
// shapes rather than one unified interface: a client middleware only ever
// wraps a request or a response, a server middleware only ever wraps a job or
// an action, and nothing here tries to unify them behind a common type.
// file: internal/middleware/chain.go
package middleware

import (
	"context"

	"github.com/dkoosis/gosoa/internal/message"
)

// ClientRequestHandler sends a JobRequest under the given, already-allocated
// request ID. It is bound to one ServiceHandler's transport/serializer, so it
// does not need a service name parameter.
type ClientRequestHandler func(ctx context.Context, requestID int, request message.JobRequest) error

// ClientRequestMiddleware wraps a ClientRequestHandler, mirroring
// pysoa.client.middleware.ClientMiddleware.request.
type ClientRequestMiddleware func(next ClientRequestHandler) ClientRequestHandler

// ClientResponseHandler retrieves the next available JobResponse from the
// bound ServiceHandler, blocking per the transport's own timeout semantics.
type ClientResponseHandler func(ctx context.Context) (requestID int, response message.JobResponse, err error)

// ClientResponseMiddleware wraps a ClientResponseHandler, mirroring
// pysoa.client.middleware.ClientMiddleware.response.
type ClientResponseMiddleware func(next ClientResponseHandler) ClientResponseHandler

// ComposeClientRequest folds chain around base in onion order: the first
// middleware in chain is the outermost layer, matching
// Client.make_middleware_stack's `for ware in reversed(middleware): base = ware(base)`.
func ComposeClientRequest(chain []ClientRequestMiddleware, base ClientRequestHandler) ClientRequestHandler {
	handler := base
	for i := len(chain) - 1; i >= 0; i-- {
		handler = chain[i](handler)
	}
	return handler
}

// ComposeClientResponse is ComposeClientRequest's mirror for the response hook.
func ComposeClientResponse(chain []ClientResponseMiddleware, base ClientResponseHandler) ClientResponseHandler {
	handler := base
	for i := len(chain) - 1; i >= 0; i-- {
		handler = chain[i](handler)
	}
	return handler
}

// ServerJobHandler runs a whole JobRequest (the per-action loop and
// envelope-level concerns) and produces a JobResponse. An error return
// signals a job-level failure (envelope validation, a promoted
// response-schema defect, or a job middleware's own veto) that the caller
// must turn into a JobResponse carrying Errors rather than Actions.
type ServerJobHandler func(ctx context.Context, request message.JobRequest) (message.JobResponse, error)

// ServerJobMiddleware wraps a ServerJobHandler, mirroring
// pysoa.server.middleware.ServerMiddleware.job.
type ServerJobMiddleware func(next ServerJobHandler) ServerJobHandler

// ServerActionHandler runs a single ActionRequest within an already-validated
// job and produces an ActionResponse. An error return signals that the
// failure is not this action's alone and must be escalated to the job level
// (e.g. a ResponseValidationError), as opposed to an ordinary action error
// which is carried in the returned ActionResponse.Errors instead.
type ServerActionHandler func(ctx context.Context, request message.ActionRequest) (message.ActionResponse, error)

// ServerActionMiddleware wraps a ServerActionHandler, mirroring
// pysoa.server.middleware.ServerMiddleware.action.
type ServerActionMiddleware func(next ServerActionHandler) ServerActionHandler

// ComposeServerJob is ComposeClientRequest's counterpart for the job hook.
func ComposeServerJob(chain []ServerJobMiddleware, base ServerJobHandler) ServerJobHandler {
	handler := base
	for i := len(chain) - 1; i >= 0; i-- {
		handler = chain[i](handler)
	}
	return handler
}

// ComposeServerAction is ComposeClientRequest's counterpart for the action hook.
func ComposeServerAction(chain []ServerActionMiddleware, base ServerActionHandler) ServerActionHandler {
	handler := base
	for i := len(chain) - 1; i >= 0; i-- {
		handler = chain[i](handler)
	}
	return handler
}
