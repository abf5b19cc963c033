// Package message defines the wire-level request/response envelope shared by
// the client and server dispatch paths: JobRequest/JobResponse wrap one or
// more ActionRequest/ActionResponse pairs, alongside Control and Context.
// file: internal/message/message.go
package message

import "github.com/dkoosis/gosoa/internal/soaerrors"

// Context carries caller-supplied, opaque request metadata (correlation IDs,
// auth tokens, tracing fields) that the runtime forwards but never
// interprets itself.
type Context map[string]interface{}

// Control carries dispatch-affecting directives that are not part of the
// caller's domain payload: feature-flag switches, continue-on-error, the
// correlation ID threaded through a call, and the one-way suppress-response
// flag.
type Control struct {
	ContinueOnError  bool   `json:"continue_on_error"`
	Switches         []int  `json:"switches,omitempty"`
	CorrelationID    string `json:"correlation_id,omitempty"`
	SuppressResponse bool   `json:"suppress_response,omitempty"`
}

// ActionRequest names one action to run and the body to run it with.
type ActionRequest struct {
	Action string                 `json:"action"`
	Body   map[string]interface{} `json:"body,omitempty"`
}

// ActionResponse is the result of running one ActionRequest.
type ActionResponse struct {
	Action string                 `json:"action"`
	Body   map[string]interface{} `json:"body,omitempty"`
	Errors []soaerrors.Error      `json:"errors,omitempty"`
}

// GetAction satisfies soaerrors.ActionResponseLike.
func (r ActionResponse) GetAction() string { return r.Action }

// GetErrors satisfies soaerrors.ActionResponseLike.
func (r ActionResponse) GetErrors() []soaerrors.Error { return r.Errors }

// JobRequest is the full envelope a client sends to a service: one or more
// actions to run in order, plus control directives and context.
type JobRequest struct {
	Actions []ActionRequest `json:"actions"`
	Control Control         `json:"control"`
	Context Context         `json:"context,omitempty"`
}

// JobResponse is the full envelope a service returns: the corresponding
// per-action responses, plus any job-level errors (envelope-validation
// failures that never reached the action loop) and echoed context.
type JobResponse struct {
	Actions []ActionResponse  `json:"actions,omitempty"`
	Errors  []soaerrors.Error `json:"errors,omitempty"`
	Context Context           `json:"context,omitempty"`
}

// HasErrors reports whether the response carries job-level errors.
func (r JobResponse) HasErrors() bool { return len(r.Errors) > 0 }
