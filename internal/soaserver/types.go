// Package soaserver implements the server-side action dispatch core: the
// Action contract, per-request enrichment, switch-gated action resolution,
// and the job/action dispatch loop a Server runs over an incoming JobRequest.
// file: internal/soaserver/types.go
package soaserver

import (
	"context"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/dkoosis/gosoa/internal/message"
	"github.com/dkoosis/gosoa/internal/soaclient"
	"github.com/dkoosis/gosoa/internal/switches"
)

// EnrichedActionRequest is the request object an Action's Run (and optional
// Validate) hook receives: the caller's ActionRequest plus job-level context
// the action needs but that isn't part of its own body, mirroring
// pysoa.server.types.EnrichedActionRequest.
type EnrichedActionRequest struct {
	Action   string
	Body     map[string]interface{}
	Switches switches.Set
	Context  message.Context
	Control  message.Control

	// Client, if set, lets an action make its own outbound calls to other
	// services (the role EnrichedActionRequest.client plays in the original).
	Client *soaclient.Client
}

// Expansions returns the caller-requested expansion configuration carried in
// Context["expansions"], or nil if none was supplied. The original's
// equivalent property (EnrichedActionRequest.expansions) has no return
// statement in its body and so always evaluates to None regardless of what's
// in context; this implementation deliberately returns the actual value.
func (r *EnrichedActionRequest) Expansions() interface{} {
	if r.Context == nil {
		return nil
	}
	return r.Context["expansions"]
}

// Action is the contract every service action implements, mirroring
// pysoa.server.action.base.Action. Run performs the business logic; an
// action that also implements RequestValidator gets its Validate hook called
// after request-schema validation and before Run, mirroring the original's
// optional validate() override.
type Action interface {
	Run(ctx context.Context, request *EnrichedActionRequest) (map[string]interface{}, error)
}

// RequestValidator is an optional Action extension for custom pre-Run
// validation, mirroring Action.validate().
type RequestValidator interface {
	Validate(ctx context.Context, request *EnrichedActionRequest) error
}

// SchemaProvider is an optional Action extension declaring compiled request
// and/or response schemas, mirroring Action.request_schema/response_schema.
type SchemaProvider interface {
	RequestSchema() *jsonschema.Schema
	ResponseSchema() *jsonschema.Schema
}

// BaseAction is embeddable by concrete actions that want schema-carrying
// fields without re-declaring the SchemaProvider methods by hand.
type BaseAction struct {
	Description     string
	ReqSchema       *jsonschema.Schema
	RespSchema      *jsonschema.Schema
}

// RequestSchema implements SchemaProvider.
func (a *BaseAction) RequestSchema() *jsonschema.Schema { return a.ReqSchema }

// ResponseSchema implements SchemaProvider.
func (a *BaseAction) ResponseSchema() *jsonschema.Schema { return a.RespSchema }
