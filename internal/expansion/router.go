// file: internal/expansion/router.go
package expansion

import (
	"context"

	"github.com/dkoosis/gosoa/internal/message"
	"github.com/dkoosis/gosoa/internal/soaclient"
)

// Router composes a Client with an Engine: it dispatches a call exactly as
// the Client would, then walks the response body for the caller's
// requested expansions and splices in the expanded fields before handing
// the response back. Mirrors pysoa.client.router.ClientRouter.call_action,
// which wraps a plain Client the same way to add the expansion pass the
// bare Client knows nothing about.
type Router struct {
	client *soaclient.Client
	engine *Engine
}

// NewRouter constructs a Router dispatching through client and expanding
// through engine.
func NewRouter(client *soaclient.Client, engine *Engine) *Router {
	return &Router{client: client, engine: engine}
}

// CallAction dispatches action to serviceName exactly as Client.CallAction
// would, then expands the response body in place according to expansions
// (root type name -> requested dotted expansion paths). A nil or empty
// expansions skips the expansion pass entirely, leaving the response
// untouched, the same as never routing the call through expansion at all.
func (r *Router) CallAction(
	ctx context.Context,
	serviceName, action string,
	body map[string]interface{},
	expansions map[string][]string,
	opts ...soaclient.CallOption,
) (message.ActionResponse, error) {
	resp, err := r.client.CallAction(ctx, serviceName, action, body, opts...)
	if err != nil || len(expansions) == 0 || resp.Body == nil {
		return resp, err
	}
	if expandErr := r.engine.Expand(ctx, []interface{}{resp.Body}, expansions); expandErr != nil {
		return resp, expandErr
	}
	return resp, nil
}

// CallActions dispatches a whole job to serviceName exactly as
// Client.CallActions would, then expands every action response's body in
// place according to expansions, sharing one expansion pass across all of
// them the same way ClientRouter.call_action shares one over a job's
// results.
func (r *Router) CallActions(
	ctx context.Context,
	serviceName string,
	actions []message.ActionRequest,
	expansions map[string][]string,
	opts ...soaclient.CallOption,
) (message.JobResponse, error) {
	resp, err := r.client.CallActions(ctx, serviceName, actions, opts...)
	if err != nil || len(expansions) == 0 {
		return resp, err
	}

	objs := make([]interface{}, 0, len(resp.Actions))
	for i := range resp.Actions {
		if resp.Actions[i].Body != nil {
			objs = append(objs, resp.Actions[i].Body)
		}
	}
	if len(objs) == 0 {
		return resp, nil
	}
	if expandErr := r.engine.Expand(ctx, objs, expansions); expandErr != nil {
		return resp, expandErr
	}
	return resp, nil
}
