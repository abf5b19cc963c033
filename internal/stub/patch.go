// file: internal/stub/patch.go
package stub

import (
	"context"

	"github.com/dkoosis/gosoa/internal/message"
	"github.com/dkoosis/gosoa/internal/soaclient"
	"github.com/dkoosis/gosoa/internal/soaerrors"
)

// PatchedClient wraps a live soaclient.Client with an Interceptor: calls to a
// stubbed (service, action) are answered by the programmed response without
// reaching the transport; everything else passes through to the real
// client's dispatch unchanged, mirroring the original's "patches the
// Client's send/receive to intercept only matching actions, passing
// everything else through" stub scope.
type PatchedClient struct {
	real        *soaclient.Client
	interceptor *Interceptor
}

// Patch wraps real with a fresh Interceptor.
func Patch(real *soaclient.Client) *PatchedClient {
	return &PatchedClient{real: real, interceptor: NewInterceptor()}
}

// Interceptor returns the patch's underlying Interceptor, for programming
// and retracting stubs via its Stub/StubFixed methods.
func (p *PatchedClient) Interceptor() *Interceptor { return p.interceptor }

// CallAction dispatches through the interceptor first; an unmatched
// (service, action) falls through to the real client's CallAction.
func (p *PatchedClient) CallAction(ctx context.Context, serviceName, action string, body map[string]interface{}, opts ...soaclient.CallOption) (message.ActionResponse, error) {
	respBody, errs, found := p.interceptor.Intercept(ctx, serviceName, action, body)
	if !found {
		return p.real.CallAction(ctx, serviceName, action, body, opts...)
	}
	response := message.ActionResponse{Action: action, Body: respBody, Errors: errs}
	if len(errs) > 0 {
		return response, &soaerrors.CallActionError{ActionResponses: []soaerrors.ActionResponseLike{response}}
	}
	return response, nil
}
