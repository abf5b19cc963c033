// file: internal/stub/client.go
package stub

import (
	"context"

	"github.com/dkoosis/gosoa/internal/message"
	"github.com/dkoosis/gosoa/internal/soaerrors"
)

// Client is a standalone test double offering the same StubAction-driven
// ergonomics as pysoa.test.stub_service.StubClient, without requiring a real
// transport/serializer/ServiceHandler to be stood up. Use PatchedClient, which
// puts an Interceptor in front of a real soaclient.Client and passes unstubbed
// actions through to it, for scenarios that need the full
// middleware/expansion machinery exercised under test.
type Client struct {
	interceptor *Interceptor
}

// NewClient constructs a stub Client with no programmed actions.
func NewClient() *Client {
	return &Client{interceptor: NewInterceptor()}
}

// StubAction programs service/action to return body/errs on every call until
// the returned exit function is invoked.
func (c *Client) StubAction(service, action string, body map[string]interface{}, errs []soaerrors.Error) func() {
	return c.interceptor.StubFixed(service, action, body, errs)
}

// Recorder returns the call recorder backing this client's stubs.
func (c *Client) Recorder() *Recorder { return c.interceptor.Recorder() }

// CallAction runs the programmed stub for (service, action), or returns an
// UNKNOWN action error if none was programmed, mirroring
// StubServer.process_message's unknown-action handling.
func (c *Client) CallAction(ctx context.Context, service, action string, body map[string]interface{}) (message.ActionResponse, error) {
	respBody, errs, found := c.interceptor.Intercept(ctx, service, action, body)
	if !found {
		return message.ActionResponse{
			Action: action,
			Errors: []soaerrors.Error{soaerrors.NewUnknownAction(action)},
		}, nil
	}
	response := message.ActionResponse{Action: action, Body: respBody, Errors: errs}
	if len(errs) > 0 {
		return response, &soaerrors.CallActionError{ActionResponses: []soaerrors.ActionResponseLike{response}}
	}
	return response, nil
}
