// file: internal/soaclient/client_test.go
package soaclient

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/gosoa/internal/logging"
	"github.com/dkoosis/gosoa/internal/message"
	"github.com/dkoosis/gosoa/internal/serializer"
	"github.com/dkoosis/gosoa/internal/soaerrors"
	"github.com/dkoosis/gosoa/internal/transport"
)

// startEchoServer runs a minimal request/response loop over serverTransport
// that echoes each action's body back as its response body, until ctx is
// cancelled. It is not a soaserver.Server; it exists purely to exercise the
// ServiceHandler/Client dispatch paths against a real transport.
func startEchoServer(ctx context.Context, t *testing.T, serverTransport transport.ServerTransport, s serializer.Serializer) {
	t.Helper()
	go func() {
		for {
			requestID, _, body, err := serverTransport.ReceiveRequestMessage(ctx)
			if err != nil {
				return
			}
			payload, err := s.Decode(body)
			require.NoError(t, err)

			var actions []map[string]interface{}
			if raw, ok := payload["actions"].([]interface{}); ok {
				for _, r := range raw {
					if m, ok := r.(map[string]interface{}); ok {
						actions = append(actions, m)
					}
				}
			}

			responseActions := make([]map[string]interface{}, len(actions))
			for i, a := range actions {
				responseActions[i] = map[string]interface{}{
					"action": a["action"],
					"body":   a["body"],
				}
			}
			responsePayload := map[string]interface{}{"actions": responseActions}
			responseBody, err := s.Encode(responsePayload)
			require.NoError(t, err)

			meta := transport.Meta{"mime_type": s.MIMEType()}
			if err := serverTransport.SendResponseMessage(ctx, requestID, meta, responseBody); err != nil {
				return
			}
		}
	}()
}

func newTestClient(t *testing.T, ctx context.Context) *Client {
	t.Helper()
	clientTransport, serverTransport := transport.NewInMemoryTransportPair()
	s := serializer.NewJSONSerializer()
	startEchoServer(ctx, t, serverTransport, s)

	return NewClient(func(serviceName string) (*ServiceHandler, error) {
		return NewServiceHandler(serviceName, clientTransport, s, nil, nil, logging.GetNoopLogger()), nil
	}, logging.GetNoopLogger())
}

func TestClientCallActionReturnsEchoedBody(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	client := newTestClient(t, ctx)
	resp, err := client.CallAction(ctx, "echo", "ping", map[string]interface{}{"value": "hello"})

	require.NoError(t, err)
	assert.Equal(t, "ping", resp.Action)
	assert.Equal(t, "hello", resp.Body["value"])
}

func TestClientCallActionsParallelPreservesOrder(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	client := newTestClient(t, ctx)
	actions := []message.ActionRequest{
		{Action: "a", Body: map[string]interface{}{"n": float64(1)}},
		{Action: "b", Body: map[string]interface{}{"n": float64(2)}},
		{Action: "c", Body: map[string]interface{}{"n": float64(3)}},
	}

	responses, err := client.CallActionsParallel(ctx, "echo", actions)
	require.NoError(t, err)
	require.Len(t, responses, 3)
	assert.Equal(t, "a", responses[0].Action)
	assert.Equal(t, "b", responses[1].Action)
	assert.Equal(t, "c", responses[2].Action)
}

func TestClientCallJobsParallelDispatchesEachToItsService(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	client := newTestClient(t, ctx)
	jobs := []JobCall{
		{ServiceName: "echo", Actions: []message.ActionRequest{{Action: "x"}}},
		{ServiceName: "echo", Actions: []message.ActionRequest{{Action: "y"}}},
	}

	responses, err := client.CallJobsParallel(ctx, jobs, false)
	require.NoError(t, err)
	require.Len(t, responses, 2)
	assert.Equal(t, "x", responses[0].Actions[0].Action)
	assert.Equal(t, "y", responses[1].Actions[0].Action)
}

func TestClientCallActionFutureBlocksUntilResolved(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	client := newTestClient(t, ctx)
	future := client.CallActionFuture(ctx, "echo", "ping", map[string]interface{}{"value": "later"})

	assert.Nil(t, future.Exception())
	resp, err := future.Result(ctx)
	require.NoError(t, err)
	assert.Equal(t, "later", resp.Body["value"])
}

func TestClientSendRequestAndGetAllResponses(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	client := newTestClient(t, ctx)
	_, err := client.SendRequest(ctx, "echo", []message.ActionRequest{{Action: "ping"}})
	require.NoError(t, err)

	next, err := client.GetAllResponses(ctx, "echo")
	require.NoError(t, err)

	requestID, response, ok, err := next()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, requestID)
	assert.Equal(t, "ping", response.Actions[0].Action)

	_, _, ok, err = next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClientCallActionsSuppressResponseDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	client := newTestClient(t, ctx)
	resp, err := client.CallActions(ctx, "echo", []message.ActionRequest{{Action: "ping"}}, WithSuppressResponse())

	require.NoError(t, err)
	assert.Empty(t, resp.Actions)
}

func TestClientCallActionsParallelRejectsSuppressResponse(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	client := newTestClient(t, ctx)
	_, err := client.CallActionsParallel(ctx, "echo", []message.ActionRequest{{Action: "ping"}}, WithSuppressResponse())

	require.Error(t, err)
}

func TestClientCallJobsParallelRejectsSuppressResponse(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	client := newTestClient(t, ctx)
	jobs := []JobCall{{ServiceName: "echo", Actions: []message.ActionRequest{{Action: "ping"}}}}
	_, err := client.CallJobsParallel(ctx, jobs, false, WithSuppressResponse())

	require.Error(t, err)
}

func TestClientHandlerForReusesCachedHandler(t *testing.T) {
	calls := 0
	client := NewClient(func(serviceName string) (*ServiceHandler, error) {
		calls++
		clientTransport, _ := transport.NewInMemoryTransportPair()
		return NewServiceHandler(serviceName, clientTransport, serializer.NewJSONSerializer(), nil, nil, logging.GetNoopLogger()), nil
	}, logging.GetNoopLogger())

	_, err := client.handlerFor("svc")
	require.NoError(t, err)
	_, err = client.handlerFor("svc")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestClientCallActionReturnsImproperlyConfiguredWhenFactoryFails(t *testing.T) {
	client := NewClient(func(serviceName string) (*ServiceHandler, error) {
		return nil, assertErr{}
	}, logging.GetNoopLogger())

	_, err := client.CallAction(context.Background(), "missing", "ping", nil)
	require.Error(t, err)
	var improperlyConfigured *soaerrors.ImproperlyConfigured
	assert.ErrorAs(t, err, &improperlyConfigured)
}

type assertErr struct{}

func (assertErr) Error() string { return "factory failure" }
