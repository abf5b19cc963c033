// file: internal/expansion/router_test.go
package expansion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/gosoa/internal/logging"
	"github.com/dkoosis/gosoa/internal/message"
	"github.com/dkoosis/gosoa/internal/serializer"
	"github.com/dkoosis/gosoa/internal/soaclient"
	"github.com/dkoosis/gosoa/internal/transport"
)

// startTaskServer answers get_task requests with a synthetic task object
// carrying an owner_id field ripe for expansion.
func startTaskServer(ctx context.Context, t *testing.T, serverTransport transport.ServerTransport, s serializer.Serializer) {
	t.Helper()
	go func() {
		for {
			requestID, _, body, err := serverTransport.ReceiveRequestMessage(ctx)
			if err != nil {
				return
			}
			payload, err := s.Decode(body)
			require.NoError(t, err)

			actionsRaw, _ := payload["actions"].([]interface{})
			var responseActions []map[string]interface{}
			for _, raw := range actionsRaw {
				m, _ := raw.(map[string]interface{})
				responseActions = append(responseActions, map[string]interface{}{
					"action": m["action"],
					"body": map[string]interface{}{
						"_type":    "task",
						"owner_id": "7",
					},
				})
			}
			responseBody, err := s.Encode(map[string]interface{}{"actions": responseActions})
			require.NoError(t, err)
			meta := transport.Meta{"mime_type": s.MIMEType()}
			if err := serverTransport.SendResponseMessage(ctx, requestID, meta, responseBody); err != nil {
				return
			}
		}
	}()
}

func newRouterTestClient(ctx context.Context, t *testing.T) *soaclient.Client {
	t.Helper()
	s := serializer.NewJSONSerializer()

	taskClientTransport, taskServerTransport := transport.NewInMemoryTransportPair()
	startTaskServer(ctx, t, taskServerTransport, s)

	userClientTransport, userServerTransport := transport.NewInMemoryTransportPair()
	startUserLookupServer(ctx, t, userServerTransport, s)

	return soaclient.NewClient(func(serviceName string) (*soaclient.ServiceHandler, error) {
		switch serviceName {
		case "user":
			return soaclient.NewServiceHandler(serviceName, userClientTransport, s, nil, nil, logging.GetNoopLogger()), nil
		default:
			return soaclient.NewServiceHandler(serviceName, taskClientTransport, s, nil, nil, logging.GetNoopLogger()), nil
		}
	}, logging.GetNoopLogger())
}

func TestRouterCallActionExpandsResponseBody(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	client := newRouterTestClient(ctx, t)
	engine := NewEngine(newTestConverter(), client)
	router := NewRouter(client, engine)

	resp, err := router.CallAction(ctx, "task", "get_task", nil, map[string][]string{"task": {"owner"}})
	require.NoError(t, err)

	owner, ok := resp.Body["owner"].(map[string]interface{})
	require.True(t, ok, "owner field should be populated by the expansion pass")
	assert.Equal(t, "user-7", owner["name"])
}

func TestRouterCallActionSkipsExpansionWhenNoneRequested(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	client := newRouterTestClient(ctx, t)
	engine := NewEngine(newTestConverter(), client)
	router := NewRouter(client, engine)

	resp, err := router.CallAction(ctx, "task", "get_task", nil, nil)
	require.NoError(t, err)

	_, hasOwner := resp.Body["owner"]
	assert.False(t, hasOwner)
	assert.Equal(t, "7", resp.Body["owner_id"])
}

func TestRouterCallActionsExpandsEveryActionResponse(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	client := newRouterTestClient(ctx, t)
	engine := NewEngine(newTestConverter(), client)
	router := NewRouter(client, engine)

	actions := []message.ActionRequest{{Action: "get_task"}, {Action: "get_task"}}
	resp, err := router.CallActions(ctx, "task", actions, map[string][]string{"task": {"owner"}})
	require.NoError(t, err)

	require.Len(t, resp.Actions, 2)
	for _, a := range resp.Actions {
		owner, ok := a.Body["owner"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "user-7", owner["name"])
	}
}
