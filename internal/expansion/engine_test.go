// file: internal/expansion/engine_test.go
package expansion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/gosoa/internal/logging"
	"github.com/dkoosis/gosoa/internal/serializer"
	"github.com/dkoosis/gosoa/internal/soaclient"
	"github.com/dkoosis/gosoa/internal/transport"
)

// startUserLookupServer answers get_user requests with a synthetic user
// object keyed by whatever "id" it was asked to look up.
func startUserLookupServer(ctx context.Context, t *testing.T, serverTransport transport.ServerTransport, s serializer.Serializer) {
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
				reqBody, _ := m["body"].(map[string]interface{})
				id, _ := reqBody["id"].(string)
				responseActions = append(responseActions, map[string]interface{}{
					"action": m["action"],
					"body": map[string]interface{}{
						"user": map[string]interface{}{
							"_type": "user",
							"id":    id,
							"name":  "user-" + id,
						},
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

func TestEngineExpandSplicesResponseIntoDestField(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	clientTransport, serverTransport := transport.NewInMemoryTransportPair()
	s := serializer.NewJSONSerializer()
	startUserLookupServer(ctx, t, serverTransport, s)

	client := soaclient.NewClient(func(serviceName string) (*soaclient.ServiceHandler, error) {
		return soaclient.NewServiceHandler(serviceName, clientTransport, s, nil, nil, logging.GetNoopLogger()), nil
	}, logging.GetNoopLogger())

	converter := newTestConverter()
	engine := NewEngine(converter, client)

	task := map[string]interface{}{
		"_type":    "task",
		"owner_id": "42",
	}

	err := engine.Expand(ctx, []interface{}{task}, map[string][]string{"task": {"owner"}})
	require.NoError(t, err)

	owner, ok := task["owner"].(map[string]interface{})
	require.True(t, ok, "owner field should be populated")
	assert.Equal(t, "user-42", owner["name"])
	_, stillHasSourceField := task["owner_id"]
	assert.False(t, stillHasSourceField, "source field is deleted once expanded")
}

func TestEngineExpandSkipsAlreadyPopulatedDestField(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	clientTransport, serverTransport := transport.NewInMemoryTransportPair()
	s := serializer.NewJSONSerializer()
	startUserLookupServer(ctx, t, serverTransport, s)

	client := soaclient.NewClient(func(serviceName string) (*soaclient.ServiceHandler, error) {
		return soaclient.NewServiceHandler(serviceName, clientTransport, s, nil, nil, logging.GetNoopLogger()), nil
	}, logging.GetNoopLogger())

	converter := newTestConverter()
	engine := NewEngine(converter, client)

	task := map[string]interface{}{
		"_type":    "task",
		"owner_id": "42",
		"owner":    map[string]interface{}{"already": "here"},
	}

	err := engine.Expand(ctx, []interface{}{task}, map[string][]string{"task": {"owner"}})
	require.NoError(t, err)

	owner := task["owner"].(map[string]interface{})
	assert.Equal(t, "here", owner["already"])
}
