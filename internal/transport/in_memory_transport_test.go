// file: internal/transport/in_memory_transport_test.go
package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTransportRoundTripsRequestAndResponse(t *testing.T) {
	client, server := NewInMemoryTransportPair()
	ctx := context.Background()

	require.NoError(t, client.SendRequestMessage(ctx, 1, Meta{"mime_type": "application/json"}, []byte(`{"ping":true}`), time.Second))

	requestID, meta, body, err := server.ReceiveRequestMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, requestID)
	assert.Equal(t, "application/json", meta["mime_type"])
	assert.Equal(t, []byte(`{"ping":true}`), body)

	require.NoError(t, server.SendResponseMessage(ctx, requestID, Meta{"mime_type": "application/json"}, []byte(`{"pong":true}`)))

	responseID, _, responseBody, err := client.ReceiveResponseMessage(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, responseID)
	assert.Equal(t, []byte(`{"pong":true}`), responseBody)
}

func TestInMemoryTransportReceiveTimesOut(t *testing.T) {
	client, _ := NewInMemoryTransportPair()
	_, _, _, err := client.ReceiveResponseMessage(context.Background(), 10*time.Millisecond)
	require.Error(t, err)

	var transportErr *Error
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, ErrorTypeTimeout, transportErr.Type)
}

func TestInMemoryTransportRejectsOversizedMessage(t *testing.T) {
	client, _ := NewInMemoryTransportPair()
	oversized := make([]byte, MaxMessageSize+1)

	err := client.SendRequestMessage(context.Background(), 1, nil, oversized, time.Second)
	require.Error(t, err)

	var transportErr *Error
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, ErrorTypeMessageSize, transportErr.Type)
}

func TestInMemoryTransportOperationsFailAfterClose(t *testing.T) {
	client, server := NewInMemoryTransportPair()
	require.NoError(t, client.Close())

	err := client.SendRequestMessage(context.Background(), 1, nil, []byte("x"), time.Second)
	require.Error(t, err)
	assert.True(t, IsClosedError(err))

	require.NoError(t, server.Close())
	_, _, _, err = server.ReceiveRequestMessage(context.Background())
	require.Error(t, err)
	assert.True(t, IsClosedError(err))
}
