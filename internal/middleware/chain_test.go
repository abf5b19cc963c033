// file: internal/middleware/chain_test.go
package middleware

import (
	"context"
	"testing"

	"github.com/dkoosis/gosoa/internal/message"
	"github.com/stretchr/testify/assert"
)

func TestComposeServerJobAppliesOutermostFirst(t *testing.T) {
	var order []string

	record := func(name string) ServerJobMiddleware {
		return func(next ServerJobHandler) ServerJobHandler {
			return func(ctx context.Context, request message.JobRequest) (message.JobResponse, error) {
				order = append(order, name+":before")
				response, err := next(ctx, request)
				order = append(order, name+":after")
				return response, err
			}
		}
	}

	base := func(ctx context.Context, request message.JobRequest) (message.JobResponse, error) {
		order = append(order, "base")
		return message.JobResponse{}, nil
	}

	handler := ComposeServerJob([]ServerJobMiddleware{record("outer"), record("inner")}, base)
	_, err := handler(context.Background(), message.JobRequest{})

	assert.NoError(t, err)
	assert.Equal(t, []string{"outer:before", "inner:before", "base", "inner:after", "outer:after"}, order)
}

func TestComposeServerActionAppliesOutermostFirst(t *testing.T) {
	var order []string

	record := func(name string) ServerActionMiddleware {
		return func(next ServerActionHandler) ServerActionHandler {
			return func(ctx context.Context, request message.ActionRequest) (message.ActionResponse, error) {
				order = append(order, name)
				return next(ctx, request)
			}
		}
	}

	base := func(ctx context.Context, request message.ActionRequest) (message.ActionResponse, error) {
		order = append(order, "base")
		return message.ActionResponse{Action: request.Action}, nil
	}

	handler := ComposeServerAction([]ServerActionMiddleware{record("outer"), record("inner")}, base)
	response, err := handler(context.Background(), message.ActionRequest{Action: "do_thing"})

	assert.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner", "base"}, order)
	assert.Equal(t, "do_thing", response.Action)
}

func TestComposeClientRequestAppliesOutermostFirst(t *testing.T) {
	var order []string

	record := func(name string) ClientRequestMiddleware {
		return func(next ClientRequestHandler) ClientRequestHandler {
			return func(ctx context.Context, requestID int, request message.JobRequest) error {
				order = append(order, name)
				return next(ctx, requestID, request)
			}
		}
	}

	base := func(ctx context.Context, requestID int, request message.JobRequest) error {
		order = append(order, "base")
		return nil
	}

	handler := ComposeClientRequest([]ClientRequestMiddleware{record("outer"), record("inner")}, base)
	err := handler(context.Background(), 1, message.JobRequest{})

	assert.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner", "base"}, order)
}

func TestComposeWithEmptyChainReturnsBase(t *testing.T) {
	base := func(ctx context.Context, request message.JobRequest) (message.JobResponse, error) {
		return message.JobResponse{Context: message.Context{"marker": true}}, nil
	}

	handler := ComposeServerJob(nil, base)
	response, err := handler(context.Background(), message.JobRequest{})

	assert.NoError(t, err)
	assert.Equal(t, true, response.Context["marker"])
}
