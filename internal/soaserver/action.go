// file: internal/soaserver/action.go
package soaserver

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/dkoosis/gosoa/internal/message"
	"github.com/dkoosis/gosoa/internal/soaerrors"
)

// RunAction runs the base.py Action.__call__ pipeline for one action against
// one already-resolved Action implementation: validate request body against
// RequestSchema (errors here are always caller errors), run the optional
// Validate hook, run Run(), then validate the result against ResponseSchema.
// A response-schema failure is always the service's fault, never the
// caller's, so it is not carried in the returned ActionResponse at all: it
// comes back as a *soaerrors.ResponseValidationError, for the caller to
// promote to a job-level SERVER_ERROR.
func RunAction(ctx context.Context, action Action, request *EnrichedActionRequest) (message.ActionResponse, error) {
	if provider, ok := action.(SchemaProvider); ok {
		if schema := provider.RequestSchema(); schema != nil {
			if errs := validateAgainstSchema(schema, request.Body); len(errs) > 0 {
				return message.ActionResponse{Action: request.Action, Errors: errs}, nil
			}
		}
	}

	if validator, ok := action.(RequestValidator); ok {
		if err := validator.Validate(ctx, request); err != nil {
			return message.ActionResponse{Action: request.Action, Errors: errorsFromActionErr(err)}, nil
		}
	}

	body, err := action.Run(ctx, request)
	if err != nil {
		var actionErr *soaerrors.ActionError
		if errors.As(err, &actionErr) {
			return message.ActionResponse{Action: request.Action, Errors: actionErr.Errors}, nil
		}
		return message.ActionResponse{
			Action: request.Action,
			Errors: []soaerrors.Error{soaerrors.NewServerError(err.Error(), fmt.Sprintf("%+v", errors.WithStack(err)))},
		}, nil
	}

	if provider, ok := action.(SchemaProvider); ok {
		if schema := provider.ResponseSchema(); schema != nil {
			if verr := schema.Validate(toSchemaDoc(body)); verr != nil {
				respErr := &soaerrors.ResponseValidationError{Action: request.Action, Detail: verr.Error()}
				return message.ActionResponse{}, errors.WithStack(respErr)
			}
		}
	}

	return message.ActionResponse{Action: request.Action, Body: body}, nil
}

// errorsFromActionErr extracts an ActionError's Errors, or synthesizes a
// single SERVER_ERROR if the validate() hook raised something else.
func errorsFromActionErr(err error) []soaerrors.Error {
	var actionErr *soaerrors.ActionError
	if errors.As(err, &actionErr) {
		return actionErr.Errors
	}
	return []soaerrors.Error{soaerrors.NewServerError(err.Error(), fmt.Sprintf("%+v", errors.WithStack(err)))}
}

// validateAgainstSchema validates body and converts any jsonschema failure
// into caller-fault INVALID errors, mirroring base.py's conformity-error to
// Error(..., is_caller_error=True) conversion.
func validateAgainstSchema(schema *jsonschema.Schema, body map[string]interface{}) []soaerrors.Error {
	if err := schema.Validate(toSchemaDoc(body)); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			return flattenValidationError(ve)
		}
		return []soaerrors.Error{soaerrors.NewInvalid("", err.Error())}
	}
	return nil
}

// toSchemaDoc hands body to the jsonschema validator as the untyped value it
// expects: an empty map is treated the same as an absent body.
func toSchemaDoc(body map[string]interface{}) interface{} {
	if body == nil {
		return map[string]interface{}{}
	}
	return body
}

func flattenValidationError(ve *jsonschema.ValidationError) []soaerrors.Error {
	if len(ve.Causes) == 0 {
		return []soaerrors.Error{soaerrors.NewInvalid(ve.InstanceLocation, ve.Message)}
	}
	var out []soaerrors.Error
	for _, cause := range ve.Causes {
		out = append(out, flattenValidationError(cause)...)
	}
	return out
}
