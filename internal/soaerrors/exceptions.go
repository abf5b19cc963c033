// file: internal/soaerrors/exceptions.go
package soaerrors

import (
	"fmt"
	"strings"
)

// JobError is raised when a JobResponse carries job-level errors (as opposed
// to per-action errors), mirroring pysoa.client.client.Client.JobError /
// pysoa.server.errors.JobError.
type JobError struct {
	Errors []Error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("JobError: %s", formatErrors(e.Errors))
}

// CallActionError is raised by the Client's blocking call_action/call_actions
// helpers when one or more ActionResponses came back with errors attached,
// mirroring pysoa.client.client.Client.CallActionError.
type CallActionError struct {
	ActionResponses []ActionResponseLike
}

// ActionResponseLike is the minimal shape CallActionError needs from an
// action response; internal/message.ActionResponse satisfies it.
type ActionResponseLike interface {
	GetAction() string
	GetErrors() []Error
}

func (e *CallActionError) Error() string {
	var b strings.Builder
	b.WriteString("CallActionError: ")
	for i, r := range e.ActionResponses {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %s", r.GetAction(), formatErrors(r.GetErrors()))
	}
	return b.String()
}

// CallJobError aggregates several JobErrors into one error value.
// CallJobsParallel does not return it; it reports the first failure it meets.
type CallJobError struct {
	JobErrors []*JobError
}

func (e *CallJobError) Error() string {
	return fmt.Sprintf("CallJobError: %d job(s) failed", len(e.JobErrors))
}

// ActionError is raised from within an Action's request-validation or
// validate() hook to short-circuit run(), mirroring pysoa.server.errors.ActionError.
type ActionError struct {
	Errors []Error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("ActionError: %s", formatErrors(e.Errors))
}

// ResponseValidationError is raised when an Action's return value fails its
// own response_schema. Per base.py this is always the service's fault, never
// the caller's, so it is always mapped to a SERVER_ERROR by the dispatcher.
type ResponseValidationError struct {
	Action string
	Detail string
}

func (e *ResponseValidationError) Error() string {
	return fmt.Sprintf("ResponseValidationError: action %q produced an invalid response: %s", e.Action, e.Detail)
}

// ImproperlyConfigured is raised when client/server construction is given
// settings that don't make sense (e.g. an unrecognized service name),
// mirroring pysoa.client.client.Client.ImproperlyConfigured.
type ImproperlyConfigured struct {
	Message string
}

func (e *ImproperlyConfigured) Error() string { return "ImproperlyConfigured: " + e.Message }

// InvalidExpansionKey is raised when an expansion request names a key the
// expansion converter has no TypeExpansion registered for.
type InvalidExpansionKey struct {
	TypeName      string
	ExpansionName string
}

func (e *InvalidExpansionKey) Error() string {
	return fmt.Sprintf("InvalidExpansionKey: no expansion %q registered for type %q", e.ExpansionName, e.TypeName)
}

func formatErrors(errs []Error) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return strings.Join(parts, ", ")
}
