// file: internal/soaserver/server.go
package soaserver

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/dkoosis/gosoa/internal/logging"
	"github.com/dkoosis/gosoa/internal/message"
	"github.com/dkoosis/gosoa/internal/middleware"
	"github.com/dkoosis/gosoa/internal/soaerrors"
	"github.com/dkoosis/gosoa/internal/switches"
)

// SwitchResolver is implemented by actions that stand in for a set of
// concrete actions chosen by feature-flag switch, such as SwitchedAction.
// The Server resolves through it before running the resolved action's own
// schema/validate/run pipeline.
type SwitchResolver interface {
	Resolve(sw switches.Set) (Action, error)
}

// Server holds one service's action table and its job/action middleware
// chains, and runs the per-job dispatch loop, mirroring the core of
// pysoa.server.server.Server.process_request (minus process
// supervision/daemonization, which is out of scope).
type Server struct {
	ServiceName string

	actions  map[string]Action
	actionMW []middleware.ServerActionMiddleware
	logger   logging.Logger

	processJob middleware.ServerJobHandler
}

// NewServer constructs a Server for serviceName with the given action table
// and job/action middleware chains, composed in onion order around the base
// dispatch loop.
func NewServer(
	serviceName string,
	actions map[string]Action,
	jobMW []middleware.ServerJobMiddleware,
	actionMW []middleware.ServerActionMiddleware,
	logger logging.Logger,
) *Server {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	s := &Server{
		ServiceName: serviceName,
		actions:     actions,
		actionMW:    actionMW,
		logger:      logger.WithField("service", serviceName),
	}
	s.processJob = middleware.ComposeServerJob(jobMW, s.baseProcessJob)
	return s
}

// ProcessJob runs request through the job middleware chain and the
// per-action dispatch loop, mirroring Server.process_request. Any job-level
// error (envelope validation, a promoted response-schema defect, or a job
// middleware veto) is converted into a JobResponse carrying Errors and no
// Actions, mirroring process_request's outer exception handling around the
// job middleware chain.
func (s *Server) ProcessJob(ctx context.Context, request message.JobRequest) message.JobResponse {
	response, err := s.processJob(ctx, request)
	if err != nil {
		return message.JobResponse{
			Actions: []message.ActionResponse{},
			Errors:  errorsFromJobErr(err),
			Context: echoContext(request),
		}
	}
	return response
}

func errorsFromJobErr(err error) []soaerrors.Error {
	var jobErr *soaerrors.JobError
	if errors.As(err, &jobErr) {
		return jobErr.Errors
	}
	return []soaerrors.Error{soaerrors.NewServerError(err.Error(), fmt.Sprintf("%+v", err))}
}

// echoContext copies request.Context and ensures correlation_id is present
// whenever the request carried one in Control, mirroring the requirement
// that a JobResponse's context echo "at minimum correlation_id".
func echoContext(request message.JobRequest) message.Context {
	ctx := message.Context{}
	for k, v := range request.Context {
		ctx[k] = v
	}
	if request.Control.CorrelationID != "" {
		ctx["correlation_id"] = request.Control.CorrelationID
	}
	return ctx
}

// validateEnvelope checks the job envelope itself, before any action runs:
// at least one action must be present, and every action must name itself.
func validateEnvelope(request message.JobRequest) error {
	var errs []soaerrors.Error
	if len(request.Actions) == 0 {
		errs = append(errs, soaerrors.NewMissing("actions", "a job must carry at least one action"))
	}
	for i, actionReq := range request.Actions {
		if actionReq.Action == "" {
			errs = append(errs, soaerrors.NewMissing(fmt.Sprintf("actions.%d.action", i), "action name is required"))
		}
	}
	if len(errs) > 0 {
		return &soaerrors.JobError{Errors: errs}
	}
	return nil
}

// baseProcessJob is the job middleware chain's innermost handler: envelope
// validation followed by the per-action loop itself.
func (s *Server) baseProcessJob(ctx context.Context, request message.JobRequest) (message.JobResponse, error) {
	if err := validateEnvelope(request); err != nil {
		return message.JobResponse{}, err
	}

	activeSwitches := switches.FromInts(request.Control.Switches)
	response := message.JobResponse{Context: echoContext(request)}

	actionHandler := middleware.ComposeServerAction(s.actionMW, func(ctx context.Context, actionReq message.ActionRequest) (message.ActionResponse, error) {
		return s.dispatchAction(ctx, actionReq, activeSwitches, request)
	})

	for _, actionReq := range request.Actions {
		actionResp, err := actionHandler(ctx, actionReq)
		if err != nil {
			return message.JobResponse{}, err
		}
		response.Actions = append(response.Actions, actionResp)
		if len(actionResp.Errors) > 0 && !request.Control.ContinueOnError {
			break
		}
	}
	return response, nil
}

// dispatchAction looks up the named action (resolving through SwitchResolver
// if applicable) and runs it through the base Action pipeline. Most failures
// are carried in the returned ActionResponse; a ResponseValidationError
// escapes as a *soaerrors.JobError instead, since it is reported as a
// job-level SERVER_ERROR rather than attributed to this one action.
func (s *Server) dispatchAction(ctx context.Context, actionReq message.ActionRequest, activeSwitches switches.Set, job message.JobRequest) (message.ActionResponse, error) {
	action, ok := s.actions[actionReq.Action]
	if !ok {
		return message.ActionResponse{Action: actionReq.Action, Errors: []soaerrors.Error{soaerrors.NewUnknownAction(actionReq.Action)}}, nil
	}

	if resolver, ok := action.(SwitchResolver); ok {
		resolved, err := resolver.Resolve(activeSwitches)
		if err != nil {
			return message.ActionResponse{
				Action: actionReq.Action,
				Errors: []soaerrors.Error{soaerrors.NewServerError(err.Error(), "")},
			}, nil
		}
		action = resolved
	}

	enriched := &EnrichedActionRequest{
		Action:   actionReq.Action,
		Body:     actionReq.Body,
		Switches: activeSwitches,
		Context:  job.Context,
		Control:  job.Control,
	}
	resp, err := RunAction(ctx, action, enriched)
	if err != nil {
		var respErr *soaerrors.ResponseValidationError
		if errors.As(err, &respErr) {
			return message.ActionResponse{}, &soaerrors.JobError{
				Errors: []soaerrors.Error{soaerrors.NewServerError(respErr.Error(), fmt.Sprintf("%+v", err))},
			}
		}
		return message.ActionResponse{
			Action: actionReq.Action,
			Errors: []soaerrors.Error{soaerrors.NewServerError(err.Error(), fmt.Sprintf("%+v", err))},
		}, nil
	}
	return resp, nil
}
