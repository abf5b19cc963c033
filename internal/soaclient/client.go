// file: internal/soaclient/client.go
package soaclient

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/dkoosis/gosoa/internal/logging"
	"github.com/dkoosis/gosoa/internal/message"
	"github.com/dkoosis/gosoa/internal/soaerrors"
	"github.com/dkoosis/gosoa/internal/transport"
)

// HandlerFactory lazily constructs the ServiceHandler for a service name not
// yet cached by the Client, mirroring ClientRouter._make_client.
type HandlerFactory func(serviceName string) (*ServiceHandler, error)

// Client routes calls across named services, caching one ServiceHandler per
// service, and offers blocking, parallel, and future-based call variants.
// Mirrors pysoa.client.client.Client plus the multi-service routing behavior
// of pysoa.client.router.ClientRouter.
type Client struct {
	factory HandlerFactory
	logger  logging.Logger

	mu       sync.Mutex
	handlers map[string]*ServiceHandler
}

// NewClient constructs a Client that builds service handlers on demand via factory.
func NewClient(factory HandlerFactory, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &Client{
		factory:  factory,
		logger:   logger.WithField("component", "soaclient"),
		handlers: make(map[string]*ServiceHandler),
	}
}

// handlerFor returns the cached ServiceHandler for serviceName, constructing
// and caching it via the factory on first use.
func (c *Client) handlerFor(serviceName string) (*ServiceHandler, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h, ok := c.handlers[serviceName]; ok {
		return h, nil
	}
	h, err := c.factory(serviceName)
	if err != nil {
		return nil, &soaerrors.ImproperlyConfigured{Message: "no client configured for service " + serviceName + ": " + err.Error()}
	}
	c.handlers[serviceName] = h
	return h, nil
}

// CallOptions configures a single call across all of the call variants below.
type CallOptions struct {
	Switches          []int
	ContinueOnError   bool
	Context           message.Context
	CorrelationID     string
	RaiseActionErrors bool
	SuppressResponse  bool
}

// CallOption mutates CallOptions; see the With* functions below.
type CallOption func(*CallOptions)

func defaultCallOptions() CallOptions {
	return CallOptions{RaiseActionErrors: true}
}

// WithSwitches sets the feature-flag switches carried on Control.Switches.
func WithSwitches(switches ...int) CallOption {
	return func(o *CallOptions) { o.Switches = switches }
}

// WithContinueOnError sets Control.ContinueOnError.
func WithContinueOnError(continueOnError bool) CallOption {
	return func(o *CallOptions) { o.ContinueOnError = continueOnError }
}

// WithContext merges extra caller-supplied context fields onto the request.
func WithContext(ctx message.Context) CallOption {
	return func(o *CallOptions) { o.Context = ctx }
}

// WithCorrelationID pins the correlation ID instead of letting the client
// generate one.
func WithCorrelationID(id string) CallOption {
	return func(o *CallOptions) { o.CorrelationID = id }
}

// WithoutRaisingActionErrors disables CallActionError for action-level
// errors, leaving them attached to the returned JobResponse for the caller
// to inspect instead.
func WithoutRaisingActionErrors() CallOption {
	return func(o *CallOptions) { o.RaiseActionErrors = false }
}

// WithSuppressResponse opts the call out of waiting for a response entirely,
// a one-way send valid only with CallActions/CallAction; CallActionsParallel
// and CallJobsParallel both reject it, since it would desynchronize their
// send-all-then-drain-all iteration.
func WithSuppressResponse() CallOption {
	return func(o *CallOptions) { o.SuppressResponse = true }
}

func generateCorrelationID() string {
	return uuid.New().String()
}

func (c *Client) buildJobRequest(actions []message.ActionRequest, opts CallOptions) message.JobRequest {
	ctx := message.Context{}
	for k, v := range opts.Context {
		ctx[k] = v
	}
	correlationID := opts.CorrelationID
	if correlationID == "" {
		correlationID = generateCorrelationID()
	}
	return message.JobRequest{
		Actions: actions,
		Control: message.Control{
			ContinueOnError:  opts.ContinueOnError,
			Switches:         opts.Switches,
			CorrelationID:    correlationID,
			SuppressResponse: opts.SuppressResponse,
		},
		Context: ctx,
	}
}

// CallActions dispatches one job (one or more actions) to serviceName and
// blocks for its JobResponse. A JobError is returned if the response carries
// job-level errors; otherwise, unless WithoutRaisingActionErrors was given, a
// CallActionError is returned if any individual action came back with
// errors. Mirrors pysoa.client.client.Client.call_actions.
func (c *Client) CallActions(ctx context.Context, serviceName string, actions []message.ActionRequest, opts ...CallOption) (message.JobResponse, error) {
	options := defaultCallOptions()
	for _, o := range opts {
		o(&options)
	}

	handler, err := c.handlerFor(serviceName)
	if err != nil {
		return message.JobResponse{}, err
	}

	job := c.buildJobRequest(actions, options)
	requestID := handler.NextRequestID()

	if options.SuppressResponse {
		if err := handler.SendOneWay(ctx, requestID, job); err != nil {
			return message.JobResponse{}, err
		}
		return message.JobResponse{}, nil
	}

	if err := handler.Send(ctx, requestID, job); err != nil {
		return message.JobResponse{}, err
	}
	response, err := handler.ResponseFor(ctx, requestID)
	if err != nil {
		return message.JobResponse{}, err
	}
	if response.HasErrors() {
		return response, &soaerrors.JobError{Errors: response.Errors}
	}
	if options.RaiseActionErrors {
		var withErrors []soaerrors.ActionResponseLike
		for _, a := range response.Actions {
			if len(a.Errors) > 0 {
				withErrors = append(withErrors, a)
			}
		}
		if len(withErrors) > 0 {
			return response, &soaerrors.CallActionError{ActionResponses: withErrors}
		}
	}
	return response, nil
}

// CallAction dispatches a single action and unwraps its ActionResponse,
// mirroring pysoa.client.client.Client.call_action.
func (c *Client) CallAction(ctx context.Context, serviceName, action string, body map[string]interface{}, opts ...CallOption) (message.ActionResponse, error) {
	response, err := c.CallActions(ctx, serviceName, []message.ActionRequest{{Action: action, Body: body}}, opts...)
	if len(response.Actions) == 0 {
		if err != nil {
			return message.ActionResponse{}, err
		}
		return message.ActionResponse{}, errors.New("CallAction: no action response returned")
	}
	return response.Actions[0], err
}

// CallActionsParallel splits actions into one single-action job per element,
// sends them all to serviceName up front, then drains responses, preserving
// input order in the returned slice regardless of arrival order. No
// additional threading is used: the handler's buffered-response map absorbs
// out-of-order arrivals the same way it does for any other caller of
// ResponseFor. Mirrors pysoa.client.client.Client.call_actions_parallel.
// suppress_response is rejected, since a one-way send would desynchronize
// the iteration.
func (c *Client) CallActionsParallel(ctx context.Context, serviceName string, actions []message.ActionRequest, opts ...CallOption) ([]message.ActionResponse, error) {
	options := defaultCallOptions()
	for _, o := range opts {
		o(&options)
	}
	if options.SuppressResponse {
		return nil, errors.New("soaclient: suppress_response is not supported by CallActionsParallel")
	}

	handler, err := c.handlerFor(serviceName)
	if err != nil {
		return nil, err
	}

	requestIDs := make([]int, len(actions))
	for i, action := range actions {
		job := c.buildJobRequest([]message.ActionRequest{action}, options)
		requestID := handler.NextRequestID()
		if err := handler.Send(ctx, requestID, job); err != nil {
			return nil, err
		}
		requestIDs[i] = requestID
	}

	results := make([]message.ActionResponse, len(actions))
	var firstErr error
	for i, requestID := range requestIDs {
		response, err := handler.ResponseFor(ctx, requestID)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if response.HasErrors() {
			if firstErr == nil {
				firstErr = &soaerrors.JobError{Errors: response.Errors}
			}
			continue
		}
		if len(response.Actions) == 0 {
			continue
		}
		results[i] = response.Actions[0]
		if options.RaiseActionErrors && len(results[i].Errors) > 0 && firstErr == nil {
			firstErr = &soaerrors.CallActionError{ActionResponses: []soaerrors.ActionResponseLike{results[i]}}
		}
	}
	return results, firstErr
}

// JobCall names one multi-action job to dispatch to one service, for use
// with CallJobsParallel.
type JobCall struct {
	ServiceName string
	Actions     []message.ActionRequest
}

// dispatchedJob pairs a JobCall with the handler and request ID it was sent
// under, so CallJobsParallel can drain responses after every job has been
// sent, rather than blocking on each one before sending the next.
type dispatchedJob struct {
	handler   *ServiceHandler
	requestID int
}

// CallJobsParallel dispatches each JobCall to its own service, sending all
// of them up front and only then draining responses, preserving input order
// in the returned slice regardless of arrival order or which service
// answers first. When catchTransportErrors is true, a transport-level
// failure on one job is recorded in that job's slot (as a zero-value
// JobResponse) rather than aborting the others, mirroring
// pysoa.client.client.Client.call_jobs_parallel's catch_transport_errors
// kwarg. suppress_response is rejected for the same reason it is rejected by
// CallActionsParallel.
func (c *Client) CallJobsParallel(ctx context.Context, jobs []JobCall, catchTransportErrors bool, opts ...CallOption) ([]message.JobResponse, error) {
	options := defaultCallOptions()
	for _, o := range opts {
		o(&options)
	}
	if options.SuppressResponse {
		return nil, errors.New("soaclient: suppress_response is not supported by CallJobsParallel")
	}

	sent := make([]dispatchedJob, len(jobs))
	for i, job := range jobs {
		handler, err := c.handlerFor(job.ServiceName)
		if err != nil {
			return nil, err
		}
		request := c.buildJobRequest(job.Actions, options)
		requestID := handler.NextRequestID()
		if err := handler.Send(ctx, requestID, request); err != nil {
			return nil, err
		}
		sent[i] = dispatchedJob{handler: handler, requestID: requestID}
	}

	responses := make([]message.JobResponse, len(jobs))
	var firstErr error
	for i, d := range sent {
		response, err := d.handler.ResponseFor(ctx, d.requestID)
		if err != nil {
			var transportErr *transport.Error
			if catchTransportErrors && errors.As(err, &transportErr) {
				continue
			}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		responses[i] = response
		if response.HasErrors() && firstErr == nil {
			firstErr = &soaerrors.JobError{Errors: response.Errors}
		}
	}
	return responses, firstErr
}

// ActionFuture is the handle returned by CallActionFuture.
type ActionFuture struct {
	job *Future
}

// Result blocks until the underlying job settles, then returns the single
// action's response.
func (f *ActionFuture) Result(ctx context.Context) (message.ActionResponse, error) {
	response, err := f.job.Result(ctx)
	if err != nil {
		return message.ActionResponse{}, err
	}
	if len(response.Actions) == 0 {
		return message.ActionResponse{}, nil
	}
	return response.Actions[0], nil
}

// Exception returns the cached error, if any, without blocking.
func (f *ActionFuture) Exception() error { return f.job.Exception() }

// CallActionFuture dispatches action without blocking and returns a handle
// whose Result() blocks on demand, mirroring the original's call_action with
// a "future" return expectation wrapper.
func (c *Client) CallActionFuture(ctx context.Context, serviceName, action string, body map[string]interface{}, opts ...CallOption) *ActionFuture {
	future := NewFuture()
	go func() {
		response, err := c.CallActions(ctx, serviceName, []message.ActionRequest{{Action: action, Body: body}}, opts...)
		if err != nil {
			future.fail(err)
			return
		}
		future.resolve(response)
	}()
	return &ActionFuture{job: future}
}

// CallActionsFuture dispatches a multi-action job without blocking and
// returns a Future whose Result() blocks on demand.
func (c *Client) CallActionsFuture(ctx context.Context, serviceName string, actions []message.ActionRequest, opts ...CallOption) *Future {
	future := NewFuture()
	go func() {
		response, err := c.CallActions(ctx, serviceName, actions, opts...)
		if err != nil {
			future.fail(err)
			return
		}
		future.resolve(response)
	}()
	return future
}

// SendRequest dispatches actions to serviceName without waiting for a
// response and returns the allocated request ID, mirroring
// pysoa.client.client.Client.send_request.
func (c *Client) SendRequest(ctx context.Context, serviceName string, actions []message.ActionRequest, opts ...CallOption) (int, error) {
	options := defaultCallOptions()
	for _, o := range opts {
		o(&options)
	}
	handler, err := c.handlerFor(serviceName)
	if err != nil {
		return 0, err
	}
	job := c.buildJobRequest(actions, options)
	requestID := handler.NextRequestID()
	if err := handler.Send(ctx, requestID, job); err != nil {
		return 0, err
	}
	return requestID, nil
}

// GetAllResponses returns an iterator-style closure that yields each
// outstanding response for serviceName in arrival order until none remain,
// mirroring pysoa.client.client.Client.get_all_responses's generator. The
// closure's final return value is false once there is nothing left to drain.
func (c *Client) GetAllResponses(ctx context.Context, serviceName string) (func() (requestID int, response message.JobResponse, ok bool, err error), error) {
	handler, err := c.handlerFor(serviceName)
	if err != nil {
		return nil, err
	}
	return func() (int, message.JobResponse, bool, error) {
		if !handler.HasOutstanding() {
			return 0, message.JobResponse{}, false, nil
		}
		requestID, response, err := handler.NextResponse(ctx)
		return requestID, response, true, err
	}, nil
}
