// file: internal/stub/interceptor.go
package stub

import (
	"context"
	"sync"

	"github.com/dkoosis/gosoa/internal/soaerrors"
)

// ActionStub computes the response body and errors for one intercepted call.
type ActionStub func(ctx context.Context, body map[string]interface{}) (map[string]interface{}, []soaerrors.Error)

type stubEntry struct {
	fn ActionStub
}

// Interceptor is a (service, action)-scoped stack of programmed responses.
// Stubbing pushes an entry and returns an exit function that pops it,
// RAII-style; nested stubs for the same (service, action) shadow one
// another, with the innermost (most recently pushed) stub winning, mirroring
// how pysoa.test.stub_service's context-manager-based stub_action nests.
type Interceptor struct {
	mu       sync.Mutex
	stacks   map[string][]stubEntry
	recorder *Recorder
}

// NewInterceptor constructs an empty Interceptor with its own Recorder.
func NewInterceptor() *Interceptor {
	return &Interceptor{
		stacks:   make(map[string][]stubEntry),
		recorder: NewRecorder(),
	}
}

// Recorder returns the interceptor's call recorder.
func (i *Interceptor) Recorder() *Recorder { return i.recorder }

// Stub pushes fn as the current stub for (service, action) and returns an
// exit function that pops it back off.
func (i *Interceptor) Stub(service, action string, fn ActionStub) func() {
	k := key(service, action)
	i.mu.Lock()
	i.stacks[k] = append(i.stacks[k], stubEntry{fn: fn})
	i.mu.Unlock()

	return func() {
		i.mu.Lock()
		defer i.mu.Unlock()
		s := i.stacks[k]
		if len(s) > 0 {
			i.stacks[k] = s[:len(s)-1]
		}
	}
}

// StubFixed is a convenience over Stub for a stub that always returns the
// same body/errors regardless of the request, mirroring
// StubClient.stub_action's simple (body, errors) form.
func (i *Interceptor) StubFixed(service, action string, body map[string]interface{}, errs []soaerrors.Error) func() {
	return i.Stub(service, action, func(_ context.Context, _ map[string]interface{}) (map[string]interface{}, []soaerrors.Error) {
		return body, errs
	})
}

// Intercept looks up the innermost stub for (service, action); if found, it
// records the call and runs the stub, returning found=true. If not found,
// found is false and the caller should fall back to its own "unknown
// action" handling, mirroring StubServer.process_message's behavior for an
// action with no programmed response.
func (i *Interceptor) Intercept(ctx context.Context, service, action string, body map[string]interface{}) (respBody map[string]interface{}, errs []soaerrors.Error, found bool) {
	k := key(service, action)
	i.mu.Lock()
	s := i.stacks[k]
	var entry stubEntry
	found = len(s) > 0
	if found {
		entry = s[len(s)-1]
	}
	i.mu.Unlock()
	if !found {
		return nil, nil, false
	}
	i.recorder.record(service, action, body)
	respBody, errs = entry.fn(ctx, body)
	return respBody, errs, true
}
