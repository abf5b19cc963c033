// file: internal/soaclient/future.go
package soaclient

import (
	"context"
	"sync"

	"github.com/dkoosis/gosoa/internal/fsm"
	"github.com/dkoosis/gosoa/internal/logging"
	"github.com/dkoosis/gosoa/internal/message"
)

const (
	futureStatePending  fsm.State = "pending"
	futureStateResolved fsm.State = "resolved"
	futureStateFailed   fsm.State = "failed"

	futureEventReceive fsm.Event = "receive"
	futureEventFail    fsm.Event = "fail"
)

// Future is the handle returned by the *_future client call variants: the
// underlying job has been dispatched, but Result() blocks until its
// response arrives (or the supplied context is cancelled), caching the
// outcome so repeated calls don't re-block. Its lifecycle is modeled as a
// small pending->resolved/failed state machine, the same role looplab/fsm
// plays for the original's RTM auth-flow state.
type Future struct {
	mu      sync.Mutex
	machine fsm.FSM
	result  message.JobResponse
	err     error
	done    chan struct{}
}

// NewFuture constructs a pending Future.
func NewFuture() *Future {
	f := &Future{done: make(chan struct{})}
	f.machine = fsm.NewFSM(futureStatePending, logging.GetNoopLogger())
	f.machine.AddTransition(fsm.Transition{From: []fsm.State{futureStatePending}, To: futureStateResolved, Event: futureEventReceive})
	f.machine.AddTransition(fsm.Transition{From: []fsm.State{futureStatePending}, To: futureStateFailed, Event: futureEventFail})
	if err := f.machine.Build(); err != nil {
		// Transitions above are static and always valid; a build failure here
		// would indicate a programming error in this file, not caller input.
		panic("soaclient: future state machine failed to build: " + err.Error())
	}
	return f
}

// resolve transitions the future to resolved and unblocks any waiters. The
// transition only succeeds from pending, so a second call (a stray duplicate
// delivery racing the first) is a no-op: it neither overwrites the cached
// result nor double-closes done.
func (f *Future) resolve(response message.JobResponse) {
	if err := f.machine.Transition(context.Background(), futureEventReceive, nil); err != nil {
		return
	}
	f.mu.Lock()
	f.result = response
	f.mu.Unlock()
	close(f.done)
}

// fail transitions the future to failed and unblocks any waiters, the same
// guarded-by-state-machine way resolve does.
func (f *Future) fail(err error) {
	if transitionErr := f.machine.Transition(context.Background(), futureEventFail, nil); transitionErr != nil {
		return
	}
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
	close(f.done)
}

// Result blocks until the future resolves or fails, or ctx is cancelled,
// then returns the cached outcome on every subsequent call.
func (f *Future) Result(ctx context.Context) (message.JobResponse, error) {
	select {
	case <-f.done:
	case <-ctx.Done():
		return message.JobResponse{}, ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result, f.err
}

// Exception returns the cached error if the future has already settled with
// one, or nil if it is still pending or settled successfully.
func (f *Future) Exception() error {
	select {
	case <-f.done:
	default:
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// State reports the future's current lifecycle state.
func (f *Future) State() fsm.State {
	return f.machine.CurrentState()
}
