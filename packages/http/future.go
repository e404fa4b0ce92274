package http

import (
	"context"
	"sync"
)

// Future is the single-settlement result of one request.
type Future struct {
	done chan struct{}

	mu      sync.Mutex
	settled bool
	resp    *Response
	err     error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// claim records the outcome without releasing waiters. Only the first call
// succeeds.
func (f *Future) claim(resp *Response, err error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settled {
		return false
	}
	f.settled = true
	f.resp = resp
	f.err = err
	return true
}

// release unblocks Await. It must follow a successful claim exactly once.
func (f *Future) release() {
	close(f.done)
}

// Done is closed once the future settles.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Await blocks until settlement. err is nil or an *Error; resp is always set.
func (f *Future) Await() (*Response, error) {
	<-f.done
	return f.resp, f.err
}

// AwaitContext is Await bounded by ctx. Giving up does not cancel the request;
// cancel the context passed to Open for that.
func (f *Future) AwaitContext(ctx context.Context) (*Response, error) {
	select {
	case <-f.done:
		return f.resp, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Settled reports whether the future has settled.
func (f *Future) Settled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settled
}
