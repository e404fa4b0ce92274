package http

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/persephone/packages/status"
	"github.com/abdul-hamid-achik/persephone/packages/xhr"
)

// Logger is satisfied by *log.Logger.
type Logger interface {
	Printf(format string, v ...any)
}

// Observer is told about every settled request, exactly once.
type Observer interface {
	Observe(req *Request, resp *Response, err error)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(req *Request, resp *Response, err error)

func (f ObserverFunc) Observe(req *Request, resp *Response, err error) {
	f(req, resp, err)
}

type event int

const (
	eventLoad event = iota
	eventError
	eventTimeout
	eventAbort
)

// terminalKinds maps the transport fault events to their rejection kind.
// eventLoad is absent: its outcome depends on the status code.
var terminalKinds = map[event]Kind{
	eventError:   KindNetwork,
	eventTimeout: KindTimeout,
	eventAbort:   KindAbort,
}

// Executor drives one transport through one request.
type Executor struct {
	transport xhr.Transport
	registry  status.Registry
	locale    string
	logger    Logger
	observers []Observer

	mu      sync.Mutex
	state   xhr.ReadyState
	status  int
	req     *Request
	started time.Time
	future  *Future
}

type ExecutorOption func(*Executor)

func ExecutorLocale(locale string) ExecutorOption {
	return func(e *Executor) {
		e.locale = locale
	}
}

func ExecutorLogger(logger Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

func ExecutorObservers(observers ...Observer) ExecutorOption {
	return func(e *Executor) {
		e.observers = append(e.observers, observers...)
	}
}

// NewExecutor binds transport to a registry snapshot. The executor is single
// use, like the transport.
func NewExecutor(transport xhr.Transport, registry status.Registry, opts ...ExecutorOption) *Executor {
	e := &Executor{
		transport: transport,
		registry:  registry,
		locale:    DefaultLocale,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Open starts req and returns its future. Failures of the transport's own
// Open or Send are reported through the future as NetworkError. Cancelling
// ctx aborts the transport.
func (e *Executor) Open(ctx context.Context, req *Request) *Future {
	e.mu.Lock()
	if e.future != nil {
		e.mu.Unlock()
		panic("http: Executor.Open called twice")
	}
	f := newFuture()
	e.future = f
	e.req = req.clone()
	e.started = time.Now()
	e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		e.rejectNow(KindAbort, err)
		return f
	}

	e.transport.SetHooks(xhr.Hooks{
		ReadyStateChange: e.onReadyStateChange,
		Load:             func() { e.onTerminal(eventLoad, nil) },
		Error:            func(err error) { e.onTerminal(eventError, err) },
		Timeout:          func() { e.onTerminal(eventTimeout, nil) },
		Abort:            func() { e.onTerminal(eventAbort, nil) },
	})

	if err := e.send(); err != nil {
		e.rejectNow(KindNetwork, err)
		return f
	}

	if done := ctx.Done(); done != nil {
		go func() {
			select {
			case <-done:
				e.transport.Abort()
			case <-f.Done():
			}
		}()
	}
	return f
}

// State returns the last observed ready state.
func (e *Executor) State() xhr.ReadyState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Executor) send() error {
	req := e.req
	if err := e.transport.Open(req.Method, req.URL); err != nil {
		return fmt.Errorf("open %s %s: %w", req.Method, req.URL, err)
	}
	for k, v := range req.Headers {
		e.transport.SetRequestHeader(k, v)
	}
	if _, ok := lookupHeader(req.Headers, RequestIDHeader); !ok && req.ID != "" {
		e.transport.SetRequestHeader(RequestIDHeader, req.ID)
	}
	e.transport.SetTimeout(req.Timeout)
	if err := e.transport.Send(req.Body); err != nil {
		return fmt.Errorf("send %s %s: %w", req.Method, req.URL, err)
	}
	return nil
}

func (e *Executor) onReadyStateChange() {
	e.mu.Lock()
	e.advance()
	e.mu.Unlock()
}

// advance copies state and status from the transport. A lower ready state
// than the one already seen is ignored. Callers hold e.mu.
func (e *Executor) advance() {
	if s := e.transport.ReadyState(); s > e.state {
		e.state = s
	}
	e.status = e.transport.Status()
}

func (e *Executor) onTerminal(ev event, cause error) {
	e.mu.Lock()
	if e.future.Settled() {
		e.mu.Unlock()
		return
	}
	e.advance()

	var resp *Response
	var rejection *Error
	if kind, ok := terminalKinds[ev]; ok {
		resp = e.snapshot()
		rejection = e.fault(kind, resp, cause)
	} else {
		resp = e.buildResponse()
		switch {
		case resp.StatusCode == 0:
			rejection = e.fault(KindStatusZero, resp, nil)
		case !status.IsPassing(resp.StatusCode, e.registry):
			rejection = e.fault(KindInvalidStatus, resp, nil)
		}
	}
	e.mu.Unlock()

	e.settle(resp, rejection)
}

// buildResponse reads the finished response off the transport. Reaching it
// before DONE is a bug in the transport. Callers hold e.mu.
func (e *Executor) buildResponse() *Response {
	if e.state != xhr.Done {
		panic(fmt.Sprintf("http: response built in state %s", e.state))
	}
	return NewResponse(e.status, e.transport.AllResponseHeaders(), e.transport.ResponseText())
}

// snapshot is buildResponse for fault paths, where the transport may never
// have produced anything.
func (e *Executor) snapshot() *Response {
	if e.state != xhr.Done {
		return emptyResponse()
	}
	return e.buildResponse()
}

func (e *Executor) fault(kind Kind, resp *Response, cause error) *Error {
	err := NewLocalizedError(e.locale, kind, resp, cause)
	resp.ErrorDetail = err
	return err
}

func (e *Executor) rejectNow(kind Kind, cause error) {
	resp := emptyResponse()
	e.settle(resp, e.fault(kind, resp, cause))
}

func (e *Executor) settle(resp *Response, rejection *Error) {
	resp.Duration = time.Since(e.started)
	resp.RequestID = e.req.ID

	var err error
	if rejection != nil {
		err = rejection
	}
	if !e.future.claim(resp, err) {
		return
	}
	defer e.future.release()

	if e.logger != nil {
		outcome := "ok"
		if rejection != nil {
			outcome = string(rejection.Kind)
		}
		e.logger.Printf("%s %s [%s] -> %d %s (%s)", e.req.Method, e.req.URL, e.req.ID, resp.StatusCode, outcome, resp.Duration)
	}
	for _, o := range e.observers {
		o.Observe(e.req, resp, err)
	}
}
