package xhr

import (
	"errors"
	"time"
)

// ReadyState mirrors the lifecycle stages of a browser XMLHttpRequest.
type ReadyState int

const (
	Unsent ReadyState = iota
	Opened
	HeadersReceived
	Loading
	Done
)

var readyStateNames = [...]string{
	Unsent:          "UNSENT",
	Opened:          "OPENED",
	HeadersReceived: "HEADERS_RECEIVED",
	Loading:         "LOADING",
	Done:            "DONE",
}

func (s ReadyState) String() string {
	if s < Unsent || s > Done {
		return "UNKNOWN"
	}
	return readyStateNames[s]
}

var (
	// ErrInvalidState is returned when a method is called out of order.
	ErrInvalidState = errors.New("xhr: invalid state")
	// ErrInvalidMethod is returned by Open for an empty method.
	ErrInvalidMethod = errors.New("xhr: invalid method")
)

// Hooks are the event callbacks a Transport fires. Any of them may be nil.
// Hooks can be invoked from a goroutine other than the one that called Send.
type Hooks struct {
	ReadyStateChange func()
	Load             func()
	Error            func(err error)
	Timeout          func()
	Abort            func()
}

// Transport is a single-use asynchronous request object.
type Transport interface {
	SetHooks(h Hooks)
	Open(method, url string) error
	SetRequestHeader(key, value string)
	// SetTimeout sets the request deadline. Zero disables it.
	SetTimeout(d time.Duration)
	Send(body string) error
	Abort()
	Status() int
	ReadyState() ReadyState
	// AllResponseHeaders returns "name: value\r\n" lines for every header.
	AllResponseHeaders() string
	ResponseText() string
}

// Factory creates a fresh Transport for each request.
type Factory interface {
	NewTransport() Transport
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func() Transport

func (f FactoryFunc) NewTransport() Transport {
	return f()
}
