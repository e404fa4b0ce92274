package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultURL    = "/"
	DefaultMethod = http.MethodGet
	// DefaultTimeout applies when neither the client nor the call sets one.
	DefaultTimeout = 10 * time.Second
	// RequestIDHeader carries Request.ID to the server.
	RequestIDHeader = "X-Request-Id"
)

// Request describes one call. The executor copies it when the call starts.
type Request struct {
	ID      string
	Method  string
	URL     string
	Headers map[string]string
	Body    string
	// Timeout of zero disables the transport deadline.
	Timeout time.Duration
}

type RequestOption func(*Request)

func NewRequest(method, requestURL string, opts ...RequestOption) *Request {
	if method == "" {
		method = DefaultMethod
	}
	if requestURL == "" {
		requestURL = DefaultURL
	}
	r := &Request{
		ID:      uuid.NewString(),
		Method:  method,
		URL:     requestURL,
		Headers: make(map[string]string),
		Timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		r.Headers[key] = value
	}
}

func WithHeaders(headers map[string]string) RequestOption {
	return func(r *Request) {
		for k, v := range headers {
			r.Headers[k] = v
		}
	}
}

func WithBody(body string) RequestOption {
	return func(r *Request) {
		r.Body = body
	}
}

// WithJSONBody sets body and a JSON content type unless one is already set.
func WithJSONBody(body string) RequestOption {
	return func(r *Request) {
		r.Body = body
		if _, ok := lookupHeader(r.Headers, "Content-Type"); !ok {
			r.Headers["Content-Type"] = "application/json"
		}
	}
}

// WithRequestTimeout overrides the client timeout for one call. Zero
// disables the deadline.
func WithRequestTimeout(d time.Duration) RequestOption {
	return func(r *Request) {
		r.Timeout = d
	}
}

func (r *Request) clone() *Request {
	c := *r
	c.Headers = make(map[string]string, len(r.Headers))
	for k, v := range r.Headers {
		c.Headers[k] = v
	}
	return &c
}
