package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/persephone/packages/status"
	"github.com/abdul-hamid-achik/persephone/packages/xhr"
)

// Client holds the failure registry and per-client defaults. Every call gets
// its own transport and executor.
type Client struct {
	mu       sync.RWMutex
	registry status.Registry

	additionalCodes []int
	whitelist       []int
	timeout         time.Duration
	defaultHeaders  map[string]string
	baseURL         string
	transportOpts   []xhr.Option
	factory         xhr.Factory
	locale          string
	logger          Logger
	observers       []Observer
}

type ClientOption func(*Client)

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout:        DefaultTimeout,
		defaultHeaders: make(map[string]string),
		locale:         DefaultLocale,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.registry = status.Default().Extend(c.additionalCodes...).Restrict(c.whitelist...)

	if c.factory == nil {
		transportOpts := c.transportOpts
		if c.baseURL != "" {
			transportOpts = append(transportOpts, xhr.WithBaseURL(c.baseURL))
		}
		c.factory = xhr.NewHTTPFactory(transportOpts...)
	}

	return c
}

// WithAdditionalErrorCodes adds codes to the default failure registry.
func WithAdditionalErrorCodes(codes ...int) ClientOption {
	return func(c *Client) {
		c.additionalCodes = append(c.additionalCodes, codes...)
	}
}

// WithErrorsWhitelist removes codes from the default failure registry.
func WithErrorsWhitelist(codes ...int) ClientOption {
	return func(c *Client) {
		c.whitelist = append(c.whitelist, codes...)
	}
}

// WithTimeout sets the default per-call timeout. Zero disables it.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithDefaultHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.defaultHeaders[key] = value
	}
}

// WithDefaultHeaders sets multiple default headers for all requests
func WithDefaultHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for k, v := range headers {
			c.defaultHeaders[k] = v
		}
	}
}

// WithBaseURL resolves relative call URLs against base. It only applies to
// the built-in HTTP transport.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		c.baseURL = base
	}
}

// WithTransportOptions configures the built-in HTTP transport.
func WithTransportOptions(opts ...xhr.Option) ClientOption {
	return func(c *Client) {
		c.transportOpts = append(c.transportOpts, opts...)
	}
}

// WithTransportFactory replaces the built-in HTTP transport.
func WithTransportFactory(factory xhr.Factory) ClientOption {
	return func(c *Client) {
		c.factory = factory
	}
}

func WithLocale(locale string) ClientOption {
	return func(c *Client) {
		c.locale = locale
	}
}

func WithLogger(logger Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithObserver(o Observer) ClientOption {
	return func(c *Client) {
		c.observers = append(c.observers, o)
	}
}

// Extend adds codes to the failure registry for all later calls.
func (c *Client) Extend(codes ...int) {
	c.mu.Lock()
	c.registry = c.registry.Extend(codes...)
	c.mu.Unlock()
}

// Restrict removes codes from the failure registry for all later calls.
func (c *Client) Restrict(codes ...int) {
	c.mu.Lock()
	c.registry = c.registry.Restrict(codes...)
	c.mu.Unlock()
}

// Registry returns the current failure registry.
func (c *Client) Registry() status.Registry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.registry
}

func (c *Client) Get(ctx context.Context, url string, opts ...RequestOption) (*Response, error) {
	return c.Fetch(ctx, url, http.MethodGet, opts...)
}

func (c *Client) Post(ctx context.Context, url string, opts ...RequestOption) (*Response, error) {
	return c.Fetch(ctx, url, http.MethodPost, opts...)
}

func (c *Client) Put(ctx context.Context, url string, opts ...RequestOption) (*Response, error) {
	return c.Fetch(ctx, url, http.MethodPut, opts...)
}

func (c *Client) Patch(ctx context.Context, url string, opts ...RequestOption) (*Response, error) {
	return c.Fetch(ctx, url, http.MethodPatch, opts...)
}

func (c *Client) Delete(ctx context.Context, url string, opts ...RequestOption) (*Response, error) {
	return c.Fetch(ctx, url, http.MethodDelete, opts...)
}

// Fetch runs one request and waits for it to settle. On rejection err is an
// *Error and resp is the response attached to it.
func (c *Client) Fetch(ctx context.Context, url, method string, opts ...RequestOption) (*Response, error) {
	return c.FetchAsync(ctx, url, method, opts...).Await()
}

// FetchAsync starts one request and returns its future.
func (c *Client) FetchAsync(ctx context.Context, url, method string, opts ...RequestOption) *Future {
	registry := c.Registry()

	base := []RequestOption{WithHeaders(c.defaultHeaders), WithRequestTimeout(c.timeout)}
	req := NewRequest(method, url, append(base, opts...)...)

	exec := NewExecutor(c.factory.NewTransport(), registry,
		ExecutorLocale(c.locale),
		ExecutorLogger(c.logger),
		ExecutorObservers(c.observers...),
	)
	return exec.Open(ctx, req)
}
