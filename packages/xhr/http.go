package xhr

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/http2"
)

const (
	// DefaultMaxIdleConns is the maximum number of idle connections in the pool
	DefaultMaxIdleConns = 100
	// DefaultMaxIdleConnsPerHost is the maximum number of idle connections per host
	DefaultMaxIdleConnsPerHost = 10
	// DefaultIdleConnTimeout is how long idle connections stay in the pool
	DefaultIdleConnTimeout = 90 * time.Second
)

// HTTPFactory builds HTTPTransports that share one connection pool.
type HTTPFactory struct {
	httpClient      *http.Client
	baseURL         *neturl.URL
	validateSSL     bool
	proxyURL        string
	enableHTTP2     bool
	maxConnsPerHost int

	// err is a setup failure. Transports from this factory fail Open with it.
	err error
}

type Option func(*HTTPFactory)

func NewHTTPFactory(opts ...Option) *HTTPFactory {
	f := &HTTPFactory{
		validateSSL:     true,
		maxConnsPerHost: DefaultMaxIdleConnsPerHost,
	}

	for _, opt := range opts {
		opt(f)
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        max(DefaultMaxIdleConns, f.maxConnsPerHost),
		MaxIdleConnsPerHost: f.maxConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
	}

	if !f.validateSSL {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	if f.proxyURL != "" {
		proxyURL, err := neturl.Parse(f.proxyURL)
		if err != nil {
			f.err = fmt.Errorf("invalid proxy URL %q: %w", f.proxyURL, err)
		} else {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	// A custom TLS config turns off net/http's automatic h2 upgrade.
	if f.enableHTTP2 && f.err == nil {
		if _, err := http2.ConfigureTransports(transport); err != nil {
			f.err = fmt.Errorf("enable http2: %w", err)
		}
	}

	f.httpClient = &http.Client{Transport: transport}
	return f
}

// WithMaxConnsPerHost sizes the idle pool per host. Values below 1 keep
// DefaultMaxIdleConnsPerHost.
func WithMaxConnsPerHost(n int) Option {
	return func(f *HTTPFactory) {
		if n > 0 {
			f.maxConnsPerHost = n
		}
	}
}

// WithBaseURL resolves relative request URLs against base. An unparsable base
// is ignored.
func WithBaseURL(base string) Option {
	return func(f *HTTPFactory) {
		if base == "" {
			f.baseURL = nil
			return
		}
		if u, err := neturl.Parse(base); err == nil {
			f.baseURL = u
		}
	}
}

// WithValidateSSL enables or disables SSL certificate validation
func WithValidateSSL(validate bool) Option {
	return func(f *HTTPFactory) {
		f.validateSSL = validate
	}
}

// WithProxy sets the proxy URL for all requests
func WithProxy(proxyURL string) Option {
	return func(f *HTTPFactory) {
		f.proxyURL = proxyURL
	}
}

func WithHTTP2(enabled bool) Option {
	return func(f *HTTPFactory) {
		f.enableHTTP2 = enabled
	}
}

// Err reports a setup failure such as an unparsable proxy URL.
func (f *HTTPFactory) Err() error {
	return f.err
}

func (f *HTTPFactory) NewTransport() Transport {
	return &HTTPTransport{
		client:   f.httpClient,
		baseURL:  f.baseURL,
		header:   make(http.Header),
		setupErr: f.err,
	}
}

// HTTPTransport is a Transport backed by net/http. Send runs the exchange on
// its own goroutine and hooks fire from there.
type HTTPTransport struct {
	client   *http.Client
	baseURL  *neturl.URL
	setupErr error

	mu         sync.Mutex
	hooks      Hooks
	state      ReadyState
	method     string
	url        string
	header     http.Header
	timeout    time.Duration
	sent       bool
	aborted    bool
	cancel     context.CancelFunc
	status     int
	rawHeaders string
	body       string
}

func (t *HTTPTransport) SetHooks(h Hooks) {
	t.mu.Lock()
	t.hooks = h
	t.mu.Unlock()
}

func (t *HTTPTransport) Open(method, rawURL string) error {
	if t.setupErr != nil {
		return t.setupErr
	}
	if strings.TrimSpace(method) == "" {
		return ErrInvalidMethod
	}
	resolved, err := ResolveURL(t.baseURL, rawURL)
	if err != nil {
		return err
	}

	t.mu.Lock()
	if t.sent {
		t.mu.Unlock()
		return ErrInvalidState
	}
	t.method = strings.ToUpper(method)
	t.url = resolved
	t.state = Opened
	hooks := t.hooks
	t.mu.Unlock()

	fire(hooks.ReadyStateChange)
	return nil
}

func (t *HTTPTransport) SetRequestHeader(key, value string) {
	t.mu.Lock()
	t.header.Set(key, value)
	t.mu.Unlock()
}

func (t *HTTPTransport) SetTimeout(d time.Duration) {
	t.mu.Lock()
	t.timeout = d
	t.mu.Unlock()
}

func (t *HTTPTransport) Send(body string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != Opened || t.sent {
		return ErrInvalidState
	}

	var reader io.Reader
	if body != "" && t.method != http.MethodGet && t.method != http.MethodHead {
		reader = strings.NewReader(body)
	}

	var ctx context.Context
	var cancel context.CancelFunc
	if t.timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), t.timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}

	req, err := http.NewRequestWithContext(ctx, t.method, t.url, reader)
	if err != nil {
		cancel()
		return err
	}
	req.Header = t.header.Clone()

	t.sent = true
	t.cancel = cancel
	go t.run(ctx, cancel, req)
	return nil
}

// Abort cancels an in-flight request. It is a no-op before Send and after
// the request has finished.
func (t *HTTPTransport) Abort() {
	t.mu.Lock()
	if !t.sent || t.state == Done || t.aborted {
		t.mu.Unlock()
		return
	}
	t.aborted = true
	cancel := t.cancel
	t.mu.Unlock()

	cancel()
}

func (t *HTTPTransport) Status() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *HTTPTransport) ReadyState() ReadyState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *HTTPTransport) AllResponseHeaders() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rawHeaders
}

func (t *HTTPTransport) ResponseText() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.body
}

func (t *HTTPTransport) run(ctx context.Context, cancel context.CancelFunc, req *http.Request) {
	defer cancel()

	resp, err := t.client.Do(req)
	if err != nil {
		t.fail(ctx, err)
		return
	}
	defer resp.Body.Close()

	ok := t.transition(ctx, HeadersReceived, func() {
		t.status = resp.StatusCode
		t.rawHeaders = FormatHeaders(resp.Header)
	})
	if !ok || !t.transition(ctx, Loading, nil) {
		return
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.fail(ctx, err)
		return
	}

	if !t.transition(ctx, Done, func() { t.body = string(data) }) {
		return
	}

	t.mu.Lock()
	hooks := t.hooks
	t.mu.Unlock()
	fire(hooks.Load)
}

// transition moves to state and fires ReadyStateChange. It reports false when
// the request already finished or was aborted in the meantime.
func (t *HTTPTransport) transition(ctx context.Context, state ReadyState, apply func()) bool {
	t.mu.Lock()
	if t.state == Done {
		t.mu.Unlock()
		return false
	}
	if t.aborted {
		t.mu.Unlock()
		t.fail(ctx, context.Canceled)
		return false
	}
	if apply != nil {
		apply()
	}
	t.state = state
	hooks := t.hooks
	t.mu.Unlock()

	fire(hooks.ReadyStateChange)
	return true
}

func (t *HTTPTransport) fail(ctx context.Context, err error) {
	t.mu.Lock()
	if t.state == Done {
		t.mu.Unlock()
		return
	}
	aborted := t.aborted
	t.state = Done
	t.status = 0
	t.rawHeaders = ""
	t.body = ""
	hooks := t.hooks
	t.mu.Unlock()

	fire(hooks.ReadyStateChange)
	switch {
	case aborted:
		fire(hooks.Abort)
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		fire(hooks.Timeout)
	default:
		if hooks.Error != nil {
			hooks.Error(err)
		}
	}
}

func fire(hook func()) {
	if hook != nil {
		hook()
	}
}

// ResolveURL resolves rawURL against base (when set) and validates the result.
func ResolveURL(base *neturl.URL, rawURL string) (string, error) {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	resolved := u.String()
	if err := ValidateURL(resolved); err != nil {
		return "", err
	}
	return resolved, nil
}

// ValidateURL checks that a URL is well-formed and uses an allowed scheme
func ValidateURL(rawURL string) error {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if u.Scheme == "" && u.Host == "" {
		return fmt.Errorf("URL must have a host: %q is relative and no base URL is set", rawURL)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %q (only http and https are allowed)", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}

	return nil
}

// FormatHeaders renders h the way a browser's getAllResponseHeaders does:
// lower-case names, sorted, repeated values joined with ", ".
func FormatHeaders(h http.Header) string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(strings.ToLower(name))
		b.WriteString(": ")
		b.WriteString(strings.Join(h[name], ", "))
		b.WriteString("\r\n")
	}
	return b.String()
}
