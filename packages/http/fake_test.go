package http

import (
	"errors"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/persephone/packages/xhr"
)

// fakeTransport is a scripted xhr.Transport. Events fire synchronously from
// whichever goroutine calls the helpers.
type fakeTransport struct {
	mu         sync.Mutex
	hooks      xhr.Hooks
	state      xhr.ReadyState
	status     int
	headers    string
	body       string
	method     string
	url        string
	reqHeaders map[string]string
	timeout    time.Duration
	sentBody   string
	sent       bool
	aborts     int

	openErr error
	sendErr error
	onSend  func(ft *fakeTransport)
}

func newFake() *fakeTransport {
	return &fakeTransport{reqHeaders: make(map[string]string)}
}

// completing returns a fake that finishes with the given response on Send.
func completing(status int, headers, body string) *fakeTransport {
	ft := newFake()
	ft.onSend = func(ft *fakeTransport) { ft.complete(status, headers, body) }
	return ft
}

func (ft *fakeTransport) SetHooks(h xhr.Hooks) {
	ft.mu.Lock()
	ft.hooks = h
	ft.mu.Unlock()
}

func (ft *fakeTransport) Open(method, url string) error {
	if ft.openErr != nil {
		return ft.openErr
	}
	ft.mu.Lock()
	ft.method = method
	ft.url = url
	ft.mu.Unlock()
	ft.setState(xhr.Opened, nil)
	return nil
}

func (ft *fakeTransport) SetRequestHeader(key, value string) {
	ft.mu.Lock()
	ft.reqHeaders[key] = value
	ft.mu.Unlock()
}

func (ft *fakeTransport) SetTimeout(d time.Duration) {
	ft.mu.Lock()
	ft.timeout = d
	ft.mu.Unlock()
}

func (ft *fakeTransport) Send(body string) error {
	if ft.sendErr != nil {
		return ft.sendErr
	}
	ft.mu.Lock()
	ft.sent = true
	ft.sentBody = body
	onSend := ft.onSend
	ft.mu.Unlock()
	if onSend != nil {
		onSend(ft)
	}
	return nil
}

func (ft *fakeTransport) Abort() {
	ft.mu.Lock()
	ft.aborts++
	pending := ft.sent && ft.state != xhr.Done
	ft.mu.Unlock()
	if pending {
		ft.emit("abort")
	}
}

func (ft *fakeTransport) Status() int {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return ft.status
}

func (ft *fakeTransport) ReadyState() xhr.ReadyState {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return ft.state
}

func (ft *fakeTransport) AllResponseHeaders() string {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return ft.headers
}

func (ft *fakeTransport) ResponseText() string {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return ft.body
}

func (ft *fakeTransport) setState(s xhr.ReadyState, apply func()) {
	ft.mu.Lock()
	ft.state = s
	if apply != nil {
		apply()
	}
	rsc := ft.hooks.ReadyStateChange
	ft.mu.Unlock()
	if rsc != nil {
		rsc()
	}
}

func (ft *fakeTransport) complete(status int, headers, body string) {
	ft.setState(xhr.HeadersReceived, func() {
		ft.status = status
		ft.headers = headers
	})
	ft.setState(xhr.Loading, nil)
	ft.setState(xhr.Done, func() { ft.body = body })
	ft.fire("load")
}

// emit finishes the request with a fault event: error, timeout or abort.
func (ft *fakeTransport) emit(name string) {
	ft.setState(xhr.Done, func() {
		ft.status = 0
		ft.headers = ""
		ft.body = ""
	})
	ft.fire(name)
}

func (ft *fakeTransport) fire(name string) {
	ft.mu.Lock()
	h := ft.hooks
	ft.mu.Unlock()

	switch name {
	case "load":
		h.Load()
	case "timeout":
		h.Timeout()
	case "abort":
		h.Abort()
	case "error":
		h.Error(errFakeNetwork)
	}
}

var errFakeNetwork = errors.New("fake: connection reset")
