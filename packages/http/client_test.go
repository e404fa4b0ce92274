package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/persephone/packages/xhr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"x":1}`))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/limited", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	})
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("X-Method", r.Method)
		w.Header().Set("X-Auth", r.Header.Get("Authorization"))
		w.Header().Set("X-Got-Request-Id", r.Header.Get(RequestIDHeader))
		_, _ = w.Write(body)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClient_GetJSON(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(WithBaseURL(server.URL))

	resp, err := client.Get(context.Background(), "/ok")

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, map[string]any{"x": float64(1)}, resp.JSON())
	ct, ok := resp.ContentType()
	assert.True(t, ok)
	assert.Equal(t, "application/json", ct)
	assert.NotEmpty(t, resp.RequestID)
}

func TestClient_GetMissing(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(WithBaseURL(server.URL))

	resp, err := client.Get(context.Background(), "/missing")

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 404, resp.StatusCode)
	require.NotNil(t, resp.ErrorDetail)
	assert.Equal(t, KindInvalidStatus, resp.ErrorDetail.Kind)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestClient_Timeout(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(WithBaseURL(server.URL))

	start := time.Now()
	resp, err := client.Get(context.Background(), "/slow", WithRequestTimeout(50*time.Millisecond))

	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, KindTimeout, resp.ErrorDetail.Kind)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClient_ClientWideTimeout(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(WithBaseURL(server.URL), WithTimeout(50*time.Millisecond))

	_, err := client.Get(context.Background(), "/slow")
	assert.Equal(t, KindTimeout, KindOf(err))
}

func TestClient_ContextCancelAborts(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(WithBaseURL(server.URL), WithTimeout(0))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := client.Get(ctx, "/slow")

	assert.Equal(t, KindAbort, KindOf(err))
}

func TestClient_Restrict(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(WithBaseURL(server.URL))

	client.Restrict(404)
	assert.False(t, client.Registry().Contains(404))

	resp, err := client.Get(context.Background(), "/missing")
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestClient_Extend(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(WithBaseURL(server.URL))

	_, err := client.Get(context.Background(), "/limited")
	require.NoError(t, err)

	client.Extend(429)
	_, err = client.Get(context.Background(), "/limited")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	before := client.Registry().Codes()
	client.Extend(404)
	client.Extend(404)
	assert.Equal(t, before, client.Registry().Codes())
}

func TestClient_ConstructionOptions(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(
		WithBaseURL(server.URL),
		WithAdditionalErrorCodes(429),
		WithErrorsWhitelist(404),
	)

	_, err := client.Get(context.Background(), "/limited")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = client.Get(context.Background(), "/missing")
	assert.NoError(t, err)
}

func TestClient_StatusZeroAfterRestrict(t *testing.T) {
	ft := completing(0, "", "")
	client := NewClient(WithTransportFactory(xhr.FactoryFunc(func() xhr.Transport { return ft })))
	client.Restrict(0)

	_, err := client.Get(context.Background(), "/")
	assert.ErrorIs(t, err, ErrStatusZero)
}

func TestClient_PostAndHeaders(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(WithBaseURL(server.URL), WithDefaultHeader("Authorization", "Bearer t"))

	resp, err := client.Post(context.Background(), "/echo", WithBody("hello"))

	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Body)
	assert.Equal(t, "POST", resp.Header("x-method"))
	assert.Equal(t, "Bearer t", resp.Header("x-auth"))
	assert.Equal(t, resp.RequestID, resp.Header("x-got-request-id"))
	// text/plain is decoded best effort and falls back to the raw body
	assert.Equal(t, "hello", resp.JSON())
}

func TestClient_Fetch(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(WithBaseURL(server.URL))

	resp, err := client.Fetch(context.Background(), "/echo", "PUT", WithBody("x"))
	require.NoError(t, err)
	assert.Equal(t, "PUT", resp.Header("x-method"))

	resp, err = client.Delete(context.Background(), "/echo")
	require.NoError(t, err)
	assert.Equal(t, "DELETE", resp.Header("x-method"))
}

func TestClient_RelativeURLWithoutBaseRejects(t *testing.T) {
	client := NewClient()

	resp, err := client.Get(context.Background(), "/ok")

	require.Error(t, err)
	assert.Equal(t, KindNetwork, KindOf(err))
	assert.ErrorContains(t, err, "URL must have a host")
	assert.Equal(t, 0, resp.StatusCode)
}

func TestClient_TransportSetupErrorRejects(t *testing.T) {
	client := NewClient(WithTransportOptions(xhr.WithProxy("://no-scheme")))

	resp, err := client.Get(context.Background(), "http://example.com/")

	require.Error(t, err)
	assert.Equal(t, KindNetwork, KindOf(err))
	assert.ErrorContains(t, err, "invalid proxy URL")
	assert.Equal(t, 0, resp.StatusCode)
}

func TestClient_ConcurrentCallsSettleIndependently(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(WithBaseURL(server.URL))

	var wg sync.WaitGroup
	var slowErr, okErr error
	var okResp *Response

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, slowErr = client.Get(context.Background(), "/slow", WithRequestTimeout(50*time.Millisecond))
	}()
	go func() {
		defer wg.Done()
		okResp, okErr = client.Get(context.Background(), "/ok")
	}()
	wg.Wait()

	assert.ErrorIs(t, slowErr, ErrTimeout)
	require.NoError(t, okErr)
	assert.Equal(t, 200, okResp.StatusCode)
}

func TestClient_RegistryChangeSkipsInFlight(t *testing.T) {
	ft := newFake()
	client := NewClient(WithTransportFactory(xhr.FactoryFunc(func() xhr.Transport { return ft })))

	f := client.FetchAsync(context.Background(), "http://x/", "GET")
	client.Extend(200)
	ft.complete(200, "", "")

	_, err := f.Await()
	assert.NoError(t, err)
	assert.True(t, client.Registry().Contains(200))
}

func TestClient_ObserverAndLocale(t *testing.T) {
	server := newTestServer(t)

	var mu sync.Mutex
	var seen []Kind
	observer := ObserverFunc(func(req *Request, resp *Response, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			seen = append(seen, KindOf(err))
			return
		}
		seen = append(seen, "")
	})

	client := NewClient(WithBaseURL(server.URL), WithObserver(observer), WithLocale("pt-BR"))
	_, _ = client.Get(context.Background(), "/ok")
	_, err := client.Get(context.Background(), "/missing")

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, Catalogs["pt-BR"][KindInvalidStatus], e.Message)
	assert.Equal(t, []Kind{"", KindInvalidStatus}, seen)
}

func TestClient_DefaultTimeout(t *testing.T) {
	ft := completing(200, "", "")
	client := NewClient(WithTransportFactory(xhr.FactoryFunc(func() xhr.Transport { return ft })))

	_, err := client.Get(context.Background(), "http://x/")
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, ft.timeout)
}
