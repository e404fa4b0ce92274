package metrics

import (
	"context"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/persephone/packages/http"
)

func TestLatencyRecord(t *testing.T) {
	m := NewLatency()
	m.Start()

	m.Record(100*time.Millisecond, nil)
	m.Record(150*time.Millisecond, nil)
	m.Record(50*time.Millisecond, http.NewError(http.KindTimeout, nil, nil))
	m.Record(10*time.Millisecond, http.NewError(http.KindInvalidStatus, nil, nil))

	m.Stop()
	s := m.Summary()

	assert.Equal(t, int64(4), s.Total)
	assert.Equal(t, int64(2), s.Success)
	assert.Equal(t, int64(2), s.FailureCount())
	assert.Equal(t, int64(1), s.Failures[http.KindTimeout])
	assert.Equal(t, int64(1), s.Failures[http.KindInvalidStatus])
	assert.Equal(t, 50.0, s.SuccessRate)
	assert.InDelta(t, float64(10*time.Millisecond), float64(s.Min), float64(time.Millisecond))
	assert.InDelta(t, float64(150*time.Millisecond), float64(s.Max), float64(time.Millisecond))
}

func TestLatencyEmpty(t *testing.T) {
	s := NewLatency().Summary()
	assert.Equal(t, int64(0), s.Total)
	assert.Equal(t, time.Duration(0), s.P99)
	assert.Equal(t, 0.0, s.RPS)
}

func TestCollectorObserve(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector(registry)

	req := http.NewRequest("GET", "http://x/")
	ok := http.NewResponse(200, "", "")
	missing := http.NewResponse(404, "", "")

	c.Observe(req, ok, nil)
	c.Observe(req, missing, http.NewError(http.KindInvalidStatus, missing, nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.requestsTotal.WithLabelValues("GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requestsTotal.WithLabelValues("GET", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rejectionsTotal.WithLabelValues("GET", "InvalidStatus")))
}

func TestObserversWiredIntoClient(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(nethttp.StatusNotFound)
			return
		}
		w.WriteHeader(nethttp.StatusOK)
	}))
	defer server.Close()

	latency := NewLatency()
	collector := NewCollector(prometheus.NewRegistry())
	client := http.NewClient(
		http.WithBaseURL(server.URL),
		http.WithObserver(latency),
		http.WithObserver(collector),
	)

	_, err := client.Get(context.Background(), "/")
	require.NoError(t, err)
	_, err = client.Get(context.Background(), "/missing")
	require.Error(t, err)

	s := latency.Summary()
	assert.Equal(t, int64(2), s.Total)
	assert.Equal(t, int64(1), s.Failures[http.KindInvalidStatus])
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.rejectionsTotal.WithLabelValues("GET", "InvalidStatus")))
}
