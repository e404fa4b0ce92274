package metrics

import (
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/persephone/packages/http"
)

func observedRegistry(t *testing.T) *prometheus.Registry {
	t.Helper()
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	req := http.NewRequest("GET", "http://localhost/")
	c.Observe(req, http.NewResponse(200, "", ""), nil)
	return reg
}

func TestHandlerServesCollector(t *testing.T) {
	srv := httptest.NewServer(Handler(observedRegistry(t)))
	defer srv.Close()

	resp, err := nethttp.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `persephone_requests_total{method="GET",status_code="200"} 1`)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.prom")
	require.NoError(t, WriteFile(path, observedRegistry(t)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "persephone_request_duration_seconds")
}

func TestWriteFileBadPath(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "missing", "bench.prom"), observedRegistry(t))
	assert.Error(t, err)
}
