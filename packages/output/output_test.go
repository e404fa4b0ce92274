package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/persephone/packages/assertions"
	"github.com/abdul-hamid-achik/persephone/packages/bench"
	"github.com/abdul-hamid-achik/persephone/packages/http"
	"github.com/abdul-hamid-achik/persephone/packages/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *Result {
	req := http.NewRequest("GET", "http://localhost/users/1")
	resp := http.NewResponse(200, "content-type: application/json\r\n", `{"id":1,"tags":["a"]}`)
	resp.Duration = 12 * time.Millisecond
	return &Result{Request: req, Response: resp}
}

func rejectedResult() *Result {
	req := http.NewRequest("GET", "http://localhost/missing")
	resp := http.NewResponse(404, "content-type: text/plain\r\n", "not found")
	return &Result{Request: req, Response: resp, Err: http.NewError(http.KindInvalidStatus, resp, nil)}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer

	f, err := New("", &buf, false, true)
	require.NoError(t, err)
	assert.IsType(t, &ConsoleFormatter{}, f)

	f, err = New(FormatJSON, &buf, false, true)
	require.NoError(t, err)
	assert.IsType(t, &JSONFormatter{}, f)

	_, err = New("xml", &buf, false, true)
	assert.Error(t, err)
}

func TestConsoleFormatResult(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatResult(sampleResult())

	out := buf.String()
	assert.Contains(t, out, "GET http://localhost/users/1")
	assert.Contains(t, out, "✓ 200 OK (12ms)")
	assert.Contains(t, out, "\"id\": 1")
}

func TestConsoleFormatRejection(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatResult(rejectedResult())

	out := buf.String()
	assert.Contains(t, out, "✗ InvalidStatus")
	assert.Contains(t, out, "[404 Not Found]")
	assert.Contains(t, out, "not found")
}

func TestConsoleFormatQueriesAndSchema(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true), WithVerbose(true))

	result := sampleResult()
	result.Queries = []Query{
		{Expr: "id", Value: float64(1), Found: true},
		{Expr: "tags", Value: []any{"a"}, Found: true},
		{Expr: "missing", Found: false},
	}
	result.Schema = &assertions.Result{Passed: false, Message: "schema validation failed: id is required"}
	f.FormatResult(result)

	out := buf.String()
	assert.Contains(t, out, "id = 1")
	assert.Contains(t, out, `tags = ["a"]`)
	assert.Contains(t, out, "missing = <not found>")
	assert.Contains(t, out, "content-type: application/json")
	assert.Contains(t, out, "schema validation failed")
	assert.NotContains(t, out, `"id": 1`)
}

func TestConsoleFormatSummary(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatSummary(metrics.Summary{
		Duration:    2 * time.Second,
		Total:       1200,
		Success:     1100,
		Failures:    map[http.Kind]int64{http.KindTimeout: 100},
		RPS:         600,
		SuccessRate: 91.7,
		P50:         5 * time.Millisecond,
	}, []bench.ThresholdResult{{Name: "p95", Passed: false, Expected: "< 1ms", Actual: "5ms"}})

	out := buf.String()
	assert.Contains(t, out, "1,200 requests")
	assert.Contains(t, out, "TimeoutError")
	assert.Contains(t, out, "p50: 5.0")
	assert.Contains(t, out, "✗ p95 < 1ms")
	assert.Contains(t, out, "Some thresholds failed!")
}

func TestJSONFormatSummary(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))

	f.FormatSummary(metrics.Summary{
		Total:    3,
		Success:  2,
		Failures: map[http.Kind]int64{http.KindNetwork: 1},
	}, []bench.ThresholdResult{{Name: "error rate", Passed: true, Expected: "< 50%", Actual: "33.33%"}})

	var out JSONSummary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, int64(3), out.Requests.Total)
	assert.Equal(t, int64(1), out.Requests.Failed)
	assert.Equal(t, int64(1), out.Requests.Failures["NetworkError"])
	require.Len(t, out.Thresholds, 1)
	assert.True(t, out.Thresholds[0].Passed)
}

func TestJSONFormatResult(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))

	f.FormatResult(rejectedResult())

	var out JSONResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.NotNil(t, out.Error)
	assert.Equal(t, "InvalidStatus", out.Error.Kind)
	assert.Equal(t, 404, out.Response.StatusCode)
	assert.Equal(t, "not found", out.Response.Body)
	assert.Equal(t, "GET", out.Request.Method)
}

func TestJSONFormatResultDecodesBody(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))

	f.FormatResult(sampleResult())

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	body := out["response"].(map[string]any)["body"].(map[string]any)
	assert.Equal(t, float64(1), body["id"])
	assert.Nil(t, out["error"])
}

func TestJSONFormatError(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))

	f.FormatError(errors.New("boom"))

	assert.Contains(t, buf.String(), `"message": "boom"`)
	assert.Contains(t, buf.String(), `"kind": "unknown"`)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "1,000", formatNumber(1000))
	assert.Equal(t, "1,234,567", formatNumber(1234567))
}
