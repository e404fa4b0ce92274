package output

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/persephone/packages/bench"
	"github.com/abdul-hamid-achik/persephone/packages/http"
	"github.com/abdul-hamid-achik/persephone/packages/metrics"
)

// JSONResult is the JSON shape of a single call
type JSONResult struct {
	Request  *JSONRequest   `json:"request,omitempty"`
	Response *JSONResponse  `json:"response,omitempty"`
	Error    *JSONError     `json:"error,omitempty"`
	Queries  map[string]any `json:"queries,omitempty"`
	Schema   *JSONSchema    `json:"schema,omitempty"`
	Time     string         `json:"time"`
}

type JSONRequest struct {
	ID      string            `json:"id"`
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
}

type JSONResponse struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       any               `json:"body,omitempty"`
	Duration   float64           `json:"duration"`
}

type JSONError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Cause   string `json:"cause,omitempty"`
}

type JSONSchema struct {
	Passed bool     `json:"passed"`
	Errors []string `json:"errors,omitempty"`
}

// JSONSummary is the JSON shape of a bench run
type JSONSummary struct {
	Duration   string           `json:"duration"`
	Requests   JSONRequestStats `json:"requests"`
	RPS        float64          `json:"rps"`
	Latency    map[string]int64 `json:"latency"`
	Thresholds []JSONThreshold  `json:"thresholds,omitempty"`
}

type JSONThreshold struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

type JSONRequestStats struct {
	Total    int64            `json:"total"`
	Success  int64            `json:"success"`
	Failed   int64            `json:"failed"`
	Failures map[string]int64 `json:"failures,omitempty"`
}

// JSONFormatter writes one JSON document per result
type JSONFormatter struct {
	writer io.Writer
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatResult(result *Result) {
	out := JSONResult{Time: time.Now().Format(time.RFC3339)}

	if r := result.Request; r != nil {
		out.Request = &JSONRequest{
			ID:      r.ID,
			Method:  r.Method,
			URL:     r.URL,
			Headers: r.Headers,
		}
	}

	if resp := result.Response; resp != nil {
		out.Response = &JSONResponse{
			StatusCode: resp.StatusCode,
			Headers:    resp.Headers,
			Duration:   float64(resp.DurationMs()),
		}
		if resp.Body != "" {
			out.Response.Body = resp.JSON()
		}
	}

	if result.Err != nil {
		out.Error = &JSONError{Kind: string(http.KindOf(result.Err)), Message: result.Err.Error()}
		var rejection *http.Error
		if errors.As(result.Err, &rejection) {
			out.Error.Message = rejection.Message
			if rejection.Cause != nil {
				out.Error.Cause = rejection.Cause.Error()
			}
		}
	}

	if len(result.Queries) > 0 {
		out.Queries = make(map[string]any, len(result.Queries))
		for _, q := range result.Queries {
			if q.Found {
				out.Queries[q.Expr] = q.Value
			} else {
				out.Queries[q.Expr] = nil
			}
		}
	}

	if result.Schema != nil {
		out.Schema = &JSONSchema{Passed: result.Schema.Passed, Errors: result.Schema.Errors}
	}

	f.encode(out)
}

func (f *JSONFormatter) FormatSummary(summary metrics.Summary, thresholds []bench.ThresholdResult) {
	out := JSONSummary{
		Duration: summary.Duration.String(),
		Requests: JSONRequestStats{
			Total:   summary.Total,
			Success: summary.Success,
			Failed:  summary.FailureCount(),
		},
		RPS: summary.RPS,
		Latency: map[string]int64{
			"p50":  summary.P50.Milliseconds(),
			"p95":  summary.P95.Milliseconds(),
			"p99":  summary.P99.Milliseconds(),
			"min":  summary.Min.Milliseconds(),
			"max":  summary.Max.Milliseconds(),
			"mean": summary.Mean.Milliseconds(),
		},
	}
	for _, tr := range thresholds {
		out.Thresholds = append(out.Thresholds, JSONThreshold{
			Name:     tr.Name,
			Passed:   tr.Passed,
			Expected: tr.Expected,
			Actual:   tr.Actual,
		})
	}
	if len(summary.Failures) > 0 {
		out.Requests.Failures = make(map[string]int64, len(summary.Failures))
		for k, v := range summary.Failures {
			out.Requests.Failures[string(k)] = v
		}
	}
	f.encode(out)
}

func (f *JSONFormatter) FormatError(err error) {
	f.encode(map[string]any{
		"error": JSONError{Kind: string(http.KindOf(err)), Message: err.Error()},
	})
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}

func (f *JSONFormatter) encode(v any) {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(v)
}
