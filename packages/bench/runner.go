package bench

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/abdul-hamid-achik/persephone/packages/http"
	"github.com/abdul-hamid-achik/persephone/packages/metrics"
)

// CallFunc performs one call. A nil response is recorded with zero latency.
type CallFunc func(ctx context.Context) (*http.Response, error)

// Runner executes bench runs
type Runner struct {
	config  *Config
	call    CallFunc
	latency *metrics.Latency
	limiter *rate.Limiter
	sem     chan struct{}
}

// Result is the outcome of a bench run
type Result struct {
	Summary    metrics.Summary
	Thresholds []ThresholdResult
	Passed     bool
}

func NewRunner(config *Config, call CallFunc) *Runner {
	r := &Runner{
		config:  config,
		call:    call,
		latency: metrics.NewLatency(),
	}
	if config.Rate > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(config.Rate), 1)
	}
	concurrency := config.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	r.sem = make(chan struct{}, concurrency)
	return r
}

// Run issues calls until the request count is reached, the duration runs
// out or ctx is cancelled, then waits for in-flight calls.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if err := r.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	schedCtx := ctx
	if r.config.Duration > 0 {
		var cancel context.CancelFunc
		schedCtx, cancel = context.WithTimeout(ctx, r.config.Duration)
		defer cancel()
	}

	r.latency.Start()

	var wg sync.WaitGroup
	for issued := 0; r.config.Requests == 0 || issued < r.config.Requests; issued++ {
		if !r.schedule(schedCtx) {
			break
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer r.release()

			resp, err := r.call(ctx)
			var d time.Duration
			if resp != nil {
				d = resp.Duration
			}
			r.latency.Record(d, err)
		}()
	}
	wg.Wait()

	r.latency.Stop()

	summary := r.latency.Summary()
	result := &Result{Summary: summary, Passed: true}
	if r.config.Thresholds.HasThresholds() {
		result.Thresholds = EvaluateThresholds(summary, r.config.Thresholds)
	}
	for _, tr := range result.Thresholds {
		if !tr.Passed {
			result.Passed = false
			break
		}
	}
	return result, nil
}

// schedule waits for the rate limiter and a concurrency slot.
func (r *Runner) schedule(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return false
		}
	}
	select {
	case r.sem <- struct{}{}:
		return true
	case <-ctx.Done():
		return false
	}
}

func (r *Runner) release() {
	<-r.sem
}

// HasThresholdFailures returns true if any threshold failed
func (r *Result) HasThresholdFailures() bool {
	return !r.Passed
}

// EvaluateThresholds evaluates the thresholds against the summary
func EvaluateThresholds(summary metrics.Summary, t Thresholds) []ThresholdResult {
	var results []ThresholdResult

	latency := func(name string, limit, actual time.Duration) {
		if limit <= 0 {
			return
		}
		results = append(results, ThresholdResult{
			Name:     name,
			Passed:   actual <= limit,
			Expected: "< " + limit.String(),
			Actual:   actual.String(),
		})
	}
	latency("p50", t.P50, summary.P50)
	latency("p95", t.P95, summary.P95)
	latency("p99", t.P99, summary.P99)
	latency("max latency", t.MaxLatency, summary.Max)

	if t.ErrorRate > 0 {
		var errorRate float64
		if summary.Total > 0 {
			errorRate = float64(summary.FailureCount()) / float64(summary.Total)
		}
		results = append(results, ThresholdResult{
			Name:     "error rate",
			Passed:   errorRate <= t.ErrorRate,
			Expected: "< " + formatPercent(t.ErrorRate),
			Actual:   formatPercent(errorRate),
		})
	}

	if t.MinRPS > 0 {
		results = append(results, ThresholdResult{
			Name:     "min RPS",
			Passed:   summary.RPS >= t.MinRPS,
			Expected: "> " + formatFloat(t.MinRPS),
			Actual:   formatFloat(summary.RPS),
		})
	}

	return results
}

func formatPercent(f float64) string {
	return formatFloat(f*100) + "%"
}

func formatFloat(f float64) string {
	if f == float64(int(f)) {
		return strconv.Itoa(int(f))
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}
