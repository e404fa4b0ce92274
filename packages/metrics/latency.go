package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/abdul-hamid-achik/persephone/packages/http"
)

const (
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
)

// Latency records settlement latency and outcome counts. It is safe for
// concurrent use.
type Latency struct {
	mu sync.Mutex

	total   atomic.Int64
	success atomic.Int64

	// Latency histogram (in microseconds for precision)
	histogram *hdrhistogram.Histogram
	failures  map[http.Kind]int64

	startTime time.Time
	endTime   time.Time
}

func NewLatency() *Latency {
	return &Latency{
		histogram: hdrhistogram.New(minLatencyUs, maxLatencyUs, 3),
		failures:  make(map[http.Kind]int64),
	}
}

// Start marks the beginning of the measured window
func (m *Latency) Start() {
	m.mu.Lock()
	m.startTime = time.Now()
	m.mu.Unlock()
}

// Stop marks the end of the measured window
func (m *Latency) Stop() {
	m.mu.Lock()
	m.endTime = time.Now()
	m.mu.Unlock()
}

func (m *Latency) Observe(_ *http.Request, resp *http.Response, err error) {
	m.Record(resp.Duration, err)
}

// Record counts one settlement. err is the rejection, if any.
func (m *Latency) Record(duration time.Duration, err error) {
	m.total.Add(1)

	latencyUs := duration.Microseconds()
	if latencyUs < minLatencyUs {
		latencyUs = minLatencyUs
	}
	if latencyUs > maxLatencyUs {
		latencyUs = maxLatencyUs
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.histogram.RecordValue(latencyUs)

	if err != nil {
		m.failures[http.KindOf(err)]++
		return
	}
	m.success.Add(1)
}

type Summary struct {
	Duration time.Duration
	Total    int64
	Success  int64
	Failures map[http.Kind]int64

	RPS         float64
	SuccessRate float64

	P50  time.Duration
	P95  time.Duration
	P99  time.Duration
	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
}

// FailureCount sums failures across kinds.
func (s Summary) FailureCount() int64 {
	var n int64
	for _, c := range s.Failures {
		n += c
	}
	return n
}

func (m *Latency) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	end := m.endTime
	if end.IsZero() {
		end = time.Now()
	}
	var duration time.Duration
	if !m.startTime.IsZero() {
		duration = end.Sub(m.startTime)
	}

	s := Summary{
		Duration: duration,
		Total:    m.total.Load(),
		Success:  m.success.Load(),
		Failures: make(map[http.Kind]int64, len(m.failures)),
	}
	for k, v := range m.failures {
		s.Failures[k] = v
	}

	if s.Total == 0 {
		return s
	}
	if duration > 0 {
		s.RPS = float64(s.Total) / duration.Seconds()
	}
	s.SuccessRate = float64(s.Success) / float64(s.Total) * 100

	s.P50 = usToDuration(m.histogram.ValueAtQuantile(50))
	s.P95 = usToDuration(m.histogram.ValueAtQuantile(95))
	s.P99 = usToDuration(m.histogram.ValueAtQuantile(99))
	s.Min = usToDuration(m.histogram.Min())
	s.Max = usToDuration(m.histogram.Max())
	s.Mean = time.Duration(m.histogram.Mean() * float64(time.Microsecond))
	return s
}

func usToDuration(us int64) time.Duration {
	return time.Duration(us) * time.Microsecond
}
