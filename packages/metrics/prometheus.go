package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/abdul-hamid-achik/persephone/packages/http"
)

// Collector exports settlements as Prometheus metrics.
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	rejectionsTotal *prometheus.CounterVec
}

// NewCollector registers the persephone metrics on registry.
func NewCollector(registry prometheus.Registerer) *Collector {
	return &Collector{
		requestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "persephone_requests_total",
				Help: "Total number of settled requests",
			},
			[]string{"method", "status_code"},
		),
		requestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "persephone_request_duration_seconds",
				Help:    "Time from open to settlement in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		rejectionsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "persephone_rejections_total",
				Help: "Total number of rejected requests by kind",
			},
			[]string{"method", "kind"},
		),
	}
}

func (c *Collector) Observe(req *http.Request, resp *http.Response, err error) {
	c.requestsTotal.WithLabelValues(req.Method, strconv.Itoa(resp.StatusCode)).Inc()
	c.requestDuration.WithLabelValues(req.Method).Observe(resp.Duration.Seconds())
	if err != nil {
		c.rejectionsTotal.WithLabelValues(req.Method, string(http.KindOf(err))).Inc()
	}
}
